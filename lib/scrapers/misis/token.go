package misis

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractAuthenticityToken pulls the anti-forgery token out of the
// sign-in page. The portal embeds it in a csrf-token meta tag and
// rejects login submissions that do not echo it back.
func ExtractAuthenticityToken(html []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", classify(err, KindParse, "failed to parse sign-in page")
	}

	meta := doc.Find(`meta[name="csrf-token"]`).First()
	if meta.Length() == 0 {
		return "", newError(KindParse, "csrf token not found on sign-in page")
	}

	token := strings.TrimSpace(meta.AttrOr("content", ""))
	if token == "" {
		return "", newError(KindParse, "csrf token is empty")
	}
	return token, nil
}
