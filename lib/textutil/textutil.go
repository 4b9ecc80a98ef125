package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeCaption(caption string) string {
	caption = strings.Trim(caption, " \n\t")
	return whitespaceRegex.ReplaceAllString(caption, " ")
}

// MatchCaption reports whether a scraped label contains the given
// caption, ignoring surrounding and inner whitespace differences.
func MatchCaption(label, caption string) bool {
	return strings.Contains(NormalizeCaption(label), NormalizeCaption(caption))
}
