package misis

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractAuthenticityToken(t *testing.T) {
	page := []byte(`<!DOCTYPE html>
<html>
<head><meta name="csrf-token" content="abc123=="></head>
<body></body>
</html>`)

	token, err := ExtractAuthenticityToken(page)
	require.NoError(t, err)
	require.Equal(t, "abc123==", token)

	// pure function, same input yields the same token
	again, err := ExtractAuthenticityToken(page)
	require.NoError(t, err)
	require.Equal(t, token, again)
}

func TestExtractAuthenticityTokenMissingTag(t *testing.T) {
	_, err := ExtractAuthenticityToken([]byte(`<html><head></head><body></body></html>`))
	require.Error(t, err)
	require.Equal(t, KindParse, KindOf(err))
}

func TestExtractAuthenticityTokenEmptyValue(t *testing.T) {
	_, err := ExtractAuthenticityToken([]byte(
		`<html><head><meta name="csrf-token" content="  "></head></html>`,
	))
	require.Error(t, err)
	require.Equal(t, KindParse, KindOf(err))
}
