package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeCaption(t *testing.T) {
	require.Equal(t, "Форма обучения:", NormalizeCaption("  Форма \n\t обучения:  "))
	require.Equal(t, "", NormalizeCaption(" \n\t "))
}

func TestMatchCaption(t *testing.T) {
	require.True(t, MatchCaption("\n  Форма   обучения: ", "Форма обучения:"))
	require.True(t, MatchCaption("Форма обучения: Очная", "Форма обучения:"))
	require.False(t, MatchCaption("Форма финансирования:", "Форма обучения:"))
}
