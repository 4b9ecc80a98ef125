package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	BaseUrl    string `json:"base_url"`
	MaxRetries int    `json:"max_retries"`
}

func TestReadConfigMergesLocalOverride(t *testing.T) {
	dir := t.TempDir()

	err := os.WriteFile(
		filepath.Join(dir, "misisid.json5"),
		[]byte(`{base_url: "https://lk.misis.ru", max_retries: 3}`),
		0600,
	)
	require.NoError(t, err)
	err = os.WriteFile(
		filepath.Join(dir, "misisid.local.json5"),
		[]byte(`{max_retries: 5}`),
		0600,
	)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "misisid.json5"))
	require.NoError(t, err)
	require.Equal(t, "https://lk.misis.ru", cfg.BaseUrl)
	require.Equal(t, 5, cfg.MaxRetries)
}

func TestReadConfigLocalOnly(t *testing.T) {
	dir := t.TempDir()

	err := os.WriteFile(
		filepath.Join(dir, "misisid.local.json5"),
		[]byte(`{base_url: "http://127.0.0.1:8080"}`),
		0600,
	)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "misisid.json5"))
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:8080", cfg.BaseUrl)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "misisid.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
