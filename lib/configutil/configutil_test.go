package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	BaseUrl   string  `json:"base_url"`
	RateLimit float64 `json:"rate_limit"`
	Cookies   string  `json:"cookies"`
}

func writeFile(t *testing.T, path, contents string) {
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scraper.json5")
	writeFile(t, path, `{
		// comments are allowed
		base_url: "https://letterboxd.com",
		rate_limit: 2,
	}`)

	config, err := ReadConfig[testConfig](path)
	require.NoError(t, err)

	diff := cmp.Diff(testConfig{
		BaseUrl:   "https://letterboxd.com",
		RateLimit: 2,
	}, config)
	require.Empty(t, diff)
}

func TestReadConfigLocalOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "scraper.json5"), `{
		base_url: "https://letterboxd.com",
		rate_limit: 2,
	}`)
	writeFile(t, filepath.Join(dir, "scraper.local.json5"), `{
		rate_limit: 0.5,
		cookies: "cookies.json",
	}`)

	config, err := ReadConfig[testConfig](filepath.Join(dir, "scraper.json5"))
	require.NoError(t, err)

	diff := cmp.Diff(testConfig{
		BaseUrl:   "https://letterboxd.com",
		RateLimit: 0.5,
		Cookies:   "cookies.json",
	}, config)
	require.Empty(t, diff)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "nope.json5"))
	require.True(t, os.IsNotExist(err))
}
