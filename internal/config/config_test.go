package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadhunt-engine/internal/config"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, "serpapi", cfg.Search.Provider)
	assert.Equal(t, "de", cfg.Search.Locale)
	assert.InDelta(t, 0.6, cfg.Detection.Threshold, 1e-9)
	assert.Equal(t, config.DefaultContactPaths, cfg.Contact.Paths)
	assert.Equal(t, 10, cfg.Discovery.DefaultNum)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	writeFile(t, path, `
app:
  port: 9000
search:
  locale: en
contact:
  paths: [/kontakt]
`)

	t.Setenv("SERPAPI_KEY", " secret ")
	t.Setenv("LEADHUNT_SEARCH_ENGINE", "bing")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.App.Port)
	assert.Equal(t, "en", cfg.Search.Locale)
	assert.Equal(t, "bing", cfg.Search.Engine)
	assert.Equal(t, "secret", cfg.Search.APIKey)
	assert.Equal(t, []string{"/kontakt"}, cfg.Contact.Paths)
	// untouched keys keep defaults
	assert.Equal(t, "serpapi", cfg.Search.Provider)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestNormalizeAndValidate(t *testing.T) {
	cfg := config.Default()
	cfg.Discovery.Blocklist = []string{" Facebook.com ", "facebook.com", ""}
	cfg.Contact.Paths = []string{"impressum"}
	cfg.Search.Provider = "Bing"

	out, vr := config.NormalizeAndValidate(cfg)

	assert.Equal(t, []string{"facebook.com"}, out.Discovery.Blocklist)
	assert.False(t, vr.OK())
	assert.Len(t, vr.Errors, 2)
	assert.Error(t, config.Validate(cfg))
}

func TestSaveAtomic_NeverWritesAPIKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	writeFile(t, path, "app:\n  port: 1\n")

	cfg := config.Default()
	cfg.Search.APIKey = "do-not-persist"
	require.NoError(t, config.SaveAtomic(path, cfg))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "do-not-persist")
	assert.FileExists(t, path+".bak")
}

func TestEnsureUserConfig(t *testing.T) {
	dir := t.TempDir()

	// no default file: built-in defaults are written
	p, err := config.EnsureUserConfig(dir, filepath.Join(dir, "missing.yml"))
	require.NoError(t, err)
	assert.FileExists(t, p)

	cfg, err := config.Load(p)
	require.NoError(t, err)
	assert.Equal(t, config.Default().App.Port, cfg.App.Port)
}

func TestOverlayBlocklist(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()

	require.NoError(t, config.OverlayBlocklist(&cfg, filepath.Join(dir, "missing.yml")))
	assert.Empty(t, cfg.Discovery.Blocklist)

	path := filepath.Join(dir, "blocklist.yml")
	writeFile(t, path, "domains:\n  - yelp.de\n  - gelbeseiten.de\n")
	require.NoError(t, config.OverlayBlocklist(&cfg, path))
	assert.Equal(t, []string{"yelp.de", "gelbeseiten.de"}, cfg.Discovery.Blocklist)

	writeFile(t, path, "domains: [unclosed\n")
	assert.Error(t, config.OverlayBlocklist(&cfg, path))
}

func TestEnsureUserConfig_SeedsFromTemplateOnce(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "template.yml")
	writeFile(t, tmpl, "app:\n  port: 9123\n")

	p, err := config.EnsureUserConfig(dir, tmpl)
	require.NoError(t, err)
	cfg, err := config.Load(p)
	require.NoError(t, err)
	assert.Equal(t, 9123, cfg.App.Port)

	// an existing user file wins over a changed template
	writeFile(t, tmpl, "app:\n  port: 9999\n")
	_, err = config.EnsureUserConfig(dir, tmpl)
	require.NoError(t, err)
	cfg, err = config.Load(p)
	require.NoError(t, err)
	assert.Equal(t, 9123, cfg.App.Port)
}

func TestEnsureUserConfig_BrokenTemplateFallsBack(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "template.yml")
	writeFile(t, tmpl, "- a list\n- not a mapping\n")

	p, err := config.EnsureUserConfig(dir, tmpl)
	require.NoError(t, err)
	cfg, err := config.Load(p)
	require.NoError(t, err)
	assert.Equal(t, config.Default().App.Port, cfg.App.Port)
}
