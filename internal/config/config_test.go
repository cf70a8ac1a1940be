package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("ignore: [legacy/]\n"))
	require.NoError(t, err)

	assert.Equal(t, "mist", cfg.LanguageID)
	assert.Equal(t, []string{".mist", ".mist.json"}, cfg.Extensions)
	assert.Equal(t, 64, cfg.CacheSize)
	assert.Equal(t, Log{Level: "info", Format: "text"}, cfg.Log)
	assert.Equal(t, []string{"legacy/"}, cfg.Ignore)
}

func TestParseOverrides(t *testing.T) {
	cfg, err := Parse([]byte(`
language_id: mist-template
extensions: [tpl, .mist]
cache_size: 8
log:
  level: DEBUG
  format: json
icons:
  text: "T"
`))
	require.NoError(t, err)

	assert.Equal(t, "mist-template", cfg.LanguageID)
	assert.Equal(t, []string{".tpl", ".mist"}, cfg.Extensions)
	assert.Equal(t, 8, cfg.CacheSize)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, map[string]string{"text": "T"}, cfg.Icons)
}

func TestParseRejectsInvalidValues(t *testing.T) {
	_, err := Parse([]byte("log: {level: loud}"))
	assert.ErrorContains(t, err, "unsupported log level")

	_, err = Parse([]byte("log: {format: xml}"))
	assert.ErrorContains(t, err, "unsupported log format")

	_, err = Parse([]byte("extensions: ['  ']"))
	assert.Error(t, err)

	_, err = Parse([]byte("cache_size: [1"))
	assert.Error(t, err)
}

func TestLoadExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache_size: 3\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.CacheSize)
	assert.Equal(t, path, cfg.Path)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")
}

func TestLoadFromWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Path)

	require.NoError(t, os.WriteFile(FileName, []byte("language_id: other\n"), 0o644))
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "other", cfg.LanguageID)
	assert.Equal(t, FileName, cfg.Path)
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Defaults().Marshal()
	require.NoError(t, err)
	cfg, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}
