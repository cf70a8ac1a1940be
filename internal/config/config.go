// Package config loads mistlens settings from YAML.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// FileName is the project-level config file looked up in the working
// directory.
const FileName = ".mistlens.yaml"

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config holds every setting. Zero values are replaced by Defaults.
type Config struct {
	LanguageID string            `yaml:"language_id"`
	Extensions []string          `yaml:"extensions"`
	Ignore     []string          `yaml:"ignore,omitempty"`
	CacheSize  int               `yaml:"cache_size"`
	Log        Log               `yaml:"log"`
	Icons      map[string]string `yaml:"icons,omitempty"`

	// Path is the file the config was read from, "" for defaults.
	Path string `yaml:"-"`
}

func Defaults() *Config {
	return &Config{
		LanguageID: "mist",
		Extensions: []string{".mist", ".mist.json"},
		CacheSize:  64,
		Log:        Log{Level: "info", Format: "text"},
	}
}

// Load reads path, or the first of the default locations that exists when
// path is empty. No file at a default location yields Defaults.
func Load(path string) (*Config, error) {
	if path != "" {
		return read(path)
	}
	for _, candidate := range searchPaths() {
		if _, err := os.Stat(candidate); err == nil {
			return read(candidate)
		}
	}
	return Defaults(), nil
}

func searchPaths() []string {
	paths := []string{FileName}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "mistlens", "config.yaml"))
	}
	return paths
}

func read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes YAML on top of Defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	def := Defaults()
	c.LanguageID = strings.TrimSpace(c.LanguageID)
	if c.LanguageID == "" {
		c.LanguageID = def.LanguageID
	}
	if len(c.Extensions) == 0 {
		c.Extensions = def.Extensions
	}
	for i, ext := range c.Extensions {
		ext = strings.TrimSpace(ext)
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Extensions[i] = ext
	}
	if c.CacheSize <= 0 {
		c.CacheSize = def.CacheSize
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
}

func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.Errorf("unsupported log level %q (supported: debug, info, warn, error)", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.Errorf("unsupported log format %q (supported: text, json)", c.Log.Format)
	}
	for _, ext := range c.Extensions {
		if ext == "" {
			return errors.New("extensions must not contain empty entries")
		}
	}
	return nil
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Errorf("failed to encode config: %w", err)
	}
	return data, nil
}
