// Package config handles the global bibfetch configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/bibfetch/config.yml.
type GlobalConfig struct {
	Backends       []string `yaml:"backends,omitempty"`
	GrobidURL      string   `yaml:"grobid_url,omitempty"`
	CermineJar     string   `yaml:"cermine_jar,omitempty"`
	CermineURL     string   `yaml:"cermine_url,omitempty"`
	CrossrefMailto string   `yaml:"crossref_mailto,omitempty"`
	GoogleBooksKey string   `yaml:"google_books_key,omitempty"`
	CachePath      string   `yaml:"cache_path,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "bibfetch"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// DefaultBackends is the citation backend order used when the config file
// doesn't set one. The author-written arXiv source bibliography beats any
// extractor when it applies; structured extractors come next; plaintext is
// the last resort.
var DefaultBackends = []string{"arxiv", "grobid", "cermine", "pdfextract", "bbl", "bibtex", "plaintext"}

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/bibfetch/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	// Expand tilde in path-valued fields
	cfg.CermineJar = ExpandTilde(cfg.CermineJar)
	cfg.CachePath = ExpandTilde(cfg.CachePath)

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetConfigValue returns the environment variable value if set,
// falling back to the value from the config file.
func GetConfigValue(envKey, configValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return configValue
}

// GetBackends returns the configured citation backend order, or
// DefaultBackends when the config file doesn't set one.
func GetBackends() []string {
	cfg, _ := LoadGlobalConfig()
	if len(cfg.Backends) == 0 {
		return DefaultBackends
	}
	return cfg.Backends
}

// GetGrobidURL returns the Grobid server URL from env or global config.
func GetGrobidURL() string {
	cfg, _ := LoadGlobalConfig()
	return GetConfigValue("GROBID_URL", cfg.GrobidURL)
}

// GetCermineJar returns the CERMINE jar path from env or global config.
// When set, citation extraction runs the jar locally instead of calling
// the CERMINE web API.
func GetCermineJar() string {
	cfg, _ := LoadGlobalConfig()
	return GetConfigValue("CERMINE_JAR", cfg.CermineJar)
}

// GetCermineURL returns the CERMINE API base URL from env or global config.
func GetCermineURL() string {
	cfg, _ := LoadGlobalConfig()
	return GetConfigValue("CERMINE_URL", cfg.CermineURL)
}

// GetCrossrefMailto returns the contact address sent with CrossRef
// requests, from env or global config.
func GetCrossrefMailto() string {
	cfg, _ := LoadGlobalConfig()
	return GetConfigValue("CROSSREF_MAILTO", cfg.CrossrefMailto)
}

// GetGoogleBooksKey returns the Google Books API key from env or global config.
func GetGoogleBooksKey() string {
	cfg, _ := LoadGlobalConfig()
	return GetConfigValue("GOOGLE_BOOKS_KEY", cfg.GoogleBooksKey)
}

// GetCachePath returns the record cache location from env or global config.
// An empty string disables caching.
func GetCachePath() string {
	cfg, _ := LoadGlobalConfig()
	return GetConfigValue("BIBFETCH_CACHE", cfg.CachePath)
}

// HelpfulConfigMessage returns a tip for creating the global config file.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No config file found; defaults are in effect.

Tip: Create %s to set defaults:
  mkdir -p %s
  echo 'crossref_mailto: you@example.org' > %s`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}

// ExpandTilde expands a leading ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandTilde(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
