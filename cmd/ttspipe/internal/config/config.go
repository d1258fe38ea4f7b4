// Package config provides the configuration file for the ttspipe CLI.
//
// Configuration is stored as YAML under os.UserConfigDir()/ttspipe/:
//
//	~/Library/Application Support/ttspipe/config.yaml   (macOS)
//	~/.config/ttspipe/config.yaml                       (Linux)
//	%AppData%/ttspipe/config.yaml                       (Windows)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

const (
	appDir     = "ttspipe"
	configFile = "config.yaml"
)

// Config holds the CLI configuration.
type Config struct {
	// APIKey authenticates against the speech API.
	APIKey string `yaml:"api_key,omitempty"`

	// BaseURL points at an OpenAI-compatible endpoint (optional).
	BaseURL string `yaml:"base_url,omitempty"`

	// Model is the default speech model.
	Model string `yaml:"model,omitempty"`

	// Voice is the default voice preset.
	Voice string `yaml:"voice,omitempty"`

	// DatasetDir is the local root of speaker-embedding datasets.
	DatasetDir string `yaml:"dataset_dir,omitempty"`

	// CacheDir is the BadgerDB directory for cached embedding records.
	CacheDir string `yaml:"cache_dir,omitempty"`

	path string
}

// Load reads the configuration from the default location, creating an
// empty file on first use.
func Load() (*Config, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine config directory: %w", err)
	}
	return LoadFrom(filepath.Join(base, appDir, configFile))
}

// LoadFrom reads the configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	cfg := &Config{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Save()
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.path = path
	return cfg, nil
}

// Save writes the configuration back to disk.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Path returns the config file path.
func (c *Config) Path() string { return c.path }

// Set assigns a named field. Known keys: api_key, base_url, model, voice,
// dataset_dir, cache_dir.
func (c *Config) Set(key, value string) error {
	switch key {
	case "api_key":
		c.APIKey = value
	case "base_url":
		c.BaseURL = value
	case "model":
		c.Model = value
	case "voice":
		c.Voice = value
	case "dataset_dir":
		c.DatasetDir = value
	case "cache_dir":
		c.CacheDir = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

// MaskAPIKey masks an API key for display.
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
