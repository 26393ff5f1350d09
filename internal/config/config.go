// Package config loads engine settings from .issuepilot/config.yaml,
// falling back to defaults when the file is absent.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigDir is the per-project directory holding the config file, the
// relational store and the embedding index.
const ConfigDir = ".issuepilot"

// File represents the structure of .issuepilot/config.yaml
type File struct {
	// User is the default user id for briefings and feedback
	User string `yaml:"user"`

	Database   DatabaseConfig   `yaml:"database"`
	Tracker    TrackerConfig    `yaml:"tracker"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Briefing   BriefingConfig   `yaml:"briefing"`
}

// DatabaseConfig defines where the relational store lives.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// TrackerConfig defines upstream tracker caching.
type TrackerConfig struct {
	CacheTTL string `yaml:"cache_ttl"` // Duration string like "5m", "1h"
}

// EmbeddingsConfig defines the embedding index and its embedder.
type EmbeddingsConfig struct {
	IndexPath         string `yaml:"index_path"`
	Model             string `yaml:"model"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
}

// BriefingConfig defines briefing generation settings.
type BriefingConfig struct {
	WindowDays int  `yaml:"window_days"`
	Limit      int  `yaml:"limit"`
	Summarize  bool `yaml:"summarize"`
}

// Config is the resolved runtime configuration.
type Config struct {
	User              string
	DBPath            string
	IndexPath         string
	CacheTTL          time.Duration
	EmbeddingModel    string
	RequestsPerMinute int
	WindowDays        int
	BriefingLimit     int
	Summarize         bool
}

// DefaultConfig returns the default configuration rooted at projectRoot.
func DefaultConfig(projectRoot string) *Config {
	return &Config{
		User:              "",
		DBPath:            filepath.Join(projectRoot, ConfigDir, "issuepilot.db"),
		IndexPath:         filepath.Join(projectRoot, ConfigDir, "index.db"),
		CacheTTL:          5 * time.Minute,
		EmbeddingModel:    "",
		RequestsPerMinute: 60,
		WindowDays:        30,
		BriefingLimit:     10,
		Summarize:         false,
	}
}

// Load reads .issuepilot/config.yaml under projectRoot. A missing file
// yields the defaults; a malformed file is an error.
func Load(projectRoot string) (*Config, error) {
	cfg := DefaultConfig(projectRoot)

	configPath := filepath.Join(projectRoot, ConfigDir, "config.yaml")
	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if file.User != "" {
		cfg.User = file.User
	}
	if file.Database.Path != "" {
		cfg.DBPath = resolvePath(projectRoot, file.Database.Path)
	}
	if file.Embeddings.IndexPath != "" {
		cfg.IndexPath = resolvePath(projectRoot, file.Embeddings.IndexPath)
	}
	if file.Embeddings.Model != "" {
		cfg.EmbeddingModel = file.Embeddings.Model
	}
	if file.Embeddings.RequestsPerMinute > 0 {
		cfg.RequestsPerMinute = file.Embeddings.RequestsPerMinute
	}
	if file.Tracker.CacheTTL != "" {
		ttl, err := time.ParseDuration(file.Tracker.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("invalid tracker.cache_ttl %q: %w", file.Tracker.CacheTTL, err)
		}
		cfg.CacheTTL = ttl
	}
	if file.Briefing.WindowDays > 0 {
		cfg.WindowDays = file.Briefing.WindowDays
	}
	if file.Briefing.Limit > 0 {
		cfg.BriefingLimit = file.Briefing.Limit
	}
	cfg.Summarize = file.Briefing.Summarize

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration has valid values
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("database path is required")
	}
	if c.IndexPath == "" {
		return fmt.Errorf("index path is required")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache_ttl must be positive (got %v)", c.CacheTTL)
	}
	if c.RequestsPerMinute <= 0 {
		return fmt.Errorf("requests_per_minute must be positive (got %d)", c.RequestsPerMinute)
	}
	if c.WindowDays <= 0 {
		return fmt.Errorf("window_days must be positive (got %d)", c.WindowDays)
	}
	return nil
}

func resolvePath(projectRoot, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectRoot, path)
}
