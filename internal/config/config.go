// Package config loads and saves the finanzas.yaml settings file: the
// currency/timezone defaults the core consumes plus the collaborator
// settings (local path, remote backend and file id).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/finanzas-dev/finanzas/internal/document"
)

// Config is the top-level finanzas.yaml configuration.
type Config struct {
	Currency  string       `yaml:"currency"`
	Timezone  string       `yaml:"timezone"`
	LocalPath string       `yaml:"local_path"`
	Remote    RemoteConfig `yaml:"remote"`

	// LastSyncAt records when the last successful sync finished,
	// RFC 3339. Informational only.
	LastSyncAt string `yaml:"last_sync_at,omitempty"`
}

// RemoteConfig selects and addresses the remote backend.
type RemoteConfig struct {
	// Backend is "drive" or "gcs".
	Backend string `yaml:"backend"`
	// FileID is a Drive file id or a gs://bucket/path URI.
	FileID string `yaml:"file_id"`
	// CheckVersion makes uploads fail with a conflict when the remote
	// moved between download and upload, instead of last-writer-wins.
	CheckVersion bool `yaml:"check_version,omitempty"`
}

// Load reads a finanzas.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes the Config back to disk.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns the configuration a fresh install starts from.
func Default() *Config {
	return &Config{
		Currency:  "MXN",
		Timezone:  "America/Mexico_City",
		LocalPath: "finanzas.json",
		Remote: RemoteConfig{
			Backend: "drive",
		},
	}
}

// Defaults exposes the subset of settings the document model consumes.
func (c *Config) Defaults() document.Defaults {
	return document.Defaults{Currency: c.Currency, Timezone: c.Timezone}
}
