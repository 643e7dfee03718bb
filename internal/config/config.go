// Package config handles reading and writing the quill client config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for config.yaml.
type Config struct {
	Version        int    `yaml:"version"`
	ServerURL      string `yaml:"server_url"`
	Theme          string `yaml:"theme"`           // "dark" | "light"
	TimeoutSeconds int    `yaml:"timeout_seconds"` // per-request HTTP timeout
	HistoryLimit   int    `yaml:"history_limit"`   // max conversations fetched for the sidebar
}

const configDir = "quill"
const configFile = "config.yaml"

// DefaultDir returns the directory that holds the config file, the session
// store, and the event log. Respects XDG_CONFIG_HOME when set.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config directory: %w", err)
	}
	return filepath.Join(base, configDir), nil
}

// ReadConfig reads config.yaml from the given directory.
// Returns an error if the file is not found or YAML is malformed.
func ReadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, configFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// WriteConfig writes cfg to config.yaml in the given directory.
// Creates the directory if it does not exist.
func WriteConfig(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	path := filepath.Join(dir, configFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:        1,
		ServerURL:      "http://localhost:5000",
		Theme:          "dark",
		TimeoutSeconds: 30,
		HistoryLimit:   50,
	}
}
