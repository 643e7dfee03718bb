package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigYAMLRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.ServerURL = "https://chat.example.com"
	cfg.Theme = "light"

	if err := WriteConfig(tmpDir, cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}

	loaded, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}

	if loaded.ServerURL != "https://chat.example.com" {
		t.Errorf("ServerURL: got %q, want %q", loaded.ServerURL, "https://chat.example.com")
	}
	if loaded.Theme != "light" {
		t.Errorf("Theme: got %q, want %q", loaded.Theme, "light")
	}
	if loaded.TimeoutSeconds != 30 {
		t.Errorf("TimeoutSeconds: got %d, want 30", loaded.TimeoutSeconds)
	}
}

func TestReadConfigMissingFile(t *testing.T) {
	tmpDir := t.TempDir()

	if _, err := ReadConfig(tmpDir); err == nil {
		t.Fatal("ReadConfig on empty dir: expected error, got nil")
	}
}

func TestReadConfigPartialFile(t *testing.T) {
	// Older config files may lack newer fields; reading must not error.
	tmpDir := t.TempDir()
	old := `version: 1
server_url: http://localhost:5000
theme: dark
`
	if err := os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte(old), 0644); err != nil {
		t.Fatalf("writing old config: %v", err)
	}

	cfg, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed on old config: %v", err)
	}
	if cfg.HistoryLimit != 0 {
		t.Errorf("HistoryLimit: got %d, want zero value", cfg.HistoryLimit)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Theme != "dark" {
		t.Errorf("default Theme: got %q, want %q", cfg.Theme, "dark")
	}
	if cfg.HistoryLimit != 50 {
		t.Errorf("default HistoryLimit: got %d, want 50", cfg.HistoryLimit)
	}
}
