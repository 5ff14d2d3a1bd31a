package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/promptgram/promptgram/internal/config"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := []byte(`telegram:
  api_id: 12345
  api_hash: "abcdef0123456789"
log_level: debug
`)
	if err := os.WriteFile(cfgPath, content, 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Telegram.APIID != 12345 {
		t.Errorf("APIID = %d, want 12345", cfg.Telegram.APIID)
	}
	if cfg.Telegram.APIHash != "abcdef0123456789" {
		t.Errorf("APIHash = %q, want %q", cfg.Telegram.APIHash, "abcdef0123456789")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if !cfg.HasCredentials() {
		t.Error("HasCredentials() = false, want true")
	}
}

func TestLoadConfig_MissingFileIsEmpty(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load() error for missing file: %v", err)
	}
	if cfg.HasCredentials() {
		t.Error("HasCredentials() = true for empty config")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want default info", cfg.LogLevel)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("PROMPTGRAM_API_ID", "777")
	t.Setenv("PROMPTGRAM_API_HASH", "fromenv")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Telegram.APIID != 777 {
		t.Errorf("APIID = %d, want 777", cfg.Telegram.APIID)
	}
	if cfg.Telegram.APIHash != "fromenv" {
		t.Errorf("APIHash = %q, want fromenv", cfg.Telegram.APIHash)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	in := &config.Config{LogLevel: "warn"}
	in.Telegram.APIID = 42
	in.Telegram.APIHash = "deadbeef"

	if err := config.Save(cfgPath, in); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	out, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if out.Telegram.APIID != 42 || out.Telegram.APIHash != "deadbeef" {
		t.Errorf("round trip = %+v", out.Telegram)
	}
}

func TestConfigDir(t *testing.T) {
	dir := config.Dir()
	if dir == "" {
		t.Error("Dir() returned empty string")
	}
	if config.SessionFile() == "" || config.HandoffFile() == "" {
		t.Error("derived paths empty")
	}
}
