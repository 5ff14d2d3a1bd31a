package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrNoCredentials is returned when API credentials have not been supplied
// through the config file, the environment, or the login screen yet.
var ErrNoCredentials = fmt.Errorf("telegram API credentials not set")

type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	LogLevel string         `yaml:"log_level"`
}

type TelegramConfig struct {
	APIID   int    `yaml:"api_id"`
	APIHash string `yaml:"api_hash"`
}

// HasCredentials reports whether both API identifiers are present.
func (c *Config) HasCredentials() bool {
	return c.Telegram.APIID != 0 && c.Telegram.APIHash != ""
}

func Dir() string {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		cfgDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(cfgDir, "promptgram")
}

// SessionFile is where the serialized Telegram session token lives.
func SessionFile() string {
	return filepath.Join(Dir(), "session.json")
}

// HandoffFile is where the selected-message set is parked between the
// picker and the composer.
func HandoffFile() string {
	return filepath.Join(Dir(), "selected_messages.json")
}

// Load reads the config file and applies environment overrides. A missing
// file is not an error: credentials can be supplied via the login screen
// and persisted with Save.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case os.IsNotExist(err):
		// fall through to env overrides
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	applyEnv(&cfg)

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return &cfg, nil
}

// Save writes the config file with 0600 permissions, creating the
// directory if needed. Called when the login flow persists credentials.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// applyEnv lets PROMPTGRAM_API_ID / PROMPTGRAM_API_HASH (optionally from a
// .env file) override the config file.
func applyEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("PROMPTGRAM_API_ID"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			cfg.Telegram.APIID = id
		}
	}
	if v := os.Getenv("PROMPTGRAM_API_HASH"); v != "" {
		cfg.Telegram.APIHash = v
	}
	if v := os.Getenv("PROMPTGRAM_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
