// Package config loads the moabot process configuration. Values come from
// three layers, weakest first: built-in defaults, an optional YAML file
// (MOABOT_CONFIG), and environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/moadev/moabot/common/environment"
)

// Config is the complete process configuration.
type Config struct {
	// ListenAddr is the HTTP listen address of the chat endpoint.
	ListenAddr string `yaml:"listen_addr"`

	// LedgerBaseURL is the root of the ledger service, without a trailing
	// slash. Required.
	LedgerBaseURL string `yaml:"ledger_base_url"`

	// AuditDBPath is the SQLite file for the conversation audit trail.
	// Empty disables auditing.
	AuditDBPath string `yaml:"audit_db_path"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	Intent IntentConfig `yaml:"intent"`
	Matrix MatrixConfig `yaml:"matrix"`
}

// IntentConfig configures the language-model intent resolver.
type IntentConfig struct {
	// APIKey authenticates against the model API. Required.
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// MatrixConfig configures the optional Matrix front-end. The bot runs
// HTTP-only when Homeserver is empty.
type MatrixConfig struct {
	Homeserver  string `yaml:"homeserver"`
	UserID      string `yaml:"user_id"`
	AccessToken string `yaml:"access_token"`
	// SyncDBPath is the SQLite file for the client's sync state.
	SyncDBPath string `yaml:"sync_db_path"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		ListenAddr:  ":8090",
		AuditDBPath: "moabot.db",
		LogLevel:    "info",
		LogFormat:   "text",
		Intent: IntentConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
			Timeout: 30 * time.Second,
		},
		Matrix: MatrixConfig{
			SyncDBPath: "moabot-sync.db",
		},
	}
}

// Load assembles the configuration from defaults, the optional YAML file
// named by MOABOT_CONFIG, and environment variables, then validates it.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("MOABOT_CONFIG"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides fields from environment variables. Environment always
// wins over the file.
func (c *Config) applyEnv() {
	c.ListenAddr = environment.StringOr("MOABOT_LISTEN_ADDR", c.ListenAddr)
	c.LedgerBaseURL = environment.StringOr("MOABOT_LEDGER_URL", c.LedgerBaseURL)
	c.AuditDBPath = environment.StringOr("MOABOT_AUDIT_DB", c.AuditDBPath)
	c.LogLevel = environment.StringOr("MOABOT_LOG_LEVEL", c.LogLevel)
	c.LogFormat = environment.StringOr("MOABOT_LOG_FORMAT", c.LogFormat)

	c.Intent.APIKey = environment.StringOr("OPENAI_API_KEY", c.Intent.APIKey)
	c.Intent.BaseURL = environment.StringOr("OPENAI_BASE_URL", c.Intent.BaseURL)
	c.Intent.Model = environment.StringOr("OPENAI_MODEL", c.Intent.Model)
	c.Intent.Timeout = environment.DurationOr("OPENAI_TIMEOUT", c.Intent.Timeout)

	c.Matrix.Homeserver = environment.StringOr("MOABOT_MATRIX_HOMESERVER", c.Matrix.Homeserver)
	c.Matrix.UserID = environment.StringOr("MOABOT_MATRIX_USER_ID", c.Matrix.UserID)
	c.Matrix.AccessToken = environment.StringOr("MOABOT_MATRIX_TOKEN", c.Matrix.AccessToken)
	c.Matrix.SyncDBPath = environment.StringOr("MOABOT_MATRIX_SYNC_DB", c.Matrix.SyncDBPath)
}

// Validate checks that the configuration can actually start a process.
func (c *Config) Validate() error {
	if c.LedgerBaseURL == "" {
		return fmt.Errorf("config: ledger base URL is required (MOABOT_LEDGER_URL)")
	}
	if c.Intent.APIKey == "" {
		return fmt.Errorf("config: intent resolver API key is required (OPENAI_API_KEY)")
	}
	if c.MatrixEnabled() {
		if c.Matrix.UserID == "" || c.Matrix.AccessToken == "" {
			return fmt.Errorf("config: matrix front-end needs user id and access token")
		}
	}
	return nil
}

// MatrixEnabled reports whether the Matrix front-end should start.
func (c *Config) MatrixEnabled() bool {
	return c.Matrix.Homeserver != ""
}
