// Package config handles TOML settings loading with sensible defaults,
// plus the environment credentials the demo needs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the top-level configuration for eosim. Credentials are not
// part of it; they come from the environment only.
type Config struct {
	Feed     FeedConfig     `toml:"feed"`
	BigPanda BigPandaConfig `toml:"bigpanda"`
	OpenAI   OpenAIConfig   `toml:"openai"`
	Ledger   LedgerConfig   `toml:"ledger"`
	History  HistoryConfig  `toml:"history"`
	Log      LogConfig      `toml:"log"`
}

// FeedConfig controls the external event feed.
type FeedConfig struct {
	URL         string   `toml:"url"`
	Limit       int      `toml:"limit"`
	Timeout     Duration `toml:"timeout"`
	MaxEventAge Duration `toml:"max_event_age"`
}

// BigPandaConfig controls the OIM alert delivery target.
type BigPandaConfig struct {
	AlertsURL        string   `toml:"alerts_url"`
	OIMConfigURL     string   `toml:"oim_config_url"`
	SendTimeout      Duration `toml:"send_timeout"`
	ConfigureTimeout Duration `toml:"configure_timeout"`
}

// OpenAIConfig controls alert generation.
type OpenAIConfig struct {
	Model   string   `toml:"model"`
	BaseURL string   `toml:"base_url"`
	Timeout Duration `toml:"timeout"`
}

// LedgerConfig controls the sent-alert tracking file.
type LedgerConfig struct {
	Path string `toml:"path"`
}

// HistoryConfig controls the delivery history database. An empty path
// resolves to the user data directory at startup.
type HistoryConfig struct {
	Path      string   `toml:"path"`
	Retention Duration `toml:"retention"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration wraps time.Duration for TOML string parsing (e.g. "15s", "15h").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns a Config with the stock demo endpoints and timeouts.
func Default() *Config {
	return &Config{
		Feed: FeedConfig{
			URL:         "https://publicobservability.io/summary/current",
			Limit:       1000,
			Timeout:     Duration{30 * time.Second},
			MaxEventAge: Duration{15 * time.Hour},
		},
		BigPanda: BigPandaConfig{
			AlertsURL:        "https://integrations.bigpanda.io/oim/api/alerts",
			OIMConfigURL:     "https://integrations.bigpanda.io/configurations/alerts/oim",
			SendTimeout:      Duration{15 * time.Second},
			ConfigureTimeout: Duration{20 * time.Second},
		},
		OpenAI: OpenAIConfig{
			Model:   "gpt-5-mini",
			BaseURL: "https://api.openai.com/v1",
			Timeout: Duration{2 * time.Minute},
		},
		Ledger: LedgerConfig{
			Path: ".demo_sent_alerts.json",
		},
		History: HistoryConfig{
			Retention: Duration{90 * 24 * time.Hour},
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "eosim", "config.toml")
}

// Load reads configuration from the given path, falling back to defaults
// for any unset fields. If the file does not exist, returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// ApplyEnv applies the supported environment overrides on top of the
// file settings.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("BIGPANDA_ALERTS_URL"); v != "" {
		c.BigPanda.AlertsURL = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.OpenAI.Model = v
	}
}
