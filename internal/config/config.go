package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the terminal feed engine.
type Config struct {
	Backend Backend    `yaml:"backend"`
	Feed    FeedConfig `yaml:"feed"`
	Server  Server     `yaml:"server"`
	Storage Storage    `yaml:"storage"`
	Logging Logging    `yaml:"logging"`
}

// Backend holds endpoints and credentials for the trading backend API.
type Backend struct {
	BaseURL         string `yaml:"base_url"`
	StreamURL       string `yaml:"stream_url"`
	AccessToken     string `yaml:"access_token"`
	RateLimitPerMin int    `yaml:"rate_limit_per_min"`
}

// FeedConfig controls live-quote feed behaviour.
type FeedConfig struct {
	PollIntervalSec int `yaml:"poll_interval_sec"`
	DebounceMs      int `yaml:"debounce_ms"`
	MaxVisible      int `yaml:"max_visible"`
}

// Server holds the local API listener configuration.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Storage holds paths for optional local persistence. Empty values disable
// the corresponding store.
type Storage struct {
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, applies defaults, and then applies environment variable
// overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyDefaults fills zero-valued fields with the values the feed engine
// assumes when the config file leaves them out.
func applyDefaults(cfg *Config) {
	if cfg.Feed.PollIntervalSec <= 0 {
		cfg.Feed.PollIntervalSec = 5
	}
	if cfg.Feed.DebounceMs <= 0 {
		cfg.Feed.DebounceMs = 250
	}
	if cfg.Feed.MaxVisible <= 0 {
		cfg.Feed.MaxVisible = 50
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8091
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BACKEND_BASE_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}

	if v := os.Getenv("BACKEND_STREAM_URL"); v != "" {
		cfg.Backend.StreamURL = v
	}

	if v := os.Getenv("BACKEND_ACCESS_TOKEN"); v != "" {
		cfg.Backend.AccessToken = v
	}

	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}

	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
