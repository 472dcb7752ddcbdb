package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName               string        `mapstructure:"app_name"`
	Env                   string        `mapstructure:"app_env"`
	LogLevel              string        `mapstructure:"log_level"`
	BaseURL               string        `mapstructure:"base_url"`
	RequestTimeoutSeconds int64         `mapstructure:"request_timeout_seconds"`
	RequestTimeout        time.Duration `mapstructure:"-"`
	NotifyReads           bool          `mapstructure:"notify_reads"`
	LegacyDelete          bool          `mapstructure:"legacy_delete"`
	ErrorContext          string        `mapstructure:"error_context"`
	SinksFile             string        `mapstructure:"sinks_file"`

	LedgerType            string        `mapstructure:"ledger_type"`
	LedgerPath            string        `mapstructure:"ledger_path"`
	LedgerTTLSeconds      int64         `mapstructure:"ledger_ttl_seconds"`
	LedgerCleanupSeconds  int64         `mapstructure:"ledger_cleanup_interval_seconds"`
	LedgerTTL             time.Duration `mapstructure:"-"`
	LedgerCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "samvad-http-facade")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("base_url", "")
	v.SetDefault("request_timeout_seconds", 30)
	v.SetDefault("notify_reads", false)
	v.SetDefault("legacy_delete", false)
	v.SetDefault("error_context", "data service")
	v.SetDefault("sinks_file", "")
	v.SetDefault("ledger_type", "none")
	v.SetDefault("ledger_path", "./data/ledger.db")
	v.SetDefault("ledger_ttl_seconds", int64((24*time.Hour)/time.Second))
	v.SetDefault("ledger_cleanup_interval_seconds", int64(time.Hour/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) finalize() error {
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)

	if cfg.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid request_timeout_seconds (must be positive seconds)")
	}
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second

	if cfg.LedgerTTLSeconds <= 0 {
		return fmt.Errorf("invalid ledger_ttl_seconds (must be positive seconds)")
	}
	if cfg.LedgerCleanupSeconds <= 0 {
		return fmt.Errorf("invalid ledger_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.LedgerTTL = time.Duration(cfg.LedgerTTLSeconds) * time.Second
	cfg.LedgerCleanupInterval = time.Duration(cfg.LedgerCleanupSeconds) * time.Second

	return nil
}

// BaseURLSource resolves the base address for every request. It looks at the
// BASE_URL environment variable on each call and falls back to the loaded value.
type BaseURLSource struct {
	fallback string
}

// NewBaseURLSource returns a source that falls back to cfg.BaseURL.
func NewBaseURLSource(cfg *Config) *BaseURLSource {
	if cfg == nil {
		return &BaseURLSource{}
	}
	return &BaseURLSource{fallback: cfg.BaseURL}
}

// BaseURL returns the current base address.
func (s *BaseURLSource) BaseURL() string {
	if v, ok := os.LookupEnv("BASE_URL"); ok {
		return strings.TrimSpace(v)
	}
	if s == nil {
		return ""
	}
	return s.fallback
}
