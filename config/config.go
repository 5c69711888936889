package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Sweeper    SweeperConfig    `yaml:"sweeper"`
	Reports    ReportsConfig    `yaml:"reports"`
	Billing    BillingConfig    `yaml:"billing"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// CacheTTL returns the report cache lifetime.
func (c ServerConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// SweeperConfig controls the periodic maintenance loop.
type SweeperConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"` // Ignored by YAML parser
}

// ReportsConfig tunes the reporting aggregator.
type ReportsConfig struct {
	Timezone              string `yaml:"timezone"`
	WeekStart             string `yaml:"week_start"`
	TopCustomers          int    `yaml:"top_customers"`
	UtilizationWindowDays int    `yaml:"utilization_window_days"`
	DailySeriesDays       int    `yaml:"daily_series_days"`
}

// Location resolves the configured timezone, falling back to UTC.
func (r ReportsConfig) Location() *time.Location {
	if r.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		log.Printf("Warning: invalid reports.timezone %q: %v. Using UTC.", r.Timezone, err)
		return time.UTC
	}
	return loc
}

// Weekday parses week_start; an unknown value means Monday.
func (r ReportsConfig) Weekday() time.Weekday {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), r.WeekStart) {
			return d
		}
	}
	return time.Monday
}

// BillingConfig seeds the stored settings when none have been saved yet.
type BillingConfig struct {
	Currency       string `yaml:"currency"`
	CurrencySymbol string `yaml:"currency_symbol"`
	DueDays        int    `yaml:"due_days"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"`
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogLevel               string `yaml:"log_level"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() error {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}

	switch cfg.Database.Driver {
	case "":
		cfg.Database.Driver = "sqlite"
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database.driver %q", cfg.Database.Driver)
	}
	if cfg.Database.DSN == "" {
		if cfg.Database.Driver != "sqlite" {
			return fmt.Errorf("database.dsn is required for driver %q", cfg.Database.Driver)
		}
		cfg.Database.DSN = "venue.db"
	}
	if cfg.Database.Driver == "sqlite" {
		// SQLite serializes writers; one connection avoids "database is locked".
		cfg.Database.MaxOpenConns = 1
		cfg.Database.MaxIdleConns = 1
	}
	if cfg.Database.ConnMaxLifetimeMinutes <= 0 {
		cfg.Database.ConnMaxLifetimeMinutes = 30
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	if cfg.Sweeper.IntervalSeconds <= 0 {
		cfg.Sweeper.IntervalSeconds = 300
	}
	cfg.Sweeper.Interval = time.Duration(cfg.Sweeper.IntervalSeconds) * time.Second

	if cfg.Reports.TopCustomers <= 0 {
		cfg.Reports.TopCustomers = 5
	}
	if cfg.Reports.UtilizationWindowDays <= 0 {
		cfg.Reports.UtilizationWindowDays = 7
	}
	if cfg.Reports.DailySeriesDays <= 0 {
		cfg.Reports.DailySeriesDays = 30
	}

	if cfg.Billing.Currency == "" {
		cfg.Billing.Currency = "EGP"
	}
	if cfg.Billing.CurrencySymbol == "" {
		cfg.Billing.CurrencySymbol = cfg.Billing.Currency
	}
	if cfg.Billing.DueDays < 0 {
		cfg.Billing.DueDays = 0
	}
	return nil
}
