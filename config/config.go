package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Database configuration
	Database struct {
		// Driver selects the backing store: "sqlite" or "postgres"
		Driver string `env:"DB_DRIVER" envDefault:"sqlite"`

		// Path to the SQLite database file (sqlite driver only)
		Path string `env:"DB_PATH" envDefault:"database/boligdata.db"`

		Host     string `env:"DB_HOST" envDefault:"localhost"`
		Port     int    `env:"DB_PORT" envDefault:"5432"`
		Name     string `env:"DB_NAME" envDefault:"housing_db"`
		User     string `env:"DB_USER" envDefault:"postgres"`
		Password string `env:"DB_PASSWORD"`
		SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	}

	// Import orchestration configuration
	Import struct {
		// Number of concurrent fetch workers in parallel mode
		WorkerCount int `env:"IMPORT_WORKERS" envDefault:"12"`

		// Number of properties committed per transaction
		BatchSize int `env:"IMPORT_BATCH_SIZE" envDefault:"50"`

		// Delay between successive requests in sequential mode
		RequestDelay time.Duration `env:"IMPORT_REQUEST_DELAY" envDefault:"200ms"`

		// Timeout for a single API request
		RequestTimeout time.Duration `env:"IMPORT_REQUEST_TIMEOUT" envDefault:"10s"`

		// Emit a progress line every N processed properties
		ProgressInterval int `env:"IMPORT_PROGRESS_INTERVAL" envDefault:"25"`

		// Stop printing per-item error detail after this many errors
		MaxLoggedErrors int `env:"IMPORT_MAX_LOGGED_ERRORS" envDefault:"10"`
	}

	// Discovery (search pagination) configuration
	Discovery struct {
		// Results per search page; the source caps this at 50
		PerPage int `env:"DISCOVERY_PER_PAGE" envDefault:"50"`

		// Page ceiling per query segment before the source returns 400
		MaxPages int `env:"DISCOVERY_MAX_PAGES" envDefault:"200"`

		// Hit count above which a municipality is subdivided by zip code.
		// Kept under the source's 10,000 addressable-result ceiling.
		DrillDownThreshold int `env:"DISCOVERY_DRILLDOWN_THRESHOLD" envDefault:"9500"`

		// Consecutive empty pages before a segment is considered exhausted
		MaxEmptyPages int `env:"DISCOVERY_MAX_EMPTY_PAGES" envDefault:"3"`

		// Pages sampled when discovering zip codes for drill-down
		ZipSamplePages int `env:"DISCOVERY_ZIP_SAMPLE_PAGES" envDefault:"20"`

		// Delay between pagination requests
		PageDelay time.Duration `env:"DISCOVERY_PAGE_DELAY" envDefault:"100ms"`
	}

	// Scheduler configuration
	Scheduler struct {
		// Hour of day (0-23) for the full discovery+import run
		FullImportHour int `env:"SCHEDULE_FULL_IMPORT_HOUR" envDefault:"2"`

		// Hours between case refresh runs for open listings
		CaseRefreshEveryHours int `env:"SCHEDULE_CASE_REFRESH_HOURS" envDefault:"6"`
	}
}

func LoadConfig() (*Config, error) {
	// A missing .env is fine; variables may come from the environment directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate fails fast on configuration the run cannot recover from.
func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite":
	case "postgres":
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD environment variable not set")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if c.Import.WorkerCount < 1 {
		return fmt.Errorf("IMPORT_WORKERS must be at least 1")
	}
	if c.Import.BatchSize < 1 {
		return fmt.Errorf("IMPORT_BATCH_SIZE must be at least 1")
	}
	return nil
}
