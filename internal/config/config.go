package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Database holds the Postgres connection and pool settings.
type Database struct {
	DBURL             string `envconfig:"DB_URL"`
	DBMaxConns        int    `envconfig:"DB_MAX_CONNS" default:"20"`
	DBMinConns        int    `envconfig:"DB_MIN_CONNS" default:"2"`
	DBMaxIdleSecs     int    `envconfig:"DB_MAX_CONN_IDLE_SECS" default:"300"`
	DBMaxLifeSecs     int    `envconfig:"DB_MAX_CONN_LIFETIME_SECS" default:"3600"`
	DBConnTimeoutSecs int    `envconfig:"DB_CONN_TIMEOUT_SECS" default:"10"`
	DBStatementCache  int    `envconfig:"DB_STATEMENT_CACHE_CAPACITY" default:"256"`
}

// Log selects the log level and encoding.
type Log struct {
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

// Config captures all server runtime configuration derived from environment variables.
type Config struct {
	Database
	Log

	Port             string  `envconfig:"PORT" default:"8080"`
	AuthToken        string  `envconfig:"AUTH_TOKEN"`
	ReadTimeoutSecs  int     `envconfig:"SERVER_READ_TIMEOUT" default:"15"`
	WriteTimeoutSecs int     `envconfig:"SERVER_WRITE_TIMEOUT" default:"15"`
	IdleTimeoutSecs  int     `envconfig:"SERVER_IDLE_TIMEOUT" default:"60"`
	RatingMin        int     `envconfig:"RATING_MIN" default:"1"`
	RatingMax        int     `envconfig:"RATING_MAX" default:"5"`
	RateLimitRPS     float64 `envconfig:"RATE_LIMIT_RPS" default:"5"`
	RateLimitBurst   int     `envconfig:"RATE_LIMIT_BURST" default:"10"`
}

// ClientConfig configures the rating submitter CLI.
type ClientConfig struct {
	Log

	RatingsURL         string `envconfig:"RATINGS_URL"`
	RatingsTimeoutSecs int    `envconfig:"RATINGS_TIMEOUT_SECS" default:"5"`
	RaterID            string `envconfig:"RATER_ID"`
}

// Load reads server configuration from the environment (and an optional .env
// file), applying defaults and validation.
func Load() (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.AuthToken == "" {
		return Config{}, fmt.Errorf("AUTH_TOKEN is required")
	}
	if err := cfg.Database.validate(); err != nil {
		return Config{}, err
	}
	if err := cfg.Log.validate(); err != nil {
		return Config{}, err
	}
	// ratings.value is a Postgres integer column.
	if cfg.RatingMin < math.MinInt32 || cfg.RatingMin > math.MaxInt32 {
		return Config{}, fmt.Errorf("RATING_MIN must fit in 32 bits")
	}
	if cfg.RatingMax < math.MinInt32 || cfg.RatingMax > math.MaxInt32 {
		return Config{}, fmt.Errorf("RATING_MAX must fit in 32 bits")
	}
	if cfg.RatingMin > cfg.RatingMax {
		return Config{}, fmt.Errorf("RATING_MIN cannot exceed RATING_MAX")
	}
	if cfg.RateLimitRPS < 0 {
		return Config{}, fmt.Errorf("RATE_LIMIT_RPS must be non-negative")
	}
	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst <= 0 {
		return Config{}, fmt.Errorf("RATE_LIMIT_BURST must be positive")
	}

	return cfg, nil
}

// LoadDatabase reads only the database settings, for tooling that never
// serves HTTP.
func LoadDatabase() (Database, error) {
	if err := loadDotEnv(); err != nil {
		return Database{}, err
	}

	var db Database
	if err := envconfig.Process("", &db); err != nil {
		return Database{}, fmt.Errorf("parse env: %w", err)
	}
	if err := db.validate(); err != nil {
		return Database{}, err
	}
	return db, nil
}

// LoadClient reads the rating submitter configuration.
func LoadClient() (ClientConfig, error) {
	if err := loadDotEnv(); err != nil {
		return ClientConfig{}, err
	}

	var cfg ClientConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Log.validate(); err != nil {
		return ClientConfig{}, err
	}
	if cfg.RatingsTimeoutSecs <= 0 {
		return ClientConfig{}, fmt.Errorf("RATINGS_TIMEOUT_SECS must be positive")
	}
	return cfg, nil
}

func (d Database) validate() error {
	if d.DBURL == "" {
		return fmt.Errorf("DB_URL is required")
	}
	if d.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if d.DBMinConns < 0 {
		return fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if d.DBMinConns > d.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if d.DBStatementCache < 0 {
		return fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
	}
	return nil
}

func (l Log) validate() error {
	switch l.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console")
	}
	return nil
}

func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}
