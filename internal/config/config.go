package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Defaults applied by Load and LoadFromFile.
const (
	DefaultDatabaseFile   = "db.sqlite"
	DefaultPoolSize       = 20
	DefaultAcquireTimeout = 2 * time.Second
	DefaultUserAgent      = "tvcatalog/1.0"
	DefaultTimeout        = 30 * time.Second
)

// ErrInvalidPoolSize is returned when the configured pool size is not positive.
var ErrInvalidPoolSize = errors.New("pool size must be positive")

// Config holds application configuration (database location, pool bounds,
// optional cache, fetcher and logging settings).
type Config struct {
	DataDir        string        `yaml:"data_dir" env:"TVCATALOG_DATA_DIR"`
	DatabaseFile   string        `yaml:"database_file" env:"TVCATALOG_DATABASE_FILE"`
	PoolSize       int           `yaml:"pool_size" env:"TVCATALOG_POOL_SIZE"`
	AcquireTimeout time.Duration `yaml:"acquire_timeout" env:"TVCATALOG_ACQUIRE_TIMEOUT"`
	RedisURL       string        `yaml:"redis_url" env:"REDIS_URL"`
	UserAgent      string        `yaml:"user_agent" env:"FETCHER_USER_AGENT"`
	Timeout        time.Duration `yaml:"timeout" env:"FETCHER_TIMEOUT"`
	LogLevel       string        `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat      string        `yaml:"log_format" env:"LOG_FORMAT"`
}

// DatabasePath returns the absolute location of the database file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, c.DatabaseFile)
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	if c.PoolSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPoolSize, c.PoolSize)
	}
	return nil
}

// Default returns a config pointing at the per-OS application data directory.
func Default() (*Config, error) {
	dir, err := DefaultDataDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		DataDir:        dir,
		DatabaseFile:   DefaultDatabaseFile,
		PoolSize:       DefaultPoolSize,
		AcquireTimeout: DefaultAcquireTimeout,
		UserAgent:      DefaultUserAgent,
		Timeout:        DefaultTimeout,
		LogLevel:       "info",
		LogFormat:      "json",
	}, nil
}

// Load builds config from environment variables on top of Default.
// .env.local and .env from the working directory are consulted for
// variables that are not already set.
func Load() (*Config, error) {
	loadEnvFiles()
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if s := os.Getenv("TVCATALOG_DATA_DIR"); s != "" {
		c.DataDir = s
	}
	if s := os.Getenv("TVCATALOG_DATABASE_FILE"); s != "" {
		c.DatabaseFile = s
	}
	if s := os.Getenv("TVCATALOG_POOL_SIZE"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("TVCATALOG_POOL_SIZE: %w", err)
		}
		c.PoolSize = n
	}
	if s := os.Getenv("TVCATALOG_ACQUIRE_TIMEOUT"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("TVCATALOG_ACQUIRE_TIMEOUT: %w", err)
		}
		c.AcquireTimeout = d
	}
	c.RedisURL = os.Getenv("REDIS_URL")
	if s := os.Getenv("FETCHER_USER_AGENT"); s != "" {
		c.UserAgent = s
	}
	if s := os.Getenv("FETCHER_TIMEOUT"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("FETCHER_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if s := os.Getenv("LOG_LEVEL"); s != "" {
		c.LogLevel = s
	}
	if s := os.Getenv("LOG_FORMAT"); s != "" {
		c.LogFormat = s
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
