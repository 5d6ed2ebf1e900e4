package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	DataDir        string `yaml:"data_dir"`
	DatabaseFile   string `yaml:"database_file"`
	PoolSize       int    `yaml:"pool_size"`
	AcquireTimeout string `yaml:"acquire_timeout"`
	RedisURL       string `yaml:"redis_url"`
	UserAgent      string `yaml:"user_agent"`
	Timeout        string `yaml:"timeout"`
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"`
}

// LoadFromFile loads config from a YAML file. Missing keys keep the values
// from Default.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if f.DataDir != "" {
		c.DataDir = f.DataDir
	}
	if f.DatabaseFile != "" {
		c.DatabaseFile = f.DatabaseFile
	}
	if f.PoolSize != 0 {
		c.PoolSize = f.PoolSize
	}
	if f.AcquireTimeout != "" {
		d, err := time.ParseDuration(f.AcquireTimeout)
		if err != nil {
			return nil, fmt.Errorf("acquire_timeout: %w", err)
		}
		c.AcquireTimeout = d
	}
	c.RedisURL = f.RedisURL
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	if f.Timeout != "" {
		if d, err := time.ParseDuration(f.Timeout); err == nil {
			c.Timeout = d
		}
	}
	if f.LogLevel != "" {
		c.LogLevel = f.LogLevel
	}
	if f.LogFormat != "" {
		c.LogFormat = f.LogFormat
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
