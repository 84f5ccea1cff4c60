package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Storage StorageConfig `mapstructure:"storage"`
	Filter  FilterConfig  `mapstructure:"filter"`
	Proxy   ProxyConfig   `mapstructure:"proxy"`
	Logging LoggingConfig `mapstructure:"logging"`
	// Profile keeps the state of several accounts apart in one store
	Profile string `mapstructure:"profile"`
	Quiet   bool   `mapstructure:"quiet"`
}

// APIConfig holds backend connection details
type APIConfig struct {
	// BaseURL forces the backend origin when set
	BaseURL string `mapstructure:"base_url"`
	// Host is used for host-based origin resolution
	Host string `mapstructure:"host"`
	// DefaultURL replaces the production origin
	DefaultURL string        `mapstructure:"default_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Retries    int           `mapstructure:"retries"`
}

// StorageConfig selects where the session token and cached profile live
type StorageConfig struct {
	Driver string      `mapstructure:"driver"`
	Path   string      `mapstructure:"path"`
	Redis  RedisConfig `mapstructure:"redis"`
}

// RedisConfig holds Redis connection details for the redis driver
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// FilterConfig contains named post filter presets
type FilterConfig map[string]string

// ProxyConfig configures the development CORS proxy
type ProxyConfig struct {
	Port    int    `mapstructure:"port"`
	Backend string `mapstructure:"backend"`
	Origin  string `mapstructure:"origin"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
