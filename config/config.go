package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/moasaja/moasaja/api"
	"github.com/moasaja/moasaja/proxy"
	"github.com/moasaja/moasaja/storage"
)

// EnvPrefix prefixes environment overrides, e.g. MOASAJA_API_BASE_URL
const EnvPrefix = "MOASAJA"

// Load loads the configuration from file and environment. A missing config
// file is not an error when configPath is empty; defaults apply.
func Load(configPath string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env: %w", err)
	}

	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".moasaja"))
		}

		// Check /etc
		v.AddConfigPath("/etc/moasaja/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.base_url", "")
	v.SetDefault("api.host", "")
	v.SetDefault("api.default_url", api.DefaultBaseURL)
	v.SetDefault("api.timeout", api.DefaultTimeout)
	v.SetDefault("api.retries", api.DefaultRetries)

	// Storage defaults
	v.SetDefault("storage.driver", storage.DriverFile)
	v.SetDefault("storage.path", "")
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.prefix", "moasaja:")

	// Proxy defaults
	v.SetDefault("proxy.port", proxy.DefaultPort)
	v.SetDefault("proxy.backend", proxy.DefaultBackend)
	v.SetDefault("proxy.origin", proxy.DefaultOrigin)

	v.SetDefault("profile", "")
	v.SetDefault("quiet", false)

	// Logging defaults
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	for key, value := range map[string]string{
		"api.base_url":    cfg.API.BaseURL,
		"api.default_url": cfg.API.DefaultURL,
		"proxy.backend":   cfg.Proxy.Backend,
	} {
		if err := validateURL(value); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}

	if cfg.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative: %s", cfg.API.Timeout)
	}
	if cfg.API.Retries < 0 {
		return fmt.Errorf("api.retries must not be negative: %d", cfg.API.Retries)
	}

	validDrivers := map[string]bool{
		storage.DriverMemory: true,
		storage.DriverFile:   true,
		storage.DriverSQLite: true,
		storage.DriverRedis:  true,
	}
	if !validDrivers[strings.ToLower(cfg.Storage.Driver)] {
		return fmt.Errorf("invalid storage driver: %s", cfg.Storage.Driver)
	}
	if strings.EqualFold(cfg.Storage.Driver, storage.DriverRedis) && cfg.Storage.Redis.Addr == "" {
		return fmt.Errorf("storage.redis.addr is required for the redis driver")
	}

	if cfg.Proxy.Port <= 0 || cfg.Proxy.Port > 65535 {
		return fmt.Errorf("invalid proxy port: %d", cfg.Proxy.Port)
	}

	if strings.ContainsAny(cfg.Profile, ": ") {
		return fmt.Errorf("profile must not contain spaces or colons: %q", cfg.Profile)
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}

// validateURL accepts an empty value or an absolute http(s) URL
func validateURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid URL: %q", raw)
	}
	return nil
}

// StorageOptions converts the storage section into storage.Open options
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Driver:        c.Storage.Driver,
		Path:          c.Storage.Path,
		RedisAddr:     c.Storage.Redis.Addr,
		RedisPassword: c.Storage.Redis.Password,
		RedisDB:       c.Storage.Redis.DB,
		Prefix:        c.Storage.Redis.Prefix,
	}
}
