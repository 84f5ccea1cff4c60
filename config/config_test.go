package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moasaja/moasaja/api"
	"github.com/moasaja/moasaja/proxy"
	"github.com/moasaja/moasaja/storage"
)

func validConfig() *Config {
	return &Config{
		API: APIConfig{
			DefaultURL: api.DefaultBaseURL,
			Timeout:    api.DefaultTimeout,
			Retries:    api.DefaultRetries,
		},
		Storage: StorageConfig{Driver: storage.DriverFile},
		Proxy:   ProxyConfig{Port: proxy.DefaultPort, Backend: proxy.DefaultBackend},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults",
			modify: func(*Config) {},
		},
		{
			name:   "base url override",
			modify: func(c *Config) { c.API.BaseURL = "http://localhost:3001" },
		},
		{
			name:    "relative base url",
			modify:  func(c *Config) { c.API.BaseURL = "/api" },
			wantErr: "api.base_url",
		},
		{
			name:    "ftp default url",
			modify:  func(c *Config) { c.API.DefaultURL = "ftp://example.com" },
			wantErr: "api.default_url",
		},
		{
			name:    "negative retries",
			modify:  func(c *Config) { c.API.Retries = -1 },
			wantErr: "api.retries",
		},
		{
			name:    "negative timeout",
			modify:  func(c *Config) { c.API.Timeout = -time.Second },
			wantErr: "api.timeout",
		},
		{
			name:   "sqlite driver, any case",
			modify: func(c *Config) { c.Storage.Driver = "SQLite" },
		},
		{
			name:    "unknown driver",
			modify:  func(c *Config) { c.Storage.Driver = "etcd" },
			wantErr: "invalid storage driver",
		},
		{
			name: "redis without address",
			modify: func(c *Config) {
				c.Storage.Driver = storage.DriverRedis
				c.Storage.Redis.Addr = ""
			},
			wantErr: "storage.redis.addr",
		},
		{
			name:    "proxy port out of range",
			modify:  func(c *Config) { c.Proxy.Port = 70000 },
			wantErr: "invalid proxy port",
		},
		{
			name:    "profile with colon",
			modify:  func(c *Config) { c.Profile = "a:b" },
			wantErr: "profile",
		},
		{
			name:    "invalid level",
			modify:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "invalid logging level",
		},
		{
			name:    "invalid format",
			modify:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "invalid logging format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)

			err := validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(strings.TrimSpace(content)), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: http://localhost:3001
  timeout: 5s
storage:
  driver: memory
filter:
  open: status:recruiting and spots:>0
  Cheap: PerPersonPrice < 5000
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3001", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, api.DefaultRetries, cfg.API.Retries)
	assert.Equal(t, api.DefaultBaseURL, cfg.API.DefaultURL)
	assert.Equal(t, storage.DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, proxy.DefaultPort, cfg.Proxy.Port)
	// viper lowercases keys
	assert.Equal(t, "PerPersonPrice < 5000", cfg.Filter["cheap"])
	assert.Len(t, cfg.Filter, 2)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `
api:
  retries: 2
`)
	t.Setenv("MOASAJA_API_RETRIES", "0")
	t.Setenv("MOASAJA_PROFILE", "work")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.API.Retries)
	assert.Equal(t, "work", cfg.Profile)
}

func TestLoadErrors(t *testing.T) {
	t.Run("explicit file missing", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		path := writeConfig(t, `
logging:
  level: loud
`)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})
}

func TestStorageOptions(t *testing.T) {
	cfg := validConfig()
	cfg.Storage = StorageConfig{
		Driver: storage.DriverRedis,
		Redis:  RedisConfig{Addr: "cache:6379", DB: 2, Prefix: "m:"},
	}

	opts := cfg.StorageOptions()
	assert.Equal(t, storage.DriverRedis, opts.Driver)
	assert.Equal(t, "cache:6379", opts.RedisAddr)
	assert.Equal(t, 2, opts.RedisDB)
	assert.Equal(t, "m:", opts.Prefix)
}
