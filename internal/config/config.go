package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all farmdash configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port            int    `yaml:"port"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
	// MCP mounts the tool server at /mcp.
	MCP bool `yaml:"mcp"`
}

// StorageConfig picks the records backend.
type StorageConfig struct {
	Driver         string `yaml:"driver"` // mongo, sqlite
	MongoURI       string `yaml:"mongo_uri"`
	MongoDatabase  string `yaml:"mongo_database"`
	SQLitePath     string `yaml:"sqlite_path"`
	ConnectTimeout string `yaml:"connect_timeout"`
}

// DashboardConfig configures the server-rendered tables.
type DashboardConfig struct {
	PageSize       int    `yaml:"page_size"`
	SuccessTTL     string `yaml:"success_ttl"`
	ErrorTTL       string `yaml:"error_ttl"`
	SessionTTL     string `yaml:"session_ttl"`
	RequestTimeout string `yaml:"request_timeout"`
	// APIBaseURL points the dashboard at another farmdash API. Empty means
	// the in-process records service.
	APIBaseURL string `yaml:"api_base_url"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: "10s",
			MCP:             true,
		},
		Storage: StorageConfig{
			Driver:         "sqlite",
			MongoURI:       "mongodb://localhost:27017",
			MongoDatabase:  "farmdash",
			SQLitePath:     "data/farmdash.db",
			ConnectTimeout: "10s",
		},
		Dashboard: DashboardConfig{
			PageSize:       5,
			SuccessTTL:     "3s",
			ErrorTTL:       "5s",
			SessionTTL:     "12h",
			RequestTimeout: "10s",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
// Environment variables win over both.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			c.Server.Port = n
		}
	}
	if uri := os.Getenv("MONGODB_URI"); uri != "" {
		c.Storage.MongoURI = uri
		if os.Getenv("FARMDASH_STORAGE") == "" {
			c.Storage.Driver = "mongo"
		}
	}
	if driver := os.Getenv("FARMDASH_STORAGE"); driver != "" {
		c.Storage.Driver = driver
	}
	if path := os.Getenv("FARMDASH_SQLITE_PATH"); path != "" {
		c.Storage.SQLitePath = path
	}
	if base := os.Getenv("FARMDASH_API_BASE_URL"); base != "" {
		c.Dashboard.APIBaseURL = base
	}
	if level := os.Getenv("FARMDASH_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Storage.Driver {
	case "mongo":
		if c.Storage.MongoURI == "" || c.Storage.MongoDatabase == "" {
			return fmt.Errorf("storage.mongo_uri and storage.mongo_database are required for the mongo driver")
		}
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q (want mongo or sqlite)", c.Storage.Driver)
	}
	if c.Dashboard.PageSize < 1 {
		return fmt.Errorf("dashboard.page_size must be positive: %d", c.Dashboard.PageSize)
	}
	if c.Dashboard.APIBaseURL != "" {
		u, err := url.Parse(c.Dashboard.APIBaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("dashboard.api_base_url is not an absolute URL: %q", c.Dashboard.APIBaseURL)
		}
	}
	for name, v := range map[string]string{
		"server.shutdown_timeout":   c.Server.ShutdownTimeout,
		"storage.connect_timeout":   c.Storage.ConnectTimeout,
		"dashboard.success_ttl":     c.Dashboard.SuccessTTL,
		"dashboard.error_ttl":       c.Dashboard.ErrorTTL,
		"dashboard.session_ttl":     c.Dashboard.SessionTTL,
		"dashboard.request_timeout": c.Dashboard.RequestTimeout,
	} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging.level %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) GetShutdownTimeout() time.Duration {
	return duration(c.Server.ShutdownTimeout, 10*time.Second)
}

func (c *Config) GetConnectTimeout() time.Duration {
	return duration(c.Storage.ConnectTimeout, 10*time.Second)
}

func (c *Config) GetSuccessTTL() time.Duration {
	return duration(c.Dashboard.SuccessTTL, 3*time.Second)
}

func (c *Config) GetErrorTTL() time.Duration {
	return duration(c.Dashboard.ErrorTTL, 5*time.Second)
}

func (c *Config) GetSessionTTL() time.Duration {
	return duration(c.Dashboard.SessionTTL, 12*time.Hour)
}

func (c *Config) GetRequestTimeout() time.Duration {
	return duration(c.Dashboard.RequestTimeout, 10*time.Second)
}

func duration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
