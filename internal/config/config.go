// Package config loads service configuration from a YAML file with
// environment-variable overrides. A .env file, if present, is loaded first so
// local development can keep credentials out of the config file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the newsletter service.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Email    EmailConfig    `yaml:"email"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// GetHost returns the listen host, honoring container environments and the
// SERVER_HOST override.
func (c ServerConfig) GetHost() string {
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// AppConfig holds application-level settings.
type AppConfig struct {
	// BaseURL is the public URL of this service; confirmation links are
	// built against it.
	BaseURL string `yaml:"base_url"`
}

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	// URL is a lib/pq connection string. The DATABASE_URL environment
	// variable takes precedence.
	URL string `yaml:"url"`
	// AcquireTimeoutSeconds bounds how long a request waits for a pool
	// connection before failing.
	AcquireTimeoutSeconds int `yaml:"acquire_timeout_seconds"`
	MaxOpenConns          int `yaml:"max_open_conns"`
	MaxIdleConns          int `yaml:"max_idle_conns"`
}

// AcquireTimeout returns the pool acquisition timeout as a duration.
func (c DatabaseConfig) AcquireTimeout() time.Duration {
	return time.Duration(c.AcquireTimeoutSeconds) * time.Second
}

// EmailConfig holds the transactional email provider settings.
type EmailConfig struct {
	BaseURL     string `yaml:"base_url"`
	ServerToken string `yaml:"server_token"`
	Sender      string `yaml:"sender"`
	// TimeoutMillis is the client-wide send timeout. It runs inside an
	// open database transaction, so it stays in the hundreds of
	// milliseconds rather than seconds.
	TimeoutMillis int `yaml:"timeout_millis"`
}

// Timeout returns the configured send timeout as a duration.
func (c EmailConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMillis) * time.Millisecond
}

// Load reads and parses the configuration file, then applies environment
// overrides and defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()
	return &cfg, nil
}

// LoadFromEnv loads a .env file if present, then calls Load.
func LoadFromEnv(path string) (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()
	return Load(path)
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("APP_BASE_URL"); v != "" {
		c.App.BaseURL = v
	}
	if v := os.Getenv("EMAIL_BASE_URL"); v != "" {
		c.Email.BaseURL = v
	}
	if v := os.Getenv("EMAIL_SERVER_TOKEN"); v != "" {
		c.Email.ServerToken = v
	}
	if v := os.Getenv("EMAIL_SENDER"); v != "" {
		c.Email.Sender = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Host == "" {
		c.Server.Host = "localhost"
	}
	if c.App.BaseURL == "" {
		c.App.BaseURL = fmt.Sprintf("http://%s:%d", c.Server.Host, c.Server.Port)
	}
	if c.Database.AcquireTimeoutSeconds == 0 {
		c.Database.AcquireTimeoutSeconds = 2
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 3
	}
	if c.Email.TimeoutMillis == 0 {
		c.Email.TimeoutMillis = 200
	}
}
