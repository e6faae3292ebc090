// Package config loads application configuration from environment
// variables, with an optional .env file for local development.
package config

import (
	"fmt"
	"net/url"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the process needs to start.
type Config struct {
	// Server settings
	Port     string
	LogLevel string

	// PlatformAPIURL is the base URL of the upstream platform API that
	// hosts the tenant, subscription, module, billing and auth services.
	PlatformAPIURL string

	// BaseFrontendURL is the root the per-tenant console URLs are derived
	// from, e.g. https://app.opsdeck.io.
	BaseFrontendURL string

	// AuditDBPath is the SQLite file backing the local audit trail and
	// job queue.
	AuditDBPath string

	// RedisAddr enables the module catalog cache when set.
	RedisAddr string
}

const (
	defaultPort        = "8080"
	defaultLogLevel    = "info"
	defaultAuditDBPath = "tenantctl.db"
)

// Load reads configuration from the environment. A .env file is loaded
// first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", defaultPort),
		LogLevel:        getEnv("LOG_LEVEL", defaultLogLevel),
		PlatformAPIURL:  os.Getenv("PLATFORM_API_URL"),
		BaseFrontendURL: os.Getenv("BASE_FRONTEND_URL"),
		AuditDBPath:     getEnv("AUDIT_DB_PATH", defaultAuditDBPath),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the required settings are present and well formed.
func (c *Config) Validate() error {
	if err := requireURL("PLATFORM_API_URL", c.PlatformAPIURL); err != nil {
		return err
	}
	return requireURL("BASE_FRONTEND_URL", c.BaseFrontendURL)
}

func requireURL(name, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", name)
	}
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", name, value)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
