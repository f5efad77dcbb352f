// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// defaultDBPassword is rejected in production.
const defaultDBPassword = "changeme"

// DevAdminPassword is used when no operator password is configured outside
// production.
const DevAdminPassword = "admin"

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host        string `env:"APP_HOST" env-default:"0.0.0.0"`
	Port        string `env:"APP_PORT" env-default:"8080"`
	Env         string `env:"APP_ENV" env-default:"development"` // "development", "production", "testing"
	StoreDriver string `env:"STORE_DRIVER" env-default:"postgres"`

	// PostgreSQL connection
	DBHost     string `env:"POSTGRES_HOST" env-default:"localhost"`
	DBPort     string `env:"POSTGRES_PORT" env-default:"5432"`
	DBUser     string `env:"POSTGRES_USER" env-default:"khabarcms"`
	DBPassword string `env:"POSTGRES_PASSWORD" env-default:"changeme"`
	DBName     string `env:"POSTGRES_DB" env-default:"khabarcms"`

	// Valkey (Redis-compatible cache and session store)
	ValkeyHost     string `env:"VALKEY_HOST" env-default:"localhost"`
	ValkeyPort     string `env:"VALKEY_PORT" env-default:"6379"`
	ValkeyPassword string `env:"VALKEY_PASSWORD"`
	ValkeyDB       int    `env:"VALKEY_DB" env-default:"0"`

	// Operator credentials
	AdminUser       string `env:"ADMIN_USER" env-default:"admin"`
	AdminPass       string `env:"ADMIN_PASS"`
	AdminPassHash   string `env:"ADMIN_PASS_HASH"`
	AdminTOTPSecret string `env:"ADMIN_TOTP_SECRET"`

	// Uploads
	UploadDir       string `env:"UPLOAD_DIR" env-default:"public/assets/uploads"`
	UploadURLPrefix string `env:"UPLOAD_URL_PREFIX" env-default:"/assets/uploads"`
	UploadMaxMB     int64  `env:"UPLOAD_MAX_MB" env-default:"100"`

	// S3-compatible object storage (optional)
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3Region    string `env:"S3_REGION" env-default:"us-east-1"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3Bucket    string `env:"S3_BUCKET"`
	S3PublicURL string `env:"S3_PUBLIC_URL"`

	// Site
	PublicDir   string   `env:"PUBLIC_DIR" env-default:"public"`
	CORSOrigins []string `env:"CORS_ORIGINS" env-separator:","`

	// Post listing cache; zero disables it.
	ListCacheTTL time.Duration `env:"LIST_CACHE_TTL" env-default:"30s"`
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	switch cfg.StoreDriver {
	case DriverPostgres, DriverMemory:
	default:
		return nil, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMemory, cfg.StoreDriver)
	}

	if cfg.UploadMaxMB <= 0 {
		return nil, errors.New("UPLOAD_MAX_MB must be positive")
	}

	if cfg.IsProduction() {
		if cfg.StoreDriver == DriverPostgres && cfg.DBPassword == defaultDBPassword {
			return nil, errors.New("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.AdminPass == "" && cfg.AdminPassHash == "" {
			return nil, errors.New("ADMIN_PASS or ADMIN_PASS_HASH must be set in production")
		}
	}

	if cfg.AdminPass == "" && cfg.AdminPassHash == "" {
		cfg.AdminPass = DevAdminPassword
	}

	return &cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, net.JoinHostPort(c.DBHost, c.DBPort), c.DBName,
	)
}

// ValkeyAddr returns the Valkey address (host:port).
func (c *Config) ValkeyAddr() string {
	return net.JoinHostPort(c.ValkeyHost, c.ValkeyPort)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true if the application is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// UploadMaxBytes returns the upload size cap in bytes.
func (c *Config) UploadMaxBytes() int64 {
	return c.UploadMaxMB << 20
}
