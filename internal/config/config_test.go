// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

var envVars = []string{
	"APP_HOST", "APP_PORT", "APP_ENV", "STORE_DRIVER",
	"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB",
	"VALKEY_HOST", "VALKEY_PORT", "VALKEY_PASSWORD", "VALKEY_DB",
	"ADMIN_USER", "ADMIN_PASS", "ADMIN_PASS_HASH", "ADMIN_TOTP_SECRET",
	"UPLOAD_DIR", "UPLOAD_URL_PREFIX", "UPLOAD_MAX_MB",
	"S3_ENDPOINT", "S3_REGION", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_BUCKET", "S3_PUBLIC_URL",
	"PUBLIC_DIR", "CORS_ORIGINS", "LIST_CACHE_TTL",
}

// clearEnv unsets every variable Load reads. t.Setenv registers the restore
// before the variable is removed.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envVars {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

// TestLoad_Defaults verifies that Load returns sensible development defaults
// when no environment variables are set.
func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	defaults := map[string][2]string{
		"Host":            {cfg.Host, "0.0.0.0"},
		"Port":            {cfg.Port, "8080"},
		"Env":             {cfg.Env, "development"},
		"StoreDriver":     {cfg.StoreDriver, DriverPostgres},
		"DBUser":          {cfg.DBUser, "khabarcms"},
		"DBPassword":      {cfg.DBPassword, "changeme"},
		"ValkeyPort":      {cfg.ValkeyPort, "6379"},
		"AdminUser":       {cfg.AdminUser, "admin"},
		"AdminPass":       {cfg.AdminPass, DevAdminPassword},
		"UploadDir":       {cfg.UploadDir, "public/assets/uploads"},
		"UploadURLPrefix": {cfg.UploadURLPrefix, "/assets/uploads"},
		"PublicDir":       {cfg.PublicDir, "public"},
		"S3Region":        {cfg.S3Region, "us-east-1"},
	}
	for field, pair := range defaults {
		if pair[0] != pair[1] {
			t.Errorf("%s: got %q, want %q", field, pair[0], pair[1])
		}
	}

	if cfg.UploadMaxMB != 100 {
		t.Errorf("UploadMaxMB: got %d, want 100", cfg.UploadMaxMB)
	}
	if cfg.UploadMaxBytes() != 100<<20 {
		t.Errorf("UploadMaxBytes: got %d", cfg.UploadMaxBytes())
	}
	if cfg.ListCacheTTL != 30*time.Second {
		t.Errorf("ListCacheTTL: got %v, want 30s", cfg.ListCacheTTL)
	}
	if len(cfg.CORSOrigins) != 0 {
		t.Errorf("CORSOrigins: got %v, want empty", cfg.CORSOrigins)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_PORT", "3000")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("ADMIN_USER", "editor")
	t.Setenv("ADMIN_PASS", "s3cret")
	t.Setenv("UPLOAD_MAX_MB", "5")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("LIST_CACHE_TTL", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "3000" || cfg.StoreDriver != DriverMemory {
		t.Errorf("port/driver: %q %q", cfg.Port, cfg.StoreDriver)
	}
	if cfg.AdminUser != "editor" || cfg.AdminPass != "s3cret" {
		t.Errorf("admin: %q %q", cfg.AdminUser, cfg.AdminPass)
	}
	if cfg.UploadMaxBytes() != 5<<20 {
		t.Errorf("UploadMaxBytes: got %d", cfg.UploadMaxBytes())
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins: got %v", cfg.CORSOrigins)
	}
	if cfg.ListCacheTTL != 0 {
		t.Errorf("ListCacheTTL: got %v, want 0", cfg.ListCacheTTL)
	}
}

func TestLoad_HashKeepsPasswordEmpty(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADMIN_PASS_HASH", "$2a$10$abcdefghijklmnopqrstuv")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AdminPass != "" {
		t.Errorf("dev password must not be filled in when a hash is set, got %q", cfg.AdminPass)
	}
}

func TestLoad_ProductionRequirements(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "default db password",
			env:     map[string]string{"ADMIN_PASS": "x"},
			wantErr: "POSTGRES_PASSWORD",
		},
		{
			name:    "missing operator password",
			env:     map[string]string{"POSTGRES_PASSWORD": "strong"},
			wantErr: "ADMIN_PASS",
		},
		{
			name: "memory driver skips db password",
			env:  map[string]string{"STORE_DRIVER": "memory", "ADMIN_PASS": "x"},
		},
		{
			name: "all set",
			env:  map[string]string{"POSTGRES_PASSWORD": "strong", "ADMIN_PASS_HASH": "h"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("APP_ENV", "production")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got %v, want error mentioning %s", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_InvalidDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "mongo")
	if _, err := Load(); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "5433", DBName: "n"}
	want := "postgres://u:p@db:5433/n?sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN: got %q, want %q", got, want)
	}
}

func TestAddr(t *testing.T) {
	tests := []struct {
		host, port, want string
	}{
		{"0.0.0.0", "8080", "0.0.0.0:8080"},
		{"localhost", "3000", "localhost:3000"},
		{"::1", "8080", "[::1]:8080"},
	}
	for _, tt := range tests {
		cfg := &Config{Host: tt.host, Port: tt.port}
		if got := cfg.Addr(); got != tt.want {
			t.Errorf("Addr(%s, %s): got %q, want %q", tt.host, tt.port, got, tt.want)
		}
		valkey := &Config{ValkeyHost: tt.host, ValkeyPort: tt.port}
		if got := valkey.ValkeyAddr(); got != tt.want {
			t.Errorf("ValkeyAddr(%s, %s): got %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}

func TestIsDev(t *testing.T) {
	for env, want := range map[string]bool{"development": true, "production": false, "testing": false} {
		cfg := &Config{Env: env}
		if got := cfg.IsDev(); got != want {
			t.Errorf("IsDev(%q): got %v, want %v", env, got, want)
		}
	}
}
