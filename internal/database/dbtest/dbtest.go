// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package dbtest connects tests to the development PostgreSQL, skipping them
// when it is not running.
package dbtest

import (
	"context"
	"database/sql"
	"net"
	"net/url"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DSN builds a connection string from the POSTGRES_* variables, defaulting
// to the development database.
func DSN() string {
	env := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(env("POSTGRES_USER", "khabarcms"), env("POSTGRES_PASSWORD", "changeme")),
		Host:     net.JoinHostPort(env("POSTGRES_HOST", "localhost"), env("POSTGRES_PORT", "5432")),
		Path:     "/" + env("POSTGRES_DB", "khabarcms"),
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Open returns a pool on DSN that is closed when t ends. t is skipped if
// the database does not answer within two seconds.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", DSN())
	if err != nil {
		t.Skipf("skipping integration test: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		t.Skipf("skipping integration test: PostgreSQL not reachable: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}
