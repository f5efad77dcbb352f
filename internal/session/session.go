// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package session keeps operator logins in Valkey. The browser holds only an
// opaque token; the record expires after a period of inactivity.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// CookieName is the operator session cookie.
	CookieName = "khabar_session"

	// IdleTimeout is how long a session survives without a request.
	IdleTimeout = 12 * time.Hour

	keyPrefix  = "khabar:session:"
	tokenBytes = 32
)

var tokenLen = base64.RawURLEncoding.EncodedLen(tokenBytes)

// Data is what a session remembers about the operator.
type Data struct {
	Username   string    `json:"username"`
	LoggedInAt time.Time `json:"logged_in_at"`
}

// IsAuthenticated reports whether d belongs to a logged-in operator.
func (d *Data) IsAuthenticated() bool {
	return d != nil && d.Username != ""
}

// Store reads and writes sessions in Valkey.
type Store struct {
	client *redis.Client
	idle   time.Duration
	secure bool
}

// NewStore creates a Store. secure marks the cookie HTTPS-only.
func NewStore(client *redis.Client, secure bool) *Store {
	return &Store{client: client, idle: IdleTimeout, secure: secure}
}

// Create saves data under a fresh token and sets the cookie.
func (s *Store) Create(ctx context.Context, w http.ResponseWriter, data *Data) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", fmt.Errorf("session token: %w", err)
	}

	data.LoggedInAt = time.Now().UTC()
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("session encode: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+token, payload, s.idle).Err(); err != nil {
		return "", fmt.Errorf("session save: %w", err)
	}

	http.SetCookie(w, s.cookie(token, int(s.idle.Seconds())))
	return token, nil
}

// Get returns the session named by the request cookie and pushes its expiry
// forward. It returns nil, nil when the request has no live session.
func (s *Store) Get(ctx context.Context, r *http.Request) (*Data, error) {
	token, ok := tokenFrom(r)
	if !ok {
		return nil, nil
	}

	payload, err := s.client.GetEx(ctx, keyPrefix+token, s.idle).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session load: %w", err)
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("session decode: %w", err)
	}
	if !data.IsAuthenticated() {
		return nil, nil
	}
	return &data, nil
}

// Destroy expires the cookie and deletes the session, if there is one.
func (s *Store) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	token, ok := tokenFrom(r)
	if !ok {
		return nil
	}

	http.SetCookie(w, s.cookie("", -1))
	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

func (s *Store) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}

// tokenFrom reads the cookie token. Values of the wrong shape are ignored
// without a Valkey round trip.
func tokenFrom(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || len(c.Value) != tokenLen {
		return "", false
	}
	if _, err := base64.RawURLEncoding.DecodeString(c.Value); err != nil {
		return "", false
	}
	return c.Value, true
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
