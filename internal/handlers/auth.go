// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/render"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/crypto/bcrypt"

	"khabarcms/internal/access"
	"khabarcms/internal/middleware"
	"khabarcms/internal/session"
)

// totpIssuer labels the account in authenticator apps.
const totpIssuer = "KhabarCMS"

// SessionManager creates and destroys operator sessions.
type SessionManager interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Credentials holds the single operator account.
type Credentials struct {
	Username     string
	passwordHash []byte
	totpSecret   string
}

// NewCredentials builds the operator account. If passwordHash is empty the
// plaintext password is hashed with bcrypt. totpSecret may be empty to
// disable the second factor.
func NewCredentials(username, password, passwordHash, totpSecret string) (*Credentials, error) {
	hash := []byte(passwordHash)
	if len(hash) == 0 {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash operator password: %w", err)
		}
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("operator password hash: %w", err)
	}
	return &Credentials{Username: username, passwordHash: hash, totpSecret: totpSecret}, nil
}

// TOTPEnabled reports whether a second factor is required.
func (c *Credentials) TOTPEnabled() bool {
	return c.totpSecret != ""
}

// Check verifies a login attempt. The password hash is compared even when
// the username is wrong so both failures take the same time.
func (c *Credentials) Check(username, password, code string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.Username)) == 1
	passOK := bcrypt.CompareHashAndPassword(c.passwordHash, []byte(password)) == nil
	if !userOK || !passOK {
		return false
	}
	if c.TOTPEnabled() {
		return totp.Validate(code, c.totpSecret)
	}
	return true
}

// totpURL returns the otpauth:// URL for the configured secret.
func (c *Credentials) totpURL() (string, error) {
	v := url.Values{}
	v.Set("secret", c.totpSecret)
	v.Set("issuer", totpIssuer)
	u := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + totpIssuer + ":" + c.Username,
		RawQuery: v.Encode(),
	}
	key, err := otp.NewKeyFromURL(u.String())
	if err != nil {
		return "", fmt.Errorf("totp key: %w", err)
	}
	return key.URL(), nil
}

// Auth groups the operator login handlers.
type Auth struct {
	sessions SessionManager
	creds    *Credentials
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions SessionManager, creds *Credentials) *Auth {
	return &Auth{sessions: sessions, creds: creds}
}

type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Login handles POST /api/login with username, password and, when 2FA is
// configured, code.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	f, err := (&Intake{maxBytes: 64 << 10}).parse(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if !a.creds.Check(f.str("username"), f.str("password"), f.str("code")) {
		slog.Warn("login failed", "username", f.str("username"), "remote", r.RemoteAddr)
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, loginResponse{Success: false, Message: "Invalid Credentials"})
		return
	}

	if _, err := a.sessions.Create(r.Context(), w, &session.Data{Username: a.creds.Username}); err != nil {
		writeError(w, r, fmt.Errorf("create session: %w", err))
		return
	}

	slog.Info("operator logged in", "username", a.creds.Username)
	render.JSON(w, r, loginResponse{Success: true})
}

// Logout handles GET /api/logout.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	http.Redirect(w, r, access.LoginPath, http.StatusSeeOther)
}

// TOTPQRCode handles GET /api/2fa/qr: a PNG of the enrolment URL for the
// configured secret.
func (a *Auth) TOTPQRCode(w http.ResponseWriter, r *http.Request) {
	if !a.creds.TOTPEnabled() {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, messageResponse{Message: "Not found"})
		return
	}

	u, err := a.creds.totpURL()
	if err != nil {
		writeError(w, r, err)
		return
	}
	png, err := qrcode.Encode(u, qrcode.Medium, 256)
	if err != nil {
		writeError(w, r, fmt.Errorf("qr encode: %w", err))
		return
	}

	slog.Info("totp enrolment code viewed", "by", middleware.CallerFromCtx(r.Context()).Name)
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}
