package session

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// valkey connects to the test instance on DB 15, or skips.
func valkey(t *testing.T) *redis.Client {
	t.Helper()

	host, port := os.Getenv("VALKEY_HOST"), os.Getenv("VALKEY_PORT")
	if host == "" {
		host = "localhost"
	}
	if port == "" {
		port = "6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}
	t.Cleanup(func() {
		iter := client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			client.Del(ctx, iter.Val())
		}
		client.Close()
	})
	return client
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

// login creates a session and returns a request carrying its cookie.
func login(t *testing.T, store *Store) (*http.Request, string) {
	t.Helper()
	w := httptest.NewRecorder()
	token, err := store.Create(context.Background(), w, &Data{Username: "admin"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.AddCookie(sessionCookie(t, w))
	return req, token
}

func TestIsAuthenticated(t *testing.T) {
	var nilData *Data
	if nilData.IsAuthenticated() {
		t.Error("nil session is not authenticated")
	}
	if (&Data{}).IsAuthenticated() {
		t.Error("session without a username is not authenticated")
	}
	if !(&Data{Username: "admin"}).IsAuthenticated() {
		t.Error("operator session should be authenticated")
	}
}

func TestTokenFromRejectsMalformedCookies(t *testing.T) {
	good, err := newToken()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name, value string
		ok          bool
	}{
		{"valid", good, true},
		{"short", "abc", false},
		{"wrong alphabet", strings.Repeat("*", tokenLen), false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: CookieName, Value: tt.value})
			if _, ok := tokenFrom(req); ok != tt.ok {
				t.Errorf("got %v, want %v", ok, tt.ok)
			}
		})
	}
}

func TestCreateSetsCookie(t *testing.T) {
	for _, secure := range []bool{false, true} {
		store := NewStore(valkey(t), secure)
		w := httptest.NewRecorder()
		token, err := store.Create(context.Background(), w, &Data{Username: "admin"})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		c := sessionCookie(t, w)
		if c.Value != token || len(token) != tokenLen {
			t.Errorf("token: cookie %q, returned %q", c.Value, token)
		}
		if !c.HttpOnly || c.SameSite != http.SameSiteLaxMode || c.Secure != secure {
			t.Errorf("cookie flags: %+v", c)
		}
		if c.MaxAge != int(IdleTimeout.Seconds()) {
			t.Errorf("MaxAge: got %d", c.MaxAge)
		}
	}
}

func TestGetReturnsOperator(t *testing.T) {
	store := NewStore(valkey(t), false)
	req, _ := login(t, store)

	data, err := store.Get(context.Background(), req)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !data.IsAuthenticated() || data.Username != "admin" {
		t.Fatalf("data: %+v", data)
	}
	if data.LoggedInAt.IsZero() {
		t.Error("LoggedInAt should be set")
	}
}

func TestGetSlidesExpiry(t *testing.T) {
	client := valkey(t)
	store := NewStore(client, false)
	req, token := login(t, store)
	ctx := context.Background()

	client.Expire(ctx, keyPrefix+token, time.Minute)
	if _, err := store.Get(ctx, req); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ttl := client.TTL(ctx, keyPrefix+token).Val(); ttl <= time.Minute {
		t.Errorf("TTL should be refreshed to the idle timeout, got %v", ttl)
	}
}

func TestGetWithoutSession(t *testing.T) {
	store := NewStore(valkey(t), false)
	ctx := context.Background()

	unknown, _ := newToken()
	for name, req := range map[string]*http.Request{
		"no cookie":     httptest.NewRequest(http.MethodGet, "/", nil),
		"unknown token": withCookie(unknown),
		"garbage":       withCookie("not-a-token"),
	} {
		data, err := store.Get(ctx, req)
		if err != nil || data != nil {
			t.Errorf("%s: got %+v, %v", name, data, err)
		}
	}
}

func withCookie(value string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: value})
	return req
}

func TestDestroy(t *testing.T) {
	store := NewStore(valkey(t), false)
	req, _ := login(t, store)
	ctx := context.Background()

	w := httptest.NewRecorder()
	if err := store.Destroy(ctx, w, req); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if c := sessionCookie(t, w); c.MaxAge != -1 || c.Value != "" {
		t.Errorf("cookie not cleared: %+v", c)
	}
	if data, _ := store.Get(ctx, req); data != nil {
		t.Error("session should be gone")
	}

	if err := store.Destroy(ctx, httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)); err != nil {
		t.Errorf("Destroy without cookie: %v", err)
	}
}
