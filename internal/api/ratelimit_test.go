package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/erazemk/phonestock/internal/logger"
)

type fakeLimiter struct {
	counts map[string]int64
	err    error
}

func newFakeLimiter() *fakeLimiter {
	return &fakeLimiter{counts: make(map[string]int64)}
}

func (f *fakeLimiter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	if f.err != nil {
		return false, 0, f.err
	}
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}

func newLoginRequest(body, remote string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.RemoteAddr = remote
	return req
}

func TestLoginRateLimitPassesBody(t *testing.T) {
	limiter := newFakeLimiter()
	policy := LoginRateLimitPolicy{Window: time.Minute, IPLimit: 5, UserLimit: 5}
	handler := LoginRateLimit(policy, limiter, nil, logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"username":"alice"`) {
			t.Fatalf("body was not restored: %s", body)
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newLoginRequest(`{"username":"alice","password":"x"}`, "1.2.3.4:5678"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestLoginRateLimitPerUser(t *testing.T) {
	limiter := newFakeLimiter()
	policy := LoginRateLimitPolicy{Window: time.Minute, UserLimit: 2}
	handler := LoginRateLimit(policy, limiter, nil, logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		// Case and spacing do not open a fresh window.
		body := `{"username":" Alice ","password":"x"}`
		if i == 1 {
			body = `{"username":"alice","password":"x"}`
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newLoginRequest(body, "10.0.0.1:1"))

		if i < 2 && rec.Code != http.StatusOK {
			t.Fatalf("attempt %d: expected 200, got %d", i, rec.Code)
		}
		if i == 2 {
			if rec.Code != http.StatusTooManyRequests {
				t.Fatalf("expected 429, got %d", rec.Code)
			}
			if rec.Header().Get("Retry-After") != "60" {
				t.Errorf("expected Retry-After 60, got %q", rec.Header().Get("Retry-After"))
			}
		}
	}
}

func TestLoginRateLimitPerIP(t *testing.T) {
	limiter := newFakeLimiter()
	policy := LoginRateLimitPolicy{Window: time.Minute, IPLimit: 1, TrustProxy: true}
	handler := LoginRateLimit(policy, limiter, nil, logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newLoginRequest(`{}`, "1.1.1.1:1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// A client-supplied first hop does not open a fresh window.
	rec = httptest.NewRecorder()
	req := newLoginRequest(`{}`, "10.0.0.1:1")
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 1.1.1.1")
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected the proxy-appended address to share the window, got %d", rec.Code)
	}
}

func TestLoginRateLimitIgnoresForwardedForWithoutProxy(t *testing.T) {
	limiter := newFakeLimiter()
	policy := LoginRateLimitPolicy{Window: time.Minute, IPLimit: 1}
	handler := LoginRateLimit(policy, limiter, nil, logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i, forwarded := range []string{"203.0.113.1", "203.0.113.2"} {
		rec := httptest.NewRecorder()
		req := newLoginRequest(`{}`, "9.9.9.9:1")
		req.Header.Set("X-Forwarded-For", forwarded)
		req.Header.Set("X-Real-IP", forwarded)
		handler.ServeHTTP(rec, req)

		want := http.StatusOK
		if i == 1 {
			want = http.StatusTooManyRequests
		}
		if rec.Code != want {
			t.Fatalf("attempt %d: expected %d, got %d", i, want, rec.Code)
		}
	}
	if _, ok := limiter.counts["login:ip:9.9.9.9"]; !ok {
		t.Errorf("expected the counter to use the remote address, got %v", limiter.counts)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:4321"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 198.51.100.2")

	if got := clientIP(req, false); got != "10.0.0.1" {
		t.Errorf("untrusted: expected 10.0.0.1, got %q", got)
	}
	if got := clientIP(req, true); got != "198.51.100.2" {
		t.Errorf("trusted: expected 198.51.100.2, got %q", got)
	}
}

func TestLoginRateLimitDependencyError(t *testing.T) {
	limiter := newFakeLimiter()
	limiter.err = errors.New("redis down")
	policy := LoginRateLimitPolicy{Window: time.Minute, IPLimit: 1}
	handler := LoginRateLimit(policy, limiter, nil, logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newLoginRequest(`{}`, "1.1.1.1:1"))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "redis down") {
		t.Error("dependency detail leaked to the caller")
	}
}

func TestLoginRateLimitDisabled(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	LoginRateLimit(LoginRateLimitPolicy{Window: time.Minute, IPLimit: 1}, nil, nil, logger.Nop())(next).
		ServeHTTP(httptest.NewRecorder(), newLoginRequest(`{}`, "1.1.1.1:1"))
	if !called {
		t.Fatal("expected pass-through without a limiter")
	}
}
