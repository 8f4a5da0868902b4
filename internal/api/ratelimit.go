package api

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/erazemk/phonestock/internal/errors"
	"github.com/erazemk/phonestock/internal/logger"
	"github.com/erazemk/phonestock/internal/metrics"
)

// RateLimiter is the fixed-window counter behind login throttling.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// LoginRateLimitPolicy defines the throttling parameters for the login endpoint.
type LoginRateLimitPolicy struct {
	Window    time.Duration
	IPLimit   int
	UserLimit int
	// TrustProxy keys the IP counter on forwarding headers.
	TrustProxy bool
}

func (p LoginRateLimitPolicy) enabled() bool {
	return p.Window > 0 && (p.IPLimit > 0 || p.UserLimit > 0)
}

// LoginRateLimit enforces per-IP and per-username counters. With no limiter
// configured requests pass through untouched.
func LoginRateLimit(policy LoginRateLimitPolicy, limiter RateLimiter, m *metrics.Metrics, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || limiter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if policy.IPLimit > 0 {
				if ip := clientIP(r, policy.TrustProxy); ip != "" {
					if !checkLimit(ctx, w, limiter, m, logg, "ip", "login:ip:"+ip, policy.IPLimit, policy.Window) {
						return
					}
				}
			}

			if policy.UserLimit > 0 {
				body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
				if err != nil {
					writeError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid request body"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))

				if username := extractUsername(body); username != "" {
					if !checkLimit(ctx, w, limiter, m, logg, "user", "login:user:"+hashValue(username), policy.UserLimit, policy.Window) {
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// checkLimit counts one attempt and writes the rejection when over the limit.
func checkLimit(ctx context.Context, w http.ResponseWriter, limiter RateLimiter, m *metrics.Metrics, logg *logger.Logger, scope, key string, limit int, window time.Duration) bool {
	allowed, count, err := limiter.FixedWindowAllow(ctx, key, int64(limit), window)
	if err != nil {
		writeError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
		return false
	}
	if allowed {
		return true
	}

	m.IncRateLimited("login_" + scope)
	logg.Warn(logg.WithFields(ctx, map[string]any{
		"scope":          scope,
		"attempts":       count,
		"limit":          limit,
		"window_seconds": int(window.Seconds()),
	}), "auth.rate_limit.blocked")

	w.Header().Set("Retry-After", fmt.Sprint(int(window.Seconds())))
	writeError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "Too many login attempts, try again later"))
	return false
}

// clientIP returns the caller's address. Forwarding headers are read only
// when trustProxy is set, since any client can send them.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if header := r.Header.Get("X-Forwarded-For"); header != "" {
			// The last hop is the one the proxy appended itself.
			parts := strings.Split(header, ",")
			for i := len(parts) - 1; i >= 0; i-- {
				if ip := strings.TrimSpace(parts[i]); ip != "" {
					return ip
				}
			}
		}
		if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func extractUsername(payload []byte) string {
	var body struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(body.Username))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
