package middleware

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thetoretto/hotpoint-bookings/internal/http/response"
	"github.com/thetoretto/hotpoint-bookings/pkg/logger"
)

// RateLimitConfig defines rate limiting parameters for one route group.
type RateLimitConfig struct {
	Requests int           // max requests per window
	Window   time.Duration // window duration
	KeyFunc  func(r *http.Request) []string
}

// RateLimiter is a fixed-window limiter backed by the rate_limits
// table. Postgres keeps the counters shared across API instances
// without another moving part.
type RateLimiter struct {
	pool   *pgxpool.Pool
	config RateLimitConfig
}

func NewRateLimiter(pool *pgxpool.Pool, config RateLimitConfig) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = func(r *http.Request) []string { return []string{ClientIP(r)} }
	}
	return &RateLimiter{pool: pool, config: config}
}

func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// No pool in dev mode: limiter is a no-op.
			if rl.pool == nil {
				next.ServeHTTP(w, r)
				return
			}
			for _, key := range rl.config.KeyFunc(r) {
				if key == "" {
					continue
				}
				if !rl.allow(r.Context(), key) {
					response.RateLimit(w, "too many requests, try again later")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) allow(ctx context.Context, key string) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	// Keys are hashed so raw IPs and emails never land in the table.
	sum := sha256.Sum256([]byte(key))
	hashed := fmt.Sprintf("%x", sum)

	now := time.Now()
	windowStart := now.Add(-rl.config.Window)

	const q = `
		INSERT INTO rate_limits (key, count, window_start, expires_at)
		VALUES ($1, 1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			count = CASE WHEN rate_limits.window_start < $4 THEN 1 ELSE rate_limits.count + 1 END,
			window_start = CASE WHEN rate_limits.window_start < $4 THEN $2 ELSE rate_limits.window_start END,
			expires_at = $3
		RETURNING count`

	var count int
	err := rl.pool.QueryRow(ctx, q, hashed, now, now.Add(2*rl.config.Window), windowStart).Scan(&count)
	if err != nil {
		// Fail open: a limiter outage must not block bookings.
		logger.WarnContext(ctx, "rate limiter query failed", "error", err)
		return true
	}
	return count <= rl.config.Requests
}

// ClientIP extracts the caller address, honoring X-Forwarded-For from
// the gateway.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
