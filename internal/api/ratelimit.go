package api

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	domainerrors "github.com/shelfkeeper/shelfkeeper-server/internal/errors"
	"github.com/shelfkeeper/shelfkeeper-server/internal/http/response"
	"github.com/shelfkeeper/shelfkeeper-server/internal/ratelimit"
)

// RateLimitMiddleware rate limits requests by client IP for every path under
// prefix. Other paths pass through untouched.
// Returns 429 Too Many Requests when limit is exceeded.
func RateLimitMiddleware(limiter *ratelimit.KeyedRateLimiter, prefix string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || !strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}

			key := getClientIP(r)
			if !limiter.Allow(key) {
				logger.Warn("Rate limit exceeded",
					"ip", key,
					"path", r.URL.Path,
				)
				w.Header().Set("Retry-After", "1")
				response.Error(w, domainerrors.RateLimited("too many requests, please try again later"), logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP returns the peer address of the request without its port.
// Forwarding headers are honored only through RemoteAddr, which the RealIP
// middleware rewrites when proxy headers are trusted.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
