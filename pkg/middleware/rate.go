// Package middleware provides the HTTP middleware stack mounted by the kernel.
package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shashiranjanraj/cafe/config"
	"github.com/shashiranjanraj/cafe/pkg/cache"
	"github.com/shashiranjanraj/cafe/pkg/logger"
	"github.com/shashiranjanraj/cafe/pkg/response"
)

// RateLimit allows limit requests per client IP in each window. Counters live
// in the cache, so every instance shares them when Redis is connected.
func RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			n, left, err := cache.Hit("ratelimit:"+ip, window)
			if err != nil {
				// Fail open: a cache outage must not take the API down.
				logger.WithCtx(r.Context()).Warn("ratelimit: counter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			remaining := limit - int(n)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(remaining, 0)))
			if remaining < 0 {
				w.Header().Set("Retry-After", strconv.Itoa(int(left.Round(time.Second).Seconds())))
				response.TooManyRequests(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP is the connection's address, or the first X-Forwarded-For hop
// when TRUST_PROXY is set.
func ClientIP(r *http.Request) string {
	if config.Bool("TRUST_PROXY", false) {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			return strings.TrimSpace(first)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
