package middleware

import (
	"net"
	"net/http"

	"thrift-swap-backend/internal/ratelimit"

	"github.com/rs/zerolog/log"
)

// RateLimit rejects requests over the limiter's quota with 429. Requests are
// keyed by user when authenticated, by client IP otherwise.
func RateLimit(limiter ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ip:" + clientIP(r.RemoteAddr)
			if userID := GetUserID(r.Context()); userID != "" {
				key = "user:" + userID
			}
			if !limiter.Allow(key) {
				log.Warn().Str("key", key).Str("path", r.URL.Path).Msg("Rate limit exceeded")
				respondError(w, "Too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(remote string) string {
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		return remote
	}
	return host
}
