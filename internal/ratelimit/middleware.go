package ratelimit

import (
	"net"
	"net/http"
	"strconv"
)

// DefaultRetryAfterSeconds is the Retry-After value sent with a 429.
const DefaultRetryAfterSeconds = 1

// ClientIP keys requests by remote address without the port.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Middleware rejects requests over the client's limit with 429 Too Many
// Requests, a Retry-After header and X-RateLimit-Remaining: 0. Requests with
// an empty key are not limited.
func Middleware(limiter *RateLimiter, key func(r *http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := key(r)
			if client == "" {
				next.ServeHTTP(w, r)
				return
			}

			l := limiter.GetLimiter(client)
			if !l.Allow() {
				w.Header().Set("Retry-After", strconv.Itoa(DefaultRetryAfterSeconds))
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"too many requests"}`))
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(int(l.Tokens()), 0)))
			next.ServeHTTP(w, r)
		})
	}
}
