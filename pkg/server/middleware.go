package server

import (
	"net/http"

	"golang.org/x/time/rate"
)

// rateLimitMiddleware rejects requests with 429 once the shared limiter is
// exhausted. Proof generation and verification rebuild a tree per request,
// so the limiter bounds the CPU a burst of requests can claim.
func rateLimitMiddleware(limiter *rate.Limiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
