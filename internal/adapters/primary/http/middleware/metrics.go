package middleware

import (
	"net/http"
	"time"
)

// HTTPObserver records one finished request.
type HTTPObserver interface {
	ObserveHTTPRequest(method string, statusCode int, duration time.Duration)
}

// Metrics reports every request's method, status and latency to observer.
func Metrics(observer HTTPObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := newResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			observer.ObserveHTTPRequest(r.Method, wrapped.statusCode, time.Since(start))
		})
	}
}
