package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultCleanupInterval = time.Minute
	defaultKeyTTL          = 5 * time.Minute
)

// bucketSet holds one token bucket per key and evicts keys idle for longer
// than ttl.
type bucketSet struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newBucketSet(perSecond float64, burst int, interval, ttl time.Duration) *bucketSet {
	if interval <= 0 {
		interval = defaultCleanupInterval
	}
	if ttl <= 0 {
		ttl = defaultKeyTTL
	}
	s := &bucketSet{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(perSecond),
		burst:   burst,
		ttl:     ttl,
		stop:    make(chan struct{}),
	}
	go s.evictLoop(interval)
	return s
}

func (s *bucketSet) allow(key string) bool {
	now := time.Now()

	s.mu.Lock()
	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.buckets[key] = b
	}
	b.lastSeen = now
	s.mu.Unlock()

	return b.limiter.AllowN(now, 1)
}

func (s *bucketSet) evictLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for key, b := range s.buckets {
				if now.Sub(b.lastSeen) > s.ttl {
					delete(s.buckets, key)
				}
			}
			s.mu.Unlock()
		}
	}
}

func (s *bucketSet) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

func (s *bucketSet) close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// retryAfter is the number of whole seconds until one token refills.
func (s *bucketSet) retryAfter() string {
	if s.limit <= 0 || s.limit == rate.Inf {
		return "1"
	}
	return strconv.Itoa(int(math.Ceil(1 / float64(s.limit))))
}

func (s *bucketSet) reject(w http.ResponseWriter) {
	w.Header().Set("Retry-After", s.retryAfter())
	writeError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
}

// RateLimiter limits requests per client IP.
type RateLimiter struct {
	set *bucketSet
}

// RateLimiterConfig holds rate limiter configuration
type RateLimiterConfig struct {
	RequestsPerSecond float64       // Requests allowed per second
	BurstSize         int           // Maximum burst size
	CleanupInterval   time.Duration // How often to clean up old visitors
	TTL               time.Duration // How long to keep inactive visitors
}

// NewRateLimiter starts a limiter; call Stop to end its cleanup goroutine.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	return &RateLimiter{
		set: newBucketSet(cfg.RequestsPerSecond, cfg.BurstSize, cfg.CleanupInterval, cfg.TTL),
	}
}

// Allow checks if a request from the given IP is allowed
func (rl *RateLimiter) Allow(ip string) bool {
	return rl.set.allow(ip)
}

// Stop ends the background cleanup.
func (rl *RateLimiter) Stop() {
	rl.set.close()
}

// Middleware rejects requests over the limit with 429 and Retry-After.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(getClientIP(r)) {
			rl.set.reject(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// getClientIP prefers the first X-Forwarded-For entry, then X-Real-IP,
// then the connection's remote address.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		first = strings.TrimSpace(first)
		if ip, _, err := net.SplitHostPort(first); err == nil {
			return ip
		}
		return first
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// RateLimitByKey limits requests per authenticated caller.
type RateLimitByKey struct {
	set *bucketSet
}

func NewRateLimitByKey(requestsPerSecond float64, burst int) *RateLimitByKey {
	return &RateLimitByKey{
		set: newBucketSet(requestsPerSecond, burst, defaultCleanupInterval, defaultKeyTTL),
	}
}

// Allow checks if a request with the given key is allowed
func (rl *RateLimitByKey) Allow(key string) bool {
	return rl.set.allow(key)
}

// PerCaller limits authenticated requests by caller ID. It must run after
// Authenticator; requests without a caller fall back to the client IP.
func (rl *RateLimitByKey) PerCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := "ip:" + getClientIP(r)
		if caller, ok := CallerFromContext(r.Context()); ok {
			key = "caller:" + caller.ID.String()
		}

		if !rl.Allow(key) {
			rl.set.reject(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Stop ends the background cleanup.
func (rl *RateLimitByKey) Stop() {
	rl.set.close()
}
