package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"forensics/core"
	"forensics/metrics"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// windowEntry is one key's count in the current window
type windowEntry struct {
	count   int
	resetAt time.Time
}

// FixedWindowLimiter counts requests per key in fixed windows. With a Redis
// cache the counters are shared between instances; otherwise they live in memory.
type FixedWindowLimiter struct {
	name   string
	window time.Duration
	limit  int
	redis  *core.RedisCache
	logger *zap.SugaredLogger

	mu      sync.Mutex
	entries map[string]*windowEntry
	now     func() time.Time
}

// NewFixedWindowLimiter creates a limiter. redis may be nil.
func NewFixedWindowLimiter(name string, window time.Duration, limit int, redis *core.RedisCache, logger *zap.SugaredLogger) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		name:    name,
		window:  window,
		limit:   limit,
		redis:   redis,
		logger:  logger,
		entries: make(map[string]*windowEntry),
		now:     time.Now,
	}
}

// Allow records a hit for key and reports whether it is within the limit
func (f *FixedWindowLimiter) Allow(ctx context.Context, key string) bool {
	count := f.Hit(ctx, key)
	return count <= f.limit
}

// Hit records a hit for key and returns the count in the current window
func (f *FixedWindowLimiter) Hit(ctx context.Context, key string) int {
	if f.redis != nil {
		count, err := f.redis.IncrWindow(ctx, core.RateLimitCacheKey(f.name, key), f.window)
		if err == nil {
			return int(count)
		}
		f.logger.Warnw("Redis rate limit increment failed, falling back to memory",
			"limiter", f.name,
			"error", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	entry := f.entries[key]
	if entry == nil || !now.Before(entry.resetAt) {
		entry = &windowEntry{resetAt: now.Add(f.window)}
		f.entries[key] = entry
	}
	entry.count++
	return entry.count
}

// Exceeded reports whether key has already used up its window without recording a hit
func (f *FixedWindowLimiter) Exceeded(ctx context.Context, key string) bool {
	if f.redis != nil {
		var count int
		found, err := f.redis.Get(ctx, core.RateLimitCacheKey(f.name, key), &count)
		if err == nil {
			return found && count >= f.limit
		}
		f.logger.Warnw("Redis rate limit lookup failed, falling back to memory",
			"limiter", f.name,
			"error", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	entry := f.entries[key]
	if entry == nil || !f.now().Before(entry.resetAt) {
		return false
	}
	return entry.count >= f.limit
}

// Limit returns the per-window limit
func (f *FixedWindowLimiter) Limit() int {
	return f.limit
}

// cleanup drops expired in-memory windows
func (f *FixedWindowLimiter) cleanup() {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.now()
	for key, entry := range f.entries {
		if !now.Before(entry.resetAt) {
			delete(f.entries, key)
		}
	}
}

// uploadEntry holds a token bucket with last seen time
type uploadEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// UploadLimiter throttles evidence uploads per client with token buckets
type UploadLimiter struct {
	mu      sync.Mutex
	entries map[string]*uploadEntry
	limit   rate.Limit
	burst   int
}

// NewUploadLimiter allows perHour uploads per client with the given burst
func NewUploadLimiter(perHour, burst int) *UploadLimiter {
	if perHour <= 0 {
		perHour = 50
	}
	if burst <= 0 {
		burst = perHour
	}
	return &UploadLimiter{
		entries: make(map[string]*uploadEntry),
		limit:   rate.Every(time.Hour / time.Duration(perHour)),
		burst:   burst,
	}
}

// Allow reports whether key may upload now
func (u *UploadLimiter) Allow(key string) bool {
	u.mu.Lock()
	entry, exists := u.entries[key]
	if !exists {
		entry = &uploadEntry{limiter: rate.NewLimiter(u.limit, u.burst)}
		u.entries[key] = entry
	}
	entry.lastSeen = time.Now()
	// Capture the limiter while holding the lock so cleanup cannot race with it
	limiter := entry.limiter
	u.mu.Unlock()

	return limiter.Allow()
}

// cleanup removes buckets idle for longer than maxIdle
func (u *UploadLimiter) cleanup(maxIdle time.Duration) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for key, entry := range u.entries {
		if time.Since(entry.lastSeen) > maxIdle {
			delete(u.entries, key)
		}
	}
}

// cleanupLimiters periodically removes stale limiter state to prevent memory leaks
func (a *API) cleanupLimiters() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.apiLimiter.cleanup()
			a.loginLimiter.cleanup()
			a.uploadLimiter.cleanup(time.Hour)
		case <-a.stopCh:
			return
		}
	}
}

// writeRateLimitResponse writes a 429 with standard rate limit headers
func (a *API) writeRateLimitResponse(w http.ResponseWriter, limiter string, limit int, retryAfter time.Duration, message string) {
	metrics.RateLimitExceeded.WithLabelValues(limiter).Inc()
	w.Header().Set("RateLimit-Limit", strconv.Itoa(limit))
	w.Header().Set("RateLimit-Remaining", "0")
	w.Header().Set("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())))
	writeError(w, http.StatusTooManyRequests, message, nil, a.logger)
}

// rateLimitMiddleware applies the general /api limit per client IP
func (a *API) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := getRealIP(r, a.config.Server.TrustProxy)
		if !a.apiLimiter.Allow(r.Context(), ip) {
			a.writeRateLimitResponse(w, "api", a.apiLimiter.Limit(), a.config.RateLimit.Window(),
				"Too many requests from this IP, please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// loginRateLimitMiddleware counts only failed logins, so a user who signs in
// successfully never burns their allowance.
func (a *API) loginRateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := getRealIP(r, a.config.Server.TrustProxy)
		if a.loginLimiter.Exceeded(r.Context(), ip) {
			a.writeRateLimitResponse(w, "login", a.loginLimiter.Limit(), a.config.RateLimit.Login.Window(),
				"Too many login attempts, please try again later.")
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if rec.status >= http.StatusBadRequest {
			a.loginLimiter.Hit(r.Context(), ip)
		}
	})
}

// uploadRateLimitMiddleware throttles evidence uploads per client IP
func (a *API) uploadRateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := getRealIP(r, a.config.Server.TrustProxy)
		if !a.uploadLimiter.Allow(ip) {
			a.writeRateLimitResponse(w, "upload", a.uploadLimiter.burst, time.Hour,
				"Upload limit exceeded, please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
