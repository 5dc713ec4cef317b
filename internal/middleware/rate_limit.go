package middleware

import (
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"insurance-portal/internal/config"
	"insurance-portal/internal/models"
)

// idleLimiterTTL is how long an unused per-IP limiter is kept
const idleLimiterTTL = 10 * time.Minute

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled                bool
	RequestsPerMinute      int
	Burst                  int
	AdminRequestsPerMinute int
}

// NewRateLimitConfig derives the limiter settings from the loaded config.
// Admin routes get half the general rate.
func NewRateLimitConfig(cfg *config.Config) RateLimitConfig {
	rlc := RateLimitConfig{
		Enabled:           cfg.RateLimitEnabled,
		RequestsPerMinute: cfg.RateLimitRequestsPerMinute,
		Burst:             cfg.RateLimitBurst,
	}
	if rlc.RequestsPerMinute <= 0 {
		slog.Warn("Invalid rate limit requests per minute, using default",
			"configured", cfg.RateLimitRequestsPerMinute, "default", 300)
		rlc.RequestsPerMinute = 300
	}
	if rlc.Burst <= 0 {
		rlc.Burst = 1
	}
	rlc.AdminRequestsPerMinute = max(rlc.RequestsPerMinute/2, 1)
	return rlc
}

// RateLimitInfo contains rate limit information for response headers
type RateLimitInfo struct {
	Limit     int
	Remaining int
	ResetTime time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP and route class
type RateLimiter struct {
	config        RateLimitConfig
	limiters      map[string]*clientLimiter
	mutex         sync.Mutex
	now           func() time.Time
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	stopOnce      sync.Once
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		config:      config,
		limiters:    make(map[string]*clientLimiter),
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	rl.cleanupTicker = time.NewTicker(time.Minute)
	go rl.cleanupIdleLimiters()

	slog.Info("Rate limiter initialized",
		"enabled", config.Enabled,
		"requests_per_minute", config.RequestsPerMinute,
		"burst", config.Burst,
		"admin_requests_per_minute", config.AdminRequestsPerMinute)

	return rl
}

// Stop stops the cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		rl.cleanupTicker.Stop()
		close(rl.stopCleanup)
	})
}

func (rl *RateLimiter) cleanupIdleLimiters() {
	for {
		select {
		case <-rl.cleanupTicker.C:
			rl.mutex.Lock()
			cutoff := rl.now().Add(-idleLimiterTTL)
			for key, cl := range rl.limiters {
				if cl.lastSeen.Before(cutoff) {
					delete(rl.limiters, key)
				}
			}
			rl.mutex.Unlock()
		case <-rl.stopCleanup:
			return
		}
	}
}

// IsAllowed checks if a request is allowed based on rate limiting rules
func (rl *RateLimiter) IsAllowed(clientIP string, isAdmin bool) (bool, *RateLimitInfo) {
	if !rl.config.Enabled {
		return true, &RateLimitInfo{Limit: -1, Remaining: -1}
	}

	perMinute := rl.config.RequestsPerMinute
	key := "user|" + clientIP
	if isAdmin {
		perMinute = rl.config.AdminRequestsPerMinute
		key = "admin|" + clientIP
	}

	now := rl.now()
	rl.mutex.Lock()
	cl, exists := rl.limiters[key]
	if !exists {
		cl = &clientLimiter{
			limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60), rl.config.Burst),
		}
		rl.limiters[key] = cl
	}
	cl.lastSeen = now
	rl.mutex.Unlock()

	info := &RateLimitInfo{Limit: perMinute}
	if cl.limiter.AllowN(now, 1) {
		info.Remaining = int(math.Floor(cl.limiter.TokensAt(now)))
		return true, info
	}

	// time until one token is available again
	reservation := cl.limiter.ReserveN(now, 1)
	info.ResetTime = now.Add(reservation.DelayFrom(now))
	reservation.CancelAt(now)
	return false, info
}

// GetRateLimitStats returns current rate limiting statistics
func (rl *RateLimiter) GetRateLimitStats() map[string]any {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	admin := 0
	for key := range rl.limiters {
		if strings.HasPrefix(key, "admin|") {
			admin++
		}
	}
	return map[string]any{
		"enabled":                   rl.config.Enabled,
		"requests_per_minute":       rl.config.RequestsPerMinute,
		"burst":                     rl.config.Burst,
		"admin_requests_per_minute": rl.config.AdminRequestsPerMinute,
		"active_ip_limits":          len(rl.limiters) - admin,
		"active_admin_limits":       admin,
	}
}

// ResetRateLimits drops every bucket
func (rl *RateLimiter) ResetRateLimits() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	rl.limiters = make(map[string]*clientLimiter)
	slog.Info("Rate limits reset")
}

// RateLimitMiddleware creates a rate limiting middleware using an existing rate limiter
func RateLimitMiddleware(rateLimiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/health", "/ready", "/metrics":
				next.ServeHTTP(w, r)
				return
			}

			clientIP := ClientIP(r)
			isAdmin := strings.HasPrefix(r.URL.Path, "/v1/admin")

			allowed, info := rateLimiter.IsAllowed(clientIP, isAdmin)
			setRateLimitHeaders(w, info)

			if !allowed {
				slog.Warn("Rate limit exceeded",
					"client_ip", clientIP,
					"path", r.URL.Path,
					"method", r.Method,
					"is_admin", isAdmin,
					"limit", info.Limit,
					"reset_time", info.ResetTime.Format(time.RFC3339))

				writeRateLimitErrorResponse(w, info)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP extracts the client IP address from the request
func ClientIP(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs, the first is the client
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" && net.ParseIP(xri) != nil {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// setRateLimitHeaders sets rate limit headers in the response
func setRateLimitHeaders(w http.ResponseWriter, info *RateLimitInfo) {
	if info.Limit < 0 {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	if !info.ResetTime.IsZero() {
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// writeRateLimitErrorResponse writes a rate limit exceeded error response
func writeRateLimitErrorResponse(w http.ResponseWriter, info *RateLimitInfo) {
	retryAfter := 1
	if !info.ResetTime.IsZero() {
		retryAfter = max(int(math.Ceil(time.Until(info.ResetTime).Seconds())), 1)
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

	writeErrorResponse(w, http.StatusTooManyRequests, "rate_limit_exceeded",
		"Rate limit exceeded. Please try again later.",
		[]models.ErrorDetail{
			{Field: "rate_limit", Issue: fmt.Sprintf("Exceeded %d requests per minute.", info.Limit)},
			{Field: "retry_after", Issue: fmt.Sprintf("Retry after %d seconds", retryAfter)},
		})
}
