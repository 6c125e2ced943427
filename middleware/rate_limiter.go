// middleware/rate_limiter.go
package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/HSouheill/portfolio_backend/models"
)

type endpointLimit struct {
	limit rate.Limit
	burst int
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type RateLimiter struct {
	ips            map[string]*visitor
	blockedIPs     map[string]time.Time
	mu             sync.Mutex
	defaultLimit   rate.Limit
	defaultBurst   int
	blockDuration  time.Duration
	idleTTL        time.Duration
	endpointLimits map[string]endpointLimit
	now            func() time.Time
}

func NewRateLimiter() *RateLimiter {
	limiter := &RateLimiter{
		ips:            make(map[string]*visitor),
		blockedIPs:     make(map[string]time.Time),
		defaultLimit:   rate.Every(100 * time.Millisecond), // 10 requests per second
		defaultBurst:   20,
		blockDuration:  5 * time.Minute,
		idleTTL:        10 * time.Minute,
		endpointLimits: make(map[string]endpointLimit),
		now:            time.Now,
	}

	// Sign-in endpoints are strict to slow down password guessing
	limiter.SetEndpointLimit("/api/auth/login", rate.Every(2*time.Second), 5)
	limiter.SetEndpointLimit("/api/auth/oauth", rate.Every(2*time.Second), 5)
	// One visitor should not flood the editor's inbox
	limiter.SetEndpointLimit("/api/contact", rate.Every(10*time.Second), 3)

	return limiter
}

// SetEndpointLimit overrides the limit for one route path
func (r *RateLimiter) SetEndpointLimit(path string, limit rate.Limit, burst int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpointLimits[path] = endpointLimit{limit: limit, burst: burst}
}

// Cleanup drops expired blocks and idle limiters every interval until ctx
// is done
func (r *RateLimiter) Cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.pruneBlocked()
			r.pruneIdle()
		}
	}
}

func (r *RateLimiter) pruneBlocked() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for ip, blockUntil := range r.blockedIPs {
		if now.After(blockUntil) {
			delete(r.blockedIPs, ip)
			for key := range r.ips {
				if strings.HasPrefix(key, ip+"|") {
					delete(r.ips, key)
				}
			}
		}
	}
}

// pruneIdle forgets limiters not used within idleTTL
func (r *RateLimiter) pruneIdle() {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-r.idleTTL)
	for key, v := range r.ips {
		if v.lastSeen.Before(cutoff) {
			delete(r.ips, key)
		}
	}
}

func (r *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if strings.HasPrefix(c.Request().URL.Path, "/uploads/") {
				return next(c)
			}

			ip := c.RealIP()

			r.mu.Lock()
			if blockUntil, blocked := r.blockedIPs[ip]; blocked {
				if r.now().Before(blockUntil) {
					r.mu.Unlock()
					return tooManyRequests(c, blockUntil)
				}
				delete(r.blockedIPs, ip)
			}
			r.mu.Unlock()

			limiter := r.getLimiter(ip, c.Path())
			if !limiter.Allow() {
				blockUntil := r.now().Add(r.blockDuration)
				r.mu.Lock()
				r.blockedIPs[ip] = blockUntil
				r.mu.Unlock()
				return tooManyRequests(c, blockUntil)
			}

			return next(c)
		}
	}
}

// getLimiter keeps one limiter per ip for each strictly limited path and
// one shared limiter per ip for everything else
func (r *RateLimiter) getLimiter(ip, path string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	limit, burst := r.defaultLimit, r.defaultBurst
	key := ip + "|*"
	if el, ok := r.endpointLimits[path]; ok {
		limit, burst = el.limit, el.burst
		key = ip + "|" + path
	}

	v, exists := r.ips[key]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(limit, burst)}
		r.ips[key] = v
	}
	v.lastSeen = r.now()
	return v.limiter
}

func tooManyRequests(c echo.Context, retryAfter time.Time) error {
	c.Response().Header().Set("Retry-After", retryAfter.UTC().Format(http.TimeFormat))
	return c.JSON(http.StatusTooManyRequests, models.Response{
		Status:  http.StatusTooManyRequests,
		Message: "Too many requests",
		Data:    map[string]string{"retryAfter": retryAfter.Format(time.RFC3339)},
	})
}
