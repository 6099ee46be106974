package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter gives every client IP a token bucket refilled at limit per
// window. A bucket idle for a whole window is full again, so it is dropped
// and recreated on the next request.
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*client
	interval  time.Duration
	burst     int
	idle      time.Duration
	lastSweep time.Time

	// honour X-Forwarded-For / X-Real-IP, only behind a proxy that sets them
	trustProxy bool
	now        func() time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(limit int, window time.Duration, trustProxy bool) *RateLimiter {
	if limit < 1 {
		limit = 1
	}
	return &RateLimiter{
		clients:    make(map[string]*client),
		interval:   window / time.Duration(limit),
		burst:      limit,
		idle:       window,
		trustProxy: trustProxy,
		now:        time.Now,
	}
}

// Allow spends one token from ip's bucket
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= rl.idle {
		rl.sweep(now)
	}

	c, ok := rl.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rate.Every(rl.interval), rl.burst)}
		rl.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// sweep forgets clients idle for a full window. Callers hold mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for ip, c := range rl.clients {
		if now.Sub(c.lastSeen) >= rl.idle {
			delete(rl.clients, ip)
		}
	}
	rl.lastSweep = now
}

// Len reports how many clients are tracked
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Wrap rejects requests over the limit with 429
func (rl *RateLimiter) Wrap(next http.HandlerFunc) http.HandlerFunc {
	retryAfter := strconv.Itoa(int(math.Ceil(rl.interval.Seconds())))

	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r, rl.trustProxy)

		if !rl.Allow(ip) {
			slog.Warn("rate limit exceeded",
				"ip", ip,
				"path", r.URL.Path,
			)
			w.Header().Set("Retry-After", retryAfter)
			writeError(w, http.StatusTooManyRequests, "Too many requests")
			return
		}

		next(w, r)
	}
}

// RateLimit creates middleware allowing limit requests per window per client IP
func RateLimit(limit int, window time.Duration, trustProxy bool) func(http.HandlerFunc) http.HandlerFunc {
	return NewRateLimiter(limit, window, trustProxy).Wrap
}

// clientIP is the connection's peer address. With trustProxy the address the
// proxy appended last to X-Forwarded-For wins, since earlier entries come from
// the client and can be forged.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			hops := strings.Split(xff, ",")
			if ip := strings.TrimSpace(hops[len(hops)-1]); ip != "" {
				return ip
			}
		}
		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
			return xri
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
