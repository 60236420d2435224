// Package middleware holds the gin middleware shared by the API routes.
package middleware

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"rentalscout/internal/util"
)

// RateLimiter gives every client IP its own token bucket. Buckets unused for the
// idle window are dropped by a background sweep until Stop is called.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   rate.Limit
	burst   int
	idle    time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

type client struct {
	bucket *rate.Limiter
	seen   time.Time
}

// NewRateLimiter allows r requests per second per IP with bursts of b.
func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*client),
		limit:   r,
		burst:   b,
		idle:    3 * time.Minute,
		done:    make(chan struct{}),
	}
	go rl.sweep(time.Minute)
	return rl
}

// Allow takes a token from ip's bucket.
func (rl *RateLimiter) Allow(ip string) bool {
	return rl.bucket(ip, time.Now()).Allow()
}

func (rl *RateLimiter) bucket(ip string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, ok := rl.clients[ip]
	if !ok {
		cl = &client{bucket: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = cl
	}
	cl.seen = now
	return cl.bucket
}

// Stop ends the background sweep. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) sweep(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-rl.done:
			return
		case now := <-t.C:
			if n := rl.forget(now); n > 0 {
				log.Printf("🧹 [ratelimit] dropped %d idle clients", n)
			}
		}
	}
}

// forget removes clients not seen within the idle window and reports how many went.
func (rl *RateLimiter) forget(now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := now.Add(-rl.idle)
	n := 0
	for ip, cl := range rl.clients {
		if cl.seen.Before(cutoff) {
			delete(rl.clients, ip)
			n++
		}
	}
	return n
}

// RateLimitMiddleware answers 429 once a client's bucket is empty.
func RateLimitMiddleware(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !rl.Allow(ip) {
			log.Printf("⚠️  [ratelimit] %s over limit on %s", ip, c.FullPath())
			util.AbortWithError(c, http.StatusTooManyRequests, "Please slow down your requests", nil)
			return
		}
		c.Next()
	}
}
