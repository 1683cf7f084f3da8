package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/davidbz/relay/internal/clock"
	"github.com/davidbz/relay/internal/config"
	"github.com/davidbz/relay/internal/observability"
)

// Ingress limits each client to a token bucket keyed by X-User-Id, or by
// remote host when the header is absent. A non-positive rate disables it.
func Ingress(cfg *config.IngressConfig, clk clock.Clock) Middleware {
	if cfg == nil || cfg.RatePerSecond <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	limiters := newClientLimiters(cfg, clk)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			if !limiters.allow(key) {
				observability.FromContext(r.Context()).Warn("ingress rate limit exceeded",
					observability.String("client", key))
				w.Header().Set("Retry-After", "1")
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type clientLimiters struct {
	mu        sync.Mutex
	clock     clock.Clock
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	clients   map[string]*clientLimiter
}

func newClientLimiters(cfg *config.IngressConfig, clk clock.Clock) *clientLimiters {
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &clientLimiters{
		clock:     clk,
		limit:     rate.Limit(cfg.RatePerSecond),
		burst:     burst,
		idleTTL:   cfg.IdleTTL,
		lastSweep: clk.Now(),
		clients:   make(map[string]*clientLimiter),
	}
}

func (c *clientLimiters) allow(key string) bool {
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.sweep(now)

	client, ok := c.clients[key]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(c.limit, c.burst)}
		c.clients[key] = client
	}
	client.lastSeen = now

	return client.limiter.AllowN(now, 1)
}

// sweep drops clients idle for longer than idleTTL. Caller holds mu.
func (c *clientLimiters) sweep(now time.Time) {
	if c.idleTTL <= 0 || now.Sub(c.lastSweep) < c.idleTTL {
		return
	}
	for key, client := range c.clients {
		if now.Sub(client.lastSeen) >= c.idleTTL {
			delete(c.clients, key)
		}
	}
	c.lastSweep = now
}

func (c *clientLimiters) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.clients)
}

func clientKey(r *http.Request) string {
	if userID := r.Header.Get(UserIDHeader); userID != "" {
		return "user:" + userID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "addr:" + r.RemoteAddr
	}
	return "addr:" + host
}
