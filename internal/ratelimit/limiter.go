// Package ratelimit tracks a request window per provider.
package ratelimit

import (
	"sync"
	"time"

	"github.com/davidbz/relay/internal/clock"
)

// Config contains provider rate limit defaults.
type Config struct {
	MaxRequests int           `env:"RATE_LIMIT_MAX_REQUESTS" envDefault:"100"`
	Window      time.Duration `env:"RATE_LIMIT_WINDOW"       envDefault:"1m"`
}

// Limiter is a fixed window counter per provider. A window starts on the
// first request and resets lazily on the first check after it expires.
type Limiter struct {
	mu         sync.Mutex
	clock      clock.Clock
	window     time.Duration
	defaultMax int
	limits     map[string]int
	windows    map[string]*window
}

type window struct {
	start time.Time
	count int
}

// NewLimiter creates a limiter applying cfg to providers without an explicit limit.
func NewLimiter(clk clock.Clock, cfg *Config) *Limiter {
	return &Limiter{
		clock:      clk,
		window:     cfg.Window,
		defaultMax: cfg.MaxRequests,
		limits:     make(map[string]int),
		windows:    make(map[string]*window),
	}
}

// SetLimit overrides the per-window maximum for a provider. Non-positive
// values restore the default. Lowering the limit mid-window clamps the
// window's count, leaving it exhausted until it resets.
func (l *Limiter) SetLimit(providerID string, maxRequests int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if maxRequests <= 0 {
		delete(l.limits, providerID)
	} else {
		l.limits[providerID] = maxRequests
	}

	if w, ok := l.windows[providerID]; ok {
		w.count = min(w.count, l.limitFor(providerID))
	}
}

// Count returns the number of requests consumed in the current window.
func (l *Limiter) Count(providerID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.current(providerID).count
}

// Allow consumes a slot and reports whether the request may proceed.
func (l *Limiter) Allow(providerID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.current(providerID)
	if w.count >= l.limitFor(providerID) {
		return false
	}
	w.count++
	return true
}

// Allowed reports whether a slot is free without consuming it.
func (l *Limiter) Allowed(providerID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.current(providerID).count < l.limitFor(providerID)
}

// Remaining returns the number of free slots in the current window.
func (l *Limiter) Remaining(providerID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return max(0, l.limitFor(providerID)-l.current(providerID).count)
}

// current returns the provider's window, resetting it if expired. Caller holds mu.
func (l *Limiter) current(providerID string) *window {
	now := l.clock.Now()

	w, ok := l.windows[providerID]
	if !ok {
		w = &window{start: now}
		l.windows[providerID] = w
		return w
	}

	if now.Sub(w.start) >= l.window {
		w.start = now
		w.count = 0
	}
	return w
}

func (l *Limiter) limitFor(providerID string) int {
	if limit, ok := l.limits[providerID]; ok {
		return limit
	}
	return l.defaultMax
}
