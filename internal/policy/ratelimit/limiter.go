// Package ratelimit paces source runs with token buckets.
package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/JakeFAU/govjobs-ingestor/internal/metrics"
)

const sharedKey = "*"

// Limiter hands out tokens either from one shared bucket or from one bucket
// per source host.
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
	perHost  bool
}

// Config holds rate limiter configuration.
type Config struct {
	// RPS is the sustained rate of source runs. Zero or less means unlimited.
	RPS   float64
	Burst int
	// PerHost keeps a separate bucket per source host.
	PerHost bool
}

// New creates a new Limiter.
func New(cfg Config) *Limiter {
	r := rate.Limit(cfg.RPS)
	if cfg.RPS <= 0 {
		r = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     r,
		burst:    burst,
		perHost:  cfg.PerHost,
	}
}

// Wait blocks until a token is available for next, respecting the context.
func (l *Limiter) Wait(ctx context.Context, next string) error {
	limiter := l.limiterFor(l.key(next))

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	if waited := time.Since(start); waited > time.Millisecond {
		metrics.ObservePacerWait(waited)
	}
	return nil
}

func (l *Limiter) key(next string) string {
	if !l.perHost {
		return sharedKey
	}
	if u, err := url.Parse(next); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	return "unknown"
}

func (l *Limiter) limiterFor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters[key] = limiter
	}
	return limiter
}
