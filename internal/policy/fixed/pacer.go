// Package fixed paces source runs with a constant delay.
package fixed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/JakeFAU/govjobs-ingestor/internal/metrics"
)

// DefaultDelay is the pause between consecutive sources.
const DefaultDelay = time.Second

// Pacer waits a fixed delay before every call except the first one of a run.
type Pacer struct {
	delay time.Duration

	mu      sync.Mutex
	started bool
}

// New creates a Pacer. A non-positive delay disables pacing.
func New(delay time.Duration) *Pacer {
	return &Pacer{delay: delay}
}

// Reset marks the start of a new run so the next Wait returns immediately.
func (p *Pacer) Reset() {
	p.mu.Lock()
	p.started = false
	p.mu.Unlock()
}

// Wait blocks for the configured delay or until ctx is done.
func (p *Pacer) Wait(ctx context.Context, _ string) error {
	p.mu.Lock()
	first := !p.started
	p.started = true
	p.mu.Unlock()

	if first || p.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.delay)
	defer timer.Stop()
	start := time.Now()
	select {
	case <-ctx.Done():
		return fmt.Errorf("pacer wait: %w", ctx.Err())
	case <-timer.C:
		metrics.ObservePacerWait(time.Since(start))
		return nil
	}
}
