// Package orchestrator runs every source through the ingest pipeline, one run
// at a time.
package orchestrator

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/govjobs-ingestor/internal/ingest"
	"github.com/JakeFAU/govjobs-ingestor/internal/metrics"
	"github.com/JakeFAU/govjobs-ingestor/internal/notice"
	"github.com/JakeFAU/govjobs-ingestor/internal/source"
)

// Processor persists a single raw notice.
type Processor interface {
	Process(ctx context.Context, raw notice.RawNotice) (ingest.Outcome, error)
}

// Pacer decides how long to wait before the next source runs.
type Pacer interface {
	Wait(ctx context.Context, next string) error
}

// resetter is implemented by pacers that track position within a run.
type resetter interface {
	Reset()
}

// Runner executes ingestion runs. RunAll is safe for concurrent use; only one
// call does work at a time and overlapping calls return immediately.
type Runner struct {
	sources   []source.Source
	processor Processor
	pacer     Pacer
	clock     notice.Clock
	logger    *zap.Logger

	running atomic.Bool
}

// New constructs a Runner. pacer may be nil to run sources back to back.
func New(sources []source.Source, processor Processor, pacer Pacer, clock notice.Clock, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		sources:   sources,
		processor: processor,
		pacer:     pacer,
		clock:     clock,
		logger:    logger.Named("orchestrator"),
	}
}

// Running reports whether a run is in progress.
func (r *Runner) Running() bool {
	return r.running.Load()
}

// Sources returns the configured sources in run order.
func (r *Runner) Sources() []source.Source {
	return append([]source.Source(nil), r.sources...)
}

// RunAll runs every source sequentially. When another run is active it
// returns a zero RunResult without doing anything.
func (r *Runner) RunAll(ctx context.Context) notice.RunResult {
	if !r.running.CompareAndSwap(false, true) {
		metrics.ObserveRejectedRun()
		r.logger.Warn("run rejected: another run is active")
		return notice.RunResult{}
	}
	defer r.running.Store(false)
	metrics.SetRunActive(true)
	defer metrics.SetRunActive(false)

	result := notice.RunResult{StartedAt: r.clock.Now()}
	start := time.Now()
	r.logger.Info("run started", zap.Int("sources", len(r.sources)))

	if p, ok := r.pacer.(resetter); ok {
		p.Reset()
	}
	for _, src := range r.sources {
		if err := r.wait(ctx, src); err != nil {
			r.logger.Warn("run interrupted", zap.String("next_source", src.Name()), zap.Error(err))
			break
		}
		sr := r.runSource(ctx, src)
		result.Fetched += sr.Fetched
		result.Total += sr.Saved + sr.Skipped + sr.NoticeErrors()
		result.Saved += sr.Saved
		result.Skipped += sr.Skipped
		result.Errors += sr.Errors
		result.Sources = append(result.Sources, sr)
	}

	result.FinishedAt = r.clock.Now()
	metrics.ObserveRun(time.Since(start))
	r.logger.Info("run finished",
		zap.Int("fetched", result.Fetched),
		zap.Int("total", result.Total),
		zap.Int("saved", result.Saved),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", result.Errors),
		zap.Duration("duration", time.Since(start)),
	)
	return result
}

func (r *Runner) wait(ctx context.Context, src source.Source) error {
	if r.pacer == nil {
		return ctx.Err()
	}
	if err := r.pacer.Wait(ctx, src.URL()); err != nil {
		return fmt.Errorf("pace %s: %w", src.Name(), err)
	}
	return nil
}

// runSource fetches and processes one source. A panic anywhere in the source
// is recovered and counted as a single error.
func (r *Runner) runSource(ctx context.Context, src source.Source) (sr notice.SourceResult) {
	sr.Name = src.Name()
	logger := r.logger.With(zap.String("source", sr.Name))
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			sr.Errors++
			sr.Failed = true
			metrics.ObserveSourceFailure(sr.Name)
			logger.Error("source panicked", zap.Any("panic", rec), zap.Stack("stack"))
		}
		sr.Duration = time.Since(start)
		metrics.ObserveSourceNotices(sr.Name, "fetched", sr.Fetched)
		metrics.ObserveSourceNotices(sr.Name, "saved", sr.Saved)
		metrics.ObserveSourceNotices(sr.Name, "skipped", sr.Skipped)
		metrics.ObserveSourceNotices(sr.Name, "error", sr.Errors)
		logger.Info("source finished",
			zap.Int("fetched", sr.Fetched),
			zap.Int("saved", sr.Saved),
			zap.Int("skipped", sr.Skipped),
			zap.Int("errors", sr.Errors),
			zap.Duration("duration", sr.Duration),
		)
	}()

	raws := src.FetchRaw(ctx)
	sr.Fetched = len(raws)
	for _, raw := range raws {
		outcome, err := r.process(ctx, raw)
		if err != nil {
			sr.Errors++
			logger.Warn("notice failed", zap.String("title", raw.Title), zap.Error(err))
			continue
		}
		switch outcome {
		case ingest.OutcomeSaved:
			sr.Saved++
		case ingest.OutcomeSkipped:
			sr.Skipped++
		case ingest.OutcomeIgnored:
		}
	}
	return sr
}

// process isolates one notice so a panic in normalization or the store
// cannot take the rest of the source down with it.
func (r *Runner) process(ctx context.Context, raw notice.RawNotice) (outcome ingest.Outcome, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("process notice panicked: %v", rec)
		}
	}()
	return r.processor.Process(ctx, raw)
}
