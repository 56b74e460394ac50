// Package scheduler triggers ingestion runs on a cron schedule and once
// shortly after startup.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/JakeFAU/govjobs-ingestor/internal/notice"
)

// DefaultSpec runs four times a day.
const DefaultSpec = "0 0,6,12,18 * * *"

// Runner executes one ingestion run.
type Runner interface {
	RunAll(ctx context.Context) notice.RunResult
}

// Config controls when runs are triggered.
type Config struct {
	// Spec is a standard five-field cron expression.
	Spec         string
	Location     *time.Location
	RunOnStartup bool
	StartupDelay time.Duration
}

// Scheduler owns the cron instance and the startup trigger.
type Scheduler struct {
	cron     *cron.Cron
	schedule cron.Schedule
	runner   Runner
	cfg      Config
	logger   *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	startup sync.WaitGroup
}

// New validates cfg. Nothing fires until Start.
func New(cfg Config, runner Runner, logger *zap.Logger) (*Scheduler, error) {
	if runner == nil {
		return nil, fmt.Errorf("scheduler: runner is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Spec == "" {
		cfg.Spec = DefaultSpec
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	schedule, err := cron.ParseStandard(cfg.Spec)
	if err != nil {
		return nil, fmt.Errorf("parse cron spec %q: %w", cfg.Spec, err)
	}
	logger = logger.Named("scheduler")
	cronLog := cronLogger{logger: logger}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(cfg.Location),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog)),
		),
		schedule: schedule,
		runner:   runner,
		cfg:      cfg,
		logger:   logger,
	}
	return s, nil
}

// Start begins the cron loop and, when configured, the delayed startup run.
// Runs use ctx, so canceling it interrupts an in-flight run between sources.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)

	s.cron.Schedule(s.schedule, cron.FuncJob(func() { s.trigger(ctx, "cron") }))
	s.cron.Start()
	s.logger.Info("scheduler started",
		zap.String("spec", s.cfg.Spec),
		zap.String("location", s.cfg.Location.String()),
		zap.Time("next", s.Next(time.Now())),
	)

	if !s.cfg.RunOnStartup {
		return
	}
	s.startup.Add(1)
	go func() {
		defer s.startup.Done()
		timer := time.NewTimer(s.cfg.StartupDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
			s.trigger(ctx, "startup")
		}
	}()
}

// Stop cancels pending triggers and waits for running jobs to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-s.cron.Stop().Done()
	s.startup.Wait()
	s.logger.Info("scheduler stopped")
}

// Next reports the first scheduled run after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t.In(s.cfg.Location))
}

func (s *Scheduler) trigger(ctx context.Context, reason string) {
	if ctx.Err() != nil {
		return
	}
	result := s.runner.RunAll(ctx)
	if result.IsZero() {
		s.logger.Info("trigger skipped, run already active", zap.String("trigger", reason))
		return
	}
	s.logger.Info("scheduled run finished",
		zap.String("trigger", reason),
		zap.Int("fetched", result.Fetched),
		zap.Int("total", result.Total),
		zap.Int("saved", result.Saved),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", result.Errors),
		zap.Duration("duration", result.FinishedAt.Sub(result.StartedAt)),
	)
}

type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, zap.Any("details", keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, zap.Error(err), zap.Any("details", keysAndValues))
}
