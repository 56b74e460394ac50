// Package app builds the long-lived services from configuration and owns
// their shutdown order.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/govjobs-ingestor/internal/clock/system"
	"github.com/JakeFAU/govjobs-ingestor/internal/config"
	"github.com/JakeFAU/govjobs-ingestor/internal/fetcher"
	collyfetcher "github.com/JakeFAU/govjobs-ingestor/internal/fetcher/colly"
	"github.com/JakeFAU/govjobs-ingestor/internal/fetcher/headless"
	"github.com/JakeFAU/govjobs-ingestor/internal/hash/sha256"
	"github.com/JakeFAU/govjobs-ingestor/internal/id/uuid"
	"github.com/JakeFAU/govjobs-ingestor/internal/ingest"
	"github.com/JakeFAU/govjobs-ingestor/internal/metrics"
	"github.com/JakeFAU/govjobs-ingestor/internal/notice"
	"github.com/JakeFAU/govjobs-ingestor/internal/orchestrator"
	"github.com/JakeFAU/govjobs-ingestor/internal/policy/fixed"
	"github.com/JakeFAU/govjobs-ingestor/internal/policy/ratelimit"
	mempublisher "github.com/JakeFAU/govjobs-ingestor/internal/publisher/memory"
	"github.com/JakeFAU/govjobs-ingestor/internal/publisher/pubsub"
	"github.com/JakeFAU/govjobs-ingestor/internal/source"
	"github.com/JakeFAU/govjobs-ingestor/internal/storage/gcs"
	"github.com/JakeFAU/govjobs-ingestor/internal/storage/local"
	memstore "github.com/JakeFAU/govjobs-ingestor/internal/storage/memory"
	"github.com/JakeFAU/govjobs-ingestor/internal/storage/migrations"
	"github.com/JakeFAU/govjobs-ingestor/internal/storage/postgres"
	"github.com/JakeFAU/govjobs-ingestor/internal/storage/sqlite"
)

// App holds the services shared by every command.
type App struct {
	cfg     config.Config
	logger  *zap.Logger
	store   notice.Store
	sources []source.Source
	runner  *orchestrator.Runner

	// closers run in reverse order on Close.
	closers []func() error
}

// Option overrides a dependency New would otherwise build from config.
type Option func(*options)

type options struct {
	fetcher fetcher.Fetcher
	clock   notice.Clock
}

// WithFetcher replaces the colly and headless fetchers.
func WithFetcher(f fetcher.Fetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// WithClock replaces the system clock.
func WithClock(c notice.Clock) Option {
	return func(o *options) { o.clock = c }
}

// New wires every service selected by cfg. On failure, anything already
// opened is closed before returning.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...Option) (_ *App, err error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := options{clock: system.New()}
	for _, opt := range opts {
		opt(&o)
	}
	metrics.Init()

	a := &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	a.store, err = a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	f := o.fetcher
	if f == nil {
		if f, err = a.buildFetcher(); err != nil {
			return nil, err
		}
	}
	blobs, err := a.openSnapshots(ctx)
	if err != nil {
		return nil, err
	}
	if blobs != nil {
		f = fetcher.WithSnapshots(f, blobs, o.clock, cfg.Snapshot.Prefix, logger)
	}

	var procOpts []ingest.Option
	pub, err := a.openPublisher(ctx)
	if err != nil {
		return nil, err
	}
	if pub != nil {
		procOpts = append(procOpts, ingest.WithPublisher(pub, cfg.PubSub.Topic))
	}

	a.sources = source.Build(f, logger, cfg.Orchestrator.Sources)
	if len(a.sources) == 0 {
		return nil, fmt.Errorf("no sources match %v; known sources are %v", cfg.Orchestrator.Sources, source.Keys())
	}

	processor := ingest.NewProcessor(a.store, sha256.New(), uuid.New(), o.clock, logger, procOpts...)
	a.runner = orchestrator.New(a.sources, processor, a.buildPacer(), o.clock, logger)

	logger.Info("application services initialized",
		zap.String("storage", cfg.Storage.Backend),
		zap.String("snapshot", cfg.Snapshot.Backend),
		zap.String("pubsub", cfg.PubSub.Backend),
		zap.Bool("headless", cfg.Headless.Enabled && o.fetcher == nil),
		zap.Int("sources", len(a.sources)),
	)
	return a, nil
}

// Config returns the configuration the App was built from.
func (a *App) Config() config.Config { return a.cfg }

// Logger returns the shared logger.
func (a *App) Logger() *zap.Logger { return a.logger }

// Store returns the notice store.
func (a *App) Store() notice.Store { return a.store }

// Runner returns the ingestion runner.
func (a *App) Runner() *orchestrator.Runner { return a.runner }

// Sources returns the enabled sources in run order.
func (a *App) Sources() []source.Source {
	return append([]source.Source(nil), a.sources...)
}

// Close releases every opened resource, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

func (a *App) openStore(ctx context.Context) (notice.Store, error) {
	cfg := a.cfg
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		a.logger.Warn("using in-memory notice store; notices are lost on exit")
		return memstore.NewNoticeStore(), nil

	case config.BackendSQLite:
		db, err := sqlite.Open(ctx, cfg.DB.DSN)
		if err != nil {
			return nil, err
		}
		store, err := sqlite.NewNoticeStore(db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		a.onClose(store.Close)
		if cfg.DB.AutoMigrate {
			if err := a.migrate(db, migrations.SQLite); err != nil {
				return nil, err
			}
		}
		return store, nil

	case config.BackendPostgres:
		if cfg.DB.AutoMigrate {
			db, err := migrations.Open(migrations.Postgres, cfg.DB.DSN)
			if err != nil {
				return nil, err
			}
			err = a.migrate(db, migrations.Postgres)
			_ = db.Close()
			if err != nil {
				return nil, err
			}
		}
		store, err := postgres.NewNoticeStore(ctx, postgres.Config{
			DSN:             cfg.DB.DSN,
			Table:           cfg.DB.Table,
			MaxConns:        cfg.DB.MaxConns,
			MinConns:        cfg.DB.MinConns,
			MaxConnLifetime: cfg.DB.MaxConnLifetime,
		})
		if err != nil {
			return nil, err
		}
		a.onClose(func() error { store.Close(); return nil })
		return store, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

func (a *App) migrate(db *sql.DB, dialect migrations.Dialect) error {
	v, err := migrations.Up(db, dialect)
	if err != nil {
		return err
	}
	a.logger.Info("schema migrated", zap.String("dialect", string(dialect)), zap.Uint("version", v.Version))
	return nil
}

// buildFetcher routes RenderJS requests to headless Chrome when it is enabled
// and everything else to colly.
func (a *App) buildFetcher() (fetcher.Fetcher, error) {
	cfg := a.cfg
	static := collyfetcher.New(collyfetcher.Config{
		UserAgent:        cfg.Fetcher.UserAgent,
		BrowserUserAgent: cfg.Fetcher.BrowserUserAgent,
		RespectRobots:    cfg.Fetcher.RespectRobots,
		Timeout:          cfg.Fetcher.Timeout,
		MaxBodySize:      cfg.Fetcher.MaxBodyBytes,
	}, a.logger)
	if !cfg.Headless.Enabled {
		return fetcher.NewRouter(static, nil), nil
	}
	hf, err := headless.NewChromedp(headless.Config{
		MaxParallel:       cfg.Headless.MaxParallel,
		UserAgent:         cfg.Fetcher.BrowserUserAgent,
		NavigationTimeout: cfg.Headless.NavigationTimeout,
		WaitSelector:      cfg.Headless.WaitSelector,
		SettleDelay:       cfg.Headless.SettleDelay,
	}, a.logger)
	if err != nil {
		return nil, fmt.Errorf("init headless fetcher: %w", err)
	}
	a.onClose(func() error { hf.Close(); return nil })
	var opts []fetcher.RouterOption
	if cfg.Headless.PromoteAppShells {
		opts = append(opts, fetcher.WithShellPromotion(fetcher.NewAppShell(cfg.Headless.ShellBodyBytes)))
	}
	return fetcher.NewRouter(static, hf, opts...), nil
}

// openSnapshots returns nil when snapshots are disabled.
func (a *App) openSnapshots(ctx context.Context) (notice.BlobStore, error) {
	cfg := a.cfg.Snapshot
	switch cfg.Backend {
	case config.BackendNone, "":
		return nil, nil
	case config.BackendMemory:
		return memstore.NewBlobStore(), nil
	case config.BackendLocal:
		return local.New(local.Config{BaseDir: cfg.BaseDir})
	case config.BackendGCS:
		store, err := gcs.Open(ctx, gcs.Config{Bucket: cfg.Bucket})
		if err != nil {
			return nil, err
		}
		a.onClose(store.Close)
		return store, nil
	}
	return nil, fmt.Errorf("unknown snapshot backend %q", cfg.Backend)
}

// openPublisher returns nil when saved-notice events are disabled.
func (a *App) openPublisher(ctx context.Context) (notice.Publisher, error) {
	cfg := a.cfg.PubSub
	switch cfg.Backend {
	case config.BackendNone, "":
		return nil, nil
	case config.BackendMemory:
		return mempublisher.New(), nil
	case config.BackendPubSub:
		pub, err := pubsub.Dial(ctx, cfg.ProjectID, cfg.Topic)
		if err != nil {
			return nil, err
		}
		a.onClose(pub.Close)
		return pub, nil
	}
	return nil, fmt.Errorf("unknown pubsub backend %q", cfg.Backend)
}

func (a *App) buildPacer() orchestrator.Pacer {
	cfg := a.cfg.Orchestrator
	if cfg.Pacer == config.PacerRateLimit {
		return ratelimit.New(ratelimit.Config{RPS: cfg.RPS, Burst: cfg.Burst, PerHost: cfg.PerHost})
	}
	return fixed.New(cfg.Delay)
}
