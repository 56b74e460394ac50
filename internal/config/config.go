// Package config loads and validates ingestor configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // schedule.timezone must resolve in minimal containers

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"github.com/JakeFAU/govjobs-ingestor/internal/logging"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendLocal    = "local"
	BackendGCS      = "gcs"
	BackendPubSub   = "pubsub"
	BackendNone     = "none"
)

// Pacer modes.
const (
	PacerFixed     = "fixed"
	PacerRateLimit = "ratelimit"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Fetcher      FetcherConfig      `mapstructure:"fetcher"`
	Headless     HeadlessConfig     `mapstructure:"headless"`
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator"`
	Schedule     ScheduleConfig     `mapstructure:"schedule"`
	Storage      StorageConfig      `mapstructure:"storage"`
	DB           DBConfig           `mapstructure:"db"`
	Snapshot     SnapshotConfig     `mapstructure:"snapshot"`
	PubSub       PubSubConfig       `mapstructure:"pubsub"`
	Logging      logging.Config     `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// FetcherConfig configures the static HTTP fetcher.
type FetcherConfig struct {
	UserAgent        string        `mapstructure:"user_agent"`
	BrowserUserAgent string        `mapstructure:"browser_user_agent"`
	RespectRobots    bool          `mapstructure:"respect_robots"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MaxBodyBytes     int           `mapstructure:"max_body_bytes"`
}

// HeadlessConfig configures chromedp rendering for JS-only portals.
type HeadlessConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	MaxParallel       int           `mapstructure:"max_parallel"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout"`
	WaitSelector      string        `mapstructure:"wait_selector"`
	SettleDelay       time.Duration `mapstructure:"settle_delay"`
	// PromoteAppShells re-renders static responses that are only a
	// client-side app shell.
	PromoteAppShells bool `mapstructure:"promote_app_shells"`
	ShellBodyBytes   int  `mapstructure:"shell_body_bytes"`
}

// OrchestratorConfig selects sources and the pacing between them.
type OrchestratorConfig struct {
	// Sources lists registry keys to run; empty runs every source.
	Sources []string      `mapstructure:"sources"`
	Pacer   string        `mapstructure:"pacer"`
	Delay   time.Duration `mapstructure:"delay"`
	RPS     float64       `mapstructure:"rps"`
	Burst   int           `mapstructure:"burst"`
	PerHost bool          `mapstructure:"per_host"`
}

// ScheduleConfig drives the periodic trigger.
type ScheduleConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Cron         string        `mapstructure:"cron"`
	Timezone     string        `mapstructure:"timezone"`
	RunOnStartup bool          `mapstructure:"run_on_startup"`
	StartupDelay time.Duration `mapstructure:"startup_delay"`
}

// StorageConfig picks the notice store backend.
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	Table           string        `mapstructure:"table"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// SnapshotConfig controls optional page snapshots.
type SnapshotConfig struct {
	Backend string `mapstructure:"backend"`
	BaseDir string `mapstructure:"base_dir"`
	Bucket  string `mapstructure:"bucket"`
	Prefix  string `mapstructure:"prefix"`
}

// PubSubConfig holds metadata for saved-notice events.
type PubSubConfig struct {
	Backend   string `mapstructure:"backend"`
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// Load builds a Config from disk and environment. Environment variables use
// the GOVJOBS_ prefix with dots replaced by underscores.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GOVJOBS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.api_key", "")
	v.SetDefault("fetcher.user_agent", "govjobs-ingestor/1.0")
	v.SetDefault("fetcher.respect_robots", false)
	v.SetDefault("fetcher.timeout", "20s")
	v.SetDefault("fetcher.max_body_bytes", 10<<20)
	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.max_parallel", 1)
	v.SetDefault("headless.navigation_timeout", "45s")
	v.SetDefault("headless.wait_selector", "body")
	v.SetDefault("headless.settle_delay", "500ms")
	v.SetDefault("headless.promote_app_shells", true)
	v.SetDefault("headless.shell_body_bytes", 2048)
	v.SetDefault("orchestrator.sources", []string{})
	v.SetDefault("orchestrator.pacer", PacerFixed)
	v.SetDefault("orchestrator.delay", "1s")
	v.SetDefault("orchestrator.rps", 1.0)
	v.SetDefault("orchestrator.burst", 1)
	v.SetDefault("orchestrator.per_host", false)
	v.SetDefault("schedule.enabled", true)
	v.SetDefault("schedule.cron", "0 0,6,12,18 * * *")
	v.SetDefault("schedule.timezone", "Asia/Kolkata")
	v.SetDefault("schedule.run_on_startup", true)
	v.SetDefault("schedule.startup_delay", "3s")
	v.SetDefault("storage.backend", BackendSQLite)
	v.SetDefault("db.dsn", "file:govjobs.db?_pragma=busy_timeout(5000)")
	v.SetDefault("db.table", "notices")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("db.auto_migrate", true)
	v.SetDefault("snapshot.backend", BackendNone)
	v.SetDefault("snapshot.base_dir", "snapshots")
	v.SetDefault("snapshot.prefix", "pages")
	v.SetDefault("snapshot.bucket", "")
	v.SetDefault("pubsub.backend", BackendNone)
	v.SetDefault("pubsub.project_id", "")
	v.SetDefault("pubsub.topic", "notice-saved")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 {
		errs = append(errs, errors.New("server.port must be > 0"))
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		errs = append(errs, errors.New("auth.api_key must be set when auth is enabled"))
	}
	if c.Fetcher.Timeout <= 0 {
		errs = append(errs, errors.New("fetcher.timeout must be > 0"))
	}
	if c.Headless.Enabled && c.Headless.MaxParallel <= 0 {
		errs = append(errs, errors.New("headless.max_parallel must be > 0 when headless is enabled"))
	}
	switch c.Orchestrator.Pacer {
	case PacerFixed:
		if c.Orchestrator.Delay < 0 {
			errs = append(errs, errors.New("orchestrator.delay must be >= 0"))
		}
	case PacerRateLimit:
		if c.Orchestrator.RPS < 0 {
			errs = append(errs, errors.New("orchestrator.rps must be >= 0"))
		}
	default:
		errs = append(errs, fmt.Errorf("orchestrator.pacer %q is not one of fixed, ratelimit", c.Orchestrator.Pacer))
	}
	if c.Schedule.Enabled {
		if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
			errs = append(errs, fmt.Errorf("schedule.cron: %w", err))
		}
		if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("schedule.timezone: %w", err))
		}
	}
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendSQLite, BackendPostgres:
		if c.DB.DSN == "" {
			errs = append(errs, fmt.Errorf("db.dsn is required for the %s backend", c.Storage.Backend))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.backend %q is not one of memory, sqlite, postgres", c.Storage.Backend))
	}
	switch c.Snapshot.Backend {
	case BackendNone, BackendMemory:
	case BackendLocal:
		if c.Snapshot.BaseDir == "" {
			errs = append(errs, errors.New("snapshot.base_dir is required for the local backend"))
		}
	case BackendGCS:
		if c.Snapshot.Bucket == "" {
			errs = append(errs, errors.New("snapshot.bucket is required for the gcs backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("snapshot.backend %q is not one of none, memory, local, gcs", c.Snapshot.Backend))
	}
	switch c.PubSub.Backend {
	case BackendNone, BackendMemory:
	case BackendPubSub:
		if c.PubSub.ProjectID == "" || c.PubSub.Topic == "" {
			errs = append(errs, errors.New("pubsub.project_id and pubsub.topic are required for the pubsub backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("pubsub.backend %q is not one of none, memory, pubsub", c.PubSub.Backend))
	}
	return errors.Join(errs...)
}

// Location resolves the schedule timezone.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
