// Command registrar seeds an in-memory registrar from a roster source and
// prints the university report.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/alem-hub/campus-records/config"
	"github.com/alem-hub/campus-records/internal/application/command"
	"github.com/alem-hub/campus-records/internal/application/query"
	"github.com/alem-hub/campus-records/internal/domain/record"
	"github.com/alem-hub/campus-records/internal/domain/shared"
	"github.com/alem-hub/campus-records/internal/domain/university"
	"github.com/alem-hub/campus-records/internal/infrastructure/messaging"
	"github.com/alem-hub/campus-records/internal/infrastructure/persistence/postgres"
	"github.com/alem-hub/campus-records/internal/infrastructure/persistence/redis"
	"github.com/alem-hub/campus-records/internal/infrastructure/rosterfile"
	"github.com/alem-hub/campus-records/internal/interface/report"
	"github.com/alem-hub/campus-records/pkg/logger"
	"github.com/alem-hub/campus-records/pkg/retry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

// eventBus is what the registrar needs from either bus implementation.
type eventBus interface {
	shared.EventBus
	Close() error
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. Configuration and logging
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := setupLogger(cfg)
	runID := uuid.NewString()
	log = log.With("run_id", runID)
	log.Info("starting registrar",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"roster_source", cfg.Roster.Source,
	)

	appLog := logger.New(logger.Options{
		Output: os.Stderr,
		Level:  logger.ParseLevel(cfg.Observability.LogLevel),
	}).With(logger.String("run_id", runID))

	// ─────────────────────────────────────────────────────────────────────────
	// 2. Event bus
	// ─────────────────────────────────────────────────────────────────────────
	bus, err := buildEventBus(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := bus.Close(); err != nil {
			log.Warn("close event bus", "error", err)
		}
	}()

	if err := bus.SubscribeAll(func(e shared.Event) error {
		log.Debug("event", "type", e.EventType(), "aggregate_id", e.AggregateID())
		return nil
	}); err != nil {
		return fmt.Errorf("subscribe audit log: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. Registrar and roster import
	// ─────────────────────────────────────────────────────────────────────────
	registrar := university.NewRegistrar()

	source, cleanup, err := buildRosterSource(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	if source != nil {
		loadCtx, cancel := context.WithTimeout(ctx, cfg.Roster.LoadTimeout)
		defer cancel()

		importer := command.NewImportRosterHandler(registrar, bus, appLog).WithRetry(retry.Source())
		if _, err := importer.Handle(loadCtx, source); err != nil {
			return fmt.Errorf("import roster: %w", err)
		}
	} else {
		log.Warn("no roster source configured, report will be empty")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. Evaluate and report
	// ─────────────────────────────────────────────────────────────────────────
	evaluate := query.NewGetPerformanceHandler(registrar, bus, appLog)
	counts := map[record.Classification]int{}
	for _, s := range registrar.Students() {
		dto, err := evaluate.Handle(ctx, query.GetPerformanceQuery{StudentID: s.ID()})
		if err != nil {
			return fmt.Errorf("evaluate %s: %w", s.ID(), err)
		}
		counts[dto.Classification]++
	}
	log.Info("performance evaluated",
		"students", len(registrar.Students()),
		"excellent", counts[record.ClassificationExcellent],
		"at_risk", counts[record.ClassificationAtRisk],
	)

	if err := report.NewPresenter(registrar).FullReport(os.Stdout); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	log.Info("report written")
	return nil
}

func buildEventBus(ctx context.Context, cfg *config.Config, log *slog.Logger) (eventBus, error) {
	local := messaging.LocalBusConfig{Async: cfg.Features.AsyncEvents, Logger: log}

	if cfg.Redis.Disabled {
		return messaging.NewLocalBus(local), nil
	}

	redisCfg := redis.DefaultConfig()
	redisCfg.Host = cfg.Redis.Host
	redisCfg.Port = cfg.Redis.Port
	redisCfg.Password = cfg.Redis.Password
	redisCfg.DB = cfg.Redis.DB
	redisCfg.DialTimeout = cfg.Redis.DialTimeout
	redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
	redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

	client, err := redis.NewPubSubClient(ctx, redisCfg)
	if err != nil {
		log.Warn("redis unavailable, events stay in-process", "addr", redisCfg.Addr(), "error", err)
		return messaging.NewLocalBus(local), nil
	}

	bus, err := messaging.NewRedisBus(messaging.RedisBusConfig{
		Client:  client,
		Channel: cfg.Redis.Channel,
		Local:   local,
		Logger:  log,
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis event bus: %w", err)
	}

	log.Info("redis event bus ready", "channel", cfg.Redis.Channel, "instance_id", bus.InstanceID())
	return bus, nil
}

func buildRosterSource(ctx context.Context, cfg *config.Config, log *slog.Logger) (university.RosterSource, func(), error) {
	noop := func() {}

	switch cfg.Roster.Source {
	case config.RosterSourceFile:
		return rosterfile.NewLoader(cfg.Roster.File), noop, nil

	case config.RosterSourcePostgres:
		opts := postgres.PoolOptions{
			MaxConns:        int32(cfg.Database.MaxConns),
			MaxConnLifetime: cfg.Database.ConnMaxLifetime,
			MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		}
		connect := retry.Source()
		connect.Retry = func(err error) bool { return !errors.Is(err, postgres.ErrInvalidURL) }
		connect.OnRetry = func(attempt int, err error, wait time.Duration) {
			log.Warn("database not reachable, retrying", "attempt", attempt, "retry_in", wait, "error", err)
		}
		conn, _, err := retry.Value(ctx, connect, func(ctx context.Context) (*postgres.Connection, error) {
			return postgres.NewConnection(ctx, cfg.Database.URL, opts)
		})
		if err != nil {
			return nil, noop, fmt.Errorf("%w: %v", shared.ErrRosterUnavailable, err)
		}

		if cfg.Features.MigrateOnStart {
			applied, err := postgres.NewMigrator(conn).Migrate(ctx)
			if err != nil {
				conn.Close()
				return nil, noop, fmt.Errorf("migrate: %w", err)
			}
			log.Info("database schema is up to date", "applied", applied)
		}

		return postgres.NewRosterRepository(conn), conn.Close, nil

	default:
		return nil, noop, nil
	}
}

// setupLogger configures slog on stderr; stdout carries the report.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	switch cfg.Observability.LogLevel {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}
