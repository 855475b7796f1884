package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/crucial707/reporthub/internal/config"
	"github.com/crucial707/reporthub/internal/db"
	"github.com/crucial707/reporthub/internal/logger"
	"github.com/crucial707/reporthub/internal/models"
	"github.com/crucial707/reporthub/internal/notify"
	"github.com/crucial707/reporthub/internal/repo"
	"github.com/crucial707/reporthub/internal/runner"
	"github.com/crucial707/reporthub/internal/scheduler"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "reporthub-api:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	log, flush, err := logger.New(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer flush()
	slog.SetDefault(log)

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dsn := cfg.DatabaseURL
	if dsn == "" {
		dsn = db.DSN(cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPass, cfg.DBSSLMode)
	}
	if cfg.MigrateOnStart {
		version, err := db.Migrate(dsn)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		slog.Info("database schema ready", "version", version)
	}

	database, err := db.Connect(ctx, dsn, db.Pool{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer database.Close()
	slog.Info("connected to database", "host", cfg.DBHost, "name", cfg.DBName)

	zones := loadZones(cfg.ZoneInfoDir)
	counter := runCounter(ctx, cfg)
	notifier := notify.NewDispatcher(nil, cfg.NotifyTimeout)
	reporterRunner := newRunner(database, notifier, counter)

	schedDone := make(chan struct{})
	if cfg.SchedulerEnabled {
		sched := scheduler.New(repo.NewReporterRepo(database), func(ctx context.Context, reporterID int, scheduledAt time.Time) {
			if _, err := reporterRunner.Run(ctx, reporterID, models.TriggerSchedule, scheduledAt); err != nil && !errors.Is(err, runner.ErrDisabled) {
				slog.Error("scheduled run failed", "reporter_id", reporterID, "error", err)
			}
		}, cfg.SchedulerSyncInterval)
		go func() {
			defer close(schedDone)
			sched.Run(ctx)
		}()
	} else {
		close(schedDone)
	}

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: newRouter(database, cfg, services{
			Zones:    zones,
			Notifier: notifier,
			Counter:  counter,
			Runner:   reporterRunner,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		tls := cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""
		slog.Info("starting server", "addr", srv.Addr, "tls", tls, "scheduler", cfg.SchedulerEnabled)
		if tls {
			errc <- srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
			return
		}
		errc <- srv.ListenAndServe()
	}()

	var serveErr error
	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	case <-ctx.Done():
		slog.Info("shutting down")
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && serveErr == nil {
		serveErr = fmt.Errorf("shutdown: %w", err)
	}
	// Scheduled runs must close their run rows before the database goes away.
	if !awaitStopped(shutdownCtx, schedDone) {
		slog.Warn("scheduler still running at shutdown deadline")
	}
	return serveErr
}
