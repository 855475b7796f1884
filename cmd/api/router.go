package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/crucial707/reporthub/internal/analytics"
	"github.com/crucial707/reporthub/internal/config"
	"github.com/crucial707/reporthub/internal/cronexpr"
	"github.com/crucial707/reporthub/internal/handlers"
	"github.com/crucial707/reporthub/internal/middleware"
	"github.com/crucial707/reporthub/internal/notify"
	"github.com/crucial707/reporthub/internal/repo"
	"github.com/crucial707/reporthub/internal/runner"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// services are the collaborators the router needs besides the database.
// Zero values are replaced with defaults by newRouter.
type services struct {
	Zones    *cronexpr.ZoneSet
	Notifier runner.Notifier
	Counter  analytics.Counter
	Runner   handlers.ReporterRunner
}

// newRunner builds the reporter runner shared by the API and the scheduler.
func newRunner(db *sql.DB, notifier runner.Notifier, counter analytics.Counter) *runner.Runner {
	return &runner.Runner{
		Reporters: repo.NewReporterRepo(db),
		Schedules: repo.NewScheduleRepo(db),
		Channels:  repo.NewChannelRepo(db),
		Runs:      repo.NewRunRepo(db),
		Notifier:  notifier,
		Counter:   counter,
	}
}

func newRouter(db *sql.DB, cfg config.Config, svc services) http.Handler {
	if svc.Zones == nil {
		svc.Zones = cronexpr.DefaultZones()
	}
	if svc.Notifier == nil {
		svc.Notifier = notify.NewDispatcher(nil, cfg.NotifyTimeout)
	}
	if svc.Counter == nil {
		svc.Counter = analytics.Noop{}
	}
	if svc.Runner == nil {
		svc.Runner = newRunner(db, svc.Notifier, svc.Counter)
	}

	secret := []byte(cfg.JWTSecret)
	ttl := time.Duration(cfg.JWTExpireHours) * time.Hour

	userRepo := repo.NewUserRepo(db)
	auditRepo := repo.NewAuditRepo(db)
	scheduleRepo := repo.NewScheduleRepo(db)
	channelRepo := repo.NewChannelRepo(db)

	authHandler := &handlers.AuthHandler{UserRepo: userRepo, Secret: secret, TTL: ttl}
	userHandler := &handlers.UserHandler{Repo: userRepo}
	auditHandler := &handlers.AuditHandler{Repo: auditRepo}
	cronHandler := &handlers.CronHandler{Zones: svc.Zones}
	scheduleHandler := &handlers.ScheduleHandler{Repo: scheduleRepo, Audit: auditRepo, Zones: svc.Zones}
	channelHandler := &handlers.ChannelHandler{Repo: channelRepo, Audit: auditRepo, Notifier: svc.Notifier}
	reporterHandler := &handlers.ReporterHandler{
		Repo:      repo.NewReporterRepo(db),
		Schedules: scheduleRepo,
		Channels:  channelRepo,
		Runs:      repo.NewRunRepo(db),
		Runner:    svc.Runner,
		Counter:   svc.Counter,
		Audit:     auditRepo,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSCertFile != "", middleware.APIContentSecurityPolicy))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "ok")
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			handlers.JSONError(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintln(w, "ready")
	})
	r.Handle("/metrics", promhttp.Handler())

	limiter := middleware.AuthRateLimiter()
	r.Route("/auth", func(r chi.Router) {
		r.Use(limiter.Middleware)
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTMiddleware(secret))

		r.Get("/me", userHandler.Me)
		r.Get("/audit", auditHandler.ListAudit)
		r.Get("/timezones", cronHandler.Timezones)
		r.Post("/cron/describe", cronHandler.Describe)

		r.Route("/schedules", func(r chi.Router) {
			r.Get("/", scheduleHandler.ListSchedules)
			r.Post("/", scheduleHandler.CreateSchedule)
			r.Get("/{id}", scheduleHandler.GetSchedule)
			r.Put("/{id}", scheduleHandler.UpdateSchedule)
			r.Delete("/{id}", scheduleHandler.DeleteSchedule)
		})

		r.Route("/channels", func(r chi.Router) {
			r.Get("/", channelHandler.ListChannels)
			r.Post("/", channelHandler.CreateChannel)
			r.Get("/{id}", channelHandler.GetChannel)
			r.Put("/{id}", channelHandler.UpdateChannel)
			r.Delete("/{id}", channelHandler.DeleteChannel)
			r.Post("/{id}/test", channelHandler.TestChannel)
		})

		r.Route("/reporters", func(r chi.Router) {
			r.Get("/", reporterHandler.ListReporters)
			r.Post("/", reporterHandler.CreateReporter)
			r.Get("/{id}", reporterHandler.GetReporter)
			r.Put("/{id}", reporterHandler.UpdateReporter)
			r.Delete("/{id}", reporterHandler.DeleteReporter)
			r.Post("/{id}/run", reporterHandler.RunReporter)
			r.Get("/{id}/runs", reporterHandler.ListRuns)
			r.Get("/{id}/stats", reporterHandler.RunStats)
		})
	})

	return r
}
