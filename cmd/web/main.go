package main

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	_ "time/tzdata"

	"github.com/crucial707/reporthub/internal/cronexpr"
	"github.com/crucial707/reporthub/internal/logger"
	"github.com/crucial707/reporthub/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

//go:embed templates static
var assetsFS embed.FS

const (
	cookieName  = "reporthub_token"
	defaultPort = "3000"
	defaultAPI  = "http://localhost:8080"
	envWebPort  = "REPORTHUB_WEB_PORT"
	envAPIURL   = "REPORTHUB_API_URL"
	envEnv      = "ENV"
	envZone     = "REPORTHUB_DEFAULT_TIMEZONE"
)

func main() {
	port := getEnv(envWebPort, defaultPort)
	apiBase := getEnv(envAPIURL, defaultAPI)
	dev := getEnv(envEnv, "dev") != "prod"

	log, flush, err := logger.New(getEnv("LOG_FORMAT", "text"), getEnv("LOG_LEVEL", "info"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "reporthub-web:", err)
		os.Exit(1)
	}
	defer flush()
	slog.SetDefault(log)

	zone := defaultZone(os.Getenv(envZone))

	slog.Info("web UI running", "addr", "http://localhost:"+port, "api", apiBase, "dev", dev, "default_timezone", zone)
	if err := http.ListenAndServe(":"+port, newRouter(apiBase, dev, zone)); err != nil {
		slog.Error("web server stopped", "error", err)
		os.Exit(1)
	}
}

// newRouter wires the dashboard. dev enables the every-minute choice in the
// schedule builder; zone preselects the timezone of new schedules.
func newRouter(apiBase string, dev bool, zone string) http.Handler {
	if zone == "" {
		zone = "UTC"
	}
	ui := &app{api: apiBase, dev: dev, zone: zone}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLog)
	r.Use(middleware.SecurityHeaders(false, middleware.WebContentSecurityPolicy))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	static, _ := fs.Sub(assetsFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Get("/login", loginForm)
	r.Post("/login", ui.loginSubmit)
	r.Get("/logout", logout)

	r.Group(func(r chi.Router) {
		r.Use(ui.requireAuth)
		r.Get("/", redirectDashboard)
		r.Get("/dashboard", ui.dashboard)

		r.Get("/schedules", ui.schedulesList)
		r.Get("/schedules/new", ui.scheduleNewForm)
		r.Post("/schedules", ui.scheduleCreate)
		r.Post("/schedules/describe", ui.scheduleDescribe)
		r.Get("/schedules/{id}/edit", ui.scheduleEditForm)
		r.Post("/schedules/{id}/edit", ui.scheduleUpdate)
		r.Get("/schedules/{id}/delete", ui.deleteConfirm(scheduleKind))
		r.Post("/schedules/{id}/delete", ui.deleteSubmit(scheduleKind))

		r.Get("/channels", ui.channelsList)
		r.Get("/channels/new", ui.channelNewForm)
		r.Post("/channels", ui.channelSave)
		r.Get("/channels/{id}/edit", ui.channelEditForm)
		r.Post("/channels/{id}/edit", ui.channelSave)
		r.Post("/channels/{id}/test", ui.channelTest)
		r.Get("/channels/{id}/delete", ui.deleteConfirm(channelKind))
		r.Post("/channels/{id}/delete", ui.deleteSubmit(channelKind))

		r.Get("/reporters", ui.reportersList)
		r.Get("/reporters/new", ui.reporterNewForm)
		r.Post("/reporters", ui.reporterCreate)
		r.Get("/reporters/{id}/edit", ui.reporterEditForm)
		r.Post("/reporters/{id}/edit", ui.reporterUpdate)
		r.Post("/reporters/{id}/run", ui.reporterRun)
		r.Get("/reporters/{id}/runs", ui.reporterRuns)
		r.Get("/reporters/{id}/delete", ui.deleteConfirm(reporterKind))
		r.Post("/reporters/{id}/delete", ui.deleteSubmit(reporterKind))
	})
	return r
}

// app holds what every dashboard handler needs.
type app struct {
	api  string
	dev  bool
	zone string
}

// defaultZone returns name when it is a loadable IANA zone, otherwise UTC.
func defaultZone(name string) string {
	if name == "" {
		return "UTC"
	}
	if _, err := cronexpr.Location(name); err != nil {
		slog.Warn("ignoring default timezone", "timezone", name, "error", err)
		return "UTC"
	}
	return name
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func redirectDashboard(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}
