package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SCHEDULER_SYNC_INTERVAL", "")
	cfg := Load()
	if cfg.Port != "8080" || cfg.DBName != "reporthub" || cfg.JWTExpireHours != 24 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.SchedulerSyncInterval != time.Minute || !cfg.MigrateOnStart {
		t.Errorf("unexpected scheduler defaults: %+v", cfg)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, ,http://localhost:3000")
	t.Setenv("SCHEDULER_SYNC_INTERVAL", "15s")
	t.Setenv("SCHEDULER_ENABLED", "false")
	t.Setenv("DB_MAX_OPEN_CONNS", "-3")
	cfg := Load()
	if cfg.Port != "9000" {
		t.Errorf("Port: got %q", cfg.Port)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "http://localhost:3000" {
		t.Errorf("CORS origins: got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.SchedulerSyncInterval != 15*time.Second || cfg.SchedulerEnabled {
		t.Errorf("scheduler settings: %+v", cfg)
	}
	if cfg.DBMaxOpenConns != 25 {
		t.Errorf("negative pool size should fall back, got %d", cfg.DBMaxOpenConns)
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{Env: "dev", LogFormat: "text", DBHost: "localhost", JWTSecret: DefaultJWTSecret}
	if err := Validate(cfg); err != nil {
		t.Fatalf("dev config should be valid: %v", err)
	}

	cfg.Env = "prod"
	cfg.LogFormat = "xml"
	cfg.TLSCertFile = "cert.pem"
	err := Validate(cfg)
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if len(verrs) != 3 {
		t.Errorf("expected 3 errors, got %d: %v", len(verrs), verrs)
	}
}
