package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/crucial707/reporthub/internal/analytics"
	"github.com/crucial707/reporthub/internal/config"
	"github.com/crucial707/reporthub/internal/cronexpr"
	"github.com/redis/go-redis/v9"
)

// runStatsRetention is how long per-day run counters are kept in Redis.
const runStatsRetention = 45 * 24 * time.Hour

// loadZones lists the timezones under dir, falling back to a built-in set
// when the directory is missing or empty.
func loadZones(dir string) *cronexpr.ZoneSet {
	if dir != "" {
		zones, err := cronexpr.LoadZones(os.DirFS(dir))
		if err == nil {
			slog.Info("loaded timezones", "dir", dir, "count", zones.Len())
			return zones
		}
		slog.Warn("timezone directory unusable, using built-in list", "dir", dir, "error", err)
	}
	return cronexpr.DefaultZones()
}

// runCounter connects to Redis when configured. Without Redis, run stats are
// disabled and the API answers 503 on the stats endpoint.
func runCounter(ctx context.Context, cfg config.Config) analytics.Counter {
	if cfg.RedisAddr == "" {
		return analytics.Noop{}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	counter := analytics.NewRedisCounter(client, runStatsRetention)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := counter.Ping(pingCtx); err != nil {
		slog.Warn("redis unreachable, run stats disabled", "addr", cfg.RedisAddr, "error", err)
		client.Close()
		return analytics.Noop{}
	}
	slog.Info("run stats enabled", "addr", cfg.RedisAddr)
	return counter
}

// awaitStopped blocks until done is closed or ctx ends, reporting which.
func awaitStopped(ctx context.Context, done <-chan struct{}) bool {
	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}
