// Package analytics keeps per-reporter daily run counters.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DayCount is the number of runs with a given status on one UTC day.
type DayCount struct {
	Day   string `json:"day"` // YYYY-MM-DD
	Count int64  `json:"count"`
}

// Counter records and reads run counts.
type Counter interface {
	Incr(ctx context.Context, reporterID int, status string, at time.Time) error
	Daily(ctx context.Context, reporterID int, status string, days int, now time.Time) ([]DayCount, error)
}

// RedisCounter stores one key per reporter, status and day, expiring after retention.
type RedisCounter struct {
	client    *redis.Client
	retention time.Duration
}

// NewRedisCounter returns a counter on client. retention defaults to 30 days.
func NewRedisCounter(client *redis.Client, retention time.Duration) *RedisCounter {
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	return &RedisCounter{client: client, retention: retention}
}

func (c *RedisCounter) Incr(ctx context.Context, reporterID int, status string, at time.Time) error {
	key := buildKey(reporterID, status, at)
	pipe := c.client.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, c.retention)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline: %w", err)
	}
	return nil
}

func (c *RedisCounter) Daily(ctx context.Context, reporterID int, status string, days int, now time.Time) ([]DayCount, error) {
	out := dayBuckets(days, now)
	if len(out) == 0 {
		return out, nil
	}
	keys := make([]string, len(out))
	for i, d := range out {
		keys[i] = dayKey(reporterID, status, d.Day)
	}
	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[i].Count, _ = strconv.ParseInt(s, 10, 64)
		}
	}
	return out, nil
}

// Ping checks the connection at startup.
func (c *RedisCounter) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// ErrDisabled is returned by Noop.Daily so callers can tell the counter is off.
var ErrDisabled = errors.New("run analytics disabled")

// Noop is used when no Redis address is configured.
type Noop struct{}

func (Noop) Incr(context.Context, int, string, time.Time) error { return nil }

func (Noop) Daily(context.Context, int, string, int, time.Time) ([]DayCount, error) {
	return nil, ErrDisabled
}

func buildKey(reporterID int, status string, t time.Time) string {
	return dayKey(reporterID, status, t.UTC().Format(time.DateOnly))
}

func dayKey(reporterID int, status, day string) string {
	return fmt.Sprintf("rh:r:%d:%s:%s", reporterID, status, day)
}

// dayBuckets returns the last n UTC days ending today, oldest first.
func dayBuckets(n int, now time.Time) []DayCount {
	out := make([]DayCount, 0, n)
	today := now.UTC()
	for i := n - 1; i >= 0; i-- {
		out = append(out, DayCount{Day: today.AddDate(0, 0, -i).Format(time.DateOnly)})
	}
	return out
}
