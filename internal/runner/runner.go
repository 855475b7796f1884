// Package runner executes a reporter: it records a run, delivers the report
// to every linked notification channel and stores the outcome.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/crucial707/reporthub/internal/analytics"
	"github.com/crucial707/reporthub/internal/cronexpr"
	"github.com/crucial707/reporthub/internal/metrics"
	"github.com/crucial707/reporthub/internal/models"
	"github.com/crucial707/reporthub/internal/notify"
	"github.com/crucial707/reporthub/internal/repo"
	"github.com/google/uuid"
)

// ErrDisabled is returned when a scheduled run fires for a reporter that has
// since been disabled.
var ErrDisabled = errors.New("reporter is disabled")

// Notifier delivers one message to one channel.
type Notifier interface {
	Send(ctx context.Context, ch models.NotificationChannel, msg notify.Message) notify.Result
}

type Runner struct {
	Reporters *repo.ReporterRepo
	Schedules *repo.ScheduleRepo
	Channels  *repo.ChannelRepo
	Runs      *repo.RunRepo
	Notifier  Notifier
	Counter   analytics.Counter

	// Now defaults to time.Now.
	Now func() time.Time
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Run executes reporterID once. The returned run is non-nil whenever a run
// record was created, including failed deliveries.
func (r *Runner) Run(ctx context.Context, reporterID int, trigger string, scheduledAt time.Time) (*models.ReporterRun, error) {
	rep, err := r.Reporters.GetByID(ctx, reporterID)
	if err != nil {
		return nil, fmt.Errorf("load reporter %d: %w", reporterID, err)
	}
	if trigger == models.TriggerSchedule && !rep.Enabled {
		return nil, ErrDisabled
	}

	run := &models.ReporterRun{
		ID:         uuid.New(),
		ReporterID: rep.ID,
		Trigger:    trigger,
		Status:     models.RunRunning,
		StartedAt:  r.now().UTC(),
	}
	if err := r.Runs.Start(ctx, *run); err != nil {
		return nil, fmt.Errorf("start run: %w", err)
	}
	metrics.RunStarted()
	log := slog.With("reporter_id", rep.ID, "run_id", run.ID.String(), "trigger", trigger)

	failures := r.deliver(ctx, log, rep, run, scheduledAt)

	run.Status = models.RunSucceeded
	if len(failures) > 0 {
		run.Status = models.RunFailed
		run.Error = strings.Join(failures, "; ")
	}
	finished := r.now().UTC()
	run.FinishedAt = &finished

	// The run row must be closed even if the caller's context is gone.
	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := r.Runs.Finish(finishCtx, run.ID, run.Status, run.Error); err != nil {
		log.Error("finish run failed", "error", err)
	}
	metrics.RunFinished(trigger, run.Status)
	if r.Counter != nil {
		if err := r.Counter.Incr(finishCtx, rep.ID, run.Status, run.StartedAt); err != nil {
			log.Warn("run counter update failed", "error", err)
		}
	}

	log.Info("reporter run finished", "status", run.Status, "error", run.Error)
	return run, nil
}

func (r *Runner) deliver(ctx context.Context, log *slog.Logger, rep *models.Reporter, run *models.ReporterRun, scheduledAt time.Time) []string {
	if len(rep.ChannelIDs) == 0 {
		return []string{"reporter has no notification channels"}
	}
	channels, err := r.Channels.ListByIDs(ctx, rep.ChannelIDs)
	if err != nil {
		return []string{fmt.Sprintf("load channels: %v", err)}
	}

	msg := notify.Message{
		RunID:       run.ID.String(),
		ReporterID:  rep.ID,
		Reporter:    rep.Name,
		Trigger:     run.Trigger,
		Text:        r.reportText(ctx, rep, run.Trigger, scheduledAt),
		ScheduledAt: scheduledAt.UTC(),
	}

	var failures []string
	for _, ch := range channels {
		msg.EventID = uuid.NewString()
		res := r.Notifier.Send(ctx, ch, msg)
		if err := res.Err(); err != nil {
			log.Warn("notification failed", "channel_id", ch.ID, "type", ch.Type, "error", err)
			failures = append(failures, fmt.Sprintf("%s: %v", ch.Name, err))
			continue
		}
		log.Debug("notification sent", "channel_id", ch.ID, "status", res.StatusCode, "duration_ms", res.Duration.Milliseconds())
	}
	return failures
}

func (r *Runner) reportText(ctx context.Context, rep *models.Reporter, trigger string, scheduledAt time.Time) string {
	var b strings.Builder
	b.WriteString(rep.Name)
	if trigger == models.TriggerManual {
		b.WriteString(" was run manually")
	} else {
		b.WriteString(" ran on schedule")
	}
	fmt.Fprintf(&b, " at %s", scheduledAt.UTC().Format(time.RFC3339))

	if rep.ScheduleID != nil {
		s, err := r.Schedules.GetByID(ctx, *rep.ScheduleID)
		if err == nil {
			if desc, err := cronexpr.DescribeExpr(s.Cron, s.Timezone); err == nil {
				fmt.Fprintf(&b, " (%s)", desc)
			}
		}
	}
	if rep.Description != "" {
		b.WriteString(". ")
		b.WriteString(rep.Description)
	}
	return b.String()
}
