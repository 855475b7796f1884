package scheduler

import (
	"context"
	"log"
	"log/slog"
	"sync"
	"time"

	"github.com/crucial707/reporthub/internal/cronexpr"
	"github.com/crucial707/reporthub/internal/metrics"
	"github.com/crucial707/reporthub/internal/models"
	"github.com/robfig/cron/v3"
)

// Source lists the reporters that should be registered.
type Source interface {
	ListEnabledScheduled(ctx context.Context) ([]models.ScheduledReporter, error)
}

// RunFunc executes one reporter for the given fire time.
type RunFunc func(ctx context.Context, reporterID int, scheduledAt time.Time)

type entry struct {
	id   cron.EntryID
	spec string
}

// Scheduler keeps a robfig/cron runner in step with the reporters table.
// Each reporter fires in its schedule's timezone; a reporter whose previous
// run is still going is skipped rather than queued.
type Scheduler struct {
	source   Source
	run      RunFunc
	interval time.Duration

	cron    *cron.Cron
	mu      sync.Mutex
	entries map[int]entry // reporter ID -> cron entry
	ctx     context.Context
	jobs    sync.WaitGroup
}

// New returns a scheduler that reloads from source every interval (default 60s).
func New(source Source, run RunFunc, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	logger := cron.PrintfLogger(log.Default())
	return &Scheduler{
		source:   source,
		run:      run,
		interval: interval,
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		entries: make(map[int]entry),
		ctx:     context.Background(),
	}
}

// Run loads reporters, starts the cron runner and resyncs until ctx is done.
// On return every running job has finished.
func (s *Scheduler) Run(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.Sync(ctx)
	s.cron.Start()
	slog.Info("scheduler started", "entries", s.Len(), "sync_interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			<-s.cron.Stop().Done()
			s.jobs.Wait()
			slog.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.Sync(ctx)
		}
	}
}

// Sync reconciles cron entries with the enabled, scheduled reporters:
// new reporters are added, removed ones dropped and changed specs replaced.
func (s *Scheduler) Sync(ctx context.Context) {
	list, err := s.source.ListEnabledScheduled(ctx)
	if err != nil {
		slog.Error("scheduler: list scheduled reporters", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[int]bool, len(list))
	for _, sr := range list {
		seen[sr.ReporterID] = true
		spec := cronexpr.WithZone(sr.Cron, sr.Timezone)
		if cur, ok := s.entries[sr.ReporterID]; ok {
			if cur.spec == spec {
				continue
			}
			s.cron.Remove(cur.id)
			delete(s.entries, sr.ReporterID)
		}

		reporterID := sr.ReporterID
		id, err := s.cron.AddFunc(spec, func() { s.fire(reporterID) })
		if err != nil {
			slog.Warn("scheduler: invalid cron", "reporter_id", sr.ReporterID, "schedule_id", sr.ScheduleID, "spec", spec, "error", err)
			continue
		}
		s.entries[sr.ReporterID] = entry{id: id, spec: spec}
		slog.Debug("scheduler: registered reporter", "reporter_id", sr.ReporterID, "spec", spec)
	}

	for reporterID, e := range s.entries {
		if !seen[reporterID] {
			s.cron.Remove(e.id)
			delete(s.entries, reporterID)
			slog.Debug("scheduler: removed reporter", "reporter_id", reporterID)
		}
	}
	metrics.SetScheduledEntries(len(s.entries))
}

func (s *Scheduler) fire(reporterID int) {
	s.jobs.Add(1)
	defer s.jobs.Done()
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	s.run(ctx, reporterID, time.Now().UTC().Truncate(time.Minute))
}

// Len returns the number of registered reporters.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Spec returns the registered spec for a reporter, if any.
func (s *Scheduler) Spec(reporterID int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[reporterID]
	return e.spec, ok
}
