package models

import (
	"time"

	"github.com/google/uuid"
)

// Reporter is a job that, when its schedule fires, sends a report to each of
// its notification channels.
type Reporter struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ScheduleID  *int      `json:"schedule_id"`
	Enabled     bool      `json:"enabled"`
	ChannelIDs  []int     `json:"channel_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ScheduledReporter is an enabled reporter joined with its schedule.
type ScheduledReporter struct {
	ReporterID   int    `json:"reporter_id"`
	ReporterName string `json:"reporter_name"`
	ScheduleID   int    `json:"schedule_id"`
	Cron         string `json:"cron"`
	Timezone     string `json:"timezone"`
}

// Run triggers.
const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
)

// Run statuses.
const (
	RunRunning   = "running"
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
)

// ReporterRun records one execution of a reporter.
type ReporterRun struct {
	ID         uuid.UUID  `json:"id"`
	ReporterID int        `json:"reporter_id"`
	Trigger    string     `json:"trigger"`
	Status     string     `json:"status"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
