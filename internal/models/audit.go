package models

import "time"

// Audited resource types.
const (
	ResourceSchedule = "schedule"
	ResourceChannel  = "channel"
	ResourceReporter = "reporter"
)

// AuditEntry represents one audit log row.
type AuditEntry struct {
	ID           int       `json:"id"`
	UserID       int       `json:"user_id"`
	Action       string    `json:"action"`        // create, update, delete, run
	ResourceType string    `json:"resource_type"` // schedule, channel, reporter
	ResourceID   int       `json:"resource_id"`
	Details      string    `json:"details,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
