package models

import "time"

// Schedule is a named cron expression evaluated in an IANA timezone.
// Cron always has five fields with day-of-month and month set to "*".
type Schedule struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Cron      string    `json:"cron"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
