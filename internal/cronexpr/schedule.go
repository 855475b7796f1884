package cronexpr

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

var standardParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Validate checks expr against the builder's constraints and checks that its
// canonical form is accepted by the standard 5-field cron grammar used by the
// scheduler. Ranges such as SAT-SUN are valid here even though the scheduler
// only ever sees them as lists.
func Validate(expr string) error {
	f, err := Parse(expr)
	if err != nil {
		return err
	}
	canonical, err := Format(f)
	if err != nil {
		return err
	}
	if _, err := standardParser.Parse(canonical); err != nil {
		return &Error{Kind: ErrInvalidCronField, Value: expr, Reason: err.Error()}
	}
	return nil
}

// Location loads an IANA zone. An empty name means UTC.
func Location(timezone string) (*time.Location, error) {
	if timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	return loc, nil
}

// NextRuns returns up to n fire times of expr after the given instant,
// evaluated in timezone.
func NextRuns(expr, timezone string, after time.Time, n int) ([]time.Time, error) {
	if n <= 0 {
		return nil, nil
	}
	sched, err := standardParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parse cron: %w", err)
	}
	loc, err := Location(timezone)
	if err != nil {
		return nil, err
	}

	runs := make([]time.Time, 0, n)
	t := after.In(loc)
	for len(runs) < n {
		t = sched.Next(t)
		if t.IsZero() {
			break
		}
		runs = append(runs, t)
	}
	return runs, nil
}

// WithZone prefixes expr with CRON_TZ so robfig/cron evaluates it in timezone.
func WithZone(expr, timezone string) string {
	if timezone == "" {
		return expr
	}
	return "CRON_TZ=" + timezone + " " + expr
}
