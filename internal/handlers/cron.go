package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/crucial707/reporthub/internal/cronexpr"
)

// nextRunCount is how many upcoming fire times responses include.
const nextRunCount = 5

// cronInput is the part of a request body that describes when something runs:
// either a raw cron expression or the builder fields.
type cronInput struct {
	Cron     string   `json:"cron"`
	Minute   string   `json:"minute"`
	Hour     string   `json:"hour"`
	Days     []string `json:"days"`
	Timezone string   `json:"timezone"`
}

// resolve turns the input into a canonical expression. Problems are returned
// as field messages keyed by the request field that caused them.
func (in cronInput) resolve() (string, cronexpr.Fields, map[string]string) {
	if strings.TrimSpace(in.Cron) != "" {
		f, err := cronexpr.Parse(in.Cron)
		if err != nil {
			return "", cronexpr.Fields{}, map[string]string{"cron": cronReason(err)}
		}
		expr, err := cronexpr.Format(f)
		if err == nil {
			err = cronexpr.Validate(expr)
		}
		if err != nil {
			return "", cronexpr.Fields{}, map[string]string{"cron": cronReason(err)}
		}
		return expr, f, nil
	}

	var days cronexpr.DaySet
	for _, raw := range in.Days {
		d, ok := cronexpr.ParseWeekday(strings.TrimSpace(raw))
		if !ok {
			return "", cronexpr.Fields{}, map[string]string{"days": "unknown day " + strconv.Quote(raw)}
		}
		days = days.With(d)
	}
	f := cronexpr.Fields{Minute: in.Minute, Hour: in.Hour, Days: days}
	expr, err := cronexpr.Format(f)
	if err != nil {
		var cerr *cronexpr.Error
		if errors.As(err, &cerr) && cerr.Field != "" {
			return "", cronexpr.Fields{}, map[string]string{cerr.Field: cerr.Reason}
		}
		return "", cronexpr.Fields{}, map[string]string{"cron": err.Error()}
	}
	if err := cronexpr.Validate(expr); err != nil {
		return "", cronexpr.Fields{}, map[string]string{"cron": cronReason(err)}
	}
	// Normalized values ("08" becomes "8").
	f, _ = cronexpr.Parse(expr)
	return expr, f, nil
}

func cronReason(err error) string {
	var cerr *cronexpr.Error
	if errors.As(err, &cerr) {
		if cerr.Field != "" {
			return cerr.Field + " " + strconv.Quote(cerr.Value) + ": " + cerr.Reason
		}
		return cerr.Reason
	}
	return err.Error()
}

// checkZone validates tz against zones; an empty tz means UTC.
func checkZone(zones *cronexpr.ZoneSet, tz string) (string, string) {
	if tz == "" {
		return "UTC", ""
	}
	if !zones.Contains(tz) {
		return "", "unknown timezone"
	}
	return tz, ""
}

// CronPreview is the computed view of an expression.
type CronPreview struct {
	Cron        string             `json:"cron"`
	Minute      string             `json:"minute"`
	Hour        string             `json:"hour"`
	Days        []cronexpr.Weekday `json:"days"`
	Timezone    string             `json:"timezone"`
	Description string             `json:"description"`
	NextRuns    []time.Time        `json:"next_runs"`
}

func preview(expr string, f cronexpr.Fields, tz string, now time.Time) (CronPreview, error) {
	desc, err := cronexpr.Describe(f, tz)
	if err != nil {
		return CronPreview{}, err
	}
	runs, err := cronexpr.NextRuns(expr, tz, now, nextRunCount)
	if err != nil {
		return CronPreview{}, err
	}
	return CronPreview{
		Cron:        expr,
		Minute:      f.Minute,
		Hour:        f.Hour,
		Days:        f.Days.Days(),
		Timezone:    tz,
		Description: desc,
		NextRuns:    runs,
	}, nil
}

// CronHandler serves the stateless cron builder endpoints.
type CronHandler struct {
	Zones *cronexpr.ZoneSet
	Now   func() time.Time
}

// Describe validates builder fields or a cron string and returns its description and next runs.
func (h *CronHandler) Describe(w http.ResponseWriter, r *http.Request) {
	var input cronInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	expr, f, fields := input.resolve()
	tz, msg := checkZone(h.Zones, input.Timezone)
	if msg != "" {
		if fields == nil {
			fields = map[string]string{}
		}
		fields["timezone"] = msg
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	p, err := preview(expr, f, tz, nowFunc(h.Now)())
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Timezones lists the timezone names schedules may use.
func (h *CronHandler) Timezones(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"timezones": h.Zones.Names()})
}

func nowFunc(f func() time.Time) func() time.Time {
	if f != nil {
		return f
	}
	return time.Now
}
