package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/crucial707/reporthub/internal/cronexpr"
	"github.com/crucial707/reporthub/internal/models"
	"github.com/crucial707/reporthub/internal/repo"
)

// ScheduleHandler handles schedule CRUD.
type ScheduleHandler struct {
	Repo  *repo.ScheduleRepo
	Audit *repo.AuditRepo
	Zones *cronexpr.ZoneSet
	Now   func() time.Time
}

// ScheduleView is a stored schedule plus its builder fields, description and upcoming runs.
type ScheduleView struct {
	models.Schedule
	Minute      string             `json:"minute"`
	Hour        string             `json:"hour"`
	Days        []cronexpr.Weekday `json:"days"`
	Description string             `json:"description"`
	NextRuns    []time.Time        `json:"next_runs"`
}

type scheduleInput struct {
	Name string `json:"name" validate:"required,max=100"`
	cronInput
}

func (h *ScheduleHandler) view(s models.Schedule) ScheduleView {
	v := ScheduleView{Schedule: s, Description: s.Cron, NextRuns: []time.Time{}}
	f, err := cronexpr.Parse(s.Cron)
	if err != nil {
		slog.Warn("stored schedule does not parse", "schedule_id", s.ID, "cron", s.Cron, "error", err)
		return v
	}
	p, err := preview(s.Cron, f, s.Timezone, nowFunc(h.Now)())
	if err != nil {
		slog.Warn("stored schedule preview failed", "schedule_id", s.ID, "error", err)
		return v
	}
	v.Minute, v.Hour, v.Days = p.Minute, p.Hour, p.Days
	v.Description, v.NextRuns = p.Description, p.NextRuns
	return v
}

// ListSchedules returns paginated schedules (query: limit, offset).
func (h *ScheduleHandler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r, 100)

	list, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	total, err := h.Repo.Count(r.Context())
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	items := make([]ScheduleView, 0, len(list))
	for _, s := range list {
		items = append(items, h.view(s))
	}
	writeJSON(w, http.StatusOK, ListResponse[ScheduleView]{Items: items, Total: total, Limit: limit, Offset: offset})
}

// GetSchedule returns one schedule by id.
func (h *ScheduleHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		JSONError(w, "invalid schedule id", http.StatusBadRequest)
		return
	}

	s, err := h.Repo.GetByID(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		JSONError(w, "schedule not found", http.StatusNotFound)
		return
	}
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, h.view(*s))
}

// decode reads and validates a create/update body.
// Body: {"name": "...", "timezone": "Europe/Paris", "cron": "0 8 * * MON"} or
// {"name": "...", "timezone": "...", "minute": "0", "hour": "8", "days": ["MON"]}.
func (h *ScheduleHandler) decode(w http.ResponseWriter, r *http.Request) (name, expr, tz string, ok bool) {
	var input scheduleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return "", "", "", false
	}

	fields := validationFields(input)
	if fields == nil {
		fields = map[string]string{}
	}
	expr, _, cronFields := input.resolve()
	for k, v := range cronFields {
		fields[k] = v
	}
	tz, msg := checkZone(h.Zones, input.Timezone)
	if msg != "" {
		fields["timezone"] = msg
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return "", "", "", false
	}
	return input.Name, expr, tz, true
}

// CreateSchedule creates a new schedule.
func (h *ScheduleHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	name, expr, tz, ok := h.decode(w, r)
	if !ok {
		return
	}

	s, err := h.Repo.Create(r.Context(), name, expr, tz)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	recordAudit(r.Context(), h.Audit, "create", models.ResourceSchedule, s.ID, s.Name+": "+s.Cron+" "+s.Timezone)
	writeJSON(w, http.StatusCreated, h.view(*s))
}

// UpdateSchedule replaces a schedule's name, expression and timezone.
func (h *ScheduleHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		JSONError(w, "invalid schedule id", http.StatusBadRequest)
		return
	}
	name, expr, tz, ok := h.decode(w, r)
	if !ok {
		return
	}

	s, err := h.Repo.Update(r.Context(), id, name, expr, tz)
	if errors.Is(err, repo.ErrNotFound) {
		JSONError(w, "schedule not found", http.StatusNotFound)
		return
	}
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	recordAudit(r.Context(), h.Audit, "update", models.ResourceSchedule, s.ID, s.Name+": "+s.Cron+" "+s.Timezone)
	writeJSON(w, http.StatusOK, h.view(*s))
}

// DeleteSchedule deletes a schedule. Reporters using it become unscheduled.
func (h *ScheduleHandler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		JSONError(w, "invalid schedule id", http.StatusBadRequest)
		return
	}

	err := h.Repo.Delete(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		JSONError(w, "schedule not found", http.StatusNotFound)
		return
	}
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	recordAudit(r.Context(), h.Audit, "delete", models.ResourceSchedule, id, "")
	w.WriteHeader(http.StatusNoContent)
}
