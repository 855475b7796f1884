package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/crucial707/reporthub/internal/analytics"
	"github.com/crucial707/reporthub/internal/models"
	"github.com/crucial707/reporthub/internal/repo"
)

// ReporterRunner executes a reporter once.
type ReporterRunner interface {
	Run(ctx context.Context, reporterID int, trigger string, scheduledAt time.Time) (*models.ReporterRun, error)
}

// ReporterHandler handles reporter CRUD, manual runs and run history.
type ReporterHandler struct {
	Repo      *repo.ReporterRepo
	Schedules *repo.ScheduleRepo
	Channels  *repo.ChannelRepo
	Runs      *repo.RunRepo
	Runner    ReporterRunner
	Counter   analytics.Counter
	Audit     *repo.AuditRepo
	Now       func() time.Time
}

type reporterInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
	ScheduleID  *int   `json:"schedule_id"`
	Enabled     *bool  `json:"enabled"`
	ChannelIDs  []int  `json:"channel_ids" validate:"dive,gt=0"`
}

// ListReporters returns paginated reporters (query: limit, offset).
func (h *ReporterHandler) ListReporters(w http.ResponseWriter, r *http.Request) {
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
	if list == nil {
		list = []models.Reporter{}
	}
	writeJSON(w, http.StatusOK, ListResponse[models.Reporter]{Items: list, Total: total, Limit: limit, Offset: offset})
}

// GetReporter returns one reporter by id.
func (h *ReporterHandler) GetReporter(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		JSONError(w, "invalid reporter id", http.StatusBadRequest)
		return
	}

	rep, err := h.Repo.GetByID(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		JSONError(w, "reporter not found", http.StatusNotFound)
		return
	}
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// decode reads and validates a create/update body, checking that the
// referenced schedule and channels exist.
// Body: {"name": "...", "description": "...", "schedule_id": 1, "enabled": true, "channel_ids": [1, 2]}.
func (h *ReporterHandler) decode(w http.ResponseWriter, r *http.Request) (models.Reporter, bool) {
	var input reporterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return models.Reporter{}, false
	}

	fields := validationFields(input)
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return models.Reporter{}, false
	}
	fields = map[string]string{}

	if input.ScheduleID != nil {
		_, err := h.Schedules.GetByID(r.Context(), *input.ScheduleID)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			fields["schedule_id"] = "schedule not found"
		case err != nil:
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return models.Reporter{}, false
		}
	}

	channelIDs := uniqueIDs(input.ChannelIDs)
	if len(channelIDs) > 0 {
		found, err := h.Channels.ListByIDs(r.Context(), channelIDs)
		if err != nil {
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return models.Reporter{}, false
		}
		if len(found) != len(channelIDs) {
			fields["channel_ids"] = "unknown channel id"
		}
	}

	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return models.Reporter{}, false
	}

	enabled := true
	if input.Enabled != nil {
		enabled = *input.Enabled
	}
	return models.Reporter{
		Name:        input.Name,
		Description: input.Description,
		ScheduleID:  input.ScheduleID,
		Enabled:     enabled,
		ChannelIDs:  channelIDs,
	}, true
}

func uniqueIDs(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}

// CreateReporter creates a reporter and links its channels.
func (h *ReporterHandler) CreateReporter(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.decode(w, r)
	if !ok {
		return
	}

	out, err := h.Repo.Create(r.Context(), rep)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	recordAudit(r.Context(), h.Audit, "create", models.ResourceReporter, out.ID, out.Name)
	writeJSON(w, http.StatusCreated, out)
}

// UpdateReporter replaces a reporter and its channel links.
func (h *ReporterHandler) UpdateReporter(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		JSONError(w, "invalid reporter id", http.StatusBadRequest)
		return
	}
	rep, ok := h.decode(w, r)
	if !ok {
		return
	}
	rep.ID = id

	out, err := h.Repo.Update(r.Context(), rep)
	if errors.Is(err, repo.ErrNotFound) {
		JSONError(w, "reporter not found", http.StatusNotFound)
		return
	}
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	recordAudit(r.Context(), h.Audit, "update", models.ResourceReporter, out.ID, out.Name)
	writeJSON(w, http.StatusOK, out)
}

// DeleteReporter deletes a reporter together with its run history.
func (h *ReporterHandler) DeleteReporter(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		JSONError(w, "invalid reporter id", http.StatusBadRequest)
		return
	}

	err := h.Repo.Delete(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		JSONError(w, "reporter not found", http.StatusNotFound)
		return
	}
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	recordAudit(r.Context(), h.Audit, "delete", models.ResourceReporter, id, "")
	w.WriteHeader(http.StatusNoContent)
}

// RunReporter runs a reporter now, regardless of its schedule or enabled flag.
// A run whose deliveries failed is still a 200; check its status.
func (h *ReporterHandler) RunReporter(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		JSONError(w, "invalid reporter id", http.StatusBadRequest)
		return
	}

	run, err := h.Runner.Run(r.Context(), id, models.TriggerManual, nowFunc(h.Now)())
	if errors.Is(err, repo.ErrNotFound) {
		JSONError(w, "reporter not found", http.StatusNotFound)
		return
	}
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	recordAudit(r.Context(), h.Audit, "run", models.ResourceReporter, id, run.Status)
	writeJSON(w, http.StatusOK, run)
}

// ListRuns returns a reporter's most recent runs (query: limit, default 20, max 100).
func (h *ReporterHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		JSONError(w, "invalid reporter id", http.StatusBadRequest)
		return
	}
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 && val <= 100 {
			limit = val
		}
	}

	runs, err := h.Runs.ListByReporter(r.Context(), id, limit)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []models.ReporterRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// RunStats is the daily run counts of one reporter.
type RunStats struct {
	ReporterID int                  `json:"reporter_id"`
	Succeeded  []analytics.DayCount `json:"succeeded"`
	Failed     []analytics.DayCount `json:"failed"`
}

// RunStats returns per-day run counts (query: days, default 7, max 30).
// Responds 503 when run analytics are not configured.
func (h *ReporterHandler) RunStats(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		JSONError(w, "invalid reporter id", http.StatusBadRequest)
		return
	}
	days := 7
	if d := r.URL.Query().Get("days"); d != "" {
		if val, err := strconv.Atoi(d); err == nil && val > 0 && val <= 30 {
			days = val
		}
	}

	counter := h.Counter
	if counter == nil {
		counter = analytics.Noop{}
	}
	now := nowFunc(h.Now)()
	out := RunStats{ReporterID: id}
	var err error
	if out.Succeeded, err = counter.Daily(r.Context(), id, models.RunSucceeded, days, now); err == nil {
		out.Failed, err = counter.Daily(r.Context(), id, models.RunFailed, days, now)
	}
	if errors.Is(err, analytics.ErrDisabled) {
		JSONError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
