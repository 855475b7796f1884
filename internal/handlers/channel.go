package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/crucial707/reporthub/internal/models"
	"github.com/crucial707/reporthub/internal/notify"
	"github.com/crucial707/reporthub/internal/repo"
	"github.com/crucial707/reporthub/internal/runner"
	"github.com/google/uuid"
)

// ChannelHandler handles notification channel CRUD and test deliveries.
type ChannelHandler struct {
	Repo     *repo.ChannelRepo
	Audit    *repo.AuditRepo
	Notifier runner.Notifier
	Now      func() time.Time
}

type channelInput struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Description string          `json:"description" validate:"max=500"`
	Type        string          `json:"type" validate:"required,oneof=WEBHOOK SLACK"`
	Settings    json.RawMessage `json:"settings"`
}

// settingsBytes accepts settings as a JSON object or as a string holding JSON text.
func (in channelInput) settingsBytes() []byte {
	raw := bytes.TrimSpace(in.Settings)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return []byte(s)
		}
	}
	if len(raw) == 0 {
		return []byte("{}")
	}
	return raw
}

// ListChannels returns paginated channels (query: limit, offset).
func (h *ChannelHandler) ListChannels(w http.ResponseWriter, r *http.Request) {
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
		list = []models.NotificationChannel{}
	}
	writeJSON(w, http.StatusOK, ListResponse[models.NotificationChannel]{Items: list, Total: total, Limit: limit, Offset: offset})
}

// GetChannel returns one channel by id.
func (h *ChannelHandler) GetChannel(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		JSONError(w, "invalid channel id", http.StatusBadRequest)
		return
	}

	c, err := h.Repo.GetByID(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		JSONError(w, "channel not found", http.StatusNotFound)
		return
	}
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// decode reads and validates a create/update body.
// Body: {"name": "...", "description": "...", "type": "WEBHOOK", "settings": {"url": "https://..."}}.
func (h *ChannelHandler) decode(w http.ResponseWriter, r *http.Request) (models.NotificationChannel, bool) {
	var input channelInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return models.NotificationChannel{}, false
	}

	fields := validationFields(input)
	if _, bad := fields["name"]; bad && input.Name == "" {
		fields["name"] = "Name is required"
	}
	settings := input.settingsBytes()
	if _, bad := fields["type"]; !bad {
		if err := notify.ValidateSettings(input.Type, settings); err != nil {
			if fields == nil {
				fields = map[string]string{}
			}
			fields["settings"] = err.Error()
		}
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return models.NotificationChannel{}, false
	}

	return models.NotificationChannel{
		Name:        input.Name,
		Description: input.Description,
		Type:        input.Type,
		Settings:    json.RawMessage(settings),
	}, true
}

// CreateChannel creates a new channel.
func (h *ChannelHandler) CreateChannel(w http.ResponseWriter, r *http.Request) {
	c, ok := h.decode(w, r)
	if !ok {
		return
	}

	out, err := h.Repo.Upsert(r.Context(), c)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	recordAudit(r.Context(), h.Audit, "create", models.ResourceChannel, out.ID, out.Name+" ("+out.Type+")")
	writeJSON(w, http.StatusCreated, out)
}

// UpdateChannel replaces a channel.
func (h *ChannelHandler) UpdateChannel(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		JSONError(w, "invalid channel id", http.StatusBadRequest)
		return
	}
	c, ok := h.decode(w, r)
	if !ok {
		return
	}
	c.ID = id

	out, err := h.Repo.Upsert(r.Context(), c)
	if errors.Is(err, repo.ErrNotFound) {
		JSONError(w, "channel not found", http.StatusNotFound)
		return
	}
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	recordAudit(r.Context(), h.Audit, "update", models.ResourceChannel, out.ID, out.Name+" ("+out.Type+")")
	writeJSON(w, http.StatusOK, out)
}

// DeleteChannel deletes a channel and unlinks it from every reporter.
func (h *ChannelHandler) DeleteChannel(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		JSONError(w, "invalid channel id", http.StatusBadRequest)
		return
	}

	err := h.Repo.Delete(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		JSONError(w, "channel not found", http.StatusNotFound)
		return
	}
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	recordAudit(r.Context(), h.Audit, "delete", models.ResourceChannel, id, "")
	w.WriteHeader(http.StatusNoContent)
}

// TestResult is the outcome of a test delivery.
type TestResult struct {
	OK         bool   `json:"ok"`
	StatusCode int    `json:"status_code,omitempty"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// TestChannel sends a test message to the channel. Responds 200 when the
// channel accepted it and 502 otherwise.
func (h *ChannelHandler) TestChannel(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		JSONError(w, "invalid channel id", http.StatusBadRequest)
		return
	}

	c, err := h.Repo.GetByID(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		JSONError(w, "channel not found", http.StatusNotFound)
		return
	}
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	now := nowFunc(h.Now)().UTC()
	res := h.Notifier.Send(r.Context(), *c, notify.Message{
		EventID:     uuid.NewString(),
		Reporter:    "Test",
		Trigger:     "test",
		Text:        "Test notification for channel " + c.Name,
		ScheduledAt: now,
	})

	out := TestResult{OK: res.OK(), StatusCode: res.StatusCode, DurationMS: res.Duration.Milliseconds()}
	status := http.StatusOK
	if err := res.Err(); err != nil {
		out.Error = err.Error()
		status = http.StatusBadGateway
	}
	writeJSON(w, status, out)
}
