package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/crucial707/reporthub/internal/middleware"
	"github.com/crucial707/reporthub/internal/models"
	"github.com/crucial707/reporthub/internal/repo"
)

// AuditHandler serves audit log endpoints.
type AuditHandler struct {
	Repo *repo.AuditRepo
}

// ListAudit returns recent audit log entries.
// Query: resource_type (schedule|channel|reporter), limit (default 50, max 200), offset (default 0).
func (h *AuditHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r, 200)

	resourceType := r.URL.Query().Get("resource_type")
	switch resourceType {
	case "", models.ResourceSchedule, models.ResourceChannel, models.ResourceReporter:
	default:
		JSONValidationError(w, "validation failed", map[string]string{"resource_type": "unknown resource type"}, http.StatusBadRequest)
		return
	}

	entries, err := h.Repo.List(r.Context(), resourceType, limit, offset)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// recordAudit writes an audit entry for the authenticated user. Failures are
// logged and never fail the request.
func recordAudit(ctx context.Context, audit *repo.AuditRepo, action, resourceType string, resourceID int, details string) {
	if audit == nil {
		return
	}
	if err := audit.Log(ctx, middleware.GetUserID(ctx), action, resourceType, resourceID, details); err != nil {
		slog.Warn("audit log failed", "action", action, "resource_type", resourceType, "resource_id", resourceID, "error", err)
	}
}
