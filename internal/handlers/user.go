package handlers

import (
	"errors"
	"net/http"

	"github.com/crucial707/reporthub/internal/middleware"
	"github.com/crucial707/reporthub/internal/repo"
)

// ==========================
// UserHandler
// ==========================
type UserHandler struct {
	Repo *repo.UserRepo
}

// ==========================
// Me returns the authenticated user
// ==========================
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetUserID(r.Context())
	if id == 0 {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.Repo.GetByID(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		JSONError(w, "user not found", http.StatusNotFound)
		return
	}
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
