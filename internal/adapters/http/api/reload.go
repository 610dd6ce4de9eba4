package api

import (
	"errors"
	"net/http"
)

// ReloadHandler triggers a full recomputation from the configured sources.
type ReloadHandler struct {
	deps Dependencies
}

// NewReloadHandler creates a new reload handler.
func NewReloadHandler(deps Dependencies) *ReloadHandler {
	return &ReloadHandler{deps: deps}
}

// HandlePostReload handles POST /reload requests.
func (h *ReloadHandler) HandlePostReload(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_reload"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	run, err := h.deps.Reload(r.Context())
	if errors.Is(err, ErrBusy) {
		writeError(w, http.StatusConflict, "busy", NewKind(op, ErrBusy))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "reload_failed", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, run)
}
