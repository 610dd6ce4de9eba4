package api

import (
	"net/http"
	"strconv"
)

// RunsHandler lists stored runs.
type RunsHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(deps Dependencies, maxLimit int) *RunsHandler {
	if maxLimit < 1 {
		maxLimit = 100
	}
	return &RunsHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetRuns handles GET /runs?limit=N requests. limit defaults to 10.
func (h *RunsHandler) HandleGetRuns(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_runs"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n := 10
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		n = v
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	runs, err := h.deps.Runs(r.Context(), n)
	if err != nil {
		writeLookupError(w, Wrap(op, err))
		return
	}
	if runs == nil {
		runs = []Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}
