package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/okian/trainlog/internal/adapters/repository"
	"github.com/okian/trainlog/internal/domain/model"
	"github.com/okian/trainlog/internal/domain/report"
)

// SessionsHandler serves sessions of the latest report with their metrics.
type SessionsHandler struct {
	deps Dependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps Dependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// HandleGetSessions handles GET /sessions/ and GET /sessions/{date}.
// An optional activity query parameter filters by activity type.
func (h *SessionsHandler) HandleGetSessions(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_sessions"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/sessions/")
	if strings.Contains(path, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	byDate := path != ""
	var day model.Date
	if byDate {
		t, err := time.Parse(time.DateOnly, path)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", BadRequest(op, err))
			return
		}
		day = model.DateOf(t)
	}

	filter := model.ActivityType(0)
	hasFilter := false
	if v := r.URL.Query().Get("activity"); v != "" {
		a, ok := model.ParseActivityType(v)
		if !ok {
			writeError(w, http.StatusBadRequest, "bad_request", BadRequest(op, fmt.Errorf("unknown activity %q", v)))
			return
		}
		filter, hasFilter = a, true
	}

	rep, err := h.deps.Latest(r.Context())
	if err != nil {
		writeLookupError(w, Wrap(op, err))
		return
	}

	out := make([]report.SessionReport, 0)
	for _, sr := range rep.Sessions {
		if byDate && sr.Session.Date != day {
			continue
		}
		if hasFilter && sr.Session.Activity != filter {
			continue
		}
		out = append(out, sr)
	}
	if byDate && len(out) == 0 {
		writeLookupError(w, Wrap(op, fmt.Errorf("%w: no sessions on %s", repository.ErrNotFound, day)))
		return
	}
	writeJSON(w, http.StatusOK, out)
}
