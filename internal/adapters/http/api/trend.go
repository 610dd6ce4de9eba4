package api

import (
	"net/http"

	"github.com/okian/trainlog/internal/adapters/repository"
	"github.com/okian/trainlog/internal/domain/model"
)

// TrendHandler serves stored CTL/ATL/TSB points.
type TrendHandler struct {
	deps Dependencies
}

// NewTrendHandler creates a new trend handler.
func NewTrendHandler(deps Dependencies) *TrendHandler {
	return &TrendHandler{deps: deps}
}

// HandleTrend handles GET /trend?from=YYYY-MM-DD&to=YYYY-MM-DD. Both bounds
// are optional and inclusive.
func (h *TrendHandler) HandleTrend(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_trend"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	from, err := parseDate(r, "from", repository.MinDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", BadRequest(op, err))
		return
	}
	to, err := parseDate(r, "to", repository.MaxDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", BadRequest(op, err))
		return
	}
	points, err := h.deps.Trend(r.Context(), from, to)
	if err != nil {
		writeLookupError(w, Wrap(op, err))
		return
	}
	if points == nil {
		points = []model.TrendPoint{}
	}
	writeJSON(w, http.StatusOK, points)
}
