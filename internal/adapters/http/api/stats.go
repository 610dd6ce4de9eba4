package api

import (
	"maps"
	"net/http"
	"time"
)

// StatsProvider reports pipeline counters such as runs and the last error.
type StatsProvider interface {
	GetStats() map[string]any
}

// StatsHandler serves pipeline counters plus the feed's own uptime.
type StatsHandler struct {
	provider StatsProvider
	started  time.Time
}

// NewStatsHandler creates a stats handler; uptime counts from now.
func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider, started: time.Now()}
}

// HandleStats handles GET /stats.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	stats := map[string]any{}
	if h.provider != nil {
		maps.Copy(stats, h.provider.GetStats())
	}
	stats["uptime_seconds"] = int64(time.Since(h.started).Seconds())
	writeJSON(w, http.StatusOK, stats)
}
