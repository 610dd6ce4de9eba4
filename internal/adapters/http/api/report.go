package api

import (
	"encoding/json"
	"net/http"

	"github.com/coocood/freecache"

	"github.com/okian/trainlog/internal/domain/report"
	"github.com/okian/trainlog/pkg/metrics"
)

// Bodies above 1/1024 of the cache size are served uncached.
const (
	megabyte          = 1024 * 1024
	reportCacheBytes  = 32 * megabyte
	reportCacheExpire = 60 * 60 // seconds
)

// ReportHandler serves the latest report and its sections. Encoded bodies
// are cached per run, so a new run never serves a stale body.
type ReportHandler struct {
	deps  Dependencies
	cache *freecache.Cache
}

// NewReportHandler creates a new report handler.
func NewReportHandler(deps Dependencies) *ReportHandler {
	return &ReportHandler{deps: deps, cache: freecache.NewCache(reportCacheBytes)}
}

func (h *ReportHandler) serve(w http.ResponseWriter, r *http.Request, op string, pick func(report.Report) any) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	rep, err := h.deps.Latest(r.Context())
	if err != nil {
		writeLookupError(w, Wrap(op, err))
		return
	}

	key := []byte(rep.RunID + "/" + op)
	if body, err := h.cache.Get(key); err == nil {
		metrics.RecordReportCache(true)
		writeBody(w, body)
		return
	}
	metrics.RecordReportCache(false)

	body, err := json.Marshal(pick(rep))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode_failed", err)
		return
	}
	body = append(body, '\n')
	if rep.RunID != "" {
		// ErrLargeEntry only means the body is served uncached.
		_ = h.cache.Set(key, body, reportCacheExpire)
	}
	writeBody(w, body)
}

func writeBody(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// HandleReport handles GET /report.
func (h *ReportHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "api.get_report", func(rep report.Report) any { return rep })
}

// HandleKPIs handles GET /report/kpis.
func (h *ReportHandler) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "api.get_kpis", func(rep report.Report) any { return rep.KPIs })
}

// HandleWeekly handles GET /report/weekly.
func (h *ReportHandler) HandleWeekly(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "api.get_weekly", func(rep report.Report) any { return rep.Weekly })
}

// HandleRecovery handles GET /report/recovery.
func (h *ReportHandler) HandleRecovery(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "api.get_recovery", func(rep report.Report) any { return rep.Recovery })
}
