package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/okian/trainlog/pkg/metrics"
)

// MetricsMiddleware records latency and status of every request to endpoint.
// Failed requests are also counted as http errors by kind.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		metrics.RecordHTTPRequest(endpoint, r.Method, strconv.Itoa(rec.status), time.Since(start))
		if kind := failureKind(rec.status); kind != "" {
			metrics.RecordError("http", kind)
		}
	}
}

// failureKind names the class of a failed status; empty for success.
func failureKind(status int) string {
	switch {
	case status == http.StatusGatewayTimeout:
		return "timeout"
	case status >= http.StatusInternalServerError:
		return "server_error"
	case status == http.StatusConflict:
		return "busy"
	case status == http.StatusNotFound:
		return "not_found"
	case status >= http.StatusBadRequest:
		return "bad_request"
	default:
		return ""
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
