package ops

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goodrec/nyc-ingest/pkg/metrics"
)

type healthResponse struct {
	Status        string  `json:"status"`
	Job           string  `json:"job"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
}

// handleHealth answers GET /healthz with a liveness payload. The
// process is healthy whenever it can answer at all, so the status is
// static; the job name and uptime make the payload useful in dashboards
// that aggregate several ingest deployments.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(healthResponse{
		Status:        "ok",
		Job:           s.job,
		UptimeSeconds: time.Since(s.started).Seconds(),
	})
}

// metricsHandler serves the pipeline registry, which carries only the
// ingest metrics and none of the default Go runtime collectors.
func metricsHandler() http.Handler {
	return promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})
}
