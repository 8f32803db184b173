package observability

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Status is the watch-mode status snapshot served at /status
type Status struct {
	Watching       bool      `json:"watching"`
	SourceDir      string    `json:"source_dir"`
	LastRunAt      time.Time `json:"last_run_at,omitempty"`
	LastRunID      string    `json:"last_run_id,omitempty"`
	LastError      string    `json:"last_error,omitempty"`
	LastCacheHit   bool      `json:"last_cache_hit"`
	GeneratedFiles int       `json:"generated_files"`
}

// StatusFunc supplies the current status snapshot
type StatusFunc func() Status

// NewRouter builds the watch-mode HTTP surface: /status and /metrics
func NewRouter(registry *prometheus.Registry, status StatusFunc) *mux.Router {
	r := mux.NewRouter()

	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	r.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}).Methods(http.MethodGet)

	return r
}
