package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oshokin/soccer-timer/internal/logger"
	"github.com/oshokin/soccer-timer/internal/service/coordinator"
)

// Snapshotter reports the state of the live coordinator process.
type Snapshotter interface {
	Snapshot(ctx context.Context) (coordinator.Snapshot, error)
}

// stateResponse is the JSON body of GET /state.
type stateResponse struct {
	Summary    string `json:"summary"`
	MatchTime  int    `json:"match_time"`
	Period     int    `json:"period"`
	Paused     bool   `json:"paused"`
	Running    bool   `json:"running"`
	Alert      string `json:"alert"`
	AlertLead  int    `json:"alert_lead"`
	Terminated bool   `json:"terminated"`
}

// NewRouter serves Prometheus metrics, a liveness probe and the current
// clock state for diagnostics.
func NewRouter(gatherer prometheus.Gatherer, clock Snapshotter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok")) //nolint:errcheck // Nothing to do on a failed probe write.
	})

	r.Get("/state", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), time.Second)
		defer cancel()

		s, err := clock.Snapshot(ctx)
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)

			return
		}

		w.Header().Set("Content-Type", "application/json")

		err = json.NewEncoder(w).Encode(stateResponse{
			Summary:    s.State.Summary(),
			MatchTime:  s.State.MatchTimeSeconds,
			Period:     s.State.Period,
			Paused:     s.State.Paused,
			Running:    s.State.Running,
			Alert:      s.Alert.String(),
			AlertLead:  s.State.AlertLeadSeconds,
			Terminated: s.Terminated,
		})
		if err != nil {
			logger.ErrorKV(req.Context(), "Failed to encode state", "error", err)
		}
	})

	return r
}
