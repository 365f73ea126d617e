// Package api exposes a small read-only HTTP surface for operators: a
// liveness probe, a snapshot of scanner state, and a Prometheus scrape
// endpoint. It never accepts a write — trading is controlled entirely by
// the configuration document and the process lifecycle.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"arbitrage/internal/api/middleware"
	"arbitrage/internal/logging"
)

// SymbolStats is one symbol's current state, as reported by /stats.
type SymbolStats struct {
	Symbol           string             `json:"symbol"`
	CumulativeNetUsd float64            `json:"cumulativeNetUsd"`
	Exposures        map[string]float64 `json:"exposures"` // venue -> signed USD
}

// StatsProvider is implemented by the scanner so the status API can read
// a snapshot without importing scanner internals.
type StatsProvider interface {
	Stats() []SymbolStats
}

// NewRouter builds the status API's mux.Router: /healthz, /stats,
// /metrics, wrapped in recovery and access-log middleware.
func NewRouter(provider StatsProvider, log logging.Sink) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logging(log))

	router.HandleFunc("/healthz", healthzHandler).Methods(http.MethodGet)
	router.HandleFunc("/stats", statsHandler(provider)).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return router
}

func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func statsHandler(provider StatsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if provider == nil {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode([]SymbolStats{})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(provider.Stats())
	}
}
