package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"arbitrage/internal/logging"
)

type noopSink struct{}

func (noopSink) Info(string, ...logging.Field)  {}
func (noopSink) Warn(string, ...logging.Field)  {}
func (noopSink) Error(string, ...logging.Field) {}

type fakeProvider struct{ stats []SymbolStats }

func (f fakeProvider) Stats() []SymbolStats { return f.stats }

func TestHealthzReturnsOK(t *testing.T) {
	router := NewRouter(fakeProvider{}, noopSink{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestStatsReturnsProviderSnapshot(t *testing.T) {
	provider := fakeProvider{stats: []SymbolStats{
		{Symbol: "BTCUSDT", CumulativeNetUsd: 12.5, Exposures: map[string]float64{"binance": 500}},
	}}
	router := NewRouter(provider, noopSink{})

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "BTCUSDT") {
		t.Fatalf("expected stats body to contain BTCUSDT, got %q", body)
	}
}

func TestMetricsEndpointServed(t *testing.T) {
	router := NewRouter(fakeProvider{}, noopSink{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
