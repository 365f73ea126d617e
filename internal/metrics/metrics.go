// Package metrics defines the Prometheus instrumentation the scanner and
// feeds write through. All series share the "arbitrage" namespace so a
// single Grafana dashboard can scope to one job.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SpreadObserved records every computed spread, gated or not, so the
// gate's threshold can be tuned against the real distribution later.
var SpreadObserved = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "arbitrage",
		Subsystem: "scanner",
		Name:      "spread_observed_percent",
		Help:      "Observed best-bid/best-ask spread in percent, before the minSpreadPercent gate",
		Buckets:   []float64{-1, -0.5, 0, 0.02, 0.05, 0.1, 0.2, 0.5, 1, 2, 5},
	},
	[]string{"symbol"},
)

// OpportunitiesDetected counts scanner ticks by whether the spread gate
// passed.
var OpportunitiesDetected = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "arbitrage",
		Subsystem: "scanner",
		Name:      "opportunities_detected_total",
		Help:      "Number of scanner ticks, split by whether the spread gate passed",
	},
	[]string{"symbol", "triggered"}, // triggered: yes, no
)

// TradeSize records the executed notional of every paired execution.
var TradeSize = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "arbitrage",
		Subsystem: "scanner",
		Name:      "trade_size_usd",
		Help:      "Paired execution notional in USD (min of the two legs' cost)",
		Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500, 5000},
	},
	[]string{"symbol"},
)

// TradesTotal counts executed and abandoned opportunities.
var TradesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "arbitrage",
		Subsystem: "scanner",
		Name:      "trades_total",
		Help:      "Total paired-execution attempts by outcome",
	},
	[]string{"symbol", "result"}, // result: executed, abandoned_leg, zero_size
)

// PnLTotal is the running sum of realized net PnL across all symbols.
var PnLTotal = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "arbitrage",
		Subsystem: "scanner",
		Name:      "pnl_total_usd",
		Help:      "Cumulative realized net PnL across all symbols in USD",
	},
)

// ExposureUsd is the current signed USD exposure per (venue, symbol),
// sampled after every ledger update.
var ExposureUsd = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "arbitrage",
		Subsystem: "ledger",
		Name:      "exposure_usd",
		Help:      "Current signed USD exposure per venue and symbol",
	},
	[]string{"venue", "symbol"},
)

// FeedConnections reports each feed channel's connection status.
var FeedConnections = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "arbitrage",
		Subsystem: "feed",
		Name:      "connection_status",
		Help:      "Feed channel connection status (1=streaming, 0=otherwise)",
	},
	[]string{"venue", "symbol"},
)

// RecordSpread observes spreadPercent for symbol.
func RecordSpread(symbol string, spreadPercent float64) {
	SpreadObserved.WithLabelValues(symbol).Observe(spreadPercent)
}

// RecordOpportunity records whether the spread gate passed for symbol.
func RecordOpportunity(symbol string, triggered bool) {
	state := "no"
	if triggered {
		state = "yes"
	}
	OpportunitiesDetected.WithLabelValues(symbol, state).Inc()
}

// RecordTrade records a paired-execution outcome and, when executed, its
// size and realized PnL.
func RecordTrade(symbol, result string, execUsd, netPnL float64) {
	TradesTotal.WithLabelValues(symbol, result).Inc()
	if result == "executed" {
		TradeSize.WithLabelValues(symbol).Observe(execUsd)
		PnLTotal.Add(netPnL)
	}
}

// RecordExposure sets the current exposure gauge for (venue, symbol).
func RecordExposure(venue, symbol string, usd float64) {
	ExposureUsd.WithLabelValues(venue, symbol).Set(usd)
}

// RecordFeedConnected sets the connection gauge for a feed channel.
func RecordFeedConnected(venue, symbol string, connected bool) {
	v := 0.0
	if connected {
		v = 1.0
	}
	FeedConnections.WithLabelValues(venue, symbol).Set(v)
}
