// Package scanner drives the periodic cross-venue arbitrage loop: read the
// best bid/ask across every registered venue's order book, gate on
// spread, size against position-room caps, execute both legs, and realize
// PnL.
package scanner

import (
	"context"
	"math"
	"sync"
	"time"

	"arbitrage/internal/api"
	"arbitrage/internal/executor"
	"arbitrage/internal/ledger"
	"arbitrage/internal/logging"
	"arbitrage/internal/metrics"
	"arbitrage/internal/orderbook"
	"arbitrage/internal/store"
)

// BookSource is the read-only handle the scanner needs from a venue's
// feed: its order books, keyed by symbol.
type BookSource interface {
	OrderBook(symbol string) *orderbook.Book
}

// venue bundles one registered venue's book source and trade executor.
type venue struct {
	name     string
	books    BookSource
	executor executor.TradeExecutor
}

// Scanner owns the PositionLedger and cumulative PnL map exclusively; no
// other component mutates them.
type Scanner struct {
	symbols            []string
	venues             []*venue
	ledger             *ledger.PositionLedger
	persistPool        *persistencePool
	log                logging.Sink
	minSpreadPercent   float64
	rebalanceMinSpread float64
	checkInterval      time.Duration

	mu  sync.Mutex
	pnl map[string]float64
}

// Config bundles the scanner's tunables, mirroring the external
// configuration document.
type Config struct {
	Symbols            []string
	MaxPosUsd          float64
	MinSpreadPercent   float64
	RebalanceMinSpread float64
	CheckInterval      time.Duration
}

// New builds a Scanner with an empty PositionLedger and PnL map. A nil
// fillStore disables persistence entirely: no worker pool is started.
func New(cfg Config, fillStore store.FillStore, log logging.Sink) *Scanner {
	var pool *persistencePool
	if fillStore != nil {
		pool = newPersistencePool(persistenceWorkers, persistenceQueueLen, fillStore, log)
	}
	return &Scanner{
		symbols:            cfg.Symbols,
		ledger:             ledger.New(cfg.MaxPosUsd),
		persistPool:        pool,
		log:                log,
		minSpreadPercent:   cfg.MinSpreadPercent,
		rebalanceMinSpread: cfg.RebalanceMinSpread,
		checkInterval:      cfg.CheckInterval,
		pnl:                make(map[string]float64),
	}
}

// RegisterVenue adds a venue the scanner will read books from and execute
// trades against. Must be called before Run starts ticking.
func (s *Scanner) RegisterVenue(name string, books BookSource, exec executor.TradeExecutor) {
	s.venues = append(s.venues, &venue{name: name, books: books, executor: exec})
}

// Run drives the periodic loop until ctx is done. Per-symbol passes
// within a tick are sequential; a single tick's total work is expected to
// be short relative to checkInterval.
func (s *Scanner) Run(ctx context.Context) {
	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, symbol := range s.symbols {
				s.checkArbitrage(symbol)
			}
		}
	}
}

// venueByName resolves a registered venue (and its executor) by name, or
// nil if none is registered under that name.
func (s *Scanner) venueByName(name string) *venue {
	for _, v := range s.venues {
		if v.name == name {
			return v
		}
	}
	return nil
}

// checkArbitrage is a single pass of the ten-step algorithm for one
// symbol: aggregate best cross-venue prices, gate on spread, size, execute
// both legs, and realize PnL.
func (s *Scanner) checkArbitrage(symbol string) {
	// 1. Aggregate best prices across venues.
	bestBid, bestAsk := 0.0, math.Inf(1)
	var bestBidQty, bestAskQty float64
	var bidVenue, askVenue string

	for _, v := range s.venues {
		book := v.books.OrderBook(symbol)
		if book == nil {
			continue
		}
		bidPrice, bidQty := book.TopOfBook(orderbook.Bid)
		if bidPrice > bestBid {
			bestBid, bestBidQty, bidVenue = bidPrice, bidQty, v.name
		}
		askPrice, askQty := book.TopOfBook(orderbook.Ask)
		if askPrice > 0 && askPrice < bestAsk {
			bestAsk, bestAskQty, askVenue = askPrice, askQty, v.name
		}
	}

	// 2. Reject non-opportunities.
	if bestBid <= 0 || bestAsk >= bestBid {
		return
	}

	// 3. Spread gate.
	spreadPct := (bestBid - bestAsk) / bestAsk * 100
	metrics.RecordSpread(symbol, spreadPct)

	if spreadPct <= s.minSpreadPercent {
		metrics.RecordOpportunity(symbol, false)
		s.maybeRebalance(symbol, spreadPct)
		return
	}
	metrics.RecordOpportunity(symbol, true)

	// 4. Resolve executors.
	buyVenue := s.venueByName(askVenue)
	sellVenue := s.venueByName(bidVenue)
	if buyVenue == nil || sellVenue == nil {
		return
	}

	// 5. Compute trade size as the minimum of four caps.
	obCap := math.Min(bestBidQty, bestAskQty)
	buyCap := s.ledger.RemainingRoom(buyVenue.name, symbol, ledger.Buy) / bestAsk
	sellCap := s.ledger.RemainingRoom(sellVenue.name, symbol, ledger.Sell) / bestBid
	qty := math.Max(0, math.Min(obCap, math.Min(buyCap, sellCap)))
	if qty <= 0 {
		return
	}

	// 6. Execute both legs.
	buyFill, buyErr := buyVenue.executor.ExecuteTrade(symbol, executor.Buy, bestAsk, qty)
	sellFill, sellErr := sellVenue.executor.ExecuteTrade(symbol, executor.Sell, bestBid, qty)

	if buyErr != nil || sellErr != nil || !buyFill.OK || !sellFill.OK {
		s.log.Warn("arbitrage leg abandoned",
			logging.String("symbol", symbol),
			logging.String("buyVenue", buyVenue.name),
			logging.String("sellVenue", sellVenue.name),
			logging.Bool("buyOK", buyFill.OK),
			logging.Bool("sellOK", sellFill.OK))
		metrics.RecordTrade(symbol, "abandoned_leg", 0, 0)
		return
	}

	// 7. Account for partials conservatively.
	execUsd := math.Min(buyFill.Cost, sellFill.Cost)
	if execUsd <= 0 {
		metrics.RecordTrade(symbol, "zero_size", 0, 0)
		return
	}

	// 8. Realize PnL.
	gross := (sellFill.Price - buyFill.Price) / buyFill.Price * execUsd
	net := gross - (buyFill.Fee + sellFill.Fee)

	s.mu.Lock()
	s.pnl[symbol] += net
	cumulative := s.pnl[symbol]
	s.mu.Unlock()

	// 9. Update ledger.
	buyExposure := s.ledger.ApplyUpdate(buyVenue.name, symbol, ledger.Buy, buyFill.Cost)
	sellExposure := s.ledger.ApplyUpdate(sellVenue.name, symbol, ledger.Sell, sellFill.Cost)
	metrics.RecordExposure(buyVenue.name, symbol, buyExposure)
	metrics.RecordExposure(sellVenue.name, symbol, sellExposure)
	metrics.RecordTrade(symbol, "executed", execUsd, net)

	// 10. Emit audit log.
	s.log.Info("arbitrage executed",
		logging.String("symbol", symbol),
		logging.String("buyVenue", buyVenue.name),
		logging.String("sellVenue", sellVenue.name),
		logging.Float64("buyPrice", buyFill.Price),
		logging.Float64("sellPrice", sellFill.Price),
		logging.Float64("spreadPercent", spreadPct),
		logging.Float64("qty", qty),
		logging.Float64("execUsd", execUsd),
		logging.Float64("netPnl", net),
		logging.Float64("cumulativePnl", cumulative),
		logging.Float64("buyExposure", buyExposure),
		logging.Float64("sellExposure", sellExposure))

	if s.persistPool != nil {
		s.persistPool.submit(persistJob{
			symbol:     symbol,
			buyFill:    buyFill,
			sellFill:   sellFill,
			cumulative: cumulative,
		})
	}
}

// maybeRebalance is the reserved hook for spreadPct > rebalanceMinSpread
// but below the trading gate. It intentionally takes no action: the
// rebalance strategy is not yet designed, and a deliberate no-op here is
// safer than guessing at one.
func (s *Scanner) maybeRebalance(symbol string, spreadPct float64) {
	if spreadPct <= s.rebalanceMinSpread {
		return
	}
	// No-op: reserved for a future rebalance strategy.
}

// Stats implements api.StatsProvider: a read-only snapshot of every
// traded symbol's cumulative PnL and per-venue exposure.
func (s *Scanner) Stats() []api.SymbolStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]api.SymbolStats, 0, len(s.symbols))
	for _, symbol := range s.symbols {
		exposures := make(map[string]float64, len(s.venues))
		for _, v := range s.venues {
			exposures[v.name] = s.ledger.Exposure(v.name, symbol)
		}
		out = append(out, api.SymbolStats{
			Symbol:           symbol,
			CumulativeNetUsd: s.pnl[symbol],
			Exposures:        exposures,
		})
	}
	return out
}
