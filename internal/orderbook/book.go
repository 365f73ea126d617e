// Package orderbook implements the thread-safe per-(venue,symbol) bid/ask
// ladder that backs the arbitrage scanner's view of top-of-book liquidity.
package orderbook

import (
	"sort"
	"sync"
)

// Side identifies one side of a book.
type Side int

const (
	Bid Side = iota
	Ask
)

// Level is a single (price, qty) resting level.
type Level struct {
	Price float64
	Qty   float64
}

// Book is a single symbol's ladder on a single venue. Bids and asks are
// held as plain maps; ordering is only materialized on read, since writes
// (one per feed message) vastly outnumber reads (one per scanner tick).
//
// The zero value is not usable; construct with New.
type Book struct {
	mu   sync.RWMutex
	bids map[float64]float64
	asks map[float64]float64
}

// New creates an empty order book.
func New() *Book {
	return &Book{
		bids: make(map[float64]float64),
		asks: make(map[float64]float64),
	}
}

// UpdateBid inserts, replaces, or (qty==0) removes a bid price level.
func (b *Book) UpdateBid(price, qty float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	applyLevel(b.bids, price, qty)
}

// UpdateAsk inserts, replaces, or (qty==0) removes an ask price level.
func (b *Book) UpdateAsk(price, qty float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	applyLevel(b.asks, price, qty)
}

func applyLevel(side map[float64]float64, price, qty float64) {
	if qty <= 0 {
		delete(side, price)
		return
	}
	side[price] = qty
}

// Clear removes every level on both sides atomically. Called by a feed on
// receipt of a snapshot message, before re-applying the snapshot's levels.
func (b *Book) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bids = make(map[float64]float64)
	b.asks = make(map[float64]float64)
}

// TopOfBook is the single atomic combined read of price+qty for one side.
// Callers that need both fields consistent with each other (the scanner
// does) must use this instead of pairing separate TopBidPrice/TopBidQty
// calls, which could observe an intervening write between the two reads.
func (b *Book) TopOfBook(side Side) (price, qty float64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.topLocked(side)
}

func (b *Book) topLocked(side Side) (price, qty float64) {
	levels := b.bids
	best := func(a, c float64) bool { return a > c } // bids: highest wins
	if side == Ask {
		levels = b.asks
		best = func(a, c float64) bool { return a < c } // asks: lowest wins
	}

	found := false
	var bestPrice, bestQty float64
	for p, q := range levels {
		if !found || best(p, bestPrice) {
			bestPrice, bestQty = p, q
			found = true
		}
	}
	if !found {
		return 0, 0
	}
	return bestPrice, bestQty
}

// TopBidPrice returns the highest resting bid, or 0 if the bid side is empty.
func (b *Book) TopBidPrice() float64 {
	p, _ := b.TopOfBook(Bid)
	return p
}

// TopAskPrice returns the lowest resting ask, or 0 if the ask side is empty.
func (b *Book) TopAskPrice() float64 {
	p, _ := b.TopOfBook(Ask)
	return p
}

// TopBidQty returns the quantity resting at the top bid, or 0 if empty.
func (b *Book) TopBidQty() float64 {
	_, q := b.TopOfBook(Bid)
	return q
}

// TopAskQty returns the quantity resting at the top ask, or 0 if empty.
func (b *Book) TopAskQty() float64 {
	_, q := b.TopOfBook(Ask)
	return q
}

// TopN returns up to n ordered levels from the given side: bids descending
// by price, asks ascending by price. Levels with qty<=0 are filtered out
// defensively even though the update path never stores a non-positive qty.
func (b *Book) TopN(side Side, n int) []Level {
	if n <= 0 {
		return nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	levels := b.bids
	if side == Ask {
		levels = b.asks
	}

	out := make([]Level, 0, len(levels))
	for p, q := range levels {
		if q <= 0 {
			continue
		}
		out = append(out, Level{Price: p, Qty: q})
	}

	if side == Bid {
		sort.Slice(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	} else {
		sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	}

	if len(out) > n {
		out = out[:n]
	}
	return out
}
