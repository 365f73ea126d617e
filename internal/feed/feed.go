package feed

import (
	"context"
	"fmt"
	"sync"

	"arbitrage/internal/logging"
	"arbitrage/internal/orderbook"
)

// Feed is the capability set the scanner and the CLI entry point depend on:
// connect/disconnect lifecycle, per-symbol subscription, and a read-only
// handle onto each subscribed symbol's order book.
type Feed interface {
	Connect() error
	Disconnect()
	Subscribe(symbol string) error
	OrderBook(symbol string) *orderbook.Book
	VenueName() string
}

// ExchangeFeed is the concrete state machine for one venue. It owns one
// channel (connection) per subscribed symbol.
type ExchangeFeed struct {
	venue   string
	baseURL string
	dialect decoder
	dial    Dialer
	log     logging.Sink

	mu       sync.Mutex
	state    State
	books    *orderbook.Registry
	channels map[string]*channel
}

// NewBinanceStyleFeed constructs a feed using the depth-5-snapshot dialect
// against baseURL (e.g. "wss://fstream.example.com").
func NewBinanceStyleFeed(venue, baseURL string, log logging.Sink) *ExchangeFeed {
	return newFeed(venue, baseURL, binanceDialect{}, DefaultDialer, log)
}

// NewBybitStyleFeed constructs a feed using the subscribe-handshake,
// snapshot/delta dialect against baseURL (e.g. "wss://stream.example.com/v5/public/linear").
func NewBybitStyleFeed(venue, baseURL string, log logging.Sink) *ExchangeFeed {
	return newFeed(venue, baseURL, newBybitDialect(), DefaultDialer, log)
}

func newFeed(venue, baseURL string, dialect decoder, dial Dialer, log logging.Sink) *ExchangeFeed {
	return &ExchangeFeed{
		venue:    venue,
		baseURL:  baseURL,
		dialect:  dialect,
		dial:     dial,
		log:      log,
		state:    Idle,
		books:    orderbook.NewRegistry(),
		channels: make(map[string]*channel),
	}
}

// Connect transitions Idle -> Connected. Subscriptions are only accepted
// once connected.
func (f *ExchangeFeed) Connect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = Connected
	return nil
}

// VenueName returns the venue identifier this feed was constructed with.
func (f *ExchangeFeed) VenueName() string { return f.venue }

// Subscribe opens a dedicated channel for symbol, creating its order book if
// this is the first subscription. Rejected with a warning, no effect, if
// called before Connect.
func (f *ExchangeFeed) Subscribe(symbol string) error {
	f.mu.Lock()
	if f.state == Idle {
		f.mu.Unlock()
		f.log.Warn("subscribe before connect", logging.String("venue", f.venue), logging.String("symbol", symbol))
		return fmt.Errorf("feed %s: subscribe before connect", f.venue)
	}
	if _, exists := f.channels[symbol]; exists {
		f.mu.Unlock()
		return nil
	}

	book := f.books.GetOrCreate(symbol)
	ch := newChannel(f.venue, symbol, f.dialect, f.dial, f.baseURL, book, f.log)
	f.channels[symbol] = ch
	f.state = Streaming
	f.mu.Unlock()

	ch.start(context.Background())
	return nil
}

// OrderBook returns the book for symbol, or nil if not subscribed.
func (f *ExchangeFeed) OrderBook(symbol string) *orderbook.Book {
	return f.books.Get(symbol)
}

// Disconnect stops all channels cooperatively and clears the channel
// registry. Order books are left intact (they live for the process
// lifetime); only the transport state is torn down.
func (f *ExchangeFeed) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, ch := range f.channels {
		ch.stop()
	}
	f.channels = make(map[string]*channel)
	f.state = Idle
}
