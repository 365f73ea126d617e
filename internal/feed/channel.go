package feed

import (
	"context"
	"sync/atomic"
	"time"

	"arbitrage/internal/logging"
	"arbitrage/internal/metrics"
	"arbitrage/internal/orderbook"
)

// reconnectDelay is the fixed delay a channel waits before re-opening after
// a transport error or unexpected close (not exponential backoff — that is
// reserved for outbound executor/HTTP retries in pkg/retry). A var rather
// than a const so tests can shrink it instead of sleeping 3 real seconds.
var reconnectDelay = 3 * time.Second

// channel owns exactly one venue/symbol WebSocket connection and the
// goroutine that pumps its messages into an order book. disconnect()
// invalidates it by bumping generation; any reconnect goroutine scheduled
// before that point checks its captured generation before reopening and
// silently no-ops if it has gone stale. This lets reconnects be fire-and-
// forget without leaking a channel past disconnect().
type channel struct {
	venue   string
	symbol  string
	dialect decoder
	dial    Dialer
	baseURL string
	book    *orderbook.Book
	log     logging.Sink

	generation int32 // atomic; bumped by disconnect()
	state      int32 // atomic State
}

func newChannel(venue, symbol string, dialect decoder, dial Dialer, baseURL string, book *orderbook.Book, log logging.Sink) *channel {
	return &channel{
		venue:   venue,
		symbol:  symbol,
		dialect: dialect,
		dial:    dial,
		baseURL: baseURL,
		book:    book,
		log:     log,
		state:   int32(Connected),
	}
}

func (c *channel) getState() State { return State(atomic.LoadInt32(&c.state)) }
func (c *channel) setState(s State) {
	atomic.StoreInt32(&c.state, int32(s))
	metrics.RecordFeedConnected(c.venue, c.symbol, s == Streaming)
}

// start opens the connection and runs the read pump until the channel is
// invalidated. Called once, from Feed.Subscribe.
func (c *channel) start(ctx context.Context) {
	gen := atomic.LoadInt32(&c.generation)
	c.open(ctx, gen)
}

// open dials, sends the subscribe payload if the dialect requires one, and
// launches the read pump, all tagged with gen so a stale retry never wins
// against a newer disconnect/reconnect.
func (c *channel) open(ctx context.Context, gen int32) {
	if atomic.LoadInt32(&c.generation) != gen {
		return // superseded by a disconnect or a newer reconnect
	}

	c.setState(Streaming)
	url := c.dialect.endpointURL(c.baseURL, c.symbol)
	conn, err := c.dial(ctx, url)
	if err != nil {
		c.log.Error("feed transport error", logging.String("venue", c.venue),
			logging.String("symbol", c.symbol), logging.Err(err))
		c.scheduleReconnect(gen)
		return
	}

	if payload := c.dialect.subscribePayload(c.symbol); payload != nil {
		if err := conn.WriteJSON(payload); err != nil {
			c.log.Error("feed subscribe error", logging.String("venue", c.venue),
				logging.String("symbol", c.symbol), logging.Err(err))
			conn.Close()
			c.scheduleReconnect(gen)
			return
		}
	}

	go c.readPump(ctx, conn, gen)
}

func (c *channel) readPump(ctx context.Context, conn Conn, gen int32) {
	for {
		if atomic.LoadInt32(&c.generation) != gen {
			conn.Close()
			return
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			if atomic.LoadInt32(&c.generation) != gen {
				return // disconnect() already tore this down
			}
			c.log.Error("feed connection closed", logging.String("venue", c.venue),
				logging.String("symbol", c.symbol), logging.Err(err))
			c.setState(Reconnecting)
			c.scheduleReconnect(gen)
			return
		}

		if err := c.dialect.apply(c.symbol, data, c.book); err != nil {
			c.log.Error("feed parse error", logging.String("venue", c.venue),
				logging.String("symbol", c.symbol), logging.Err(err))
			continue // message dropped, connection and book left untouched
		}
	}
}

// scheduleReconnect waits the fixed reconnect delay, then reopens the
// channel unless a later generation has superseded gen in the meantime.
func (c *channel) scheduleReconnect(gen int32) {
	c.setState(Reconnecting)
	go func() {
		timer := time.NewTimer(reconnectDelay)
		defer timer.Stop()
		<-timer.C

		if atomic.LoadInt32(&c.generation) != gen {
			return
		}
		c.open(context.Background(), gen)
	}()
}

// stop invalidates this channel's generation, so any in-flight reconnect
// timer or read pump becomes a no-op the next time it checks.
func (c *channel) stop() {
	atomic.AddInt32(&c.generation, 1)
	c.setState(Idle)
}
