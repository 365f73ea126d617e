package feed

import (
	"fmt"
	"strconv"

	"arbitrage/internal/orderbook"
)

// decoder turns venue wire messages into order book mutations. Each of the
// two supported dialects implements this independently; a channel is
// constructed with exactly one decoder for its whole lifetime.
type decoder interface {
	// endpointURL builds the connection URL for one symbol's channel.
	endpointURL(base, symbol string) string

	// subscribePayload returns the payload to send once the channel opens,
	// or nil if the dialect has no subscribe handshake (e.g. Dialect A,
	// whose subscription is implicit in the URL).
	subscribePayload(symbol string) interface{}

	// apply decodes one raw message for the channel's symbol and mutates
	// book accordingly. A parse failure is returned as an error and must
	// never disturb book — the caller drops the message and logs. A
	// message addressed to a different topic/symbol is silently ignored
	// (nil, nil mutation).
	apply(symbol string, raw []byte, book *orderbook.Book) error
}

// priceLevelPair is the [priceString, qtyString] wire shape both dialects
// use for individual book levels.
type priceLevelPair [2]string

func (p priceLevelPair) parse() (price, qty float64, err error) {
	price, err = strconv.ParseFloat(p[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse price %q: %w", p[0], err)
	}
	qty, err = strconv.ParseFloat(p[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse qty %q: %w", p[1], err)
	}
	return price, qty, nil
}

// parseLevels validates every (price,qty) pair up front, so a caller that
// clears the book first (snapshot application) never ends up with a cleared
// book and no replacement levels because one level failed to parse midway.
func parseLevels(pairs []priceLevelPair) ([]orderbook.Level, error) {
	out := make([]orderbook.Level, len(pairs))
	for i, p := range pairs {
		price, qty, err := p.parse()
		if err != nil {
			return nil, err
		}
		out[i] = orderbook.Level{Price: price, Qty: qty}
	}
	return out, nil
}
