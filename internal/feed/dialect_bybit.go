package feed

import (
	"strconv"
	"strings"

	"arbitrage/internal/orderbook"
)

// bybitDialect implements the "bybit-style" dialect: after the channel
// opens, the client sends a subscribe payload naming a topic; subsequent
// messages carry a "type" of snapshot (clear-then-apply) or delta
// (incremental apply). Messages for a topic other than the one subscribed
// are ignored.
type bybitDialect struct {
	depth int // topic depth, e.g. 50 for "orderbook.50.<SYMBOL>"
}

func newBybitDialect() bybitDialect {
	return bybitDialect{depth: 50}
}

func (d bybitDialect) topic(symbol string) string {
	return "orderbook." + strconv.Itoa(d.depth) + "." + strings.ToUpper(symbol)
}

func (bybitDialect) endpointURL(base, symbol string) string {
	return base
}

func (d bybitDialect) subscribePayload(symbol string) interface{} {
	return map[string]interface{}{
		"op":   "subscribe",
		"args": []string{d.topic(symbol)},
	}
}

type bybitMessage struct {
	Topic string `json:"topic"`
	Type  string `json:"type"`
	Data  struct {
		Bids []priceLevelPair `json:"b"`
		Asks []priceLevelPair `json:"a"`
	} `json:"data"`
}

func (d bybitDialect) apply(symbol string, raw []byte, book *orderbook.Book) error {
	var msg bybitMessage
	if err := fastJSON.Unmarshal(raw, &msg); err != nil {
		return err
	}

	if msg.Topic == "" || msg.Topic != d.topic(symbol) {
		// Not a book message for this channel's topic (subscribe ack, pong,
		// or a message for a different symbol) — ignored, not an error.
		return nil
	}

	bidLevels, err := parseLevels(msg.Data.Bids)
	if err != nil {
		return err
	}
	askLevels, err := parseLevels(msg.Data.Asks)
	if err != nil {
		return err
	}

	switch msg.Type {
	case "snapshot":
		book.Clear()
	case "delta":
		// incremental apply, no clear
	default:
		return nil
	}

	for _, lvl := range bidLevels {
		book.UpdateBid(lvl.Price, lvl.Qty)
	}
	for _, lvl := range askLevels {
		book.UpdateAsk(lvl.Price, lvl.Qty)
	}
	return nil
}
