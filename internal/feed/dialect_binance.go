package feed

import (
	"strings"

	jsoniter "github.com/json-iterator/go"

	"arbitrage/internal/orderbook"
)

var fastJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// binanceDialect implements the "binance-style" dialect: every message is a
// full depth-5 snapshot at ~100ms cadence, addressed by a per-symbol URL.
// There is no distinct delta message and no subscribe handshake; every
// message clears the book and re-applies both sides.
type binanceDialect struct{}

type binanceDepthMessage struct {
	Bids []priceLevelPair `json:"b"`
	Asks []priceLevelPair `json:"a"`
}

func (binanceDialect) endpointURL(base, symbol string) string {
	return base + "/ws/" + strings.ToLower(symbol) + "@depth5@100ms"
}

func (binanceDialect) subscribePayload(symbol string) interface{} {
	return nil
}

func (binanceDialect) apply(symbol string, raw []byte, book *orderbook.Book) error {
	var msg binanceDepthMessage
	if err := fastJSON.Unmarshal(raw, &msg); err != nil {
		return err
	}

	// Validate before touching the book: a parse failure on either side
	// must leave book untouched, not cleared-and-half-applied.
	bidLevels, err := parseLevels(msg.Bids)
	if err != nil {
		return err
	}
	askLevels, err := parseLevels(msg.Asks)
	if err != nil {
		return err
	}

	book.Clear()
	for _, lvl := range bidLevels {
		book.UpdateBid(lvl.Price, lvl.Qty)
	}
	for _, lvl := range askLevels {
		book.UpdateAsk(lvl.Price, lvl.Qty)
	}
	return nil
}
