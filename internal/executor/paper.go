package executor

// PaperExecutor simulates execution at the reference price it is given
// (never the live book). It is stateless except for its venue name and fee
// rate; multiple concurrent calls are independent. It never partially
// fills: a paper fill is either full at the requested size or rejected.
type PaperExecutor struct {
	venue      string
	feePercent float64
}

// NewPaperExecutor constructs a PaperExecutor for venue charging feePercent
// (e.g. 0.04 for 0.04%) on notional.
func NewPaperExecutor(venue string, feePercent float64) *PaperExecutor {
	return &PaperExecutor{venue: venue, feePercent: feePercent}
}

func (p *PaperExecutor) VenueName() string { return p.venue }

// ExecuteTrade fills the full requested size at price, charging a flat
// percentage fee. Rejected (OK=false) iff qty<=0 or price<=0.
func (p *PaperExecutor) ExecuteTrade(symbol string, side Side, price, maxQty float64) (Fill, error) {
	qty := maxQty
	notional := qty * price

	fill := Fill{
		Venue:     p.venue,
		Symbol:    symbol,
		Side:      side,
		Price:     price,
		Qty:       qty,
		Cost:      roundCents(notional),
		Fee:       notional * (p.feePercent / 100),
		Timestamp: nowMillis(),
		OK:        qty > 0 && price > 0,
	}
	return fill, nil
}
