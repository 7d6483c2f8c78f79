package domain

// PriceLevel is a single price+size entry in an order book side. Both fields
// keep the exchange's canonical decimal strings; parsing to float happens only
// for ordering, never for storage, so reconciliation never drifts on binary
// rounding.
type PriceLevel struct {
	Price string
	Size  string
}

// TradeEvent is one public trade print.
type TradeEvent struct {
	TS     int64 // exchange timestamp, milliseconds
	Symbol string
	Side   string // upper-cased: BUY or SELL
	Price  string
	Qty    string
}

// DepthEvent is a flattened top-of-book view after applying one depth update.
type DepthEvent struct {
	TS     int64
	Symbol string
	Bids   []PriceLevel // descending by price
	Asks   []PriceLevel // ascending by price
}

// LiquidationEvent is one forced-liquidation print. Side carries the
// exchange's own convention (the closing order's side) untouched.
type LiquidationEvent struct {
	TS     int64
	Symbol string
	Side   string
	Price  string
	Qty    string
}

// TickerEvent is one ticker push. Absent payload fields arrive as "0".
type TickerEvent struct {
	TS           int64
	Symbol       string
	OpenInterest string
	FundingRate  string
	MarkPrice    string
}
