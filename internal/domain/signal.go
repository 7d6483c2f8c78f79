package domain

// TradeSignal is one parsed SIGNAL line requesting order execution.
type TradeSignal struct {
	Symbol string
	Side   OrderSide
	Price  float64
	Kind   string // order type hint from the producer, e.g. "MARKET"
}
