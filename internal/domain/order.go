package domain

// OrderSide indicates whether this is a buy or sell. Values match the
// capitalization Bybit expects in order payloads.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "Buy"
	OrderSideSell OrderSide = "Sell"
)

// Opposite returns the other side.
func (s OrderSide) Opposite() OrderSide {
	if s == OrderSideBuy {
		return OrderSideSell
	}
	return OrderSideBuy
}

// OrderParams is a fully sized entry order ready for submission. TakeProfit
// and StopLoss are decimal strings rounded to four places; they are superseded
// after submission by a correction derived from the realized entry price.
type OrderParams struct {
	Symbol     string
	Side       OrderSide
	Qty        int64
	Price      float64 // requested signal price, informational
	TakeProfit string
	StopLoss   string
}

// OrderResult wraps the exchange response after order submission.
type OrderResult struct {
	OrderID     string
	OrderLinkID string
}

// Position is the exchange-held position state for the instrument. It is
// always queried live; nothing here is cached across calls.
type Position struct {
	Symbol   string
	Side     OrderSide
	Size     float64
	AvgPrice float64
}

// Open reports whether the position has any size.
func (p Position) Open() bool {
	return p.Size > 0
}
