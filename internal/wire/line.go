// Package wire encodes and parses the pipe-separated line protocol spoken
// between the feed, the signal engine, and the trader.
package wire

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Tarkan2K/WLD-Final/internal/domain"
)

// Line prefixes.
const (
	PrefixTrade  = "TRADE"
	PrefixDepth  = "DEPTH"
	PrefixLiq    = "LIQ"
	PrefixTicker = "TICKER"
	PrefixSignal = "SIGNAL"
)

// TradeLine renders TRADE|ts|sym|side|px|qty.
func TradeLine(e domain.TradeEvent) string {
	return fmt.Sprintf("%s|%d|%s|%s|%s|%s", PrefixTrade, e.TS, e.Symbol, e.Side, e.Price, e.Qty)
}

// DepthLine renders DEPTH|ts|sym|bids|asks with each side as comma-joined
// price:size tokens.
func DepthLine(e domain.DepthEvent) string {
	return fmt.Sprintf("%s|%d|%s|%s|%s", PrefixDepth, e.TS, e.Symbol, joinLevels(e.Bids), joinLevels(e.Asks))
}

// LiqLine renders LIQ|ts|sym|side|px|qty.
func LiqLine(e domain.LiquidationEvent) string {
	return fmt.Sprintf("%s|%d|%s|%s|%s|%s", PrefixLiq, e.TS, e.Symbol, e.Side, e.Price, e.Qty)
}

// TickerLine renders TICKER|ts|sym|oi|funding|mark.
func TickerLine(e domain.TickerEvent) string {
	return fmt.Sprintf("%s|%d|%s|%s|%s|%s", PrefixTicker, e.TS, e.Symbol, e.OpenInterest, e.FundingRate, e.MarkPrice)
}

func joinLevels(levels []domain.PriceLevel) string {
	var sb strings.Builder
	for i, lvl := range levels {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(lvl.Price)
		sb.WriteByte(':')
		sb.WriteString(lvl.Size)
	}
	return sb.String()
}

// ParseSignal parses SIGNAL|SYMBOL|SIDE|PRICE|TYPE. It returns ok=false for
// lines without the SIGNAL prefix, with fewer than four pipe fields, with a
// side other than BUY or SELL, with an unparsable price, or targeting a
// different symbol; callers skip those silently.
func ParseSignal(line, symbol string) (domain.TradeSignal, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, PrefixSignal) {
		return domain.TradeSignal{}, false
	}
	parts := strings.Split(line, "|")
	if len(parts) < 4 || parts[0] != PrefixSignal {
		return domain.TradeSignal{}, false
	}
	if parts[1] != symbol {
		return domain.TradeSignal{}, false
	}
	side, ok := sideFromWire(parts[2])
	if !ok {
		return domain.TradeSignal{}, false
	}
	price, err := strconv.ParseFloat(parts[3], 64)
	if err != nil {
		return domain.TradeSignal{}, false
	}
	sig := domain.TradeSignal{
		Symbol: parts[1],
		Side:   side,
		Price:  price,
	}
	if len(parts) > 4 {
		sig.Kind = parts[4]
	}
	return sig, true
}

// sideFromWire maps the protocol's upper-cased side to Bybit capitalization.
// Anything other than BUY or SELL is out of protocol and rejected.
func sideFromWire(s string) (domain.OrderSide, bool) {
	switch {
	case strings.EqualFold(s, "buy"):
		return domain.OrderSideBuy, true
	case strings.EqualFold(s, "sell"):
		return domain.OrderSideSell, true
	default:
		return "", false
	}
}
