// Package feed turns the exchange's public push stream into the line
// protocol consumed downstream: one formatted, immediately flushed line per
// logical market event.
package feed

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Tarkan2K/WLD-Final/internal/book"
	"github.com/Tarkan2K/WLD-Final/internal/domain"
	"github.com/Tarkan2K/WLD-Final/internal/platform/bybit"
	"github.com/Tarkan2K/WLD-Final/internal/wire"
)

// Topics returns the public-stream subscription set for one instrument.
func Topics(symbol string) []string {
	return []string{
		"publicTrade." + symbol,
		"orderbook.50." + symbol,
		"liquidation." + symbol,
		"tickers." + symbol,
	}
}

// Normalizer demultiplexes raw push frames into typed events and writes each
// as one protocol line. It owns the order book state for the depth topic.
// Handle is synchronous and non-reentrant; the stream loop is its only caller.
type Normalizer struct {
	symbol string
	depth  int
	book   *book.Book
	out    io.Writer
	logger *slog.Logger
}

// NewNormalizer creates a normalizer for one instrument writing lines to out.
// depth caps the flattened levels per side on DEPTH lines.
func NewNormalizer(symbol string, depth int, out io.Writer, logger *slog.Logger) *Normalizer {
	return &Normalizer{
		symbol: symbol,
		depth:  depth,
		book:   book.New(),
		out:    out,
		logger: logger.With(slog.String("component", "normalizer")),
	}
}

// Handle classifies one raw frame by topic and emits the matching lines.
// Malformed frames and unrecognized topics are dropped without touching any
// state; a bad frame must never stall the stream.
func (n *Normalizer) Handle(raw []byte) {
	var msg bybit.PushMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}

	switch msg.Topic {
	case "publicTrade." + n.symbol:
		n.handleTrades(msg)
	case "orderbook.50." + n.symbol:
		n.handleDepth(msg)
	case "liquidation." + n.symbol:
		n.handleLiquidation(msg)
	case "tickers." + n.symbol:
		n.handleTicker(msg)
	}
}

// handleTrades emits one TRADE line per trade entry.
func (n *Normalizer) handleTrades(msg bybit.PushMessage) {
	var trades []bybit.TradeEntry
	if err := json.Unmarshal(msg.Data, &trades); err != nil {
		return
	}
	for _, t := range trades {
		n.emit(wire.TradeLine(domain.TradeEvent{
			TS:     t.TS,
			Symbol: n.symbol,
			Side:   strings.ToUpper(t.Side),
			Price:  t.Price,
			Qty:    t.Qty,
		}))
	}
}

// handleDepth applies the snapshot or delta to the book, then emits one DEPTH
// line with the flattened top levels.
func (n *Normalizer) handleDepth(msg bybit.PushMessage) {
	var data bybit.DepthData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		return
	}

	if msg.Type == "snapshot" {
		n.book.ApplySnapshot(data.Bids, data.Asks)
	} else {
		n.book.ApplyDelta(data.Bids, data.Asks)
	}

	bids, asks := n.book.Flatten(n.depth)
	n.emit(wire.DepthLine(domain.DepthEvent{
		TS:     msg.TS,
		Symbol: n.symbol,
		Bids:   bids,
		Asks:   asks,
	}))
}

// handleLiquidation emits one LIQ line. The side is whatever the exchange
// reports (the closing order's side); it is passed through verbatim.
func (n *Normalizer) handleLiquidation(msg bybit.PushMessage) {
	var liq bybit.LiquidationData
	if err := json.Unmarshal(msg.Data, &liq); err != nil {
		return
	}
	n.emit(wire.LiqLine(domain.LiquidationEvent{
		TS:     msg.TS,
		Symbol: n.symbol,
		Side:   liq.Side,
		Price:  liq.Price,
		Qty:    liq.Size,
	}))
}

// handleTicker emits one TICKER line, defaulting absent fields to "0".
func (n *Normalizer) handleTicker(msg bybit.PushMessage) {
	var ticker bybit.TickerData
	if err := json.Unmarshal(msg.Data, &ticker); err != nil {
		return
	}
	n.emit(wire.TickerLine(domain.TickerEvent{
		TS:           msg.TS,
		Symbol:       n.symbol,
		OpenInterest: orZero(ticker.OpenInterest),
		FundingRate:  orZero(ticker.FundingRate),
		MarkPrice:    orZero(ticker.MarkPrice),
	}))
}

// emit writes one newline-terminated line. The writer is expected to be
// unbuffered (or flushed by the caller) so downstream readers see events with
// minimal latency.
func (n *Normalizer) emit(line string) {
	if _, err := fmt.Fprintln(n.out, line); err != nil {
		n.logger.Error("line write failed", slog.String("error", err.Error()))
	}
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
