package feed

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestNormalizer(out io.Writer) *Normalizer {
	return NewNormalizer("WLDUSDT", 50, out, discardLogger())
}

func lines(buf *bytes.Buffer) []string {
	out := strings.TrimRight(buf.String(), "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

func TestTopics(t *testing.T) {
	assert.Equal(t, []string{
		"publicTrade.WLDUSDT",
		"orderbook.50.WLDUSDT",
		"liquidation.WLDUSDT",
		"tickers.WLDUSDT",
	}, Topics("WLDUSDT"))
}

func TestHandle_TradeEmitsOneLinePerEntry(t *testing.T) {
	var buf bytes.Buffer
	n := newTestNormalizer(&buf)

	n.Handle([]byte(`{
		"topic": "publicTrade.WLDUSDT",
		"ts": 1700000000200,
		"data": [
			{"T": 1700000000123, "s": "WLDUSDT", "S": "Buy", "v": "120", "p": "0.3915"},
			{"T": 1700000000150, "s": "WLDUSDT", "S": "Sell", "v": "30", "p": "0.3914"}
		]
	}`))

	got := lines(&buf)
	require.Len(t, got, 2)
	assert.Equal(t, "TRADE|1700000000123|WLDUSDT|BUY|0.3915|120", got[0])
	assert.Equal(t, "TRADE|1700000000150|WLDUSDT|SELL|0.3914|30", got[1])
}

func TestHandle_DepthSnapshotFlattens(t *testing.T) {
	var buf bytes.Buffer
	n := newTestNormalizer(&buf)

	n.Handle([]byte(`{
		"topic": "orderbook.50.WLDUSDT",
		"type": "snapshot",
		"ts": 1700000000300,
		"data": {"s": "WLDUSDT", "b": [["0.39","100"],["0.38","50"]], "a": [["0.40","80"]]}
	}`))

	got := lines(&buf)
	require.Len(t, got, 1)
	assert.Equal(t, "DEPTH|1700000000300|WLDUSDT|0.39:100,0.38:50|0.40:80", got[0])
}

func TestHandle_DepthDeltaRemovesLevel(t *testing.T) {
	var buf bytes.Buffer
	n := newTestNormalizer(&buf)

	n.Handle([]byte(`{
		"topic": "orderbook.50.WLDUSDT",
		"type": "snapshot",
		"ts": 1,
		"data": {"s": "WLDUSDT", "b": [["0.39","100"],["0.38","50"]], "a": [["0.40","80"]]}
	}`))
	buf.Reset()

	n.Handle([]byte(`{
		"topic": "orderbook.50.WLDUSDT",
		"type": "delta",
		"ts": 2,
		"data": {"s": "WLDUSDT", "b": [["0.38","0"]], "a": [["0.40","75"]]}
	}`))

	got := lines(&buf)
	require.Len(t, got, 1)
	assert.Equal(t, "DEPTH|2|WLDUSDT|0.39:100|0.40:75", got[0])
}

func TestHandle_LiquidationSideVerbatim(t *testing.T) {
	var buf bytes.Buffer
	n := newTestNormalizer(&buf)

	// Bybit reports the side of the order that closed the position; the
	// normalizer must not reinterpret it.
	n.Handle([]byte(`{
		"topic": "liquidation.WLDUSDT",
		"ts": 1700000000400,
		"data": {"symbol": "WLDUSDT", "side": "Buy", "price": "0.3890", "size": "5000"}
	}`))

	got := lines(&buf)
	require.Len(t, got, 1)
	assert.Equal(t, "LIQ|1700000000400|WLDUSDT|Buy|0.3890|5000", got[0])
}

func TestHandle_TickerDefaultsAbsentFields(t *testing.T) {
	var buf bytes.Buffer
	n := newTestNormalizer(&buf)

	n.Handle([]byte(`{
		"topic": "tickers.WLDUSDT",
		"ts": 1700000000500,
		"data": {"fundingRate": "0.0001"}
	}`))

	got := lines(&buf)
	require.Len(t, got, 1)
	assert.Equal(t, "TICKER|1700000000500|WLDUSDT|0|0.0001|0", got[0])
}

func TestHandle_IgnoresUnknownAndMalformed(t *testing.T) {
	var buf bytes.Buffer
	n := newTestNormalizer(&buf)

	n.Handle([]byte(`{"topic": "kline.1.WLDUSDT", "ts": 1, "data": {}}`))
	n.Handle([]byte(`{"success": true, "op": "subscribe"}`))
	n.Handle([]byte(`{"topic": "publicTrade.BTCUSDT", "ts": 1, "data": []}`))
	n.Handle([]byte(`not json at all`))

	assert.Empty(t, lines(&buf))
}

func TestHandle_MalformedDepthLeavesBookUntouched(t *testing.T) {
	var buf bytes.Buffer
	n := newTestNormalizer(&buf)

	n.Handle([]byte(`{
		"topic": "orderbook.50.WLDUSDT",
		"type": "snapshot",
		"ts": 1,
		"data": {"s": "WLDUSDT", "b": [["0.39","100"]], "a": [["0.40","80"]]}
	}`))
	buf.Reset()

	// A frame with the wrong data shape is dropped without mutating state.
	n.Handle([]byte(`{
		"topic": "orderbook.50.WLDUSDT",
		"type": "delta",
		"ts": 2,
		"data": ["not", "an", "object"]
	}`))
	assert.Empty(t, lines(&buf))

	n.Handle([]byte(`{
		"topic": "orderbook.50.WLDUSDT",
		"type": "delta",
		"ts": 3,
		"data": {"s": "WLDUSDT", "b": [], "a": []}
	}`))
	got := lines(&buf)
	require.Len(t, got, 1)
	assert.Equal(t, "DEPTH|3|WLDUSDT|0.39:100|0.40:80", got[0])
}
