package bybit

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tarkan2K/WLD-Final/internal/crypto"
	"github.com/Tarkan2K/WLD-Final/internal/domain"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	signer := &crypto.Signer{Key: "key", Secret: "secret", RecvWindow: "5000"}
	return NewClient(server.URL, signer), server
}

func envelope(result string) string {
	return `{"retCode":0,"retMsg":"OK","result":` + result + `}`
}

func TestAvailableBalance(t *testing.T) {
	var gotPath, gotQuery string
	var gotHeaders http.Header
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotHeaders = r.Header
		io.WriteString(w, envelope(`{"list":[{"coin":[{"coin":"USDT","walletBalance":"123.4567"}]}]}`))
	})
	defer server.Close()

	balance, err := client.AvailableBalance(context.Background(), "USDT")
	require.NoError(t, err)
	assert.Equal(t, 123.4567, balance)
	assert.Equal(t, "/v5/account/wallet-balance", gotPath)
	assert.Contains(t, gotQuery, "accountType=UNIFIED")
	assert.Contains(t, gotQuery, "coin=USDT")
	assert.Equal(t, "key", gotHeaders.Get("X-BAPI-API-KEY"))
	assert.NotEmpty(t, gotHeaders.Get("X-BAPI-SIGN"))
	assert.NotEmpty(t, gotHeaders.Get("X-BAPI-TIMESTAMP"))
}

func TestAvailableBalance_EmptyAccountList(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, envelope(`{"list":[]}`))
	})
	defer server.Close()

	_, err := client.AvailableBalance(context.Background(), "USDT")
	assert.ErrorIs(t, err, domain.ErrExchange)
}

func TestPositions(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v5/position/list", r.URL.Path)
		io.WriteString(w, envelope(`{"list":[
			{"symbol":"WLDUSDT","side":"Buy","size":"11250","avgPrice":"0.3905"},
			{"symbol":"WLDUSDT","side":"","size":"0","avgPrice":"0"}
		]}`))
	})
	defer server.Close()

	positions, err := client.Positions(context.Background(), "WLDUSDT")
	require.NoError(t, err)
	require.Len(t, positions, 2)
	assert.Equal(t, domain.OrderSideBuy, positions[0].Side)
	assert.Equal(t, 11250.0, positions[0].Size)
	assert.Equal(t, 0.3905, positions[0].AvgPrice)
	assert.True(t, positions[0].Open())
	assert.False(t, positions[1].Open())
}

func TestPlaceMarketOrder(t *testing.T) {
	var gotBody map[string]any
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v5/order/create", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))
		io.WriteString(w, envelope(`{"orderId":"abc-123","orderLinkId":"ignored"}`))
	})
	defer server.Close()

	result, err := client.PlaceMarketOrder(context.Background(), domain.OrderParams{
		Symbol:     "WLDUSDT",
		Side:       domain.OrderSideBuy,
		Qty:        11250,
		TakeProfit: "0.3909",
		StopLoss:   "0.3894",
	})
	require.NoError(t, err)
	assert.Equal(t, "abc-123", result.OrderID)
	assert.NotEmpty(t, result.OrderLinkID)

	assert.Equal(t, "linear", gotBody["category"])
	assert.Equal(t, "WLDUSDT", gotBody["symbol"])
	assert.Equal(t, "Buy", gotBody["side"])
	assert.Equal(t, "Market", gotBody["orderType"])
	assert.Equal(t, "11250", gotBody["qty"])
	assert.Equal(t, "0.3909", gotBody["takeProfit"])
	assert.Equal(t, "0.3894", gotBody["stopLoss"])
	assert.Equal(t, "LastPrice", gotBody["tpTriggerBy"])
	assert.Equal(t, "LastPrice", gotBody["slTriggerBy"])
	assert.NotEmpty(t, gotBody["orderLinkId"])
}

func TestSetTradingStop(t *testing.T) {
	var gotBody map[string]any
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v5/position/trading-stop", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))
		io.WriteString(w, envelope(`{}`))
	})
	defer server.Close()

	err := client.SetTradingStop(context.Background(), "WLDUSDT", "0.3914", "0.3899")
	require.NoError(t, err)
	assert.Equal(t, "0.3914", gotBody["takeProfit"])
	assert.Equal(t, "0.3899", gotBody["stopLoss"])
	assert.Equal(t, float64(0), gotBody["positionIdx"], "one-way mode")
}

func TestSetLeverage_RetCodeError(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"retCode":110043,"retMsg":"leverage not modified","result":{}}`)
	})
	defer server.Close()

	err := client.SetLeverage(context.Background(), "WLDUSDT", 50)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExchange)
	assert.Contains(t, err.Error(), "leverage not modified")
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, domain.ErrUnauthorized},
		{http.StatusForbidden, domain.ErrUnauthorized},
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusTooManyRequests, domain.ErrRateLimited},
	}
	for _, tt := range tests {
		client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		})
		_, err := client.AvailableBalance(context.Background(), "USDT")
		assert.ErrorIs(t, err, tt.want)
		server.Close()
	}
}
