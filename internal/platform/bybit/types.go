package bybit

import "encoding/json"

// PushMessage is the outer envelope of every public-stream frame. Data stays
// raw until the topic is known.
type PushMessage struct {
	Topic string          `json:"topic"`
	Type  string          `json:"type"` // "snapshot" or "delta" on depth topics
	TS    int64           `json:"ts"`
	Data  json.RawMessage `json:"data"`
}

// TradeEntry is one element of a publicTrade push.
type TradeEntry struct {
	TS     int64  `json:"T"`
	Symbol string `json:"s"`
	Side   string `json:"S"` // "Buy" or "Sell"
	Qty    string `json:"v"`
	Price  string `json:"p"`
}

// DepthData carries one orderbook.50 snapshot or delta.
type DepthData struct {
	Symbol string      `json:"s"`
	Bids   [][2]string `json:"b"`
	Asks   [][2]string `json:"a"`
}

// LiquidationData is the payload of a liquidation push. Side is the side of
// the order that closed the liquidated position, per the exchange docs.
type LiquidationData struct {
	Symbol string `json:"symbol"`
	Side   string `json:"side"`
	Price  string `json:"price"`
	Size   string `json:"size"`
}

// TickerData is the payload of a tickers push. Bybit sends tickers as partial
// snapshots, so every field may be absent.
type TickerData struct {
	OpenInterest string `json:"openInterest"`
	FundingRate  string `json:"fundingRate"`
	MarkPrice    string `json:"markPrice"`
}

// subscribeRequest is the public-stream subscription handshake.
type subscribeRequest struct {
	Op   string   `json:"op"`
	Args []string `json:"args,omitempty"`
}

// apiResponse is the envelope of every v5 REST response.
type apiResponse struct {
	RetCode int             `json:"retCode"`
	RetMsg  string          `json:"retMsg"`
	Result  json.RawMessage `json:"result"`
}

// walletBalanceResult mirrors GET /v5/account/wallet-balance.
type walletBalanceResult struct {
	List []struct {
		Coin []struct {
			Coin          string `json:"coin"`
			WalletBalance string `json:"walletBalance"`
		} `json:"coin"`
	} `json:"list"`
}

// positionListResult mirrors GET /v5/position/list.
type positionListResult struct {
	List []positionEntry `json:"list"`
}

type positionEntry struct {
	Symbol   string `json:"symbol"`
	Side     string `json:"side"`
	Size     string `json:"size"`
	AvgPrice string `json:"avgPrice"`
}

// orderCreateResult mirrors POST /v5/order/create.
type orderCreateResult struct {
	OrderID     string `json:"orderId"`
	OrderLinkID string `json:"orderLinkId"`
}
