// Package bybit talks to the Bybit v5 API: an authenticated REST client for
// the trading surface and a public WebSocket client for market data.
package bybit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Tarkan2K/WLD-Final/internal/crypto"
	"github.com/Tarkan2K/WLD-Final/internal/domain"
)

const categoryLinear = "linear"

// Client is the REST client for the Bybit v5 trading API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	signer     *crypto.Signer
}

// NewClient creates a new trading client.
//
// baseURL is the API root, e.g. "https://api.bybit.com".
func NewClient(baseURL string, signer *crypto.Signer) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		signer: signer,
	}
}

// SetLeverage forces buy and sell leverage for the symbol. Bybit rejects the
// call when the leverage is already set, so callers typically treat failure
// as informational.
func (c *Client) SetLeverage(ctx context.Context, symbol string, leverage int) error {
	lev := strconv.Itoa(leverage)
	body := map[string]any{
		"category":     categoryLinear,
		"symbol":       symbol,
		"buyLeverage":  lev,
		"sellLeverage": lev,
	}
	if _, err := c.doPost(ctx, "/v5/position/set-leverage", body); err != nil {
		return fmt.Errorf("bybit: set leverage: %w", err)
	}
	return nil
}

// AvailableBalance returns the wallet balance of the given coin in the
// unified account.
func (c *Client) AvailableBalance(ctx context.Context, coin string) (float64, error) {
	query := url.Values{}
	query.Set("accountType", "UNIFIED")
	query.Set("coin", coin)

	raw, err := c.doGet(ctx, "/v5/account/wallet-balance", query)
	if err != nil {
		return 0, fmt.Errorf("bybit: wallet balance: %w", err)
	}

	var result walletBalanceResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return 0, fmt.Errorf("bybit: decode wallet balance: %w", err)
	}
	if len(result.List) == 0 || len(result.List[0].Coin) == 0 {
		return 0, fmt.Errorf("bybit: wallet balance: %w: empty account list", domain.ErrExchange)
	}
	balance, err := strconv.ParseFloat(result.List[0].Coin[0].WalletBalance, 64)
	if err != nil {
		return 0, fmt.Errorf("bybit: parse wallet balance %q: %w", result.List[0].Coin[0].WalletBalance, err)
	}
	return balance, nil
}

// Positions lists the open positions for the symbol. Entries with zero size
// are returned as-is; callers decide what "open" means.
func (c *Client) Positions(ctx context.Context, symbol string) ([]domain.Position, error) {
	query := url.Values{}
	query.Set("category", categoryLinear)
	query.Set("symbol", symbol)

	raw, err := c.doGet(ctx, "/v5/position/list", query)
	if err != nil {
		return nil, fmt.Errorf("bybit: position list: %w", err)
	}

	var result positionListResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("bybit: decode position list: %w", err)
	}

	positions := make([]domain.Position, 0, len(result.List))
	for _, entry := range result.List {
		size, _ := strconv.ParseFloat(entry.Size, 64)
		avg, _ := strconv.ParseFloat(entry.AvgPrice, 64)
		positions = append(positions, domain.Position{
			Symbol:   entry.Symbol,
			Side:     domain.OrderSide(entry.Side),
			Size:     size,
			AvgPrice: avg,
		})
	}
	return positions, nil
}

// PlaceMarketOrder submits a market order with the embedded take-profit and
// stop-loss, both triggered on last price. Every order carries a fresh UUID
// link ID so it can be traced in the exchange's order history.
func (c *Client) PlaceMarketOrder(ctx context.Context, params domain.OrderParams) (domain.OrderResult, error) {
	linkID := uuid.New().String()
	body := map[string]any{
		"category":    categoryLinear,
		"symbol":      params.Symbol,
		"side":        string(params.Side),
		"orderType":   "Market",
		"qty":         strconv.FormatInt(params.Qty, 10),
		"takeProfit":  params.TakeProfit,
		"stopLoss":    params.StopLoss,
		"tpTriggerBy": "LastPrice",
		"slTriggerBy": "LastPrice",
		"orderLinkId": linkID,
	}

	raw, err := c.doPost(ctx, "/v5/order/create", body)
	if err != nil {
		return domain.OrderResult{}, fmt.Errorf("bybit: place order: %w", err)
	}

	var result orderCreateResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return domain.OrderResult{}, fmt.Errorf("bybit: decode order result: %w", err)
	}
	return domain.OrderResult{OrderID: result.OrderID, OrderLinkID: linkID}, nil
}

// SetTradingStop replaces the take-profit and stop-loss on the open one-way
// position.
func (c *Client) SetTradingStop(ctx context.Context, symbol, takeProfit, stopLoss string) error {
	body := map[string]any{
		"category":    categoryLinear,
		"symbol":      symbol,
		"takeProfit":  takeProfit,
		"stopLoss":    stopLoss,
		"tpTriggerBy": "LastPrice",
		"slTriggerBy": "LastPrice",
		"positionIdx": 0,
	}
	if _, err := c.doPost(ctx, "/v5/position/trading-stop", body); err != nil {
		return fmt.Errorf("bybit: set trading stop: %w", err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Internal request plumbing
// --------------------------------------------------------------------------

// doGet sends a signed GET request and returns the raw result payload.
func (c *Client) doGet(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	encoded := query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+encoded, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range c.signer.Headers(encoded) {
		req.Header.Set(k, v)
	}
	return c.send(req)
}

// doPost sends a signed JSON POST request and returns the raw result payload.
func (c *Client) doPost(ctx context.Context, path string, body any) (json.RawMessage, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.signer.Headers(string(jsonBody)) {
		req.Header.Set(k, v)
	}
	return c.send(req)
}

// send executes the request, checks the HTTP status, and unwraps the v5
// envelope. A non-zero retCode is an exchange-level rejection.
func (c *Client) send(req *http.Request) (json.RawMessage, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if err := checkHTTPStatus(resp.StatusCode, respBody); err != nil {
		return nil, err
	}

	var envelope apiResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if envelope.RetCode != 0 {
		return nil, fmt.Errorf("%w: retCode %d: %s", domain.ErrExchange, envelope.RetCode, envelope.RetMsg)
	}
	return envelope.Result, nil
}

// checkHTTPStatus maps non-2xx status codes to appropriate domain errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, bodyStr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, bodyStr)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, bodyStr)
	}
}
