// Package config defines the shared configuration for the feed and trader
// processes and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by WLD_* environment variables.
type Config struct {
	Bybit    BybitConfig    `toml:"bybit"`
	Strategy StrategyConfig `toml:"strategy"`
	Feed     FeedConfig     `toml:"feed"`
	LogLevel string         `toml:"log_level"`
}

// BybitConfig holds exchange endpoints and API credentials.
type BybitConfig struct {
	RestHost        string `toml:"rest_host"`
	WsHost          string `toml:"ws_host"`
	TestnetRestHost string `toml:"testnet_rest_host"`
	TestnetWsHost   string `toml:"testnet_ws_host"`
	ApiKey          string `toml:"api_key"`
	ApiSecret       string `toml:"api_secret"`
	RecvWindow      string `toml:"recv_window"`
	Testnet         bool   `toml:"testnet"`
}

// RestURL returns the REST endpoint for the configured network.
func (b BybitConfig) RestURL() string {
	if b.Testnet {
		return b.TestnetRestHost
	}
	return b.RestHost
}

// WsURL returns the public-stream endpoint for the configured network.
func (b BybitConfig) WsURL() string {
	if b.Testnet {
		return b.TestnetWsHost
	}
	return b.WsHost
}

// StrategyConfig holds the fixed trading parameters.
type StrategyConfig struct {
	Symbol           string   `toml:"symbol"`
	Coin             string   `toml:"coin"`
	Leverage         int      `toml:"leverage"`
	RiskFraction     float64  `toml:"risk_fraction"`
	TakeProfitOffset float64  `toml:"take_profit_offset"`
	StopLossOffset   float64  `toml:"stop_loss_offset"`
	MinBalance       float64  `toml:"min_balance"`
	FillWait         duration `toml:"fill_wait"`
	PollInterval     duration `toml:"poll_interval"`
	Cooldown         duration `toml:"cooldown"`
}

// FeedConfig holds market-data stream parameters.
type FeedConfig struct {
	Depth            int      `toml:"depth"`
	ReconnectBackoff duration `toml:"reconnect_backoff"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "900s", "15m").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "1s" or "15m".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with the production trading parameters.
func Defaults() Config {
	return Config{
		Bybit: BybitConfig{
			RestHost:        "https://api.bybit.com",
			WsHost:          "wss://stream.bybit.com/v5/public/linear",
			TestnetRestHost: "https://api-testnet.bybit.com",
			TestnetWsHost:   "wss://stream-testnet.bybit.com/v5/public/linear",
			RecvWindow:      "5000",
			Testnet:         false,
		},
		Strategy: StrategyConfig{
			Symbol:           "WLDUSDT",
			Coin:             "USDT",
			Leverage:         50,
			RiskFraction:     0.90,
			TakeProfitOffset: 0.0009,
			StopLossOffset:   0.0006,
			MinBalance:       1.0,
			FillWait:         duration{1 * time.Second},
			PollInterval:     duration{1 * time.Second},
			Cooldown:         duration{900 * time.Second},
		},
		Feed: FeedConfig{
			Depth:            50,
			ReconnectBackoff: duration{1 * time.Second},
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found. requireAuth should be set
// by the trader process, which cannot run without credentials; the feed only
// consumes public streams.
func (c *Config) Validate(requireAuth bool) error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Bybit.RestURL() == "" {
		errs = append(errs, "bybit: rest_host must not be empty")
	}
	if c.Bybit.WsURL() == "" {
		errs = append(errs, "bybit: ws_host must not be empty")
	}
	if requireAuth {
		if c.Bybit.ApiKey == "" {
			errs = append(errs, "bybit: api_key is required for trading")
		}
		if c.Bybit.ApiSecret == "" {
			errs = append(errs, "bybit: api_secret is required for trading")
		}
	}

	if c.Strategy.Symbol == "" {
		errs = append(errs, "strategy: symbol must not be empty")
	}
	if c.Strategy.Coin == "" {
		errs = append(errs, "strategy: coin must not be empty")
	}
	if c.Strategy.Leverage < 1 {
		errs = append(errs, fmt.Sprintf("strategy: leverage must be >= 1, got %d", c.Strategy.Leverage))
	}
	if c.Strategy.RiskFraction <= 0 || c.Strategy.RiskFraction > 1 {
		errs = append(errs, fmt.Sprintf("strategy: risk_fraction must be in (0, 1], got %v", c.Strategy.RiskFraction))
	}
	if c.Strategy.TakeProfitOffset <= 0 {
		errs = append(errs, "strategy: take_profit_offset must be > 0")
	}
	if c.Strategy.StopLossOffset <= 0 {
		errs = append(errs, "strategy: stop_loss_offset must be > 0")
	}
	if c.Strategy.MinBalance <= 0 {
		errs = append(errs, "strategy: min_balance must be > 0")
	}
	if c.Strategy.PollInterval.Duration <= 0 {
		errs = append(errs, "strategy: poll_interval must be > 0")
	}
	if c.Strategy.Cooldown.Duration < 0 {
		errs = append(errs, "strategy: cooldown must not be negative")
	}

	if c.Feed.Depth < 1 {
		errs = append(errs, fmt.Sprintf("feed: depth must be >= 1, got %d", c.Feed.Depth))
	}
	if c.Feed.ReconnectBackoff.Duration <= 0 {
		errs = append(errs, "feed: reconnect_backoff must be > 0")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
