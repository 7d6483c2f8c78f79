package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies WLD_* environment variable overrides, and
// returns the final Config. A missing config file is not an error; defaults
// plus environment overrides are a complete configuration on their own. The
// returned Config has NOT been validated; the caller should invoke
// Config.Validate after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known WLD_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject the API credentials at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Bybit ──
	setStr(&cfg.Bybit.RestHost, "WLD_BYBIT_REST_HOST")
	setStr(&cfg.Bybit.WsHost, "WLD_BYBIT_WS_HOST")
	setStr(&cfg.Bybit.ApiKey, "WLD_BYBIT_API_KEY")
	setStr(&cfg.Bybit.ApiKey, "BYBIT_API_KEY") // compatibility alias
	setStr(&cfg.Bybit.ApiSecret, "WLD_BYBIT_API_SECRET")
	setStr(&cfg.Bybit.ApiSecret, "BYBIT_API_SECRET") // compatibility alias
	setStr(&cfg.Bybit.RecvWindow, "WLD_BYBIT_RECV_WINDOW")
	setBool(&cfg.Bybit.Testnet, "WLD_BYBIT_TESTNET")
	setBool(&cfg.Bybit.Testnet, "BYBIT_TESTNET") // compatibility alias

	// ── Strategy ──
	setStr(&cfg.Strategy.Symbol, "WLD_STRATEGY_SYMBOL")
	setStr(&cfg.Strategy.Coin, "WLD_STRATEGY_COIN")
	setInt(&cfg.Strategy.Leverage, "WLD_STRATEGY_LEVERAGE")
	setFloat64(&cfg.Strategy.RiskFraction, "WLD_STRATEGY_RISK_FRACTION")
	setFloat64(&cfg.Strategy.TakeProfitOffset, "WLD_STRATEGY_TAKE_PROFIT_OFFSET")
	setFloat64(&cfg.Strategy.StopLossOffset, "WLD_STRATEGY_STOP_LOSS_OFFSET")
	setFloat64(&cfg.Strategy.MinBalance, "WLD_STRATEGY_MIN_BALANCE")
	setDuration(&cfg.Strategy.FillWait, "WLD_STRATEGY_FILL_WAIT")
	setDuration(&cfg.Strategy.PollInterval, "WLD_STRATEGY_POLL_INTERVAL")
	setDuration(&cfg.Strategy.Cooldown, "WLD_STRATEGY_COOLDOWN")

	// ── Feed ──
	setInt(&cfg.Feed.Depth, "WLD_FEED_DEPTH")
	setDuration(&cfg.Feed.ReconnectBackoff, "WLD_FEED_RECONNECT_BACKOFF")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "WLD_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}
