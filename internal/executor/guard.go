// Package executor consumes trade signals and drives the guarded order
// lifecycle against the exchange: sizing, placement, protective-order
// correction, close monitoring, and the mandatory cooldown.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/Tarkan2K/WLD-Final/internal/domain"
)

// Settings are the fixed trading parameters shared by the guard and the
// lifecycle. They come straight from configuration and never change at
// runtime.
type Settings struct {
	Symbol           string
	Coin             string // quote currency for balance checks
	Leverage         int
	RiskFraction     float64
	TakeProfitOffset float64 // absolute price offset, not a percentage
	StopLossOffset   float64
	MinBalance       float64
	FillWait         time.Duration
	PollInterval     time.Duration
	Cooldown         time.Duration
}

// AccountReader is the live account state the guard queries before every
// entry decision.
type AccountReader interface {
	Positions(ctx context.Context, symbol string) ([]domain.Position, error)
	AvailableBalance(ctx context.Context, coin string) (float64, error)
}

// Guard is pure decision logic over two live queries: it enforces the
// single-open-position invariant and computes order sizing. It never mutates
// exchange state.
type Guard struct {
	set     Settings
	account AccountReader
	logger  *slog.Logger
}

// NewGuard creates a guard over the given live account reader.
func NewGuard(set Settings, account AccountReader, logger *slog.Logger) *Guard {
	return &Guard{
		set:     set,
		account: account,
		logger:  logger.With(slog.String("component", "guard")),
	}
}

// Evaluate sizes an entry for the requested side and price. It returns
// domain.ErrPositionOpen, domain.ErrInsufficientBalance, or
// domain.ErrZeroQuantity as rejection reasons. A failed position query counts
// as an open position: when in doubt, block rather than risk a double entry.
func (g *Guard) Evaluate(ctx context.Context, side domain.OrderSide, price float64) (domain.OrderParams, error) {
	positions, err := g.account.Positions(ctx, g.set.Symbol)
	if err != nil {
		g.logger.Error("position query failed, blocking entry", slog.String("error", err.Error()))
		return domain.OrderParams{}, fmt.Errorf("%w: position state unknown: %v", domain.ErrPositionOpen, err)
	}
	for _, pos := range positions {
		if pos.Open() {
			g.logger.Warn("entry rejected, position detected",
				slog.String("side", string(pos.Side)),
				slog.Float64("size", pos.Size),
			)
			return domain.OrderParams{}, domain.ErrPositionOpen
		}
	}

	balance, err := g.account.AvailableBalance(ctx, g.set.Coin)
	if err != nil {
		g.logger.Error("balance query failed", slog.String("error", err.Error()))
		return domain.OrderParams{}, fmt.Errorf("%w: %v", domain.ErrInsufficientBalance, err)
	}
	if balance < g.set.MinBalance {
		return domain.OrderParams{}, fmt.Errorf("%w: %.4f %s available", domain.ErrInsufficientBalance, balance, g.set.Coin)
	}

	// A non-positive price would make the division below meaningless.
	if price <= 0 {
		return domain.OrderParams{}, fmt.Errorf("%w: price %.4f", domain.ErrZeroQuantity, price)
	}
	notional := balance * g.set.RiskFraction * float64(g.set.Leverage)
	qty := int64(math.Floor(notional / price))
	if qty <= 0 {
		return domain.OrderParams{}, fmt.Errorf("%w: balance %.4f, price %.4f", domain.ErrZeroQuantity, balance, price)
	}

	takeProfit, stopLoss := protectivePrices(side, price, g.set.TakeProfitOffset, g.set.StopLossOffset)

	g.logger.Info("entry sized",
		slog.String("side", string(side)),
		slog.Float64("balance", balance),
		slog.Int64("qty", qty),
		slog.String("take_profit", takeProfit),
		slog.String("stop_loss", stopLoss),
	)

	return domain.OrderParams{
		Symbol:     g.set.Symbol,
		Side:       side,
		Qty:        qty,
		Price:      price,
		TakeProfit: takeProfit,
		StopLoss:   stopLoss,
	}, nil
}

// protectivePrices computes take-profit and stop-loss as fixed absolute
// offsets from price, sign chosen by side, rounded to four decimals.
func protectivePrices(side domain.OrderSide, price, tpOffset, slOffset float64) (takeProfit, stopLoss string) {
	var tp, sl float64
	if side == domain.OrderSideBuy {
		tp = price + tpOffset
		sl = price - slOffset
	} else {
		tp = price - tpOffset
		sl = price + slOffset
	}
	return formatPrice(tp), formatPrice(sl)
}

// formatPrice rounds to four decimal places and renders the fixed-point
// decimal string the exchange expects.
func formatPrice(v float64) string {
	rounded := math.Round(v*1e4) / 1e4
	return strconv.FormatFloat(rounded, 'f', 4, 64)
}
