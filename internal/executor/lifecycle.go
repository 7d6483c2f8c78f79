package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Tarkan2K/WLD-Final/internal/domain"
)

// TradingExchange is the mutating trading surface the lifecycle drives.
type TradingExchange interface {
	PlaceMarketOrder(ctx context.Context, params domain.OrderParams) (domain.OrderResult, error)
	SetTradingStop(ctx context.Context, symbol, takeProfit, stopLoss string) error
	Positions(ctx context.Context, symbol string) ([]domain.Position, error)
}

// Lifecycle runs one trade from submission to cooldown:
//
//	Submitting -> AwaitingFill -> Correcting -> OpenMonitoring -> Cooldown
//
// The whole run is synchronous and owns the calling loop for the entire
// position lifetime; that blocking is the backpressure policy keeping at most
// one trade in flight.
type Lifecycle struct {
	set      Settings
	exchange TradingExchange
	logger   *slog.Logger
}

// NewLifecycle creates a lifecycle driver over the exchange.
func NewLifecycle(set Settings, exchange TradingExchange, logger *slog.Logger) *Lifecycle {
	return &Lifecycle{
		set:      set,
		exchange: exchange,
		logger:   logger.With(slog.String("component", "lifecycle")),
	}
}

// Run submits the entry order and blocks until the position has closed and
// the cooldown has elapsed. A submission failure returns immediately with no
// retry; a correction failure is logged and tolerated, leaving the initially
// submitted protective orders in force.
func (l *Lifecycle) Run(ctx context.Context, params domain.OrderParams) error {
	log := l.logger.With(
		slog.String("side", string(params.Side)),
		slog.Int64("qty", params.Qty),
	)

	result, err := l.exchange.PlaceMarketOrder(ctx, params)
	if err != nil {
		return fmt.Errorf("executor: submit order: %w", err)
	}
	log.Info("order submitted",
		slog.String("order_id", result.OrderID),
		slog.Float64("signal_price", params.Price),
		slog.String("take_profit", params.TakeProfit),
		slog.String("stop_loss", params.StopLoss),
	)

	// Give the exchange a moment to register the fill. This is a heuristic
	// wait, not a confirmed-fill signal; a slow fill just means the
	// correction below reads stale data and is skipped.
	if err := sleepCtx(ctx, l.set.FillWait); err != nil {
		return err
	}

	l.correct(ctx, params.Side, log)

	if err := l.monitor(ctx); err != nil {
		return err
	}
	log.Info("position closed, starting cooldown", slog.Duration("cooldown", l.set.Cooldown))

	if err := sleepCtx(ctx, l.set.Cooldown); err != nil {
		return err
	}
	log.Info("cooldown finished, ready for next signal")
	return nil
}

// correct re-derives take-profit and stop-loss from the realized average
// entry price and replaces the protective orders. Failure here is not fatal:
// the estimates submitted with the entry remain in force.
func (l *Lifecycle) correct(ctx context.Context, side domain.OrderSide, log *slog.Logger) {
	positions, err := l.exchange.Positions(ctx, l.set.Symbol)
	if err != nil {
		log.Warn("protective-order correction skipped, position query failed",
			slog.String("error", err.Error()),
		)
		return
	}

	for _, pos := range positions {
		if !pos.Open() {
			continue
		}
		takeProfit, stopLoss := protectivePrices(side, pos.AvgPrice, l.set.TakeProfitOffset, l.set.StopLossOffset)
		if err := l.exchange.SetTradingStop(ctx, l.set.Symbol, takeProfit, stopLoss); err != nil {
			log.Warn("protective-order update failed, keeping initial values",
				slog.String("error", err.Error()),
			)
			return
		}
		log.Info("protective orders corrected to real entry",
			slog.Float64("avg_entry", pos.AvgPrice),
			slog.String("take_profit", takeProfit),
			slog.String("stop_loss", stopLoss),
		)
		return
	}

	log.Warn("protective-order correction skipped, no open position visible yet")
}

// monitor polls position state until nothing remains open. Purely
// observational. A failed query counts as still open.
func (l *Lifecycle) monitor(ctx context.Context) error {
	for {
		open := true
		positions, err := l.exchange.Positions(ctx, l.set.Symbol)
		if err == nil {
			open = false
			for _, pos := range positions {
				if pos.Open() {
					open = true
					break
				}
			}
		}
		if !open {
			return nil
		}
		if err := sleepCtx(ctx, l.set.PollInterval); err != nil {
			return err
		}
	}
}

// sleepCtx sleeps for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
