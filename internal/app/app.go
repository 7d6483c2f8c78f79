// Package app wires the components of each process and supervises their
// lifecycles. The feed and trader binaries share one configuration surface
// but run independent single-threaded loops; they interact only through the
// line protocol and the exchange itself.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Tarkan2K/WLD-Final/internal/config"
	"github.com/Tarkan2K/WLD-Final/internal/crypto"
	"github.com/Tarkan2K/WLD-Final/internal/executor"
	"github.com/Tarkan2K/WLD-Final/internal/feed"
	"github.com/Tarkan2K/WLD-Final/internal/platform/bybit"
)

// App is the root application object, owning configuration and logger.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// RunFeed starts the market-data normalizer, writing protocol lines to out
// (stdout in production; logs stay on stderr so the pipe stays clean). It
// blocks until ctx is cancelled.
func (a *App) RunFeed(ctx context.Context, out io.Writer) error {
	symbol := a.cfg.Strategy.Symbol
	a.logger.InfoContext(ctx, "starting feed",
		slog.String("symbol", symbol),
		slog.String("ws_host", a.cfg.Bybit.WsURL()),
		slog.Int("depth", a.cfg.Feed.Depth),
	)

	normalizer := feed.NewNormalizer(symbol, a.cfg.Feed.Depth, out, a.logger)
	stream := feed.NewStream(
		a.cfg.Bybit.WsURL(),
		feed.Topics(symbol),
		normalizer,
		a.cfg.Feed.ReconnectBackoff.Duration,
		a.logger,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return stream.Run(ctx) })
	return g.Wait()
}

// RunTrade starts the signal executor reading SIGNAL lines from in (stdin in
// production). Exchange authentication is probed up front: without a working
// trading session nothing else can function, so a failed probe is fatal.
func (a *App) RunTrade(ctx context.Context, in io.Reader) error {
	strat := a.cfg.Strategy
	a.logger.InfoContext(ctx, "starting trader",
		slog.String("symbol", strat.Symbol),
		slog.Int("leverage", strat.Leverage),
		slog.Bool("testnet", a.cfg.Bybit.Testnet),
	)

	signer := &crypto.Signer{
		Key:        a.cfg.Bybit.ApiKey,
		Secret:     a.cfg.Bybit.ApiSecret,
		RecvWindow: a.cfg.Bybit.RecvWindow,
	}
	client := bybit.NewClient(a.cfg.Bybit.RestURL(), signer)

	balance, err := client.AvailableBalance(ctx, strat.Coin)
	if err != nil {
		return fmt.Errorf("app: exchange connection check: %w", err)
	}
	a.logger.InfoContext(ctx, "exchange connection established",
		slog.Float64("balance", balance),
		slog.String("coin", strat.Coin),
	)

	// Bybit rejects this call when the leverage is already set; either way
	// the outcome is informational.
	if err := client.SetLeverage(ctx, strat.Symbol, strat.Leverage); err != nil {
		a.logger.InfoContext(ctx, "leverage check", slog.String("error", err.Error()))
	} else {
		a.logger.InfoContext(ctx, "leverage forced", slog.Int("leverage", strat.Leverage))
	}

	set := executor.Settings{
		Symbol:           strat.Symbol,
		Coin:             strat.Coin,
		Leverage:         strat.Leverage,
		RiskFraction:     strat.RiskFraction,
		TakeProfitOffset: strat.TakeProfitOffset,
		StopLossOffset:   strat.StopLossOffset,
		MinBalance:       strat.MinBalance,
		FillWait:         strat.FillWait.Duration,
		PollInterval:     strat.PollInterval.Duration,
		Cooldown:         strat.Cooldown.Duration,
	}
	guard := executor.NewGuard(set, client, a.logger)
	lifecycle := executor.NewLifecycle(set, client, a.logger)
	runner := executor.NewRunner(set, guard, lifecycle, in, a.logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return runner.Run(ctx) })
	return g.Wait()
}
