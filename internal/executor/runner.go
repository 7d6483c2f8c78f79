package executor

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/Tarkan2K/WLD-Final/internal/domain"
	"github.com/Tarkan2K/WLD-Final/internal/wire"
)

// Runner is the signal intake loop. It reads SIGNAL lines, parses and
// filters them, and hands accepted signals to the lifecycle worker through a
// single-slot channel: while a trade is in flight, further signals are
// dropped, not buffered, so at most one lifecycle ever runs.
type Runner struct {
	set       Settings
	guard     *Guard
	lifecycle *Lifecycle
	in        io.Reader
	logger    *slog.Logger
}

// NewRunner creates a runner reading signal lines from in.
func NewRunner(set Settings, guard *Guard, lifecycle *Lifecycle, in io.Reader, logger *slog.Logger) *Runner {
	return &Runner{
		set:       set,
		guard:     guard,
		lifecycle: lifecycle,
		in:        in,
		logger:    logger.With(slog.String("component", "runner")),
	}
}

// Run processes signals until the input closes or ctx is cancelled. A failed
// trade never terminates the loop; the worker logs and returns to idle.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("listening for signals", slog.String("symbol", r.set.Symbol))

	slot := make(chan domain.TradeSignal, 1)
	go r.intake(ctx, slot)

	for sig := range slot {
		r.execute(ctx, sig)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	r.logger.Info("signal input closed")
	return nil
}

// intake reads lines and offers parsed signals without blocking. Lines that
// are not well-formed SIGNALs for our symbol are skipped silently.
func (r *Runner) intake(ctx context.Context, slot chan<- domain.TradeSignal) {
	defer close(slot)

	scanner := bufio.NewScanner(r.in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		sig, ok := wire.ParseSignal(scanner.Text(), r.set.Symbol)
		if !ok {
			continue
		}
		select {
		case slot <- sig:
		default:
			r.logger.Debug("signal dropped, trade in flight",
				slog.String("side", string(sig.Side)),
				slog.Float64("price", sig.Price),
			)
		}
	}
	if err := scanner.Err(); err != nil {
		r.logger.Error("signal input read failed", slog.String("error", err.Error()))
	}
}

// execute runs one accepted signal through guard and lifecycle. Rejections
// and execution failures are reported and swallowed here.
func (r *Runner) execute(ctx context.Context, sig domain.TradeSignal) {
	log := r.logger.With(
		slog.String("side", string(sig.Side)),
		slog.Float64("price", sig.Price),
	)

	params, err := r.guard.Evaluate(ctx, sig.Side, sig.Price)
	if err != nil {
		log.Warn("signal rejected", slog.String("reason", err.Error()))
		return
	}

	if err := r.lifecycle.Run(ctx, params); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error("trade lifecycle aborted", slog.String("error", err.Error()))
	}
}
