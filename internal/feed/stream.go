package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/Tarkan2K/WLD-Final/internal/platform/bybit"
)

// Stream owns the connection lifecycle to the public market-data stream: it
// dials, subscribes, and pumps frames into the normalizer, reconnecting with
// a fixed backoff whenever the transport drops. Book state does not survive a
// reconnect in any meaningful way; the next depth snapshot rebuilds it.
type Stream struct {
	wsURL      string
	topics     []string
	normalizer *Normalizer
	backoff    time.Duration
	logger     *slog.Logger
}

// NewStream creates a stream that feeds every received frame to normalizer.
func NewStream(wsURL string, topics []string, normalizer *Normalizer, backoff time.Duration, logger *slog.Logger) *Stream {
	return &Stream{
		wsURL:      wsURL,
		topics:     topics,
		normalizer: normalizer,
		backoff:    backoff,
		logger:     logger.With(slog.String("component", "stream")),
	}
}

// Run connects and processes frames until ctx is cancelled. Every transport
// error tears the session down and a fresh connection re-subscribes the full
// topic set.
func (s *Stream) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := s.runConnection(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn("stream disconnected, reconnecting",
			slog.String("error", err.Error()),
			slog.Duration("backoff", s.backoff),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.backoff):
		}
	}
}

// runConnection performs one dial/subscribe/read session. Message handling is
// synchronous: a frame is fully processed, book mutation and line emission
// included, before the next read.
func (s *Stream) runConnection(ctx context.Context) error {
	client := bybit.NewWSClient(s.wsURL)
	defer client.Close()

	if err := client.Connect(ctx); err != nil {
		return err
	}
	if err := client.Subscribe(s.topics); err != nil {
		return err
	}
	s.logger.Info("subscribed", slog.Int("topics", len(s.topics)))

	// Close the connection when ctx ends so the blocking read returns.
	stop := context.AfterFunc(ctx, func() { client.Close() })
	defer stop()

	for {
		raw, err := client.ReadMessage()
		if err != nil {
			return err
		}
		s.normalizer.Handle(raw)
	}
}
