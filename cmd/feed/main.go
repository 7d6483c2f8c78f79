// Command feed connects to the exchange's public market-data stream for one
// instrument and writes normalized pipe-separated event lines to stdout, one
// per update, flushed immediately. Logs go to stderr so the pipe stays clean.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Tarkan2K/WLD-Final/internal/app"
	"github.com/Tarkan2K/WLD-Final/internal/config"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to configuration file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config",
			slog.String("path", *configPath),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	// The feed only consumes public streams; no credentials required.
	if err := cfg.Validate(false); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application := app.New(cfg, logger)
	if err := application.RunFeed(ctx, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("feed exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("feed stopped")
}

// logLevel maps the configured level name onto a slog level.
func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
