package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/jwebster45206/turn-engine/internal/config"
)

// Setup builds the process logger from cfg and installs it as the slog default
func Setup(cfg *config.Config) *slog.Logger {
	logger := New(os.Stdout, cfg.Environment, cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	return logger
}

// New writes JSON in production and text everywhere else
func New(w io.Writer, environment string, level slog.Leveler) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if environment == "production" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// WithGame scopes a logger to one game and turn request
func WithGame(logger *slog.Logger, gameID, requestID string) *slog.Logger {
	return logger.With("game_id", gameID, "request_id", requestID)
}
