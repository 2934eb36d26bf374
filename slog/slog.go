// Package slog decorates pagelens services with structured logging.
// Each call logs one record; failures are logged at Warn, the rest at Info.
package slog

import (
	"context"
	"log/slog"
)

func levelFor(err error) slog.Level {
	if err != nil {
		return slog.LevelWarn
	}
	return slog.LevelInfo
}

func logCall(logger *slog.Logger, err error, msg string, args ...any) {
	logger.Log(context.Background(), levelFor(err), msg, append(args, "err", err)...)
}
