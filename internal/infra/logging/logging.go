package logging

import (
	"io"
	"log/slog"
	"os"
)

// SetupJSON sets slog's default logger to write JSON to w at the given level.
// A nil w means stderr, which keeps stdout free for command output.
func SetupJSON(w io.Writer, level slog.Level) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	logger := slog.New(
		slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}),
	)
	slog.SetDefault(logger)

	return logger
}
