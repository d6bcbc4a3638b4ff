package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/amphitheatre-app/playbooks/internal/constants"
)

// Initialize sets up the global slog logger based on the environment
func Initialize(env constants.Environment, level slog.Level) *slog.Logger {
	logger := slog.New(NewHandler(os.Stderr, env, level))
	slog.SetDefault(logger)
	slog.Debug("logger initialized", "env", env, "level", level)

	return logger
}

// NewHandler returns a JSON handler in production and a coloured text
// handler everywhere else.
func NewHandler(w io.Writer, env constants.Environment, level slog.Level) slog.Handler {
	if env == constants.Production {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}

	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})
}
