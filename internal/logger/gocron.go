package logger

import (
	"errors"
	"log/slog"

	"github.com/go-co-op/gocron/v2"

	"github.com/edgard/notebot/internal/errs"
)

// gocronLogger routes gocron's internal logging into slog.
type gocronLogger struct {
	log *slog.Logger
}

// NewGocronLogger returns a gocron.Logger writing to log under component "gocron".
//
//nolint:ireturn // gocron.WithLogger takes the interface
func NewGocronLogger(log *slog.Logger) gocron.Logger {
	if log == nil {
		log = Discard()
	}
	return &gocronLogger{log: log.With("component", "gocron")}
}

func (l *gocronLogger) Debug(msg string, args ...any) {
	l.log.Debug(msg, schedulerArgs(args)...)
}

func (l *gocronLogger) Error(msg string, args ...any) {
	l.log.Error(msg, schedulerArgs(args)...)
}

func (l *gocronLogger) Info(msg string, args ...any) {
	l.log.Info(msg, schedulerArgs(args)...)
}

func (l *gocronLogger) Warn(msg string, args ...any) {
	l.log.Warn(msg, schedulerArgs(args)...)
}

// schedulerArgs tags error values reported by gocron with the scheduling code.
func schedulerArgs(args []any) []any {
	out := make([]any, 0, len(args))
	for i, arg := range args {
		err, ok := arg.(error)
		if !ok || i == 0 || args[i-1] != "error" {
			out = append(out, arg)
			continue
		}

		msg := "scheduler error"
		if errors.Is(err, gocron.ErrJobNotFound) {
			msg = "scheduled job not found"
		}
		out = append(out, errs.NewSchedulingError(msg, err))
	}
	return out
}
