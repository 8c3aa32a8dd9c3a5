// Package logger provides structured logging for notebot.
// It builds slog loggers with configurable level and format, optionally
// tee'd into a size-rotated log file.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/edgard/notebot/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ParseLevel maps a configured level name to a slog level, defaulting to info.
func ParseLevel(levelStr string) slog.Level {
	switch levelStr {
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

// NewLogger creates a logger writing to stdout and, when cfg.File is set, to a
// rotating file. The returned closer releases the file and is always non-nil.
func NewLogger(cfg config.LoggerConfig) (*slog.Logger, io.Closer) {
	var out io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}

	if cfg.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		out = io.MultiWriter(os.Stdout, rotating)
		closer = rotating
	}

	return New(out, cfg.Level, cfg.JSON), closer
}

// New creates a logger writing to w.
func New(w io.Writer, levelStr string, jsonOutput bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(levelStr),
	}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Middleware logs every incoming update and the time spent handling it.
// Note text is truncated so that captured notes do not end up in logs in full.
func Middleware(log *slog.Logger) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			startTime := time.Now()
			logEntry := log.With(UpdateAttrs(update)...)

			logEntry.DebugContext(ctx, "Processing update")

			next(ctx, b, update)

			logEntry.InfoContext(ctx, "Finished processing update", "duration", time.Since(startTime))
		}
	}
}

// UpdateAttrs extracts loggable identifiers from an update.
func UpdateAttrs(update *models.Update) []any {
	attrs := []any{"update_id", update.ID}

	switch {
	case update.Message != nil:
		attrs = append(attrs,
			"update_type", "message",
			"message_id", update.Message.ID,
			"chat_id", update.Message.Chat.ID,
			"text_preview", truncateString(update.Message.Text, 20),
		)
		if update.Message.From != nil {
			attrs = append(attrs, "user_id", update.Message.From.ID)
		}
	case update.CallbackQuery != nil:
		attrs = append(attrs,
			"update_type", "callback_query",
			"callback_query_id", update.CallbackQuery.ID,
			"user_id", update.CallbackQuery.From.ID,
			"data", update.CallbackQuery.Data,
		)
		if msg := update.CallbackQuery.Message.Message; msg != nil {
			attrs = append(attrs, "chat_id", msg.Chat.ID, "message_accessible", true)
		} else if msg := update.CallbackQuery.Message.InaccessibleMessage; msg != nil {
			attrs = append(attrs, "chat_id", msg.Chat.ID, "message_accessible", false)
		}
	default:
		attrs = append(attrs, "update_type", "other")
	}

	return attrs
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(r[:maxLen-3]) + "..."
}
