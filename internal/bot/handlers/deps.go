package handlers

import (
	"log/slog"

	"github.com/edgard/notebot/internal/auth"
	"github.com/edgard/notebot/internal/config"
	"github.com/edgard/notebot/internal/notes"
	"github.com/edgard/notebot/internal/telegram"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger  *slog.Logger
	Config  *config.Config
	Store   notes.Store
	Gate    *auth.Gate
	Sweeper *telegram.Sweeper
}
