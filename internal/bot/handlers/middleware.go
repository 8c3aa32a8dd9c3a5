// Package handlers contains Telegram bot command and message handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/notebot/internal/errs"
	"github.com/edgard/notebot/internal/telegram"
)

// AuthorizedOnly creates a middleware that lets through only senders on the
// allow-list. Anyone else gets the "not authorized" reply and the update stops here.
func AuthorizedOnly(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			if !authorize(ctx, deps, bot, update) {
				return
			}
			next(ctx, bot, update)
		}
	}
}

// authorize reports whether the update may proceed. Updates without sender
// information are let through; handlers ignore what they cannot use.
func authorize(ctx context.Context, deps HandlerDeps, m telegram.Messenger, update *models.Update) bool {
	switch {
	case update.Message != nil && update.Message.From != nil:
		userID := update.Message.From.ID
		if deps.Gate.IsAuthorized(userID) {
			return true
		}

		chatID := update.Message.Chat.ID
		log := deps.Logger.With("middleware", "AuthorizedOnly")
		log.WarnContext(ctx, "Unauthorized access attempt",
			"user_id", userID,
			"chat_id", chatID,
			"error", errs.NewAuthorizationError(userID))

		_, err := m.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID: chatID,
			Text:   deps.Config.Messages.NotAuthorized,
		})
		if err != nil {
			log.ErrorContext(ctx, "Failed to send unauthorized message", "error", err, "chat_id", chatID)
		}
		return false

	case update.CallbackQuery != nil:
		userID := update.CallbackQuery.From.ID
		if deps.Gate.IsAuthorized(userID) {
			return true
		}

		log := deps.Logger.With("middleware", "AuthorizedOnly")
		log.WarnContext(ctx, "Unauthorized callback query", "user_id", userID)

		_, err := m.AnswerCallbackQuery(ctx, &tgbot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
			Text:            deps.Config.Messages.NotAuthorized,
		})
		if err != nil {
			log.DebugContext(ctx, "Failed to answer unauthorized callback", "error", err)
		}
		return false
	}

	return true
}
