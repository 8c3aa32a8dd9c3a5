package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/notebot/internal/telegram"
)

// NewDismissHandler returns the handler for the button attached to delivered
// notes. It answers the callback and deletes the note message.
func NewDismissHandler(deps HandlerDeps) bot.HandlerFunc {
	return dismissHandler{deps}.Handle
}

type dismissHandler struct {
	deps HandlerDeps
}

func (h dismissHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handle(ctx, b, update)
}

func (h dismissHandler) handle(ctx context.Context, m telegram.Messenger, update *models.Update) {
	log := h.deps.Logger.With("handler", "dismiss")

	cq := update.CallbackQuery
	if cq == nil {
		return
	}

	if _, err := m.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cq.ID}); err != nil {
		log.DebugContext(ctx, "Failed to answer callback query", "error", err, "callback_id", cq.ID)
	}

	chatID, messageID, ok := callbackMessage(cq)
	if !ok {
		log.DebugContext(ctx, "Callback query without a message", "callback_id", cq.ID)
		return
	}

	if h.deps.Sweeper.DeleteNow(ctx, m, chatID, messageID) == 1 {
		log.InfoContext(ctx, "Random note dismissed", "chat_id", chatID, "message_id", messageID, "user_id", cq.From.ID)
	}
}

// callbackMessage locates the message that carried the pressed button.
func callbackMessage(cq *models.CallbackQuery) (chatID int64, messageID int, ok bool) {
	switch {
	case cq.Message.Message != nil:
		return cq.Message.Message.Chat.ID, cq.Message.Message.ID, true
	case cq.Message.InaccessibleMessage != nil:
		return cq.Message.InaccessibleMessage.Chat.ID, cq.Message.InaccessibleMessage.MessageID, true
	default:
		return 0, 0, false
	}
}
