package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/notebot/internal/errs"
	"github.com/edgard/notebot/internal/telegram"
)

// NewNoteHandler returns the handler that saves free text messages as notes.
// It is meant to be the bot's default handler, behind AuthorizedOnly.
func NewNoteHandler(deps HandlerDeps) bot.HandlerFunc {
	return noteHandler{deps}.Handle
}

type noteHandler struct {
	deps HandlerDeps
}

func (h noteHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handle(ctx, b, update)
}

func (h noteHandler) handle(ctx context.Context, m telegram.Messenger, update *models.Update) {
	log := h.deps.Logger.With("handler", "note")

	msg := update.Message
	if msg == nil || msg.From == nil {
		log.DebugContext(ctx, "Ignoring update without message or sender", "update_id", update.ID)
		return
	}
	if strings.TrimSpace(msg.Text) == "" {
		log.DebugContext(ctx, "Ignoring non-text message", "chat_id", msg.Chat.ID, "message_id", msg.ID)
		return
	}
	if strings.HasPrefix(msg.Text, "/") {
		log.DebugContext(ctx, "Ignoring unknown command", "chat_id", msg.Chat.ID, "command", strings.Fields(msg.Text)[0])
		return
	}

	chatID := msg.Chat.ID
	log = log.With("chat_id", chatID, "user_id", msg.From.ID)

	if err := h.deps.Store.Append(ctx, msg.Text); err != nil {
		log.ErrorContext(ctx, "Failed to save note", "error", err, "code", errs.Code(err))
		if _, sendErr := m.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: h.deps.Config.Messages.SaveFailed}); sendErr != nil {
			log.ErrorContext(ctx, "Failed to send save failure notice", "error", sendErr)
		}
		return
	}

	toDelete := []int{msg.ID}
	reply, err := m.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: h.deps.Config.Messages.Saved})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send confirmation", "error", errs.NewDeliveryError("failed to confirm note", err))
	} else {
		toDelete = append(toDelete, reply.ID)
	}

	log.InfoContext(ctx, "Note saved", "message_id", msg.ID, "delete_after", h.deps.Sweeper.Delay())
	h.deps.Sweeper.Schedule(ctx, m, chatID, toDelete...)
}
