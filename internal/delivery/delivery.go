// Package delivery sends one randomly chosen note to every recipient.
package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/notebot/internal/config"
	"github.com/edgard/notebot/internal/errs"
	"github.com/edgard/notebot/internal/logger"
	"github.com/edgard/notebot/internal/notes"
	"github.com/edgard/notebot/internal/telegram"
)

// DismissCallbackData is carried by the button attached to every delivered note.
const DismissCallbackData = "delete_note"

// Result counts the recipients of one delivery.
type Result struct {
	Sent   int
	Failed int
}

// Options configures a Service.
type Options struct {
	Store      notes.Store
	Messenger  telegram.Messenger
	Recipients []int64
	Messages   config.MessagesConfig
	Logger     *slog.Logger

	// Pick returns an index in [0, n). Defaults to rand.IntN.
	Pick func(n int) int
}

// Service picks a note and sends it to the recipients.
type Service struct {
	store      notes.Store
	messenger  telegram.Messenger
	recipients []int64
	messages   config.MessagesConfig
	pick       func(n int) int
	logger     *slog.Logger
}

// New creates a delivery service.
func New(opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	pick := opts.Pick
	if pick == nil {
		pick = rand.IntN
	}
	return &Service{
		store:      opts.Store,
		messenger:  opts.Messenger,
		recipients: append([]int64(nil), opts.Recipients...),
		messages:   opts.Messages,
		pick:       pick,
		logger:     log.With("component", "delivery"),
	}
}

// Deliver sends one uniformly chosen note to every recipient. An empty ledger
// is a no-op. Only a ledger read failure is returned; per-recipient send
// failures are logged and counted in the result.
func (s *Service) Deliver(ctx context.Context) (Result, error) {
	all, err := s.store.ListAll(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(all) == 0 {
		s.logger.InfoContext(ctx, "No notes stored, skipping delivery")
		return Result{}, nil
	}

	note := all[s.pick(len(all))]
	text := s.Render(note)
	markup := s.dismissMarkup()

	var res Result
	for _, chatID := range s.recipients {
		_, err := s.messenger.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        text,
			ReplyMarkup: markup,
		})
		if err != nil {
			res.Failed++
			derr := errs.NewDeliveryError(fmt.Sprintf("failed to send random note to %d", chatID), err)
			s.logger.ErrorContext(ctx, "Failed to send random note", "chat_id", chatID, "error", derr)
			continue
		}
		res.Sent++
	}

	s.logger.InfoContext(ctx, "Random note delivered",
		"notes", len(all),
		"sent", res.Sent,
		"failed", res.Failed)
	return res, nil
}

// Render formats note with the configured random note template.
func (s *Service) Render(note notes.Note) string {
	return fmt.Sprintf(s.messages.RandomNoteFormat, note.Text, note.SavedAtString())
}

func (s *Service) dismissMarkup() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: s.messages.DismissButton, CallbackData: DismissCallbackData}},
		},
	}
}
