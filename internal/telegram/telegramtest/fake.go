// Package telegramtest provides an in-memory telegram.Messenger for tests.
package telegramtest

import (
	"context"
	"errors"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// ErrSend is returned by FakeMessenger for chats listed in FailSendTo.
var ErrSend = errors.New("telegramtest: send failed")

// Deleted identifies one deleted message.
type Deleted struct {
	ChatID    int64
	MessageID int
}

// FakeMessenger records every call and assigns increasing message ids.
type FakeMessenger struct {
	mu sync.Mutex

	// FailSendTo makes SendMessage fail for these chat ids.
	FailSendTo map[int64]bool
	// DeleteErr, when set, is returned by every DeleteMessage call.
	DeleteErr error
	// AnswerErr, when set, is returned by every AnswerCallbackQuery call.
	AnswerErr error

	nextID   int
	sent     []bot.SendMessageParams
	deleted  []Deleted
	answered []string
	commands []models.BotCommand
}

func chatIDOf(v any) int64 {
	switch id := v.(type) {
	case int64:
		return id
	case int:
		return int64(id)
	default:
		return 0
	}
}

// SendMessage records params and returns a message with a fresh id.
func (f *FakeMessenger) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	chatID := chatIDOf(params.ChatID)
	if f.FailSendTo[chatID] {
		return nil, ErrSend
	}

	f.nextID++
	f.sent = append(f.sent, *params)
	return &models.Message{
		ID:   1000 + f.nextID,
		Chat: models.Chat{ID: chatID},
		Text: params.Text,
	}, nil
}

// DeleteMessage records the deletion unless DeleteErr is set.
func (f *FakeMessenger) DeleteMessage(_ context.Context, params *bot.DeleteMessageParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.DeleteErr != nil {
		return false, f.DeleteErr
	}
	f.deleted = append(f.deleted, Deleted{ChatID: chatIDOf(params.ChatID), MessageID: params.MessageID})
	return true, nil
}

// AnswerCallbackQuery records the answered query id.
func (f *FakeMessenger) AnswerCallbackQuery(_ context.Context, params *bot.AnswerCallbackQueryParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.answered = append(f.answered, params.CallbackQueryID)
	if f.AnswerErr != nil {
		return false, f.AnswerErr
	}
	return true, nil
}

// SetMyCommands records the published commands.
func (f *FakeMessenger) SetMyCommands(_ context.Context, params *bot.SetMyCommandsParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.commands = append([]models.BotCommand(nil), params.Commands...)
	return true, nil
}

// Sent returns a copy of every successful SendMessage call.
func (f *FakeMessenger) Sent() []bot.SendMessageParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bot.SendMessageParams(nil), f.sent...)
}

// DeletedMessages returns a copy of every successful deletion.
func (f *FakeMessenger) DeletedMessages() []Deleted {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Deleted(nil), f.deleted...)
}

// Answered returns the callback query ids passed to AnswerCallbackQuery.
func (f *FakeMessenger) Answered() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.answered...)
}

// Commands returns the last published command menu.
func (f *FakeMessenger) Commands() []models.BotCommand {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.BotCommand(nil), f.commands...)
}
