package telegram

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/jonboulle/clockwork"

	"github.com/edgard/notebot/internal/logger"
)

// Sweeper deletes chat messages after a fixed delay. Deletion is best-effort:
// failures are logged at debug level and otherwise ignored. Pending deletions
// are abandoned when their context is cancelled.
type Sweeper struct {
	clock  clockwork.Clock
	delay  time.Duration
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewSweeper creates a sweeper that waits delay before deleting.
func NewSweeper(clock clockwork.Clock, delay time.Duration, log *slog.Logger) *Sweeper {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Sweeper{
		clock:  clock,
		delay:  delay,
		logger: log.With("component", "sweeper"),
	}
}

// Delay is the configured wait before deletion.
func (s *Sweeper) Delay() time.Duration {
	return s.delay
}

// Schedule deletes messageIDs from chatID once the delay has elapsed. It
// returns immediately.
func (s *Sweeper) Schedule(ctx context.Context, m Messenger, chatID int64, messageIDs ...int) {
	if len(messageIDs) == 0 {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := s.clock.NewTimer(s.delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			s.logger.Debug("Pending deletion abandoned", "chat_id", chatID, "message_ids", messageIDs)
			return
		case <-timer.Chan():
		}

		s.DeleteNow(ctx, m, chatID, messageIDs...)
	}()
}

// DeleteNow deletes the messages immediately and returns how many were removed.
func (s *Sweeper) DeleteNow(ctx context.Context, m Messenger, chatID int64, messageIDs ...int) int {
	deleted := 0
	for _, id := range messageIDs {
		ok, err := m.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: chatID, MessageID: id})
		if err != nil || !ok {
			s.logger.Debug("Message deletion failed", "chat_id", chatID, "message_id", id, "error", err)
			continue
		}
		deleted++
	}
	return deleted
}

// Wait blocks until every scheduled deletion has finished or been abandoned.
func (s *Sweeper) Wait() {
	s.wg.Wait()
}
