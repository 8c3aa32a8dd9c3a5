// Package bot implements lifecycle management and component orchestration
// for notebot: the Telegram listener, the maintenance scheduler and the daily
// random note loop.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Listener receives Telegram updates until its context is cancelled.
// *github.com/go-telegram/bot.Bot satisfies it.
type Listener interface {
	Start(ctx context.Context)
}

// Runner is a long-running loop such as the RandomNoteScheduler.
type Runner interface {
	Run(ctx context.Context) error
}

// TaskScheduler starts and stops the cron maintenance jobs.
type TaskScheduler interface {
	Start() error
	Stop() error
}

// Drainer waits for background work started by handlers.
type Drainer interface {
	Wait()
}

// Bot represents the main bot application and manages its components' lifecycle.
type Bot struct {
	logger    *slog.Logger
	listener  Listener
	scheduler TaskScheduler
	daily     Runner
	sweeper   Drainer
}

// NewBot wires the components run by Run. sweeper may be nil.
func NewBot(logger *slog.Logger, listener Listener, scheduler TaskScheduler, daily Runner, sweeper Drainer) *Bot {
	return &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		listener:  listener,
		scheduler: scheduler,
		daily:     daily,
		sweeper:   sweeper,
	}
}

// Run starts every component and blocks until ctx is cancelled or one of them
// fails. Cancellation is a clean shutdown and returns nil.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting Telegram bot listener")
		b.listener.Start(gCtx)
		b.logger.Info("Telegram bot listener stopped")

		if gCtx.Err() == nil {
			b.logger.Warn("Telegram bot listener stopped unexpectedly without context cancellation")
			return fmt.Errorf("telegram listener stopped unexpectedly")
		}
		return nil
	})

	g.Go(func() error {
		b.logger.Info("Starting scheduler")
		if err := b.scheduler.Start(); err != nil {
			b.logger.Error("Failed to start scheduler", "error", err)
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler")

		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := b.daily.Run(gCtx); err != nil {
			return fmt.Errorf("random note scheduler failed: %w", err)
		}
		return nil
	})

	b.logger.Info("Bot orchestrator running, waiting for shutdown signal or error")
	err := g.Wait()

	if b.sweeper != nil {
		b.sweeper.Wait()
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully")
	return nil
}
