// Package main contains the entrypoint for the notebot Telegram bot.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbot "github.com/go-telegram/bot"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/pflag"

	"github.com/edgard/notebot/internal/auth"
	"github.com/edgard/notebot/internal/bot"
	"github.com/edgard/notebot/internal/bot/handlers"
	"github.com/edgard/notebot/internal/bot/tasks"
	"github.com/edgard/notebot/internal/config"
	"github.com/edgard/notebot/internal/database"
	"github.com/edgard/notebot/internal/delivery"
	"github.com/edgard/notebot/internal/logger"
	"github.com/edgard/notebot/internal/notes"
	"github.com/edgard/notebot/internal/sheets"
	"github.com/edgard/notebot/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx, os.Args[1:])
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all components and returns the process exit
// code: 0 after a clean shutdown, 1 on any start-up or runtime failure.
func run(ctx context.Context, args []string) int {
	flags := pflag.NewFlagSet("notebot", pflag.ContinueOnError)
	configPath := flags.StringP("config", "c", "./config.yaml", "Path to configuration file")
	envFile := flags.String("env-file", ".env", "Path to a .env file loaded into the environment")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		slog.Error("Failed to parse flags", "error", err)
		return 1
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("Failed to load env file", "path", *envFile, "error", err)
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log, logCloser := logger.NewLogger(cfg.Logger)
	defer logCloser.Close()
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON, "file", cfg.Logger.File)

	clock := clockwork.NewRealClock()
	loc := cfg.Scheduler.Location()

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	dbStore := database.NewStore(db, log, clock, loc)

	ledger, err := openLedger(ctx, cfg, dbStore, clock, log)
	if err != nil {
		log.Error("Failed to open note ledger", "backend", cfg.Ledger.Backend, "error", err)
		return 1
	}

	gate := auth.NewGate(cfg.Telegram.UserIDs)
	sweeper := telegram.NewSweeper(clock, cfg.Notes.DeleteAfter(), log)

	hDeps := handlers.HandlerDeps{
		Logger:  log,
		Config:  cfg,
		Store:   ledger,
		Gate:    gate,
		Sweeper: sweeper,
	}
	tDeps := tasks.TaskDeps{
		Logger: log,
		Store:  dbStore,
		Config: cfg,
		Clock:  clock,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.DefaultHandler(hDeps)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}
	if err := telegram.SetCommands(ctx, tg, handlers.Commands(hDeps)); err != nil {
		log.Warn("Failed to publish bot commands", "error", err)
	}

	notifier := delivery.New(delivery.Options{
		Store:      ledger,
		Messenger:  tg,
		Recipients: gate.Recipients(),
		Messages:   cfg.Messages,
		Logger:     log,
	})
	daily, err := bot.NewRandomNoteScheduler(bot.DailyOptions{
		Clock:     clock,
		Location:  loc,
		MinHour:   cfg.Scheduler.MinHour,
		MaxHour:   cfg.Scheduler.MaxHour,
		Deliverer: notifier,
		Journal:   dbStore,
		Logger:    log,
	})
	if err != nil {
		log.Error("Failed to create random note scheduler", "error", err)
		return 1
	}

	sched, err := bot.NewScheduler(log, clock, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.NewBot(log, tg, sched, daily, sweeper)

	log.Info("Starting bot", "recipients", len(gate.Recipients()), "ledger", cfg.Ledger.Backend)
	if err := app.Run(ctx); err != nil {
		log.Error("Bot stopped due to error", "error", err)
		return 1
	}

	log.Info("Bot stopped gracefully")
	return 0
}

// openLedger returns the note store selected by ledger.backend.
func openLedger(ctx context.Context, cfg *config.Config, dbStore *database.Store, clock clockwork.Clock, log *slog.Logger) (notes.Store, error) {
	switch cfg.Ledger.Backend {
	case "sqlite":
		return dbStore, nil
	case "sheets":
		store, err := sheets.New(ctx, sheets.Options{
			SpreadsheetID:   cfg.Ledger.SpreadsheetID,
			Worksheet:       cfg.Ledger.Worksheet,
			CredentialsFile: cfg.Ledger.CredentialsFile,
			Clock:           clock,
			Location:        cfg.Scheduler.Location(),
			Logger:          log,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.Ledger.Backend)
	}
}
