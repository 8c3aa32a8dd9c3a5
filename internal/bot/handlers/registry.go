package handlers

import (
	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/notebot/internal/delivery"
	"github.com/edgard/notebot/internal/telegram"
)

// RegisterAllCommands initializes and returns a map of all available bot
// commands and callbacks. Free text goes to the default handler instead, see
// DefaultHandler.
func RegisterAllCommands(deps HandlerDeps) map[string]telegram.RegisteredHandler {
	handlers := make(map[string]telegram.RegisteredHandler)

	handlers["/start"] = telegram.RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "start",
		Handler:     NewStartHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}
	handlers["/help"] = telegram.RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "help",
		Handler:     NewHelpHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}
	handlers[delivery.DismissCallbackData] = telegram.RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     delivery.DismissCallbackData,
		Handler:     NewDismissHandler(deps),
		MatchType:   tgbot.MatchTypeExact,
	}

	return handlers
}

// DefaultHandler is the note handler behind the allow-list check.
func DefaultHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return telegram.ApplyMiddleware(NewNoteHandler(deps), []tgbot.Middleware{AuthorizedOnly(deps)})
}

// Commands is the command menu published to Telegram.
func Commands(deps HandlerDeps) []models.BotCommand {
	return []models.BotCommand{
		{Command: "start", Description: deps.Config.Messages.CmdStart},
		{Command: "help", Description: deps.Config.Messages.CmdHelp},
	}
}
