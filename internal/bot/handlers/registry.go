package handlers

import (
	"errors"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler represents a command handler with its middleware.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterAllCommands returns every bot command keyed by its slash name.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	handlers["/history"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "history",
		Handler:     NewHistoryHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}
	handlers["/forget"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "forget",
		Handler:     NewForgetHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  []tgbot.Middleware{MasterOnly(deps)},
	}

	return handlers
}

// applyMiddleware wraps handler so the first middleware in mw is the outermost.
func applyMiddleware(handler tgbot.HandlerFunc, mw []tgbot.Middleware) tgbot.HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	return handler
}

// RegisterHandlers registers the given command handlers on the bot instance.
func RegisterHandlers(b *tgbot.Bot, logger *slog.Logger, registered map[string]RegisteredHandler) error {
	if b == nil {
		return errors.New("bot instance cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "handler_registry")

	for name, rh := range registered {
		if rh.Handler == nil {
			log.Warn("Skipping registration for nil handler", "command", name)
			continue
		}
		b.RegisterHandler(rh.HandlerType, rh.Pattern, rh.MatchType, applyMiddleware(rh.Handler, rh.Middleware))
		log.Debug("Registered handler", "command", name, "match_type", rh.MatchType, "middleware_count", len(rh.Middleware))
	}

	log.Info("Registered Telegram handlers", "count", len(registered))
	return nil
}
