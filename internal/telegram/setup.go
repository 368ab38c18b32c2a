// Package telegram is the Telegram side of the chat adapter: it builds the
// go-telegram/bot client, renders outbound contracts into Bot API calls, and
// turns the webhook on and off.
package telegram

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
)

// NewTelegramBot creates a new Telegram bot instance using the go-telegram/bot library.
// When callbackToken is set, webhook deliveries without the matching secret header are rejected.
func NewTelegramBot(token, callbackToken string, logger *slog.Logger, opts ...bot.Option) (*bot.Bot, error) {
	if token == "" {
		return nil, errors.New("telegram bot token cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "telegram_bot")

	allOpts := []bot.Option{
		bot.WithErrorsHandler(func(err error) {
			log.Error("Telegram bot error", "error", err)
		}),
	}
	if callbackToken != "" {
		allOpts = append(allOpts, bot.WithWebhookSecretToken(callbackToken))
	}
	allOpts = append(allOpts, opts...)

	b, err := bot.New(token, allOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot instance", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	log.Info("Telegram bot instance created successfully", "token_prefix", tokenPrefix(token))
	return b, nil
}

func tokenPrefix(token string) string {
	if len(token) <= 8 {
		return "..."
	}
	return token[:8] + "..."
}
