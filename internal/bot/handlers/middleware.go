// Package handlers contains the Telegram update handlers, their
// registration logic and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/rumdood/Moneo-sub002/internal/chat"
)

// notAuthorizedText is sent when a restricted command is used outside the master conversation.
const notAuthorizedText = "This command is only available in the master conversation."

// IgnoreBots drops messages sent by other bots.
func IgnoreBots(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			if update.Message != nil && update.Message.From != nil && update.Message.From.IsBot {
				deps.Logger.DebugContext(ctx, "Ignoring message from bot",
					"middleware", "IgnoreBots", "user_id", update.Message.From.ID)
				return
			}
			next(ctx, b, update)
		}
	}
}

// MasterOnly lets the update through only when it comes from the configured master conversation.
// Without a master conversation every restricted command is refused.
func MasterOnly(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			if update.Message == nil {
				next(ctx, b, update)
				return
			}

			chatID := update.Message.Chat.ID
			if deps.Config.MasterConversationID == 0 || chatID != deps.Config.MasterConversationID {
				log := deps.Logger.With("middleware", "MasterOnly")
				log.WarnContext(ctx, "Unauthorized command attempt", "chat_id", chatID)

				reply, err := chat.NewTextMessage(chatID, notAuthorizedText, chat.WithError())
				if err == nil {
					err = deps.Replier.Send(ctx, reply)
				}
				if err != nil {
					log.ErrorContext(ctx, "Failed to send unauthorized message", "error", err, "chat_id", chatID)
				}
				return
			}

			next(ctx, b, update)
		}
	}
}
