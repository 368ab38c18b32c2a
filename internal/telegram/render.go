package telegram

import (
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/rumdood/Moneo-sub002/internal/chat"
)

// errorPrefix marks error notices so users can tell them from regular replies.
const errorPrefix = "❌ "

// maxMessageLength is Telegram's limit for a single text message.
const maxMessageLength = 4096

// TextParams renders a text reply. Text replies also dismiss any menu keyboard left open.
func TextParams(msg chat.TextMessage) *bot.SendMessageParams {
	text := msg.Text()
	if msg.IsError() {
		text = errorPrefix + text
	}
	return &bot.SendMessageParams{
		ChatID:      msg.ConversationID(),
		Text:        truncate(text),
		ReplyMarkup: &models.ReplyKeyboardRemove{RemoveKeyboard: true},
	}
}

// GifParams renders an animation reply referenced by URL.
func GifParams(msg chat.GifMessage) *bot.SendAnimationParams {
	return &bot.SendAnimationParams{
		ChatID:    msg.ConversationID(),
		Animation: &models.InputFileString{Data: msg.GifURL()},
	}
}

// MenuParams renders a prompt with one keyboard row per option.
func MenuParams(msg chat.MenuMessage) *bot.SendMessageParams {
	options := msg.MenuOptions()
	keyboard := make([][]models.KeyboardButton, 0, len(options))
	for _, opt := range options {
		keyboard = append(keyboard, []models.KeyboardButton{{Text: opt}})
	}

	return &bot.SendMessageParams{
		ChatID: msg.ConversationID(),
		Text:   truncate(msg.Text()),
		ReplyMarkup: &models.ReplyKeyboardMarkup{
			Keyboard:        keyboard,
			ResizeKeyboard:  true,
			OneTimeKeyboard: true,
		},
	}
}

// UserFromModel converts a Telegram user into the chat contract's user reference.
func UserFromModel(u *models.User) chat.User {
	if u == nil {
		return chat.User{}
	}
	return chat.User{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
	}
}

func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= maxMessageLength {
		return text
	}
	return string(runes[:maxMessageLength-1]) + "…"
}

func unsupported(msg chat.Outbound) error {
	return fmt.Errorf("%w: unsupported outbound message %T", chat.ErrInvalidMessage, msg)
}
