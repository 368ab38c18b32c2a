package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/rumdood/Moneo-sub002/internal/chat"
)

const (
	forgetTimeout      = 30 * time.Second
	forgetConfirmText  = "Forgot %d journal entries for conversation %d."
	forgetTimeoutText  = "Forgetting the conversation took too long. Please try again."
	forgetFailedText   = "Could not forget the conversation."
	forgetBadUsageText = "Usage: /forget [conversation id]"
)

// NewForgetHandler returns a handler for the /forget command. Without an argument it
// deletes the journal of the current conversation; "/forget <id>" targets another one.
func NewForgetHandler(deps HandlerDeps) bot.HandlerFunc {
	return forgetHandler{deps}.Handle
}

type forgetHandler struct {
	deps HandlerDeps
}

func (h forgetHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "forget")
	if update.Message == nil {
		log.ErrorContext(ctx, "Forget handler called without message", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	target, err := forgetTarget(update.Message.Text, chatID)
	if err != nil {
		h.reply(ctx, chatID, forgetBadUsageText, true)
		return
	}
	if h.deps.Journal == nil {
		h.reply(ctx, chatID, historyDisabledText, true)
		return
	}
	log.InfoContext(ctx, "Journal deletion requested", "chat_id", chatID, "target_chat_id", target)

	timeoutCtx, cancel := context.WithTimeout(ctx, forgetTimeout)
	defer cancel()

	removed, err := h.deps.Journal.DeleteConversation(timeoutCtx, target)
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		log.WarnContext(ctx, "Journal deletion timed out or was cancelled", "target_chat_id", target)
		h.reply(ctx, chatID, forgetTimeoutText, true)
	case err != nil:
		log.ErrorContext(ctx, "Failed to delete journal", "target_chat_id", target, "error", err)
		h.reply(ctx, chatID, forgetFailedText, true)
	default:
		log.InfoContext(ctx, "Journal deleted", "target_chat_id", target, "removed", removed)
		h.reply(ctx, chatID, fmt.Sprintf(forgetConfirmText, removed, target), false)
	}
}

func (h forgetHandler) reply(ctx context.Context, chatID int64, text string, isError bool) {
	msg, err := chat.NewTextMessage(chatID, text, chat.WithErrorFlag(isError))
	if err == nil {
		err = h.deps.Replier.Send(ctx, msg)
	}
	if err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send forget reply", "handler", "forget", "chat_id", chatID, "error", err)
	}
}

// forgetTarget reads the optional conversation id argument of "/forget [id]".
func forgetTarget(text string, current int64) (int64, error) {
	fields := strings.Fields(text)
	switch len(fields) {
	case 0, 1:
		return current, nil
	case 2:
		id, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil || id == 0 {
			return 0, chat.NewUserMessageFormatError("conversation id must be a non-zero integer")
		}
		return id, nil
	default:
		return 0, chat.NewUserMessageFormatError("too many arguments")
	}
}
