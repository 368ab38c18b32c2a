package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/rumdood/Moneo-sub002/internal/chat"
)

const (
	historyLimit     = 10
	historyTimeout   = 10 * time.Second
	historyEmptyText = "Nothing has been journaled for this conversation yet."

	historyDisabledText = "The conversation journal is not enabled."
)

// NewHistoryHandler returns a handler for the /history command, which replies with the
// newest journal entries of the current conversation.
func NewHistoryHandler(deps HandlerDeps) bot.HandlerFunc {
	return historyHandler{deps}.Handle
}

type historyHandler struct {
	deps HandlerDeps
}

func (h historyHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "history")
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	var (
		entries []chat.ConversationEntry
		err     error
	)
	if h.deps.Journal != nil {
		timeoutCtx, cancel := context.WithTimeout(ctx, historyTimeout)
		entries, err = h.deps.Journal.RecentEntries(timeoutCtx, chatID, historyLimit)
		cancel()
	}

	var reply chat.TextMessage
	switch {
	case h.deps.Journal == nil:
		reply, err = chat.NewTextMessage(chatID, historyDisabledText)
	case err != nil:
		log.ErrorContext(ctx, "Failed to load journal", "chat_id", chatID, "error", err)
		reply, err = chat.ErrorReply(chatID, err, h.deps.Config.DetailedErrors())
	case len(entries) == 0:
		reply, err = chat.NewTextMessage(chatID, historyEmptyText)
	default:
		reply, err = chat.NewTextMessage(chatID, formatHistory(entries))
	}
	if err == nil {
		err = h.deps.Replier.Send(ctx, reply)
	}
	if err != nil {
		log.ErrorContext(ctx, "Failed to send history", "chat_id", chatID, "error", err)
	}
}

func formatHistory(entries []chat.ConversationEntry) string {
	var sb strings.Builder
	for i, e := range entries {
		if i > 0 {
			sb.WriteByte('\n')
		}
		who := "Moneo"
		if e.Direction == chat.DirectionInbound {
			who = e.ForUser.DisplayName()
		}
		fmt.Fprintf(&sb, "[%s] %s: %s", e.Timestamp.UTC().Format("2006-01-02 15:04"), who, e.Message)
	}
	return sb.String()
}
