package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/rumdood/Moneo-sub002/internal/chat"
	"github.com/rumdood/Moneo-sub002/internal/telegram"
	"github.com/rumdood/Moneo-sub002/internal/text"
)

const (
	journalTimeout = 5 * time.Second
	sinkTimeout    = 30 * time.Second
	replyTimeout   = 10 * time.Second
)

type inboundHandler struct {
	deps HandlerDeps
}

// NewInboundHandler creates the default handler. It normalizes and journals every
// text message, hands it to the inbound sink and turns sink failures into error replies.
func NewInboundHandler(deps HandlerDeps) bot.HandlerFunc {
	return inboundHandler{deps}.Handle
}

func (h inboundHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "inbound")

	msg := update.Message
	if msg == nil || msg.From == nil {
		log.DebugContext(ctx, "Ignoring update without message", "update_id", update.ID)
		return
	}
	body := text.Normalize(msg.Text)
	if body == "" {
		log.DebugContext(ctx, "Ignoring message without text", "update_id", update.ID, "chat_id", msg.Chat.ID)
		return
	}

	in := chat.InboundMessage{
		ConversationID: msg.Chat.ID,
		From:           telegram.UserFromModel(msg.From),
		Text:           body,
		ReceivedAt:     time.Unix(int64(msg.Date), 0).UTC(),
	}
	if msg.Date == 0 {
		in.ReceivedAt = time.Now().UTC()
	}

	if h.deps.Journal != nil {
		jCtx, cancel := context.WithTimeout(ctx, journalTimeout)
		entry := chat.NewConversationEntry(in.ConversationID, in.From, in.Text, chat.DirectionInbound)
		entry.Timestamp = in.ReceivedAt
		if err := h.deps.Journal.SaveEntry(jCtx, &entry); err != nil {
			log.WarnContext(ctx, "Failed to journal inbound message", "chat_id", in.ConversationID, "error", err)
		}
		cancel()
	}

	sCtx, cancel := context.WithTimeout(ctx, sinkTimeout)
	err := h.deps.Sink.HandleInbound(sCtx, in)
	cancel()
	if err == nil {
		return
	}

	var formatErr *chat.UserMessageFormatError
	if errors.As(err, &formatErr) {
		log.InfoContext(ctx, "Inbound message rejected", "chat_id", in.ConversationID, "reason", formatErr.Message())
	} else {
		log.ErrorContext(ctx, "Failed to handle inbound message", "chat_id", in.ConversationID, "error", err)
	}

	reply, replyErr := chat.ErrorReply(in.ConversationID, err, h.deps.Config.DetailedErrors())
	if replyErr != nil {
		log.ErrorContext(ctx, "Failed to build error reply", "chat_id", in.ConversationID, "error", replyErr)
		return
	}

	rCtx, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()
	if sendErr := h.deps.Replier.Send(rCtx, reply); sendErr != nil {
		log.ErrorContext(ctx, "Failed to send error reply", "chat_id", in.ConversationID, "error", sendErr)
	}
}
