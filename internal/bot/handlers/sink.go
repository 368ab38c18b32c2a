package handlers

import (
	"context"
	"log/slog"

	"github.com/rumdood/Moneo-sub002/internal/chat"
)

// LogSink is the InboundSink used when no conversation orchestrator is attached.
// It only logs what arrived; the message itself is already journaled.
type LogSink struct {
	Logger *slog.Logger
}

// HandleInbound implements InboundSink.
func (s LogSink) HandleInbound(ctx context.Context, msg chat.InboundMessage) error {
	log := s.Logger
	if log == nil {
		log = slog.Default()
	}
	log.InfoContext(ctx, "Inbound message received",
		"component", "log_sink",
		"chat_id", msg.ConversationID,
		"user", msg.From.DisplayName(),
		"length", len(msg.Text))
	return nil
}
