package handlers

import (
	"context"
	"log/slog"

	"github.com/rumdood/Moneo-sub002/internal/chat"
	"github.com/rumdood/Moneo-sub002/internal/config"
	"github.com/rumdood/Moneo-sub002/internal/database"
)

// InboundSink receives every text message users send to the bot. The
// conversation orchestrator implements it; returning a
// chat.UserMessageFormatError makes the bot reply with that message.
type InboundSink interface {
	HandleInbound(ctx context.Context, msg chat.InboundMessage) error
}

// Replier delivers outbound messages.
type Replier interface {
	Send(ctx context.Context, msg chat.Outbound) error
}

// HandlerDeps provides dependencies for Telegram update handlers.
type HandlerDeps struct {
	Logger *slog.Logger
	Config *config.Config
	// Journal may be nil; inbound messages are then not recorded and the
	// journal commands reply that the journal is disabled.
	Journal database.Store
	Sink    InboundSink
	Replier Replier
}

// ReplierFunc adapts a function to the Replier interface.
type ReplierFunc func(ctx context.Context, msg chat.Outbound) error

// Send calls f(ctx, msg).
func (f ReplierFunc) Send(ctx context.Context, msg chat.Outbound) error {
	return f(ctx, msg)
}
