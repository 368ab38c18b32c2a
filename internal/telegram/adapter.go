package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/rumdood/Moneo-sub002/internal/chat"
	"github.com/rumdood/Moneo-sub002/internal/resilience"
)

// startedNotice is sent to the master conversation when the webhook is registered.
const startedNotice = "Moneo is now receiving messages."

// BotAPI is the subset of *bot.Bot the adapter calls.
type BotAPI interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendAnimation(ctx context.Context, params *bot.SendAnimationParams) (*models.Message, error)
	SetWebhook(ctx context.Context, params *bot.SetWebhookParams) (bool, error)
	DeleteWebhook(ctx context.Context, params *bot.DeleteWebhookParams) (bool, error)
}

// Journal records delivered messages.
type Journal interface {
	SaveEntry(ctx context.Context, entry *chat.ConversationEntry) error
}

// AdapterConfig holds the adapter's view of the bot client configuration.
type AdapterConfig struct {
	WebhookURL           string
	CallbackToken        string
	DropPendingUpdates   bool
	MasterConversationID int64

	// Retry controls redelivery of failed sends. The zero value sends once.
	Retry resilience.RetryConfig
	// Breaker, when set, stops calling Telegram after repeated transient failures.
	Breaker *resilience.CircuitBreaker
}

// Adapter delivers outbound contracts through the Telegram Bot API and
// controls webhook registration.
type Adapter struct {
	api     BotAPI
	journal Journal
	cfg     AdapterConfig
	logger  *slog.Logger
}

// NewAdapter creates an Adapter. journal may be nil, in which case nothing is recorded.
func NewAdapter(api BotAPI, journal Journal, cfg AdapterConfig, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		api:     api,
		journal: journal,
		cfg:     cfg,
		logger:  logger.With("component", "telegram_adapter"),
	}
}

// Send delivers msg to its conversation and journals it as an outbound entry.
func (a *Adapter) Send(ctx context.Context, msg chat.Outbound) error {
	if msg == nil {
		return fmt.Errorf("%w: nil message", chat.ErrInvalidMessage)
	}

	var call func(context.Context) error
	switch m := msg.(type) {
	case chat.TextMessage:
		call = func(ctx context.Context) error {
			_, err := a.api.SendMessage(ctx, TextParams(m))
			return err
		}
	case chat.GifMessage:
		call = func(ctx context.Context) error {
			_, err := a.api.SendAnimation(ctx, GifParams(m))
			return err
		}
	case chat.MenuMessage:
		call = func(ctx context.Context) error {
			_, err := a.api.SendMessage(ctx, MenuParams(m))
			return err
		}
	default:
		return unsupported(msg)
	}

	if err := a.deliver(ctx, call); err != nil {
		a.logger.ErrorContext(ctx, "Failed to deliver message",
			"conversation_id", msg.ConversationID(), "kind", msg.Kind(), "error", err)
		return fmt.Errorf("failed to send %s message to conversation %d: %w", msg.Kind(), msg.ConversationID(), err)
	}

	a.logger.DebugContext(ctx, "Message delivered", "conversation_id", msg.ConversationID(), "kind", msg.Kind())
	a.record(ctx, msg)
	return nil
}

// StartReceiving registers the webhook so Telegram starts pushing updates to the receive route.
// An empty webhookURL falls back to the configured one.
func (a *Adapter) StartReceiving(ctx context.Context, webhookURL string) error {
	if webhookURL == "" {
		webhookURL = a.cfg.WebhookURL
	}
	if webhookURL == "" {
		return errors.New("webhook url is not configured")
	}

	ok, err := a.api.SetWebhook(ctx, &bot.SetWebhookParams{
		URL:                webhookURL,
		SecretToken:        a.cfg.CallbackToken,
		DropPendingUpdates: a.cfg.DropPendingUpdates,
		AllowedUpdates:     []string{"message"},
	})
	if err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	if !ok {
		return errors.New("telegram refused to set webhook")
	}
	a.logger.InfoContext(ctx, "Webhook registered", "url", webhookURL)

	if a.cfg.MasterConversationID != 0 {
		notice, err := chat.NewTextMessage(a.cfg.MasterConversationID, startedNotice)
		if err == nil {
			err = a.Send(ctx, notice)
		}
		if err != nil {
			a.logger.WarnContext(ctx, "Failed to notify master conversation", "error", err)
		}
	}
	return nil
}

// StopReceiving removes the webhook. Pending updates are kept unless configured otherwise.
func (a *Adapter) StopReceiving(ctx context.Context) error {
	ok, err := a.api.DeleteWebhook(ctx, &bot.DeleteWebhookParams{
		DropPendingUpdates: a.cfg.DropPendingUpdates,
	})
	if err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}
	if !ok {
		return errors.New("telegram refused to delete webhook")
	}
	a.logger.InfoContext(ctx, "Webhook removed")
	return nil
}

// deliver runs call with the configured retry policy, each attempt guarded by the breaker.
func (a *Adapter) deliver(ctx context.Context, call func(context.Context) error) error {
	attempt := call
	if a.cfg.Breaker != nil {
		attempt = func(ctx context.Context) error {
			return a.cfg.Breaker.Execute(ctx, call)
		}
	}
	retry := a.cfg.Retry
	if retry.IsPermanent == nil {
		retry.IsPermanent = IsPermanent
	}
	if retry.RetryAfter == nil {
		retry.RetryAfter = RetryAfter
	}
	if retry.Logger == nil {
		retry.Logger = a.logger
	}
	return resilience.WithRetry(ctx, attempt, retry)
}

// RetryAfter returns the wait Telegram asked for in a 429 response, or zero.
func RetryAfter(err error) time.Duration {
	var tooMany *bot.TooManyRequestsError
	if errors.As(err, &tooMany) && tooMany.RetryAfter > 0 {
		return time.Duration(tooMany.RetryAfter) * time.Second
	}
	return 0
}

// IsPermanent reports whether a Bot API error will fail the same way on every retry.
func IsPermanent(err error) bool {
	return errors.Is(err, bot.ErrorBadRequest) ||
		errors.Is(err, bot.ErrorForbidden) ||
		errors.Is(err, bot.ErrorUnauthorized) ||
		errors.Is(err, bot.ErrorNotFound) ||
		errors.Is(err, chat.ErrInvalidMessage)
}

func (a *Adapter) record(ctx context.Context, msg chat.Outbound) {
	if a.journal == nil {
		return
	}
	entry := chat.NewConversationEntry(msg.ConversationID(), chat.User{}, chat.Summary(msg), chat.DirectionOutbound)
	if err := a.journal.SaveEntry(ctx, &entry); err != nil {
		a.logger.WarnContext(ctx, "Failed to journal outbound message",
			"conversation_id", msg.ConversationID(), "error", err)
	}
}
