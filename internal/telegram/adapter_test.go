package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rumdood/Moneo-sub002/internal/chat"
	"github.com/rumdood/Moneo-sub002/internal/resilience"
)

type fakeBotAPI struct {
	mu          sync.Mutex
	messages    []*bot.SendMessageParams
	animations  []*bot.SendAnimationParams
	setWebhooks []*bot.SetWebhookParams
	deleted     []*bot.DeleteWebhookParams
	sendErr     error
	flaky       int
	throttled   int
	attempts    int
	webhookOK   bool
}

var errFlaky = errors.New("connection reset by peer")

func (f *fakeBotAPI) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	if f.throttled > 0 {
		f.throttled--
		return nil, &bot.TooManyRequestsError{Message: "too many requests", RetryAfter: 3600}
	}
	if f.flaky > 0 {
		f.flaky--
		return nil, errFlaky
	}
	f.messages = append(f.messages, params)
	return &models.Message{ID: len(f.messages)}, nil
}

func (f *fakeBotAPI) SendAnimation(_ context.Context, params *bot.SendAnimationParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.animations = append(f.animations, params)
	return &models.Message{ID: len(f.animations)}, nil
}

func (f *fakeBotAPI) SetWebhook(_ context.Context, params *bot.SetWebhookParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setWebhooks = append(f.setWebhooks, params)
	return f.webhookOK, nil
}

func (f *fakeBotAPI) DeleteWebhook(_ context.Context, params *bot.DeleteWebhookParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, params)
	return f.webhookOK, nil
}

type memoryJournal struct {
	mu      sync.Mutex
	entries []chat.ConversationEntry
}

func (j *memoryJournal) SaveEntry(_ context.Context, entry *chat.ConversationEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, *entry)
	return nil
}

func TestTextParams(t *testing.T) {
	t.Parallel()

	plain, err := chat.NewTextMessage(12, "Task added")
	require.NoError(t, err)
	params := TextParams(plain)
	assert.Equal(t, int64(12), params.ChatID)
	assert.Equal(t, "Task added", params.Text)
	assert.IsType(t, &models.ReplyKeyboardRemove{}, params.ReplyMarkup)

	errMsg, err := chat.NewTextMessage(12, "Unknown task", chat.WithError())
	require.NoError(t, err)
	assert.Equal(t, "❌ Unknown task", TextParams(errMsg).Text)

	long, err := chat.NewTextMessage(12, strings.Repeat("é", maxMessageLength+10))
	require.NoError(t, err)
	assert.Len(t, []rune(TextParams(long).Text), maxMessageLength)
}

func TestGifParams(t *testing.T) {
	t.Parallel()

	gif, err := chat.NewGifMessage(-55, "https://example.com/cheer.gif")
	require.NoError(t, err)

	params := GifParams(gif)
	assert.Equal(t, int64(-55), params.ChatID)
	file, ok := params.Animation.(*models.InputFileString)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/cheer.gif", file.Data)
}

func TestMenuParams(t *testing.T) {
	t.Parallel()

	menu, err := chat.NewMenuMessage(3, "Which task?", []string{"Water plants", "Feed cat"})
	require.NoError(t, err)

	params := MenuParams(menu)
	assert.Equal(t, "Which task?", params.Text)
	markup, ok := params.ReplyMarkup.(*models.ReplyKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, markup.Keyboard, 2)
	assert.Equal(t, "Water plants", markup.Keyboard[0][0].Text)
	assert.Equal(t, "Feed cat", markup.Keyboard[1][0].Text)
	assert.True(t, markup.OneTimeKeyboard)
}

func TestAdapterSend(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	api := &fakeBotAPI{}
	journal := &memoryJournal{}
	adapter := NewAdapter(api, journal, AdapterConfig{}, nil)

	text, _ := chat.NewTextMessage(1, "hello")
	gif, _ := chat.NewGifMessage(1, "https://example.com/a.gif")
	menu, _ := chat.NewMenuMessage(1, "Pick", []string{"A"})

	require.NoError(t, adapter.Send(ctx, text))
	require.NoError(t, adapter.Send(ctx, gif))
	require.NoError(t, adapter.Send(ctx, menu))

	assert.Len(t, api.messages, 2)
	assert.Len(t, api.animations, 1)
	require.Len(t, journal.entries, 3)
	for _, e := range journal.entries {
		assert.Equal(t, chat.DirectionOutbound, e.Direction)
		assert.Equal(t, int64(1), e.ConversationID)
	}
	assert.Equal(t, "Pick [A]", journal.entries[2].Message)

	assert.ErrorIs(t, adapter.Send(ctx, nil), chat.ErrInvalidMessage)
}

func TestAdapterSendFailureIsNotJournaled(t *testing.T) {
	t.Parallel()

	sendErr := errors.New("bad request: chat not found")
	api := &fakeBotAPI{sendErr: sendErr}
	journal := &memoryJournal{}
	adapter := NewAdapter(api, journal, AdapterConfig{}, nil)

	text, _ := chat.NewTextMessage(404, "hello")
	err := adapter.Send(context.Background(), text)
	require.ErrorIs(t, err, sendErr)
	assert.Empty(t, journal.entries)
}

func TestAdapterSendRetries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	retry := resilience.RetryConfig{MaxAttempts: 3, InitialInterval: time.Millisecond}

	t.Run("transient failures are retried", func(t *testing.T) {
		t.Parallel()
		api := &fakeBotAPI{flaky: 2}
		adapter := NewAdapter(api, nil, AdapterConfig{Retry: retry}, nil)

		text, _ := chat.NewTextMessage(1, "hello")
		require.NoError(t, adapter.Send(ctx, text))
		assert.Equal(t, 3, api.attempts)
		assert.Len(t, api.messages, 1)
	})

	t.Run("permanent failures are not retried", func(t *testing.T) {
		t.Parallel()
		api := &fakeBotAPI{sendErr: fmt.Errorf("%w, chat not found", bot.ErrorBadRequest)}
		adapter := NewAdapter(api, nil, AdapterConfig{Retry: retry}, nil)

		text, _ := chat.NewTextMessage(1, "hello")
		assert.ErrorIs(t, adapter.Send(ctx, text), bot.ErrorBadRequest)
		assert.Equal(t, 1, api.attempts)
	})

	t.Run("open breaker short-circuits", func(t *testing.T) {
		t.Parallel()
		api := &fakeBotAPI{sendErr: errFlaky}
		breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name: "telegram", MaxFailures: 1, OpenTimeout: time.Hour, IsFailure: func(err error) bool { return !IsPermanent(err) },
		})
		adapter := NewAdapter(api, nil, AdapterConfig{Retry: retry, Breaker: breaker}, nil)

		text, _ := chat.NewTextMessage(1, "hello")
		assert.ErrorIs(t, adapter.Send(ctx, text), resilience.ErrCircuitOpen)
		assert.Equal(t, 1, api.attempts)
		assert.ErrorIs(t, adapter.Send(ctx, text), resilience.ErrCircuitOpen)
		assert.Equal(t, 1, api.attempts)
	})
}

func TestRetryAfter(t *testing.T) {
	t.Parallel()

	throttled := &bot.TooManyRequestsError{Message: "too many requests", RetryAfter: 3}
	assert.Equal(t, 3*time.Second, RetryAfter(throttled))
	assert.Equal(t, 3*time.Second, RetryAfter(fmt.Errorf("send: %w", throttled)))
	assert.Zero(t, RetryAfter(&bot.TooManyRequestsError{Message: "too many requests"}))
	assert.Zero(t, RetryAfter(errFlaky))
	assert.Zero(t, RetryAfter(nil))
	assert.False(t, IsPermanent(throttled))
}

func TestAdapterSendHonorsRetryAfter(t *testing.T) {
	t.Parallel()

	api := &fakeBotAPI{throttled: 1}
	adapter := NewAdapter(api, nil, AdapterConfig{Retry: resilience.RetryConfig{
		MaxAttempts:     2,
		InitialInterval: time.Hour,
		MaxInterval:     time.Hour,
		RetryAfter: func(err error) time.Duration {
			if RetryAfter(err) > 0 {
				return time.Millisecond
			}
			return 0
		},
	}}, nil)

	text, _ := chat.NewTextMessage(1, "hello")
	done := make(chan error, 1)
	go func() { done <- adapter.Send(context.Background(), text) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("send waited on backoff instead of the requested retry_after")
	}
	assert.Equal(t, 2, api.attempts)
	assert.Len(t, api.messages, 1)
}

func TestAdapterWebhookLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	api := &fakeBotAPI{webhookOK: true}
	adapter := NewAdapter(api, nil, AdapterConfig{
		WebhookURL:           "https://bot.example.com/api/receive",
		CallbackToken:        "secret",
		MasterConversationID: 777,
	}, nil)

	require.NoError(t, adapter.StartReceiving(ctx, ""))
	require.Len(t, api.setWebhooks, 1)
	assert.Equal(t, "https://bot.example.com/api/receive", api.setWebhooks[0].URL)
	assert.Equal(t, "secret", api.setWebhooks[0].SecretToken)

	require.Len(t, api.messages, 1)
	assert.Equal(t, int64(777), api.messages[0].ChatID)
	assert.Equal(t, startedNotice, api.messages[0].Text)

	require.NoError(t, adapter.StartReceiving(ctx, "https://other.example.com/hook"))
	assert.Equal(t, "https://other.example.com/hook", api.setWebhooks[1].URL)

	require.NoError(t, adapter.StopReceiving(ctx))
	assert.Len(t, api.deleted, 1)
}

func TestAdapterWebhookErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	noURL := NewAdapter(&fakeBotAPI{webhookOK: true}, nil, AdapterConfig{}, nil)
	assert.Error(t, noURL.StartReceiving(ctx, ""))

	refused := NewAdapter(&fakeBotAPI{webhookOK: false}, nil, AdapterConfig{WebhookURL: "https://x.example.com"}, nil)
	assert.Error(t, refused.StartReceiving(ctx, ""))
	assert.Error(t, refused.StopReceiving(ctx))
}

func TestUserFromModel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, chat.User{}, UserFromModel(nil))
	assert.Equal(t,
		chat.User{ID: 8, FirstName: "Lin", LastName: "Wu", Username: "lwu"},
		UserFromModel(&models.User{ID: 8, FirstName: "Lin", LastName: "Wu", Username: "lwu"}))
}

func TestNewTelegramBotRequiresToken(t *testing.T) {
	t.Parallel()

	_, err := NewTelegramBot("", "", nil)
	assert.Error(t, err)

	b, err := NewTelegramBot("123456:TEST-TOKEN", "secret", nil, bot.WithSkipGetMe())
	require.NoError(t, err)
	assert.NotNil(t, b)
}
