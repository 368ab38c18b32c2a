package chat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rumdood/Moneo-sub002/internal/chat"
)

func TestNewTextMessage(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		conversationID int64
		text           string
		opts           []chat.TextOption
		wantErr        bool
		wantIsError    bool
	}{
		{name: "plain text defaults to non-error", conversationID: 42, text: "hello"},
		{name: "error option", conversationID: 42, text: "boom", opts: []chat.TextOption{chat.WithError()}, wantIsError: true},
		{name: "error flag false", conversationID: 42, text: "ok", opts: []chat.TextOption{chat.WithErrorFlag(false)}},
		{name: "negative group chat id", conversationID: -100123, text: "hi group"},
		{name: "zero conversation id", conversationID: 0, text: "hello", wantErr: true},
		{name: "empty text", conversationID: 42, text: "", wantErr: true},
		{name: "blank text", conversationID: 42, text: " \n\t ", wantErr: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			msg, err := chat.NewTextMessage(tc.conversationID, tc.text, tc.opts...)
			if tc.wantErr {
				require.ErrorIs(t, err, chat.ErrInvalidMessage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.conversationID, msg.ConversationID())
			assert.Equal(t, tc.text, msg.Text())
			assert.Equal(t, tc.wantIsError, msg.IsError())
			assert.Equal(t, chat.ResponseText, msg.Kind())
		})
	}
}

func TestNewGifMessage(t *testing.T) {
	t.Parallel()

	msg, err := chat.NewGifMessage(7, " https://media.example.com/party.gif ")
	require.NoError(t, err)
	assert.Equal(t, int64(7), msg.ConversationID())
	assert.Equal(t, "https://media.example.com/party.gif", msg.GifURL())
	assert.Equal(t, chat.ResponseAnimation, msg.Kind())

	for _, bad := range []string{"", "not a url", "party.gif"} {
		_, err := chat.NewGifMessage(7, bad)
		assert.ErrorIs(t, err, chat.ErrInvalidMessage, "url %q", bad)
	}

	_, err = chat.NewGifMessage(0, "https://media.example.com/party.gif")
	assert.ErrorIs(t, err, chat.ErrInvalidMessage)
}

func TestNewMenuMessage(t *testing.T) {
	t.Parallel()

	options := []string{"Done", " Skip ", "Snooze"}
	msg, err := chat.NewMenuMessage(9, "What now?", options)
	require.NoError(t, err)
	assert.Equal(t, "What now?", msg.Text())
	assert.Equal(t, []string{"Done", "Skip", "Snooze"}, msg.MenuOptions())
	assert.Equal(t, chat.ResponseMenu, msg.Kind())

	got := msg.MenuOptions()
	got[0] = "mutated"
	options[0] = "mutated"
	assert.Equal(t, "Done", msg.MenuOptions()[0])

	_, err = chat.NewMenuMessage(9, "What now?", nil)
	assert.ErrorIs(t, err, chat.ErrInvalidMessage)

	_, err = chat.NewMenuMessage(9, "What now?", []string{"Done", "  "})
	assert.ErrorIs(t, err, chat.ErrInvalidMessage)

	_, err = chat.NewMenuMessage(9, "", []string{"Done"})
	assert.ErrorIs(t, err, chat.ErrInvalidMessage)
}

func TestSummary(t *testing.T) {
	t.Parallel()

	text, _ := chat.NewTextMessage(1, "hi")
	gif, _ := chat.NewGifMessage(1, "https://example.com/a.gif")
	menu, _ := chat.NewMenuMessage(1, "Pick", []string{"A", "B"})

	assert.Equal(t, "hi", chat.Summary(text))
	assert.Equal(t, "https://example.com/a.gif", chat.Summary(gif))
	assert.Equal(t, "Pick [A | B]", chat.Summary(menu))
}

func TestUserDisplayName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "@ada", chat.User{ID: 1, FirstName: "Ada", Username: "ada"}.DisplayName())
	assert.Equal(t, "Ada Lovelace", chat.User{ID: 1, FirstName: "Ada", LastName: "Lovelace"}.DisplayName())
	assert.Equal(t, "Ada", chat.User{ID: 1, FirstName: "Ada"}.DisplayName())
}

func TestNewConversationEntry(t *testing.T) {
	t.Parallel()

	user := chat.User{ID: 5, Username: "sam"}
	a := chat.NewConversationEntry(11, user, "remind me", chat.DirectionInbound)
	b := chat.NewConversationEntry(11, user, "sure", chat.DirectionOutbound)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, int64(11), a.ConversationID)
	assert.Equal(t, user, a.ForUser)
	assert.Equal(t, chat.DirectionInbound, a.Direction)
	assert.Equal(t, chat.DirectionOutbound, b.Direction)
	assert.False(t, a.Timestamp.IsZero())
}
