package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User identifies the person on the other side of a conversation.
type User struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
}

// DisplayName returns "@username" when known, otherwise the joined first and last names.
func (u User) DisplayName() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// ConversationEntry is the journal record of one message exchanged in a conversation.
type ConversationEntry struct {
	ID             uuid.UUID
	ConversationID int64
	ForUser        User
	Message        string
	Direction      Direction
	Timestamp      time.Time
}

// NewConversationEntry stamps a fresh ID and the current UTC time onto a journal record.
func NewConversationEntry(conversationID int64, forUser User, message string, direction Direction) ConversationEntry {
	return ConversationEntry{
		ID:             uuid.New(),
		ConversationID: conversationID,
		ForUser:        forUser,
		Message:        message,
		Direction:      direction,
		Timestamp:      time.Now().UTC(),
	}
}

// Summary returns the journal text for an outbound message.
func Summary(msg Outbound) string {
	switch m := msg.(type) {
	case TextMessage:
		return m.Text()
	case GifMessage:
		return m.GifURL()
	case MenuMessage:
		return m.Text() + " [" + strings.Join(m.menuOptions, " | ") + "]"
	default:
		return ""
	}
}
