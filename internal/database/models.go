package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rumdood/Moneo-sub002/internal/chat"
)

// entryRow is the conversation_entries row shape.
type entryRow struct {
	ID             uuid.UUID `db:"id"`
	ConversationID int64     `db:"conversation_id"`
	UserID         int64     `db:"user_id"`
	Username       string    `db:"username"`
	FirstName      string    `db:"first_name"`
	LastName       string    `db:"last_name"`
	Message        string    `db:"message"`
	Direction      string    `db:"direction"`
	Timestamp      time.Time `db:"timestamp"`
}

func rowFromEntry(e *chat.ConversationEntry) entryRow {
	return entryRow{
		ID:             e.ID,
		ConversationID: e.ConversationID,
		UserID:         e.ForUser.ID,
		Username:       e.ForUser.Username,
		FirstName:      e.ForUser.FirstName,
		LastName:       e.ForUser.LastName,
		Message:        e.Message,
		Direction:      e.Direction.String(),
		Timestamp:      e.Timestamp.UTC(),
	}
}

func (r entryRow) toEntry() (chat.ConversationEntry, error) {
	var direction chat.Direction
	if err := direction.UnmarshalText([]byte(r.Direction)); err != nil {
		return chat.ConversationEntry{}, fmt.Errorf("entry %s: %w", r.ID, err)
	}
	return chat.ConversationEntry{
		ID:             r.ID,
		ConversationID: r.ConversationID,
		ForUser: chat.User{
			ID:        r.UserID,
			Username:  r.Username,
			FirstName: r.FirstName,
			LastName:  r.LastName,
		},
		Message:   r.Message,
		Direction: direction,
		Timestamp: r.Timestamp.UTC(),
	}, nil
}
