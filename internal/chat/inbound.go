package chat

import "time"

// InboundMessage is one text message received from a conversation, as handed to the orchestrator.
type InboundMessage struct {
	ConversationID int64
	From           User
	Text           string
	ReceivedAt     time.Time
}
