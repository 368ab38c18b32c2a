package chat

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Outbound is any message the adapter can deliver to a conversation.
type Outbound interface {
	ConversationID() int64
	Kind() ResponseType
}

// TextMessage is a plain-text reply. Error notices are flagged so the adapter can style them.
type TextMessage struct {
	conversationID int64
	text           string
	isError        bool
}

// TextOption customizes a TextMessage at construction.
type TextOption func(*TextMessage)

// WithError marks the message as an error notice.
func WithError() TextOption {
	return func(m *TextMessage) {
		m.isError = true
	}
}

// WithErrorFlag sets the error flag from a boolean, for callers decoding it off the wire.
func WithErrorFlag(isError bool) TextOption {
	return func(m *TextMessage) {
		m.isError = isError
	}
}

type textParams struct {
	ConversationID int64  `validate:"ne=0"`
	Text           string `validate:"required"`
}

// NewTextMessage builds a TextMessage. The conversation ID must be non-zero and the text non-blank.
func NewTextMessage(conversationID int64, text string, opts ...TextOption) (TextMessage, error) {
	if err := validate.Struct(textParams{ConversationID: conversationID, Text: strings.TrimSpace(text)}); err != nil {
		return TextMessage{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	m := TextMessage{conversationID: conversationID, text: text}
	for _, opt := range opts {
		opt(&m)
	}
	return m, nil
}

func (m TextMessage) ConversationID() int64 { return m.conversationID }
func (m TextMessage) Kind() ResponseType    { return ResponseText }
func (m TextMessage) Text() string          { return m.text }
func (m TextMessage) IsError() bool         { return m.isError }

// GifMessage is an animated-media reply referenced by URL.
type GifMessage struct {
	conversationID int64
	gifURL         string
}

type gifParams struct {
	ConversationID int64  `validate:"ne=0"`
	GifURL         string `validate:"required,url"`
}

// NewGifMessage builds a GifMessage. The URL must be absolute.
func NewGifMessage(conversationID int64, gifURL string) (GifMessage, error) {
	gifURL = strings.TrimSpace(gifURL)
	if err := validate.Struct(gifParams{ConversationID: conversationID, GifURL: gifURL}); err != nil {
		return GifMessage{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return GifMessage{conversationID: conversationID, gifURL: gifURL}, nil
}

func (m GifMessage) ConversationID() int64 { return m.conversationID }
func (m GifMessage) Kind() ResponseType    { return ResponseAnimation }
func (m GifMessage) GifURL() string        { return m.gifURL }

// MenuMessage is a prompt followed by an ordered list of selectable options.
type MenuMessage struct {
	conversationID int64
	text           string
	menuOptions    []string
}

type menuParams struct {
	ConversationID int64    `validate:"ne=0"`
	Text           string   `validate:"required"`
	MenuOptions    []string `validate:"min=1,dive,required"`
}

// NewMenuMessage builds a MenuMessage. Options are trimmed and kept in the given order;
// at least one option is required and none may be blank.
func NewMenuMessage(conversationID int64, text string, menuOptions []string) (MenuMessage, error) {
	options := make([]string, len(menuOptions))
	for i, opt := range menuOptions {
		options[i] = strings.TrimSpace(opt)
	}

	params := menuParams{ConversationID: conversationID, Text: strings.TrimSpace(text), MenuOptions: options}
	if err := validate.Struct(params); err != nil {
		return MenuMessage{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return MenuMessage{conversationID: conversationID, text: text, menuOptions: options}, nil
}

func (m MenuMessage) ConversationID() int64 { return m.conversationID }
func (m MenuMessage) Kind() ResponseType    { return ResponseMenu }
func (m MenuMessage) Text() string          { return m.text }

// MenuOptions returns a copy of the options so the message stays immutable.
func (m MenuMessage) MenuOptions() []string {
	return slices.Clone(m.menuOptions)
}
