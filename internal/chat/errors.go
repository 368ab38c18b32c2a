package chat

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMessage is returned when an outbound message fails construction checks.
	ErrInvalidMessage = errors.New("invalid outbound message")
	// ErrInvalidResult is returned when a command result combines fields that do not fit its response type.
	ErrInvalidResult = errors.New("invalid command result")
	// ErrNoResponse is returned when a result with ResponseNone is asked for an outbound message.
	ErrNoResponse = errors.New("command result has no response")
)

// genericErrorText is shown to users when detailed errors are disabled.
const genericErrorText = "Something went wrong while handling your request. Please try again later."

// UserMessageFormatError signals that text from a user did not parse into a recognized command.
type UserMessageFormatError struct {
	message string
	err     error
}

// NewUserMessageFormatError returns a UserMessageFormatError with no cause.
func NewUserMessageFormatError(message string) *UserMessageFormatError {
	return &UserMessageFormatError{message: message}
}

// WrapUserMessageFormatError returns a UserMessageFormatError wrapping cause.
func WrapUserMessageFormatError(message string, cause error) *UserMessageFormatError {
	return &UserMessageFormatError{message: message, err: cause}
}

func (e *UserMessageFormatError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}
	return e.message
}

// Message returns the human-readable message without the cause.
func (e *UserMessageFormatError) Message() string {
	return e.message
}

func (e *UserMessageFormatError) Unwrap() error {
	return e.err
}

// TaskManagementError signals that an operation against the task service failed.
type TaskManagementError struct {
	message string
	err     error
}

// NewTaskManagementError returns a TaskManagementError with no cause.
func NewTaskManagementError(message string) *TaskManagementError {
	return &TaskManagementError{message: message}
}

// WrapTaskManagementError returns a TaskManagementError wrapping cause.
func WrapTaskManagementError(message string, cause error) *TaskManagementError {
	return &TaskManagementError{message: message, err: cause}
}

func (e *TaskManagementError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}
	return e.message
}

// Message returns the human-readable message without the cause.
func (e *TaskManagementError) Message() string {
	return e.message
}

func (e *TaskManagementError) Unwrap() error {
	return e.err
}

// ErrorReply turns err into an error-tagged text message for the conversation.
//
// A UserMessageFormatError is always reported with its own message, since it
// describes what the user typed. Anything else is reported with a generic
// notice unless detailed is set, in which case the full error chain is shown.
func ErrorReply(conversationID int64, err error, detailed bool) (TextMessage, error) {
	if err == nil {
		return TextMessage{}, fmt.Errorf("%w: no error to report", ErrInvalidMessage)
	}

	text := genericErrorText
	var formatErr *UserMessageFormatError
	switch {
	case errors.As(err, &formatErr) && !detailed:
		text = formatErr.Message()
	case detailed:
		text = err.Error()
	}

	return NewTextMessage(conversationID, text, WithError())
}
