package chat

import (
	"fmt"
	"slices"
	"strings"
)

// CommandResult summarizes the outcome of interpreting one user command.
//
// A result is built through NewCommandResult or one of its shortcuts and never
// changes afterwards. Only the payload fields that fit its response type are set.
type CommandResult struct {
	resultType   ResultType
	responseType ResponseType
	text         string
	menuOptions  []string
}

// NewCommandResult validates the combination of result type, response type and
// payload, then returns the result.
//
//   - ResponseNone carries no text and no options.
//   - ResponseText, ResponseAnimation and ResponseMedia carry text only
//     (a URL for the media kinds).
//   - ResponseMenu carries text and at least one option. Options are a set:
//     duplicates collapse and the first occurrence keeps its position.
//   - ResultError must respond with ResponseText.
func NewCommandResult(resultType ResultType, responseType ResponseType, text string, menuOptions ...string) (CommandResult, error) {
	if !resultType.Valid() {
		return CommandResult{}, fmt.Errorf("%w: unknown result type %d", ErrInvalidResult, int(resultType))
	}
	if !responseType.Valid() {
		return CommandResult{}, fmt.Errorf("%w: unknown response type %d", ErrInvalidResult, int(responseType))
	}
	if resultType == ResultError && responseType != ResponseText {
		return CommandResult{}, fmt.Errorf("%w: error results must respond with text, got %s", ErrInvalidResult, responseType)
	}

	hasText := strings.TrimSpace(text) != ""
	options := uniqueOptions(menuOptions)

	switch responseType {
	case ResponseNone:
		if hasText || len(options) > 0 {
			return CommandResult{}, fmt.Errorf("%w: %s response cannot carry text or options", ErrInvalidResult, responseType)
		}
	case ResponseText, ResponseAnimation, ResponseMedia:
		if !hasText {
			return CommandResult{}, fmt.Errorf("%w: %s response requires text", ErrInvalidResult, responseType)
		}
		if len(options) > 0 {
			return CommandResult{}, fmt.Errorf("%w: %s response cannot carry menu options", ErrInvalidResult, responseType)
		}
		if responseType != ResponseText {
			if err := validate.Var(strings.TrimSpace(text), "url"); err != nil {
				return CommandResult{}, fmt.Errorf("%w: %s response requires a url: %w", ErrInvalidResult, responseType, err)
			}
		}
	case ResponseMenu:
		if !hasText {
			return CommandResult{}, fmt.Errorf("%w: menu response requires a prompt", ErrInvalidResult)
		}
		if len(options) == 0 {
			return CommandResult{}, fmt.Errorf("%w: menu response requires at least one option", ErrInvalidResult)
		}
	}

	return CommandResult{
		resultType:   resultType,
		responseType: responseType,
		text:         text,
		menuOptions:  options,
	}, nil
}

// ErrorResult returns an error result whose text is shown to the user.
func ErrorResult(text string) (CommandResult, error) {
	return NewCommandResult(ResultError, ResponseText, text)
}

// NeedMoreInfo returns an intermediate result asking the user for more input.
func NeedMoreInfo(responseType ResponseType, text string, menuOptions ...string) (CommandResult, error) {
	return NewCommandResult(ResultNeedMoreInfo, responseType, text, menuOptions...)
}

// Completed returns a result that ends a workflow.
func Completed(responseType ResponseType, text string, menuOptions ...string) (CommandResult, error) {
	return NewCommandResult(ResultWorkflowCompleted, responseType, text, menuOptions...)
}

func (r CommandResult) Type() ResultType           { return r.resultType }
func (r CommandResult) ResponseType() ResponseType { return r.responseType }

// UserMessageText returns the text to show the user, if the result carries one.
func (r CommandResult) UserMessageText() (string, bool) {
	if r.responseType == ResponseNone {
		return "", false
	}
	return r.text, true
}

// MenuOptions returns a copy of the menu options, or nil for non-menu results.
func (r CommandResult) MenuOptions() []string {
	return slices.Clone(r.menuOptions)
}

// Outbound converts the result into the message variant its response type calls for.
// Media results are sent as text so the platform renders a link preview.
func (r CommandResult) Outbound(conversationID int64) (Outbound, error) {
	var (
		msg Outbound
		err error
	)
	switch r.responseType {
	case ResponseNone:
		return nil, ErrNoResponse
	case ResponseText, ResponseMedia:
		msg, err = NewTextMessage(conversationID, r.text, WithErrorFlag(r.resultType == ResultError))
	case ResponseAnimation:
		msg, err = NewGifMessage(conversationID, r.text)
	case ResponseMenu:
		msg, err = NewMenuMessage(conversationID, r.text, r.menuOptions)
	default:
		return nil, fmt.Errorf("%w: unknown response type %d", ErrInvalidResult, int(r.responseType))
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func uniqueOptions(options []string) []string {
	if len(options) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(options))
	out := make([]string, 0, len(options))
	for _, opt := range options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		if _, dup := seen[opt]; dup {
			continue
		}
		seen[opt] = struct{}{}
		out = append(out, opt)
	}
	return out
}
