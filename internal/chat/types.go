// Package chat defines the data contracts shared between the chat adapter and the
// conversation orchestrator: outbound message variants, command results,
// conversation journal entries, and the error kinds surfaced to users and callers.
package chat

import (
	"fmt"
	"strings"
)

// ResultType is the outcome of interpreting one user command.
type ResultType int

const (
	ResultError ResultType = iota
	ResultNeedMoreInfo
	ResultWorkflowCompleted
)

var resultTypeNames = map[ResultType]string{
	ResultError:             "error",
	ResultNeedMoreInfo:      "need_more_info",
	ResultWorkflowCompleted: "workflow_completed",
}

// Valid reports whether r is one of the declared result types.
func (r ResultType) Valid() bool {
	_, ok := resultTypeNames[r]
	return ok
}

func (r ResultType) String() string {
	if name, ok := resultTypeNames[r]; ok {
		return name
	}
	return fmt.Sprintf("result_type(%d)", int(r))
}

// MarshalText implements encoding.TextMarshaler.
func (r ResultType) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("unknown result type %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Matching is case-insensitive.
func (r *ResultType) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	for rt, name := range resultTypeNames {
		if name == v {
			*r = rt
			return nil
		}
	}
	return fmt.Errorf("unknown result type %q", string(text))
}

// ResponseType is the kind of reply a command result asks the adapter to send.
type ResponseType int

const (
	ResponseNone ResponseType = iota
	ResponseText
	ResponseAnimation
	ResponseMedia
	ResponseMenu
)

var responseTypeNames = map[ResponseType]string{
	ResponseNone:      "none",
	ResponseText:      "text",
	ResponseAnimation: "animation",
	ResponseMedia:     "media",
	ResponseMenu:      "menu",
}

// Valid reports whether r is one of the declared response types.
func (r ResponseType) Valid() bool {
	_, ok := responseTypeNames[r]
	return ok
}

func (r ResponseType) String() string {
	if name, ok := responseTypeNames[r]; ok {
		return name
	}
	return fmt.Sprintf("response_type(%d)", int(r))
}

// MarshalText implements encoding.TextMarshaler.
func (r ResponseType) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("unknown response type %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Matching is case-insensitive.
func (r *ResponseType) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	for rt, name := range responseTypeNames {
		if name == v {
			*r = rt
			return nil
		}
	}
	return fmt.Errorf("unknown response type %q", string(text))
}

// Direction tells whether a journaled message came from the user or from the bot.
type Direction int

const (
	DirectionInbound Direction = iota
	DirectionOutbound
)

func (d Direction) String() string {
	switch d {
	case DirectionInbound:
		return "inbound"
	case DirectionOutbound:
		return "outbound"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	if d != DirectionInbound && d != DirectionOutbound {
		return nil, fmt.Errorf("unknown direction %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "inbound":
		*d = DirectionInbound
	case "outbound":
		*d = DirectionOutbound
	default:
		return fmt.Errorf("unknown direction %q", string(text))
	}
	return nil
}
