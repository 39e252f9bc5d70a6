package chat

import (
	"encoding/json"
	"fmt"

	"github.com/worksdev/portal/internal/api"
	perrors "github.com/worksdev/portal/internal/errors"
)

// EventType is the "type" field of a server event.
type EventType string

const (
	EventNewMessage       EventType = "new_message"
	EventPreviousMessages EventType = "previous_messages"
	EventError            EventType = "error"
)

// Event is a decoded server event. Exactly one of Message, Messages and
// Error is set, matching Type.
type Event struct {
	Type     EventType
	Message  *api.Message
	Messages []api.Message
	Error    string
}

type rawEvent struct {
	Type     EventType       `json:"type"`
	Message  json.RawMessage `json:"message"`
	Messages []api.Message   `json:"messages"`
}

// ParseEvent decodes one server frame.
func ParseEvent(data []byte) (Event, error) {
	var raw rawEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		return Event{}, fmt.Errorf("%w: %v", perrors.ErrUnexpectedResponse, err)
	}

	switch raw.Type {
	case EventNewMessage:
		var msg api.Message
		if err := json.Unmarshal(raw.Message, &msg); err != nil {
			return Event{}, fmt.Errorf("%w: new_message: %v", perrors.ErrUnexpectedResponse, err)
		}
		return Event{Type: raw.Type, Message: &msg}, nil
	case EventPreviousMessages:
		return Event{Type: raw.Type, Messages: raw.Messages}, nil
	case EventError:
		var text string
		if err := json.Unmarshal(raw.Message, &text); err != nil {
			return Event{}, fmt.Errorf("%w: error event: %v", perrors.ErrUnexpectedResponse, err)
		}
		return Event{Type: raw.Type, Error: text}, nil
	default:
		return Event{}, fmt.Errorf("%w: unknown event type %q", perrors.ErrUnexpectedResponse, raw.Type)
	}
}
