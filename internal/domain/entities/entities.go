// Package entities contains core business entities.
// These are pure domain objects with no external dependencies.
package entities

import (
	"encoding/json"
	"errors"
	"time"
)

// Role identifies the speaker of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole normalizes the role names used by the different chat clients.
// "model" is the Gemini spelling of assistant. Anything unknown is user.
func ParseRole(s string) Role {
	switch s {
	case "assistant", "model":
		return RoleAssistant
	default:
		return RoleUser
	}
}

// Turn is one message of a conversation.
type Turn struct {
	Role Role
	Text string
}

// ChatRequest is a new message plus the transcript the caller kept so far.
// The server holds no conversation state; History must be resent every time.
type ChatRequest struct {
	Message string
	History []Turn
}

// Conversation is the full payload handed to a chat provider:
// a persona instruction plus the ordered turns.
type Conversation struct {
	System string
	Turns  []Turn
}

// StreamEventKind discriminates StreamEvent.
type StreamEventKind int

const (
	EventChunk StreamEventKind = iota
	EventDone
	EventError
)

// StreamEvent is the wire unit of relay progress.
// Done and Error are terminal; exactly one of them ends every stream.
type StreamEvent struct {
	Kind StreamEventKind
	Text string
}

// Chunk is a partial text event.
func Chunk(text string) StreamEvent { return StreamEvent{Kind: EventChunk, Text: text} }

// Done is the successful terminal event.
func Done() StreamEvent { return StreamEvent{Kind: EventDone} }

// StreamError is the failed terminal event.
func StreamError(msg string) StreamEvent { return StreamEvent{Kind: EventError, Text: msg} }

// Terminal reports whether the event ends the stream.
func (e StreamEvent) Terminal() bool {
	return e.Kind == EventDone || e.Kind == EventError
}

type streamEventJSON struct {
	Chunk *string `json:"chunk,omitempty"`
	Done  bool    `json:"done,omitempty"`
	Error *string `json:"error,omitempty"`
}

// MarshalJSON renders {"chunk":...}, {"done":true} or {"error":...}.
func (e StreamEvent) MarshalJSON() ([]byte, error) {
	var out streamEventJSON
	switch e.Kind {
	case EventChunk:
		out.Chunk = &e.Text
	case EventDone:
		out.Done = true
	case EventError:
		out.Error = &e.Text
	default:
		return nil, errors.New("unknown stream event kind")
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON; used by stream clients.
func (e *StreamEvent) UnmarshalJSON(data []byte) error {
	var in streamEventJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch {
	case in.Error != nil:
		*e = StreamError(*in.Error)
	case in.Done:
		*e = Done()
	case in.Chunk != nil:
		*e = Chunk(*in.Chunk)
	default:
		return errors.New("empty stream event")
	}
	return nil
}

// ContactInput is an unvalidated contact form submission.
// Character limits are counted in runes.
type ContactInput struct {
	Name    string `json:"name" validate:"min=1,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"min=10,max=1000"`
}

// ContactMessage is an accepted submission.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// FieldError describes one failed contact field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
