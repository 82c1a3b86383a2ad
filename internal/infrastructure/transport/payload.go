// Package transport holds the wire types and stream writer shared by the
// net/http server and the gin router.
package transport

import (
	"errors"

	"github.com/hansgunawan/portfolio/internal/domain/entities"
	"github.com/hansgunawan/portfolio/internal/domain/usecases"
)

// User-facing messages.
const (
	MsgMethodNotAllowed = "Method not allowed"
	MsgInvalidBody      = "Invalid request body"
	MsgMessageRequired  = "Message is required"
	MsgContactSent      = "Thank you for your message! I'll get back to you soon."
	MsgContactInvalid   = "Validation failed"
	MsgContactFailed    = "Failed to send message. Please try again later."
)

// ChatPayload is the POST /api/chat body.
type ChatPayload struct {
	Message string        `json:"message"`
	History []HistoryItem `json:"history"`
}

// HistoryItem is one prior turn. Clients send the text as parts (Gemini
// style) or content (OpenAI style); parts wins when both are set.
type HistoryItem struct {
	Role    string `json:"role"`
	Parts   string `json:"parts,omitempty"`
	Content string `json:"content,omitempty"`
}

// ToRequest converts the payload into a domain request.
func (p ChatPayload) ToRequest() *entities.ChatRequest {
	req := &entities.ChatRequest{
		Message: p.Message,
		History: make([]entities.Turn, 0, len(p.History)),
	}
	for _, h := range p.History {
		text := h.Parts
		if text == "" {
			text = h.Content
		}
		req.History = append(req.History, entities.Turn{
			Role: entities.ParseRole(h.Role),
			Text: text,
		})
	}
	return req
}

// ErrorResponse is the body of every pre-stream failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ContextResponse is the GET /api/context body.
type ContextResponse struct {
	Context string `json:"context"`
}

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
}

// ContactResponse is the POST /api/contact body.
type ContactResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Errors  []entities.FieldError `json:"errors,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// InvalidContactBody is the response to a contact body that is missing, is
// not JSON, or has wrongly typed fields. It has the validation failure shape
// so clients can branch on success alone.
func InvalidContactBody() (int, ContactResponse) {
	return 400, ContactResponse{
		Message: MsgContactInvalid,
		Errors:  []entities.FieldError{{Field: "body", Message: MsgInvalidBody}},
	}
}

// ContactOutcome maps a submission result to a status code and body.
func ContactOutcome(err error) (int, ContactResponse) {
	if err == nil {
		return 200, ContactResponse{Success: true, Message: MsgContactSent}
	}

	var verr *usecases.ValidationError
	if errors.As(err, &verr) {
		return 400, ContactResponse{Message: MsgContactInvalid, Errors: verr.Fields}
	}
	return 500, ContactResponse{Message: MsgContactFailed, Error: err.Error()}
}
