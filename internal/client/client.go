// Package client talks to a running portfolio server over its chat API.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hansgunawan/portfolio/internal/domain/entities"
	"github.com/hansgunawan/portfolio/internal/infrastructure/transport"
)

// ErrIncompleteStream means the server closed the stream without a
// terminal event.
var ErrIncompleteStream = errors.New("stream ended without done event")

// Client posts chat requests and decodes the event stream.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the server at baseURL.
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// Chat sends one message with the given history and calls onChunk for each
// chunk as it arrives. It returns the full answer.
func (c *Client) Chat(ctx context.Context, message string, history []transport.HistoryItem, onChunk func(string)) (string, error) {
	body, err := json.Marshal(transport.ChatPayload{Message: message, History: history})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e transport.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error != "" {
			return "", fmt.Errorf("server returned %d: %s", resp.StatusCode, e.Error)
		}
		return "", fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var answer strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var ev entities.StreamEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			continue // skip malformed frames
		}

		switch ev.Kind {
		case entities.EventChunk:
			answer.WriteString(ev.Text)
			if onChunk != nil {
				onChunk(ev.Text)
			}
		case entities.EventDone:
			return answer.String(), nil
		case entities.EventError:
			return answer.String(), errors.New(ev.Text)
		}
	}

	if err := scanner.Err(); err != nil {
		return answer.String(), err
	}
	return answer.String(), ErrIncompleteStream
}

// Session keeps a conversation transcript on the client side and resends it
// with every message.
type Session struct {
	client  *Client
	history []transport.HistoryItem
}

// NewSession starts an empty conversation.
func NewSession(c *Client) *Session {
	return &Session{client: c}
}

// Send asks one question. The exchange is added to the history only when the
// answer completed.
func (s *Session) Send(ctx context.Context, message string, onChunk func(string)) (string, error) {
	answer, err := s.client.Chat(ctx, message, s.history, onChunk)
	if err != nil {
		return answer, err
	}
	s.history = append(s.history,
		transport.HistoryItem{Role: "user", Parts: message},
		transport.HistoryItem{Role: "model", Parts: answer},
	)
	return answer, nil
}

// History returns the transcript so far.
func (s *Session) History() []transport.HistoryItem {
	return s.history
}

// Reset clears the transcript.
func (s *Session) Reset() {
	s.history = nil
}
