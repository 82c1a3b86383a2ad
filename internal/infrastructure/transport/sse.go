package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/hansgunawan/portfolio/internal/domain/entities"
	"github.com/hansgunawan/portfolio/internal/domain/usecases"
)

// SSEWriter frames stream events as server-sent events.
type SSEWriter struct {
	w            http.ResponseWriter
	flusher      http.Flusher
	rc           *http.ResponseController
	frameTimeout time.Duration
}

// NewSSEWriter wraps w. It fails when w cannot flush.
// A positive frameTimeout bounds each write, not the whole stream.
func NewSSEWriter(w http.ResponseWriter, frameTimeout time.Duration) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.New("streaming not supported")
	}
	return &SSEWriter{
		w:            w,
		flusher:      flusher,
		rc:           http.NewResponseController(w),
		frameTimeout: frameTimeout,
	}, nil
}

// armDeadline bounds the next frame write. clearDeadline lifts it once the
// frame is flushed, so waiting on the provider between frames is bounded by
// the relay's idle timeout only. Writers that cannot set deadlines are left
// as they are.
func (s *SSEWriter) armDeadline() {
	if s.frameTimeout > 0 {
		s.setDeadline(time.Now().Add(s.frameTimeout))
	}
}

func (s *SSEWriter) clearDeadline() {
	if s.frameTimeout > 0 {
		s.setDeadline(time.Time{})
	}
}

func (s *SSEWriter) setDeadline(t time.Time) {
	if err := s.rc.SetWriteDeadline(t); err != nil && !errors.Is(err, http.ErrNotSupported) {
		log.Printf("[chat] set write deadline: %v", err)
	}
}

// Start writes the stream headers and flushes them.
func (s *SSEWriter) Start() {
	h := s.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("Access-Control-Allow-Origin", "*")
	s.armDeadline()
	s.w.WriteHeader(http.StatusOK)
	s.flusher.Flush()
	s.clearDeadline()
}

// Emit writes one data frame and flushes it. It satisfies usecases.EmitFunc.
func (s *SSEWriter) Emit(ev entities.StreamEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	s.armDeadline()
	defer s.clearDeadline()
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// StreamChat runs one relay over w. The request must already be validated;
// past this point every failure is reported in-band. frameTimeout is the
// per-frame write deadline; the relay's idle timeout bounds the stream.
func StreamChat(w http.ResponseWriter, r *http.Request, relay *usecases.ChatRelay, req *entities.ChatRequest, frameTimeout time.Duration) {
	sse, err := NewSSEWriter(w, frameTimeout)
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Streaming not supported"})
		return
	}
	sse.Start()

	if err := relay.Relay(r.Context(), req, sse.Emit); err != nil && r.Context().Err() != nil {
		log.Printf("[chat] client went away: %v", err)
	}
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
