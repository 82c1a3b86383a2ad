// Package http provides the HTTP server infrastructure.
// Clean Architecture: Framework/driver layer - outermost circle.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/hansgunawan/portfolio/internal/domain/entities"
	"github.com/hansgunawan/portfolio/internal/infrastructure/transport"
)

// Options configures the listener.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration // per-frame deadline on chat streams
	StaticDir    string
}

// Server is the standalone HTTP server for the chat, context and contact API.
type Server struct {
	services transport.Services
	opts     Options
}

// NewServer creates a new HTTP server.
func NewServer(services transport.Services, opts Options) *Server {
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 15 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 30 * time.Second
	}
	return &Server{services: services, opts: opts}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/context", s.handleContext)
	mux.HandleFunc("/api/contact", s.handleContact)
	mux.HandleFunc("/health", s.handleHealth)

	if s.opts.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.opts.StaticDir)))
	}

	return corsMiddleware(loggingMiddleware(mux))
}

// httpServer has no server-wide WriteTimeout: it would cut chat streams
// mid-answer. Streams get a per-frame deadline of opts.WriteTimeout instead.
func (s *Server) httpServer() *http.Server {
	return &http.Server{
		Addr:        s.opts.Addr,
		Handler:     s.Handler(),
		ReadTimeout: s.opts.ReadTimeout,
	}
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := s.httpServer()

	log.Printf("[INFO] portfolio server starting on %s (provider %s)", s.opts.Addr, s.services.Relay.Provider())

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleChat streams a chat answer as server-sent events.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	// An empty body is a missing message, not a malformed one.
	var payload transport.ChatPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		transport.WriteJSON(w, http.StatusBadRequest, transport.ErrorResponse{Error: transport.MsgInvalidBody})
		return
	}

	req := payload.ToRequest()
	if err := s.services.Relay.Validate(req); err != nil {
		transport.WriteJSON(w, http.StatusBadRequest, transport.ErrorResponse{Error: transport.MsgMessageRequired})
		return
	}

	transport.StreamChat(w, r, s.services.Relay, req, s.opts.WriteTimeout)
}

// handleContext returns the assembled context document.
func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	doc, err := s.services.Context.Context(r.Context())
	if err != nil {
		transport.WriteJSON(w, http.StatusInternalServerError, transport.ErrorResponse{Error: err.Error()})
		return
	}
	transport.WriteJSON(w, http.StatusOK, transport.ContextResponse{Context: doc})
}

// handleContact validates and delivers a contact form submission.
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var in entities.ContactInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		status, body := transport.InvalidContactBody()
		transport.WriteJSON(w, status, body)
		return
	}

	_, err := s.services.Contact.Submit(r.Context(), in)
	status, body := transport.ContactOutcome(err)
	if status == http.StatusInternalServerError {
		log.Printf("[contact] delivery failed: %v", err)
	}
	transport.WriteJSON(w, status, body)
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	transport.WriteJSON(w, http.StatusOK, s.services.Health())
}

func methodNotAllowed(w http.ResponseWriter) {
	transport.WriteJSON(w, http.StatusMethodNotAllowed, transport.ErrorResponse{Error: transport.MsgMethodNotAllowed})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
