// Package usecases - chat.go relays a provider token stream as stream events.
package usecases

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/hansgunawan/portfolio/internal/domain/entities"
	"github.com/hansgunawan/portfolio/internal/domain/ports"
)

var (
	// ErrMessageRequired rejects a request before any stream is opened.
	ErrMessageRequired = errors.New("message is required")

	// ErrStreamIdle ends a stream whose provider stopped producing chunks.
	ErrStreamIdle = errors.New("stream idle timeout")
)

// EmitFunc writes one event to the caller. A non-nil error means the caller
// is gone and the relay must stop.
type EmitFunc func(entities.StreamEvent) error

// ChatRelay drives one streaming completion per request.
// It holds no per-request state and is safe for concurrent use.
type ChatRelay struct {
	source      ports.ContextSource
	primer      *SessionPrimer
	provider    ports.ChatProvider
	idleTimeout time.Duration
}

// NewChatRelay creates a ChatRelay. idleTimeout <= 0 disables the idle check.
func NewChatRelay(
	source ports.ContextSource,
	primer *SessionPrimer,
	provider ports.ChatProvider,
	idleTimeout time.Duration,
) *ChatRelay {
	if primer == nil {
		primer = NewSessionPrimer("", "")
	}
	return &ChatRelay{
		source:      source,
		primer:      primer,
		provider:    provider,
		idleTimeout: idleTimeout,
	}
}

// Provider returns the configured provider name.
func (r *ChatRelay) Provider() string {
	return r.provider.Name()
}

// Validate checks the request without touching context or provider.
func (r *ChatRelay) Validate(req *entities.ChatRequest) error {
	if req == nil || strings.TrimSpace(req.Message) == "" {
		return ErrMessageRequired
	}
	return nil
}

// Relay streams the answer to req through emit.
//
// Every chunk is emitted in provider order, followed by exactly one Done or
// Error event. The returned error is the one reported in the Error event, or
// the write/cancellation error when the caller went away (in which case no
// terminal event could be delivered).
func (r *ChatRelay) Relay(ctx context.Context, req *entities.ChatRequest, emit EmitFunc) error {
	if err := r.Validate(req); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	doc, err := r.source.Context(ctx)
	if err != nil {
		return r.fail(ctx, emit, fmt.Errorf("loading context: %w", err))
	}

	tokens, err := r.provider.StreamChat(ctx, r.primer.Prime(doc, req))
	if err != nil {
		return r.fail(ctx, emit, err)
	}

	var (
		idle  <-chan time.Time
		touch = func() {}
	)
	if r.idleTimeout > 0 {
		timer := time.NewTimer(r.idleTimeout)
		defer timer.Stop()
		idle = timer.C
		touch = func() { timer.Reset(r.idleTimeout) }
	}
	return r.pump(ctx, cancel, tokens, emit, idle, touch)
}

func (r *ChatRelay) pump(
	ctx context.Context,
	cancel context.CancelFunc,
	tokens <-chan ports.StreamToken,
	emit EmitFunc,
	idle <-chan time.Time,
	touch func(),
) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-idle:
			cancel()
			return r.report(emit, ErrStreamIdle)
		case tok, ok := <-tokens:
			if !ok {
				if err := ctx.Err(); err != nil {
					return err
				}
				return r.finish(emit)
			}
			if tok.Error != nil {
				return r.fail(ctx, emit, tok.Error)
			}
			if tok.Content != "" {
				if err := emit(entities.Chunk(tok.Content)); err != nil {
					return fmt.Errorf("writing chunk: %w", err)
				}
			}
			if tok.Done {
				return r.finish(emit)
			}
			touch()
		}
	}
}

func (r *ChatRelay) finish(emit EmitFunc) error {
	if err := emit(entities.Done()); err != nil {
		return fmt.Errorf("writing done: %w", err)
	}
	return nil
}

// fail reports err in-band. When ctx is already cancelled the caller is gone
// and nothing is written.
func (r *ChatRelay) fail(ctx context.Context, emit EmitFunc, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return r.report(emit, err)
}

func (r *ChatRelay) report(emit EmitFunc, err error) error {
	log.Printf("[chat] %s stream error: %v", r.provider.Name(), err)
	if werr := emit(entities.StreamError(err.Error())); werr != nil {
		return fmt.Errorf("writing error: %w", werr)
	}
	return err
}
