package usecases

import (
	"context"
	"errors"
	"sync"

	"github.com/hansgunawan/portfolio/internal/domain/entities"
	"github.com/hansgunawan/portfolio/internal/domain/ports"
)

// mockLoader implements ports.FragmentLoader over in-memory directories.
// A directory missing from both maps reads as an error.
type mockLoader struct {
	markdown map[string][]ports.Fragment
	names    map[string][]string
	calls    int
}

func (m *mockLoader) LoadMarkdown(ctx context.Context, dir string) ([]ports.Fragment, error) {
	m.calls++
	frags, ok := m.markdown[dir]
	if !ok {
		return nil, errors.New("no such directory: " + dir)
	}
	return frags, nil
}

func (m *mockLoader) ListNames(ctx context.Context, dir, ext string) ([]string, error) {
	m.calls++
	names, ok := m.names[dir]
	if !ok {
		return nil, errors.New("no such directory: " + dir)
	}
	return names, nil
}

// mockSource implements ports.ContextSource.
type mockSource struct {
	doc   string
	err   error
	calls int
}

func (m *mockSource) Context(ctx context.Context) (string, error) {
	m.calls++
	return m.doc, m.err
}

// mockProvider implements ports.ChatProvider with scripted tokens.
type mockProvider struct {
	tokens   []ports.StreamToken
	startErr error
	hang     bool // keep the channel open after the scripted tokens

	mu    sync.Mutex
	calls int
	conv  entities.Conversation
	ctx   context.Context
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) StreamChat(ctx context.Context, conv entities.Conversation) (<-chan ports.StreamToken, error) {
	m.mu.Lock()
	m.calls++
	m.conv = conv
	m.ctx = ctx
	m.mu.Unlock()

	if m.startErr != nil {
		return nil, m.startErr
	}

	ch := make(chan ports.StreamToken)
	go func() {
		defer close(ch)
		for _, tok := range m.tokens {
			select {
			case ch <- tok:
			case <-ctx.Done():
				return
			}
		}
		if m.hang {
			<-ctx.Done()
		}
	}()
	return ch, nil
}

func (m *mockProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// recorder collects emitted events.
type recorder struct {
	events  []entities.StreamEvent
	failAt  int // fail the Nth emit (1-based); 0 never fails
	written int
}

func (r *recorder) emit(ev entities.StreamEvent) error {
	r.written++
	if r.failAt > 0 && r.written >= r.failAt {
		return errors.New("broken pipe")
	}
	r.events = append(r.events, ev)
	return nil
}

// mockStore implements ports.ContactStore.
type mockStore struct {
	created []entities.ContactMessage
	err     error
}

func (m *mockStore) Create(ctx context.Context, msg entities.ContactMessage) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, msg)
	return nil
}

func (m *mockStore) Get(ctx context.Context, id string) (entities.ContactMessage, bool, error) {
	for _, msg := range m.created {
		if msg.ID == id {
			return msg, true, nil
		}
	}
	return entities.ContactMessage{}, false, nil
}

// mockMailer implements ports.Mailer.
type mockMailer struct {
	sent []entities.ContactMessage
	err  error
}

func (m *mockMailer) Send(ctx context.Context, msg entities.ContactMessage) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

// mockWatcher implements ports.FileWatcher with a caller-driven channel.
type mockWatcher struct {
	events  chan ports.FileEvent
	dirs    []string
	stopped bool
}

func (m *mockWatcher) Watch(ctx context.Context, dirs ...string) (<-chan ports.FileEvent, error) {
	m.dirs = dirs
	return m.events, nil
}

func (m *mockWatcher) Stop() error {
	m.stopped = true
	return nil
}
