// Package ports defines interfaces for external dependencies.
// Usecases depend on these abstractions; adapters implement them.
package ports

import (
	"context"

	"github.com/hansgunawan/portfolio/internal/domain/entities"
)

// ChatProvider streams a completion from a hosted chat model.
// Implementations must be safe for concurrent use: each call opens its own
// logical stream and the channel is closed when it ends.
type ChatProvider interface {
	// Name identifies the provider in logs and health output.
	Name() string

	// StreamChat sends the conversation and returns tokens in arrival order.
	// Cancelling ctx aborts the upstream call.
	StreamChat(ctx context.Context, conv entities.Conversation) (<-chan StreamToken, error)
}

// StreamToken represents a single chunk of a streaming response.
type StreamToken struct {
	Content string
	Done    bool
	Error   error
}

// ContextSource yields the current context document.
type ContextSource interface {
	Context(ctx context.Context) (string, error)
}

// FragmentLoader reads the raw inputs of the context document.
type FragmentLoader interface {
	// LoadMarkdown returns the .md files of dir in name order.
	LoadMarkdown(ctx context.Context, dir string) ([]Fragment, error)

	// ListNames returns the base names of files in dir with the given
	// extension, in name order.
	ListNames(ctx context.Context, dir, ext string) ([]string, error)
}

// Fragment is one named text input.
type Fragment struct {
	Name    string
	Content string
}

// ContactStore keeps accepted contact messages. Write-mostly.
type ContactStore interface {
	Create(ctx context.Context, msg entities.ContactMessage) error
	Get(ctx context.Context, id string) (entities.ContactMessage, bool, error)
}

// Mailer delivers a contact message to the site owner.
type Mailer interface {
	Send(ctx context.Context, msg entities.ContactMessage) error
}

// FileWatcher monitors directories for changes.
type FileWatcher interface {
	// Watch starts monitoring the directories and emits events.
	Watch(ctx context.Context, dirs ...string) (<-chan FileEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
	FileRenamed
)
