// Package filewatcher provides file system monitoring adapters.
// Clean Architecture: Adapter implementing ports.FileWatcher.
package filewatcher

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"slices"

	"github.com/fsnotify/fsnotify"

	"github.com/hansgunawan/portfolio/internal/domain/ports"
)

// FSNotifyWatcher implements ports.FileWatcher using fsnotify.
type FSNotifyWatcher struct {
	watcher    *fsnotify.Watcher
	extensions []string // context source extensions, e.g. ".md", ".pdf"
}

// NewFSNotifyWatcher creates a new file watcher.
func NewFSNotifyWatcher(extensions []string) (*FSNotifyWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if len(extensions) == 0 {
		extensions = []string{".md", ".pdf"}
	}

	return &FSNotifyWatcher{
		watcher:    w,
		extensions: extensions,
	}, nil
}

// Watch starts monitoring the directories and emits events.
// Directories that do not exist are skipped with a warning; the context
// document omits their sections anyway.
func (w *FSNotifyWatcher) Watch(ctx context.Context, dirs ...string) (<-chan ports.FileEvent, error) {
	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			log.Printf("[watcher] skipping missing directory %s", dir)
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			return nil, err
		}
	}

	events := make(chan ports.FileEvent, 100)
	go w.forward(ctx, events)
	return events, nil
}

// forward translates fsnotify events until ctx is done or the watcher closes.
func (w *FSNotifyWatcher) forward(ctx context.Context, out chan<- ports.FileEvent) {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[watcher] error: %v", err)
		case raw, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			ev, keep := w.translate(raw)
			if !keep {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}

// translate drops events for other file types and operations.
func (w *FSNotifyWatcher) translate(raw fsnotify.Event) (ports.FileEvent, bool) {
	if !slices.Contains(w.extensions, filepath.Ext(raw.Name)) {
		return ports.FileEvent{}, false
	}
	op, ok := mapOp(raw.Op)
	if !ok {
		return ports.FileEvent{}, false
	}
	return ports.FileEvent{Path: raw.Name, Operation: op}, true
}

// Stop stops the watcher.
func (w *FSNotifyWatcher) Stop() error {
	return w.watcher.Close()
}

func mapOp(op fsnotify.Op) (ports.FileOperation, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return ports.FileCreated, true
	case op.Has(fsnotify.Write):
		return ports.FileModified, true
	case op.Has(fsnotify.Remove):
		return ports.FileDeleted, true
	case op.Has(fsnotify.Rename):
		return ports.FileRenamed, true
	default:
		return 0, false
	}
}
