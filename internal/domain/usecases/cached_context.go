package usecases

import (
	"context"
	"log"
	"sync"

	"github.com/hansgunawan/portfolio/internal/domain/ports"
)

// CachedContext builds the document once per process and serves it until a
// watched source file changes.
type CachedContext struct {
	assembler *ContextAssembler
	watcher   ports.FileWatcher
	persist   func(doc string) error

	mu    sync.RWMutex
	doc   string
	valid bool
}

// NewCachedContext wraps an assembler. watcher may be nil, in which case
// the document is only rebuilt on explicit Invalidate.
func NewCachedContext(assembler *ContextAssembler, watcher ports.FileWatcher) *CachedContext {
	return &CachedContext{
		assembler: assembler,
		watcher:   watcher,
	}
}

// OnBuild registers a hook run after every rebuild, e.g. to write the
// document to a cache file. Errors are logged.
func (c *CachedContext) OnBuild(fn func(doc string) error) {
	c.mu.Lock()
	c.persist = fn
	c.mu.Unlock()
}

// Context implements ports.ContextSource.
func (c *CachedContext) Context(ctx context.Context) (string, error) {
	c.mu.RLock()
	if c.valid {
		doc := c.doc
		c.mu.RUnlock()
		return doc, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid {
		return c.doc, nil
	}

	doc, err := c.assembler.Context(ctx)
	if err != nil {
		return "", err
	}
	c.doc = doc
	c.valid = true

	if c.persist != nil {
		if err := c.persist(doc); err != nil {
			log.Printf("[context] persist cache warning: %v", err)
		}
	}
	return doc, nil
}

// Invalidate drops the cached document; the next Context call rebuilds it.
func (c *CachedContext) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.mu.Unlock()
}

// Run watches the assembler's source directories and invalidates the cache
// on every change. It blocks until ctx is done.
func (c *CachedContext) Run(ctx context.Context) error {
	if c.watcher == nil {
		<-ctx.Done()
		return nil
	}

	events, err := c.watcher.Watch(ctx, c.assembler.Dirs()...)
	if err != nil {
		return err
	}
	defer c.watcher.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			log.Printf("[context] source changed: %s", ev.Path)
			c.Invalidate()
		}
	}
}
