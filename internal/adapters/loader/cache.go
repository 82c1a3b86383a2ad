package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// cacheFile is the on-disk shape of a pre-built context document.
type cacheFile struct {
	Context string `json:"context"`
}

// WriteCache stores doc at path as {"context": "..."}, indented by two spaces.
// The parent directory is created when missing.
func WriteCache(path, doc string) error {
	data, err := json.MarshalIndent(cacheFile{Context: doc}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	return os.Rename(tmp, path)
}

// ReadCache loads a document written by WriteCache.
func ReadCache(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return "", fmt.Errorf("parsing cache file %s: %w", path, err)
	}
	return cf.Context, nil
}

// StaticSource implements ports.ContextSource from a cache file.
// The first successful read is kept for the life of the process; a missing
// or unreadable file is retried on the next call.
type StaticSource struct {
	path string

	mu  sync.Mutex
	doc string
	ok  bool
}

// NewStaticSource creates a source over the cache file at path.
func NewStaticSource(path string) *StaticSource {
	return &StaticSource{path: path}
}

// Context returns the cached document.
func (s *StaticSource) Context(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ok {
		return s.doc, nil
	}

	doc, err := ReadCache(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("context cache %s not found, run build-context first", s.path)
	}
	if err != nil {
		return "", err
	}
	s.doc, s.ok = doc, true
	return doc, nil
}
