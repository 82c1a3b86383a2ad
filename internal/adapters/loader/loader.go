// Package loader provides context fragment loading adapters.
package loader

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/hansgunawan/portfolio/internal/domain/ports"
)

// TextLoader implements ports.FragmentLoader over the local file system.
// Directory entries come back in file name order, as os.ReadDir sorts them.
type TextLoader struct {
	root string
}

// NewTextLoader creates a loader. Relative directories are resolved
// against root; an empty root means the working directory.
func NewTextLoader(root string) *TextLoader {
	return &TextLoader{root: root}
}

// LoadMarkdown reads every .md file directly inside dir.
func (l *TextLoader) LoadMarkdown(ctx context.Context, dir string) ([]ports.Fragment, error) {
	names, err := l.ListNames(ctx, dir, ".md")
	if err != nil {
		return nil, err
	}

	base := l.resolve(dir)
	frags := make([]ports.Fragment, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := os.ReadFile(filepath.Join(base, name))
		if err != nil {
			return nil, err
		}
		frags = append(frags, ports.Fragment{Name: name, Content: string(content)})
	}
	return frags, nil
}

// ListNames returns regular file names in dir ending with ext.
// The match is case-sensitive; an empty ext matches every file.
func (l *TextLoader) ListNames(ctx context.Context, dir, ext string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(l.resolve(dir))
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ext) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// SupportedExtensions returns file extensions the context document reads.
func (l *TextLoader) SupportedExtensions() []string {
	return []string{".md", ".pdf"}
}

func (l *TextLoader) resolve(dir string) string {
	if l.root == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(l.root, dir)
}
