// Package evidence resolves claimed citation locations against a
// read-only snapshot of the artifact under review.
package evidence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Snapshot is a read-only handle to the artifact under review. No writer
// ever exists for it, so implementations need no external locking beyond
// guarding their own caches.
type Snapshot interface {
	// Lines returns the file content at a logical path, split into
	// lines. Returns ErrPathNotFound when the path is not part of the
	// snapshot.
	Lines(ctx context.Context, path string) ([]string, error)
}

// DirSnapshot serves a snapshot from a directory tree, caching file
// contents after first read.
type DirSnapshot struct {
	root string

	mu    sync.RWMutex
	cache map[string][]string
}

// NewDirSnapshot opens a directory as a snapshot. The root must exist
// and be a directory.
func NewDirSnapshot(root string) (*DirSnapshot, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSnapshotRoot, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrSnapshotRoot, root)
	}
	return &DirSnapshot{
		root:  root,
		cache: make(map[string][]string),
	}, nil
}

// Lines returns the content of the cited logical path. Paths are
// interpreted relative to the root; anything absolute or escaping the
// root is treated as not found.
func (s *DirSnapshot) Lines(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == "." || clean == ".." || filepath.IsAbs(clean) ||
		strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("%w: %q", ErrPathNotFound, path)
	}

	s.mu.RLock()
	lines, ok := s.cache[clean]
	s.mu.RUnlock()
	if ok {
		return lines, nil
	}

	data, err := os.ReadFile(filepath.Join(s.root, clean))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrPathNotFound, path)
		}
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}

	lines = splitLines(string(data))

	s.mu.Lock()
	s.cache[clean] = lines
	s.mu.Unlock()

	return lines, nil
}

// splitLines splits file content into lines without their terminators.
// A trailing newline does not produce a phantom empty last line.
func splitLines(content string) []string {
	content = strings.TrimSuffix(content, "\n")
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
