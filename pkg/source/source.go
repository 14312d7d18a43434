package source

import (
	"fmt"
	"os"
	"sync"
)

// ContentSource provides file content from a specific source.
type ContentSource interface {
	// Read returns the content of the file at path.
	Read(path string) ([]byte, error)
}

// FilesystemSource reads files from the local filesystem.
type FilesystemSource struct{}

// NewFilesystem creates a source that reads from the filesystem.
func NewFilesystem() *FilesystemSource {
	return &FilesystemSource{}
}

// Read implements ContentSource.
func (f *FilesystemSource) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// MapSource serves file content from an in-memory map. Useful for tests
// and for analyzing content that never touches disk.
// It is safe for concurrent use by multiple goroutines.
type MapSource struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMap creates a source backed by the given path-to-content map.
func NewMap(files map[string][]byte) *MapSource {
	m := make(map[string][]byte, len(files))
	for k, v := range files {
		m[k] = v
	}
	return &MapSource{files: m}
}

// Set adds or replaces the content for path.
func (m *MapSource) Set(path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = content
}

// Read implements ContentSource.
func (m *MapSource) Read(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("no content for %s: %w", path, os.ErrNotExist)
	}
	return content, nil
}
