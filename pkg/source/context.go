package source

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/zeebo/blake3"

	"github.com/arborlint/arbor/pkg/parser"
)

// FileContext carries everything one analysis pass needs for a file:
// raw content, split lines, the parsed tree, and the detected language.
// A file that failed to parse still gets a context with ParseErr set so
// downstream consumers can decide how to degrade.
type FileContext struct {
	Path     string
	Language parser.Language
	Source   []byte
	Lines    []string
	Tree     *sitter.Tree
	Hash     string
	ParseErr error
}

// Root returns the root AST node, or nil when parsing failed.
func (fc *FileContext) Root() *sitter.Node {
	if fc.Tree == nil {
		return nil
	}
	return fc.Tree.RootNode()
}

// Text extracts the source text for a node.
func (fc *FileContext) Text(node *sitter.Node) string {
	return parser.GetNodeText(node, fc.Source)
}

// Cache memoizes FileContexts by cleaned path so every file is read and
// parsed at most once per cache lifetime, no matter how many delegates
// or repeated runs ask for it. Safe for concurrent use.
type Cache struct {
	src     ContentSource
	mu      sync.Mutex
	entries map[string]*cacheEntry
	parses  atomic.Int64
}

type cacheEntry struct {
	once sync.Once
	fc   *FileContext
}

// NewCache creates a cache backed by the given content source.
func NewCache(src ContentSource) *Cache {
	if src == nil {
		src = NewFilesystem()
	}
	return &Cache{
		src:     src,
		entries: make(map[string]*cacheEntry),
	}
}

// Context returns the memoized FileContext for path, loading and parsing
// it on first use. The returned error mirrors the context's ParseErr so
// callers can treat load failures as per-file skips.
func (c *Cache) Context(path string) (*FileContext, error) {
	key := filepath.Clean(path)

	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &cacheEntry{}
		c.entries[key] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		e.fc = c.load(key)
	})
	return e.fc, e.fc.ParseErr
}

// Invalidate drops the memoized context for path, forcing a re-parse on
// the next Context call.
func (c *Cache) Invalidate(path string) {
	key := filepath.Clean(path)
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the number of memoized contexts.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Parses returns how many parse operations the cache has performed.
func (c *Cache) Parses() int64 {
	return c.parses.Load()
}

func (c *Cache) load(path string) *FileContext {
	fc := &FileContext{Path: path, Language: parser.DetectLanguage(path)}

	content, err := c.src.Read(path)
	if err != nil {
		fc.ParseErr = fmt.Errorf("failed to read %s: %w", path, err)
		return fc
	}
	fc.Source = content
	fc.Lines = strings.Split(string(content), "\n")

	sum := blake3.Sum256(content)
	fc.Hash = fmt.Sprintf("%x", sum[:16])

	if fc.Language == parser.LangUnknown {
		fc.ParseErr = fmt.Errorf("unsupported language for file: %s", path)
		return fc
	}

	p := parser.New()
	defer p.Close()

	c.parses.Add(1)
	result, err := p.Parse(content, fc.Language, path)
	if err != nil {
		fc.ParseErr = err
		return fc
	}
	fc.Tree = result.Tree
	return fc
}
