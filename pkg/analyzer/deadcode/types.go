package deadcode

import (
	"github.com/arborlint/arbor/pkg/engine"
	"github.com/arborlint/arbor/pkg/models"
	"github.com/arborlint/arbor/pkg/parser"
)

// Kind is the pipeline bucket for dead-code extraction results.
const Kind engine.Kind = "deadcode"

// ProjectKind selects how entry points and public API are resolved.
type ProjectKind string

const (
	ProjectAuto    ProjectKind = "auto"
	ProjectApp     ProjectKind = "app"
	ProjectLibrary ProjectKind = "library"
)

// SymbolKind classifies a collected declaration.
type SymbolKind string

const (
	SymbolClass    SymbolKind = "class"
	SymbolFunction SymbolKind = "function"
	SymbolMethod   SymbolKind = "method"
)

// Symbol is one top-level (or member) declaration collected from a file.
type Symbol struct {
	Name       string     `json:"name"`
	Kind       SymbolKind `json:"kind"`
	Line       uint32     `json:"line"`
	Owner      string     `json:"owner,omitempty"`
	Suppressed bool       `json:"-"`
}

// FileFacts is the single-pass extraction result for one file: declared
// symbols, the file-global used-identifier set, raw dependency specs in
// source order, and locally detected unused-variable issues.
type FileFacts struct {
	Path        string                 `json:"path"`
	Language    parser.Language        `json:"language"`
	Symbols     []Symbol               `json:"symbols,omitempty"`
	Used        map[string]struct{}    `json:"-"`
	Deps        []string               `json:"deps,omitempty"`
	LocalIssues []models.DeadCodeIssue `json:"local_issues,omitempty"`
	HasMain     bool                   `json:"has_main,omitempty"`
	Suppressed  bool                   `json:"suppressed,omitempty"`
}

// ResultKind implements engine.Result.
func (f *FileFacts) ResultKind() engine.Kind { return Kind }

// DependencyGraph is the resolved module graph restricted to analyzed
// files. Edge lists preserve source order with duplicates removed.
type DependencyGraph struct {
	Files []string            `json:"files"`
	Edges map[string][]string `json:"edges"`
}

// EdgeCount returns the total number of resolved edges.
func (g *DependencyGraph) EdgeCount() int {
	n := 0
	for _, to := range g.Edges {
		n += len(to)
	}
	return n
}

// Analysis is the whole-project dead-code result.
type Analysis struct {
	Issues      []models.DeadCodeIssue `json:"issues"`
	Summary     models.DeadCodeSummary `json:"summary"`
	Graph       *DependencyGraph       `json:"graph,omitempty"`
	EntryPoints []string               `json:"entry_points,omitempty"`
	Reachable   []string               `json:"reachable,omitempty"`
}
