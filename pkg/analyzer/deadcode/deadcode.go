// Package deadcode finds unreachable files, unreferenced top-level
// symbols, and unused local variables across a source tree. Per-file
// facts come from a single AST pass; a whole-project reduce resolves
// imports into a module graph, walks it from the entry points, and
// classifies what nothing reaches or references.
package deadcode

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/arborlint/arbor/internal/fileproc"
	"github.com/arborlint/arbor/internal/semantic"
	"github.com/arborlint/arbor/pkg/analyzer"
	"github.com/arborlint/arbor/pkg/engine"
	"github.com/arborlint/arbor/pkg/models"
	"github.com/arborlint/arbor/pkg/source"
)

// Analyzer implements dead-code analysis. It plugs into the pipeline as
// a delegate and also runs standalone over a file list.
type Analyzer struct {
	root             string
	pkg              string
	srcDir           string
	kind             ProjectKind
	internalDirs     []string
	workers          int
	cache            *source.Cache
	reportUnusedVars bool
	onProgress       func()
}

var (
	_ analyzer.FileAnalyzer[*Analysis] = (*Analyzer)(nil)
	_ engine.Delegate                  = (*Analyzer)(nil)
)

// Option configures the analyzer.
type Option func(*Analyzer)

// WithRoot sets the project root used for package and source-dir
// resolution. Defaults to ".".
func WithRoot(root string) Option {
	return func(a *Analyzer) {
		a.root = root
	}
}

// WithPackage sets the package name for package-root import resolution.
func WithPackage(pkg string) Option {
	return func(a *Analyzer) {
		a.pkg = pkg
	}
}

// WithSourceDir sets the source directory under the root (default "src").
func WithSourceDir(dir string) Option {
	return func(a *Analyzer) {
		a.srcDir = dir
	}
}

// WithProjectKind sets how entry points are resolved. Auto behaves as app.
func WithProjectKind(kind ProjectKind) Option {
	return func(a *Analyzer) {
		a.kind = kind
	}
}

// WithInternalDirs sets directories under the source root whose files
// are not part of the public API (default ["internal"]).
func WithInternalDirs(dirs []string) Option {
	return func(a *Analyzer) {
		a.internalDirs = dirs
	}
}

// WithWorkers sets the parallel extraction worker count.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// WithCache shares a file-context cache with other analyzers.
func WithCache(c *source.Cache) Option {
	return func(a *Analyzer) {
		a.cache = c
	}
}

// WithUnusedVariables toggles unused-variable reporting (default on).
func WithUnusedVariables(enabled bool) Option {
	return func(a *Analyzer) {
		a.reportUnusedVars = enabled
	}
}

// WithProgress sets a callback invoked after each processed file.
func WithProgress(fn func()) Option {
	return func(a *Analyzer) {
		a.onProgress = fn
	}
}

// New creates a dead-code analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		root:             ".",
		srcDir:           "src",
		kind:             ProjectAuto,
		internalDirs:     []string{"internal"},
		reportUnusedVars: true,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.cache == nil {
		a.cache = source.NewCache(nil)
	}
	return a
}

// Kind implements engine.Delegate.
func (a *Analyzer) Kind() engine.Kind { return Kind }

// ShouldVisit implements engine.Delegate: only parseable files with a
// grammar profile participate.
func (a *Analyzer) ShouldVisit(fc *source.FileContext) bool {
	return fc.ParseErr == nil && semantic.ForLanguage(fc.Language) != nil
}

// VisitFile implements engine.Delegate.
func (a *Analyzer) VisitFile(fc *source.FileContext) (engine.Result, error) {
	return extractFacts(fc), nil
}

// Analyze runs extraction and reduce over a file list.
func (a *Analyzer) Analyze(ctx context.Context, files []string) (*Analysis, error) {
	sorted := make([]string, len(files))
	copy(sorted, files)
	sort.Strings(sorted)

	results, ok, _ := fileproc.MapOrdered(ctx, sorted, a.workers, func(_ context.Context, path string) (*FileFacts, error) {
		fc, err := a.cache.Context(path)
		if err != nil {
			return nil, err
		}
		return extractFacts(fc), nil
	}, a.onProgress)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	facts := make([]*FileFacts, 0, len(results))
	for i := range results {
		if ok[i] {
			facts = append(facts, results[i])
		}
	}
	return a.Reduce(facts), nil
}

// Close implements analyzer.FileAnalyzer.
func (a *Analyzer) Close() {}

// Reduce combines per-file facts into the whole-project analysis.
func (a *Analyzer) Reduce(facts []*FileFacts) *Analysis {
	byPath := make(map[string]*FileFacts, len(facts))
	paths := make([]string, 0, len(facts))
	for _, f := range facts {
		if f == nil {
			continue
		}
		clean := filepath.Clean(f.Path)
		if _, dup := byPath[clean]; dup {
			continue
		}
		byPath[clean] = f
		paths = append(paths, clean)
	}
	sort.Strings(paths)

	idx := make(map[string]uint32, len(paths))
	for i, p := range paths {
		idx[p] = uint32(i)
	}

	// resolve imports into the in-set module graph
	res := newResolver(a.root, a.pkg, a.srcDir, paths)
	depGraph := &DependencyGraph{Files: paths, Edges: make(map[string][]string)}
	g := simple.NewDirectedGraph()
	for i := range paths {
		g.AddNode(simple.Node(i))
	}
	for _, from := range paths {
		seen := make(map[string]struct{})
		for _, spec := range byPath[from].Deps {
			to, ok := res.resolve(from, spec)
			if !ok || to == from {
				continue
			}
			if _, dup := seen[to]; dup {
				continue
			}
			seen[to] = struct{}{}
			depGraph.Edges[from] = append(depGraph.Edges[from], to)
			g.SetEdge(g.NewEdge(simple.Node(idx[from]), simple.Node(idx[to])))
		}
	}

	entries, viaMain := a.entryPoints(paths, byPath)

	// reachability BFS; with no entry points every file is reachable
	// and the usage union spans the whole project
	reach := roaring.New()
	ranReachability := len(entries) > 0
	if ranReachability {
		bfs := traverse.BreadthFirst{}
		for _, e := range entries {
			start := idx[e]
			if reach.Contains(start) {
				continue
			}
			bfs.Walk(g, simple.Node(start), func(n graph.Node, _ int) bool {
				reach.Add(uint32(n.ID()))
				return false
			})
		}
	} else {
		reach.AddRange(0, uint64(len(paths)))
	}

	usedUnion := make(map[string]struct{})
	var reachable []string
	for _, p := range paths {
		if !reach.Contains(idx[p]) {
			continue
		}
		reachable = append(reachable, p)
		for name := range byPath[p].Used {
			usedUnion[name] = struct{}{}
		}
	}

	var issues []models.DeadCodeIssue
	for _, p := range paths {
		f := byPath[p]
		if !reach.Contains(idx[p]) {
			if !f.Suppressed {
				issues = append(issues, models.DeadCodeIssue{
					Kind: models.DeadFile,
					File: p,
					Line: 1,
					Name: filepath.Base(p),
				})
			}
			continue
		}
		if f.Suppressed {
			continue
		}

		// without a real main, a library's public surface is its API:
		// exported-looking symbols there are kept
		exemptPublic := !viaMain && a.kind == ProjectLibrary && a.isPublic(p)
		for _, s := range f.Symbols {
			if s.Suppressed || s.Kind == SymbolMethod {
				continue
			}
			if s.Kind == SymbolFunction && s.Name == "main" {
				continue
			}
			if exemptPublic {
				continue
			}
			if _, used := usedUnion[s.Name]; used {
				continue
			}
			kind := models.DeadFunction
			if s.Kind == SymbolClass {
				kind = models.DeadClass
			}
			issues = append(issues, models.DeadCodeIssue{
				Kind:  kind,
				File:  p,
				Line:  s.Line,
				Name:  s.Name,
				Owner: s.Owner,
			})
		}
		if a.reportUnusedVars {
			issues = append(issues, f.LocalIssues...)
		}
	}

	sort.Slice(issues, func(i, j int) bool { return issues[i].Less(issues[j]) })

	summary := models.NewDeadCodeSummary()
	summary.TotalFiles = len(paths)
	summary.ReachableFiles = len(reachable)
	for _, issue := range issues {
		summary.Add(issue)
	}

	return &Analysis{
		Issues:      issues,
		Summary:     summary,
		Graph:       depGraph,
		EntryPoints: entries,
		Reachable:   reachable,
	}
}

// entryPoints returns files with a main entry; for libraries without
// one, the files directly under the source root stand in. The second
// return reports whether a real main was found.
func (a *Analyzer) entryPoints(paths []string, byPath map[string]*FileFacts) ([]string, bool) {
	var entries []string
	for _, p := range paths {
		if byPath[p].HasMain {
			entries = append(entries, p)
		}
	}
	if len(entries) > 0 {
		return entries, true
	}
	if a.kind != ProjectLibrary {
		return nil, false
	}
	srcRoot := filepath.Clean(filepath.Join(a.root, a.srcDir))
	for _, p := range paths {
		if filepath.Dir(p) == srcRoot {
			entries = append(entries, p)
		}
	}
	return entries, false
}

// isPublic reports whether a file belongs to the project's public API:
// under the source root and outside every configured internal dir.
func (a *Analyzer) isPublic(path string) bool {
	srcRoot := filepath.Clean(filepath.Join(a.root, a.srcDir))
	rel, err := filepath.Rel(srcRoot, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, dir := range a.internalDirs {
		if rel == dir || strings.HasPrefix(rel, dir+"/") {
			return false
		}
	}
	return true
}
