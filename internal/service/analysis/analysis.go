// Package analysis orchestrates analyzer runs for the CLI and the MCP
// server: wiring config into analyzers, sharing one parse per file
// across delegates, and caching whole-project results between runs.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/arborlint/arbor/internal/cache"
	"github.com/arborlint/arbor/internal/fileproc"
	"github.com/arborlint/arbor/pkg/analyzer/deadcode"
	"github.com/arborlint/arbor/pkg/analyzer/duplicates"
	"github.com/arborlint/arbor/pkg/analyzer/graph"
	"github.com/arborlint/arbor/pkg/config"
	"github.com/arborlint/arbor/pkg/engine"
	"github.com/arborlint/arbor/pkg/source"
)

// Service orchestrates code analysis operations.
type Service struct {
	config  *config.Config
	results *cache.Cache
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// New creates a new analysis service.
func New(opts ...Option) *Service {
	s := &Service{
		config: config.LoadOrDefault("."),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.config == nil {
		s.config = config.DefaultConfig()
	}

	results, err := cache.New(s.config.Cache.Dir, s.config.Cache.TTLDays, s.config.Cache.Enabled)
	if err != nil {
		results, _ = cache.New("", 0, false)
	}
	s.results = results

	return s
}

// DeadCodeOptions configures dead-code analysis.
type DeadCodeOptions struct {
	Root       string
	OnProgress func()
}

// DuplicatesOptions configures duplicate detection.
type DuplicatesOptions struct {
	// Thresholds overrides the config thresholds when non-nil.
	Thresholds *duplicates.Config
	OnProgress func()
}

// ProjectOptions configures a combined pipeline run.
type ProjectOptions struct {
	Root       string
	OnProgress func()
}

// ProjectAnalysis is the result of a combined pipeline run.
type ProjectAnalysis struct {
	DeadCode   *deadcode.Analysis   `json:"deadcode,omitempty"`
	Duplicates *duplicates.Analysis `json:"duplicates,omitempty"`
	// Parses counts distinct file parses; with both analyzers enabled
	// it still equals the analyzed file count.
	Parses int64                      `json:"parses"`
	Skips  *fileproc.ProcessingErrors `json:"-"`
}

// AnalyzeDeadCode runs dead-code analysis over the given files.
func (s *Service) AnalyzeDeadCode(ctx context.Context, files []string, opts DeadCodeOptions) (*deadcode.Analysis, error) {
	key := s.deadCodeKey(opts.Root)
	stamp := fileStamp(files)
	if data, ok := s.results.GetWithHash(key, stamp); ok {
		var out deadcode.Analysis
		if err := json.Unmarshal(data, &out); err == nil {
			return &out, nil
		}
	}

	a := s.deadCodeAnalyzer(opts.Root, nil, opts.OnProgress)
	out, err := a.Analyze(ctx, files)
	if err != nil {
		return nil, err
	}

	if data, merr := json.Marshal(out); merr == nil {
		_ = s.results.SetWithHash(key, stamp, data)
	}
	return out, nil
}

// AnalyzeDuplicates runs duplicate detection over the given files.
func (s *Service) AnalyzeDuplicates(ctx context.Context, files []string, opts DuplicatesOptions) (*duplicates.Analysis, error) {
	th := s.config.Duplicates.Thresholds()
	if opts.Thresholds != nil {
		th = *opts.Thresholds
	}

	key := fmt.Sprintf("duplicates|tokens=%d|lines=%d|threshold=%g", th.MinTokens, th.MinLines, th.Threshold)
	stamp := fileStamp(files)
	if data, ok := s.results.GetWithHash(key, stamp); ok {
		var out duplicates.Analysis
		if err := json.Unmarshal(data, &out); err == nil && len(out.Issues) == out.Summary.TotalPairs {
			return &out, nil
		}
	}

	dupOpts := []duplicates.Option{
		duplicates.WithConfig(th),
		duplicates.WithWorkers(s.config.Analysis.Workers),
	}
	if opts.OnProgress != nil {
		dupOpts = append(dupOpts, duplicates.WithProgress(opts.OnProgress))
	}
	a := duplicates.New(dupOpts...)
	out, err := a.Analyze(ctx, files)
	if err != nil {
		return nil, err
	}

	if data, merr := json.Marshal(out); merr == nil {
		_ = s.results.SetWithHash(key, stamp, data)
	}
	return out, nil
}

// AnalyzeProject runs both analyzers through the shared pipeline so
// every file is parsed exactly once.
func (s *Service) AnalyzeProject(ctx context.Context, files []string, opts ProjectOptions) (*ProjectAnalysis, error) {
	shared := source.NewCache(nil)
	dc := s.deadCodeAnalyzer(opts.Root, shared, nil)
	dup := duplicates.New(
		duplicates.WithConfig(s.config.Duplicates.Thresholds()),
		duplicates.WithCache(shared),
	)

	pipelineOpts := []engine.Option{
		engine.WithCache(shared),
		engine.WithWorkers(s.config.Analysis.Workers),
	}
	if opts.OnProgress != nil {
		pipelineOpts = append(pipelineOpts, engine.WithProgress(opts.OnProgress))
	}

	p := engine.New([]engine.Delegate{dc, dup}, pipelineOpts...)
	buckets, skips, err := p.Run(ctx, files)
	if err != nil {
		return nil, err
	}

	facts := make([]*deadcode.FileFacts, 0, len(buckets[deadcode.Kind]))
	for _, r := range buckets[deadcode.Kind] {
		if f, ok := r.(*deadcode.FileFacts); ok {
			facts = append(facts, f)
		}
	}
	snippets := make([]*duplicates.FileSnippets, 0, len(buckets[duplicates.Kind]))
	for _, r := range buckets[duplicates.Kind] {
		if fs, ok := r.(*duplicates.FileSnippets); ok {
			snippets = append(snippets, fs)
		}
	}

	out := &ProjectAnalysis{
		Parses: p.Cache().Parses(),
		Skips:  skips,
	}
	if s.config.DeadCode.Enabled {
		out.DeadCode = dc.Reduce(facts)
	}
	if s.config.Duplicates.Enabled {
		dupOut, derr := dup.Reduce(ctx, snippets)
		if derr != nil {
			return nil, derr
		}
		out.Duplicates = dupOut
	}

	return out, nil
}

// GraphAnalysis is the module graph with its computed metrics.
type GraphAnalysis struct {
	Graph   *graph.DependencyGraph `json:"graph"`
	Metrics *graph.Metrics         `json:"metrics"`
}

// AnalyzeGraph builds the module dependency graph and its metrics.
func (s *Service) AnalyzeGraph(ctx context.Context, files []string, opts DeadCodeOptions) (*GraphAnalysis, error) {
	analysis, err := s.AnalyzeDeadCode(ctx, files, opts)
	if err != nil {
		return nil, err
	}
	g := graph.FromModuleGraph(analysis.Graph)
	return &GraphAnalysis{
		Graph:   g,
		Metrics: graph.CalculateMetrics(g),
	}, nil
}

func (s *Service) deadCodeAnalyzer(root string, shared *source.Cache, onProgress func()) *deadcode.Analyzer {
	opts := []deadcode.Option{
		deadcode.WithPackage(s.config.Project.Package),
		deadcode.WithSourceDir(s.config.Project.SourceDir),
		deadcode.WithProjectKind(projectKind(s.config.Project.Kind)),
		deadcode.WithInternalDirs(s.config.Project.InternalDirs),
		deadcode.WithWorkers(s.config.Analysis.Workers),
		deadcode.WithUnusedVariables(s.config.DeadCode.ReportUnusedVariables),
	}
	if root != "" {
		opts = append(opts, deadcode.WithRoot(root))
	}
	if shared != nil {
		opts = append(opts, deadcode.WithCache(shared))
	}
	if onProgress != nil {
		opts = append(opts, deadcode.WithProgress(onProgress))
	}
	return deadcode.New(opts...)
}

func (s *Service) deadCodeKey(root string) string {
	return fmt.Sprintf("deadcode|root=%s|kind=%s|pkg=%s|src=%s|internal=%s|vars=%t",
		root,
		s.config.Project.Kind,
		s.config.Project.Package,
		s.config.Project.SourceDir,
		strings.Join(s.config.Project.InternalDirs, ","),
		s.config.DeadCode.ReportUnusedVariables,
	)
}

func projectKind(kind string) deadcode.ProjectKind {
	switch kind {
	case "library":
		return deadcode.ProjectLibrary
	case "app":
		return deadcode.ProjectApp
	default:
		return deadcode.ProjectAuto
	}
}

// fileStamp fingerprints a file set by path, size, and mtime so cached
// results invalidate when anything changes.
func fileStamp(files []string) string {
	sorted := make([]string, len(files))
	copy(sorted, files)
	sort.Strings(sorted)

	var sb strings.Builder
	for _, f := range sorted {
		info, err := os.Stat(f)
		if err != nil {
			fmt.Fprintf(&sb, "%s|missing\n", f)
			continue
		}
		fmt.Fprintf(&sb, "%s|%d|%d\n", f, info.Size(), info.ModTime().UnixNano())
	}
	return cache.HashBytes([]byte(sb.String()))
}
