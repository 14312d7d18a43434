// Package duplicates detects near-duplicate callables across a source
// tree. Each eligible function body becomes a normalized token snippet;
// snippets sharing a canonical parameter signature are compared with a
// bounded edit distance and pairs at or above the similarity threshold
// are reported.
package duplicates

import (
	"context"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/arborlint/arbor/internal/fileproc"
	"github.com/arborlint/arbor/internal/semantic"
	"github.com/arborlint/arbor/pkg/analyzer"
	"github.com/arborlint/arbor/pkg/engine"
	"github.com/arborlint/arbor/pkg/models"
	"github.com/arborlint/arbor/pkg/source"
)

// Analyzer implements duplicate detection. It plugs into the pipeline
// as a delegate and also runs standalone over a file list.
type Analyzer struct {
	cfg        Config
	workers    int
	cache      *source.Cache
	onProgress func()
}

var (
	_ analyzer.FileAnalyzer[*Analysis] = (*Analyzer)(nil)
	_ engine.Delegate                  = (*Analyzer)(nil)
)

// Option configures the analyzer.
type Option func(*Analyzer)

// WithConfig replaces the whole threshold config.
func WithConfig(cfg Config) Option {
	return func(a *Analyzer) {
		a.cfg = cfg
	}
}

// WithMinTokens sets the minimum normalized token count (default 20).
func WithMinTokens(n int) Option {
	return func(a *Analyzer) {
		a.cfg.MinTokens = n
	}
}

// WithMinLines sets the minimum non-empty body line count (default 10).
func WithMinLines(n int) Option {
	return func(a *Analyzer) {
		a.cfg.MinLines = n
	}
}

// WithThreshold sets the similarity cutoff in [0,1] (default 0.8).
func WithThreshold(t float64) Option {
	return func(a *Analyzer) {
		a.cfg.Threshold = t
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

// WithProgress sets a callback invoked after each processed file.
func WithProgress(fn func()) Option {
	return func(a *Analyzer) {
		a.onProgress = fn
	}
}

// New creates a duplicate-code analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{cfg: DefaultConfig()}
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
	return extractSnippets(fc, a.cfg), nil
}

// Analyze runs extraction and reduce over a file list.
func (a *Analyzer) Analyze(ctx context.Context, files []string) (*Analysis, error) {
	sorted := make([]string, len(files))
	copy(sorted, files)
	sort.Strings(sorted)

	results, ok, _ := fileproc.MapOrdered(ctx, sorted, a.workers, func(_ context.Context, path string) (*FileSnippets, error) {
		fc, err := a.cache.Context(path)
		if err != nil {
			return nil, err
		}
		return extractSnippets(fc, a.cfg), nil
	}, a.onProgress)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	perFile := make([]*FileSnippets, 0, len(results))
	for i := range results {
		if ok[i] {
			perFile = append(perFile, results[i])
		}
	}
	return a.Reduce(ctx, perFile)
}

// Close implements analyzer.FileAnalyzer.
func (a *Analyzer) Close() {}

// Reduce pairs up collected snippets and scores every candidate pair.
// Only snippets with identical signature keys are ever compared, and
// comparison short-circuits as soon as the distance bound is exceeded.
func (a *Analyzer) Reduce(ctx context.Context, perFile []*FileSnippets) (*Analysis, error) {
	snippets := make([]Snippet, 0)
	filesScanned := 0
	for _, fs := range perFile {
		if fs == nil {
			continue
		}
		filesScanned++
		snippets = append(snippets, fs.Snippets...)
	}
	sort.Slice(snippets, func(i, j int) bool {
		if snippets[i].File != snippets[j].File {
			return snippets[i].File < snippets[j].File
		}
		if snippets[i].Line != snippets[j].Line {
			return snippets[i].Line < snippets[j].Line
		}
		return snippets[i].Symbol < snippets[j].Symbol
	})

	// bucket by signature key, first-seen order
	buckets := make(map[uint64][]int)
	order := make([]uint64, 0)
	for i, s := range snippets {
		if _, seen := buckets[s.SigKey]; !seen {
			order = append(order, s.SigKey)
		}
		buckets[s.SigKey] = append(buckets[s.SigKey], i)
	}

	var issues []models.DuplicateCodeIssue
	for _, key := range order {
		group := buckets[key]
		for gi := 0; gi < len(group); gi++ {
			for gj := gi + 1; gj < len(group); gj++ {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				sa, sb := snippets[group[gi]], snippets[group[gj]]
				if issue, ok := a.score(sa, sb); ok {
					issues = append(issues, issue)
				}
			}
		}
	}

	sort.Slice(issues, func(i, j int) bool { return issues[i].Less(issues[j]) })

	summary := models.NewDuplicateSummary()
	summary.SnippetCount = len(snippets)
	summary.FilesScanned = filesScanned
	sims := make([]float64, 0, len(issues))
	for _, issue := range issues {
		summary.AddPair(issue)
		sims = append(sims, issue.Similarity)
	}
	if len(sims) > 0 {
		summary.AvgSimilarity = stat.Mean(sims, nil)
		sort.Float64s(sims)
		summary.P50Similarity = stat.Quantile(0.50, stat.Empirical, sims, nil)
		summary.P95Similarity = stat.Quantile(0.95, stat.Empirical, sims, nil)
	}

	return &Analysis{Issues: issues, Summary: summary}, nil
}

// score compares one candidate pair. The length-ratio prefilter drops
// pairs whose best possible similarity already falls below the
// threshold before any distance work.
func (a *Analyzer) score(sa, sb Snippet) (models.DuplicateCodeIssue, bool) {
	lenA, lenB := len(sa.Tokens), len(sb.Tokens)
	maxLen := lenA
	minLen := lenB
	if lenB > lenA {
		maxLen, minLen = lenB, lenA
	}
	if maxLen == 0 {
		return models.DuplicateCodeIssue{}, false
	}
	if float64(minLen)/float64(maxLen) < a.cfg.Threshold {
		return models.DuplicateCodeIssue{}, false
	}

	// the epsilon keeps float64 rounding from shaving the bound below
	// an exact-threshold pair (0.2*20 evaluates just under 4)
	maxDist := int(math.Floor((1-a.cfg.Threshold)*float64(maxLen) + 1e-9))
	d, within := distanceWithin(sa.Tokens, sb.Tokens, maxDist)
	if !within {
		return models.DuplicateCodeIssue{}, false
	}
	similarity := 1 - float64(d)/float64(maxLen)
	if similarity < a.cfg.Threshold {
		return models.DuplicateCodeIssue{}, false
	}

	lines := sa.Lines
	if sb.Lines < lines {
		lines = sb.Lines
	}
	return models.DuplicateCodeIssue{
		FileA:      sa.File,
		LineA:      sa.Line,
		SymbolA:    sa.Symbol,
		FileB:      sb.File,
		LineB:      sb.Line,
		SymbolB:    sb.Symbol,
		Similarity: similarity,
		Lines:      lines,
	}, true
}
