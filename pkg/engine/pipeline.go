// Package engine runs pluggable analysis delegates over a shared parse
// of each file. Every file is parsed at most once per run; delegates see
// the same FileContext and their results are bucketed by kind.
package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/arborlint/arbor/internal/fileproc"
	"github.com/arborlint/arbor/pkg/source"
)

// Kind identifies the bucket a delegate's results land in.
type Kind string

// Result is the tagged output of one delegate visit. Implementations
// declare their own bucket, so the pipeline never inspects result types.
type Result interface {
	ResultKind() Kind
}

// Delegate is one analysis pass plugged into the pipeline.
type Delegate interface {
	// Kind names the result bucket this delegate fills.
	Kind() Kind

	// ShouldVisit reports whether the delegate wants this file. Parse
	// failures are passed through (ParseErr set) so delegates decide
	// how to degrade.
	ShouldVisit(fc *source.FileContext) bool

	// VisitFile analyzes one file. An error skips this file for this
	// delegate only; other delegates and files proceed.
	VisitFile(fc *source.FileContext) (Result, error)
}

// Pipeline coordinates a single parse pass shared by all delegates.
type Pipeline struct {
	cache      *source.Cache
	delegates  []Delegate
	workers    int
	onProgress fileproc.ProgressFunc
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCache shares an existing context cache across runs.
func WithCache(c *source.Cache) Option {
	return func(p *Pipeline) {
		p.cache = c
	}
}

// WithWorkers sets the worker count (default 2x NumCPU).
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		p.workers = n
	}
}

// WithProgress sets a callback invoked after each processed file.
func WithProgress(fn func()) Option {
	return func(p *Pipeline) {
		p.onProgress = fn
	}
}

// New creates a pipeline over the given delegates.
func New(delegates []Delegate, opts ...Option) *Pipeline {
	p := &Pipeline{delegates: delegates}
	for _, opt := range opts {
		opt(p)
	}
	if p.cache == nil {
		p.cache = source.NewCache(nil)
	}
	return p
}

// Cache exposes the pipeline's file-context cache.
func (p *Pipeline) Cache() *source.Cache {
	return p.cache
}

// fileSlots holds one file's per-delegate results, indexed by delegate
// registration order so the reduce stays deterministic.
type fileSlots struct {
	results []Result
	filled  []bool
}

// Run analyzes files and buckets delegate results by kind. File order in
// each bucket is ascending by path regardless of worker scheduling. A
// delegate failure on one file is collected in the returned
// ProcessingErrors and skips that file for that delegate only.
func (p *Pipeline) Run(ctx context.Context, files []string) (map[Kind][]Result, *fileproc.ProcessingErrors, error) {
	paths := dedupeSorted(files)
	if len(paths) == 0 {
		return map[Kind][]Result{}, nil, nil
	}

	skips := &fileproc.ProcessingErrors{}

	slots, ok, procErrs := fileproc.MapOrdered(ctx, paths, p.workers, func(_ context.Context, path string) (*fileSlots, error) {
		fc, err := p.cache.Context(path)
		if fc == nil {
			return nil, err
		}
		if fc.ParseErr != nil {
			skips.Add(path, fc.ParseErr)
		}

		fs := &fileSlots{
			results: make([]Result, len(p.delegates)),
			filled:  make([]bool, len(p.delegates)),
		}
		for i, d := range p.delegates {
			if !d.ShouldVisit(fc) {
				continue
			}
			res, verr := d.VisitFile(fc)
			if verr != nil {
				skips.Add(path, fmt.Errorf("%s: %w", d.Kind(), verr))
				continue
			}
			if res != nil {
				fs.results[i] = res
				fs.filled[i] = true
			}
		}
		return fs, nil
	}, p.onProgress)

	if err := ctx.Err(); err != nil {
		return nil, mergeErrs(skips, procErrs), err
	}

	buckets := make(map[Kind][]Result, len(p.delegates))
	for _, d := range p.delegates {
		buckets[d.Kind()] = nil
	}
	for i := range slots {
		if !ok[i] || slots[i] == nil {
			continue
		}
		for j, d := range p.delegates {
			if slots[i].filled[j] {
				buckets[d.Kind()] = append(buckets[d.Kind()], slots[i].results[j])
			}
		}
	}

	return buckets, mergeErrs(skips, procErrs), nil
}

func dedupeSorted(files []string) []string {
	seen := make(map[string]struct{}, len(files))
	out := make([]string, 0, len(files))
	for _, f := range files {
		clean := filepath.Clean(f)
		if _, dup := seen[clean]; dup {
			continue
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}
	sort.Strings(out)
	return out
}

func mergeErrs(a, b *fileproc.ProcessingErrors) *fileproc.ProcessingErrors {
	if b != nil {
		for _, pe := range b.Errors {
			a.Add(pe.Path, pe.Err)
		}
	}
	if !a.HasErrors() {
		return nil
	}
	return a
}
