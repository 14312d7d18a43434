package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/arborlint/arbor/pkg/source"
)

type pathResult struct {
	kind Kind
	path string
}

func (r pathResult) ResultKind() Kind { return r.kind }

// stubDelegate records visited paths and fails on demand.
type stubDelegate struct {
	kind       Kind
	wantErrs   bool
	failOn     string
	visitCount atomic.Int64
}

func (d *stubDelegate) Kind() Kind { return d.kind }

func (d *stubDelegate) ShouldVisit(fc *source.FileContext) bool {
	if fc.ParseErr != nil {
		return d.wantErrs
	}
	return true
}

func (d *stubDelegate) VisitFile(fc *source.FileContext) (Result, error) {
	d.visitCount.Add(1)
	if d.failOn != "" && fc.Path == d.failOn {
		return nil, errors.New("visit failed")
	}
	return pathResult{kind: d.kind, path: fc.Path}, nil
}

func testFiles() map[string][]byte {
	return map[string][]byte{
		"a.ts": []byte("export function a() { return 1 }\n"),
		"b.ts": []byte("export function b() { return 2 }\n"),
		"c.py": []byte("def c():\n    return 3\n"),
	}
}

func TestRunParsesEachFileOnce(t *testing.T) {
	cache := source.NewCache(source.NewMap(testFiles()))
	first := &stubDelegate{kind: "first"}
	second := &stubDelegate{kind: "second"}

	p := New([]Delegate{first, second}, WithCache(cache))
	buckets, skips, err := p.Run(context.Background(), []string{"a.ts", "b.ts", "c.py"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if skips != nil {
		t.Errorf("unexpected skips: %v", skips)
	}

	if got := cache.Parses(); got != 3 {
		t.Errorf("Parses = %d, want 3 (one per file regardless of delegate count)", got)
	}
	if first.visitCount.Load() != 3 || second.visitCount.Load() != 3 {
		t.Errorf("visit counts = %d, %d", first.visitCount.Load(), second.visitCount.Load())
	}
	if len(buckets["first"]) != 3 || len(buckets["second"]) != 3 {
		t.Errorf("bucket sizes = %d, %d", len(buckets["first"]), len(buckets["second"]))
	}
}

func TestRunBucketsSortedByPath(t *testing.T) {
	cache := source.NewCache(source.NewMap(testFiles()))
	d := &stubDelegate{kind: "paths"}

	p := New([]Delegate{d}, WithCache(cache), WithWorkers(4))
	buckets, _, err := p.Run(context.Background(), []string{"c.py", "a.ts", "b.ts"})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"a.ts", "b.ts", "c.py"}
	results := buckets["paths"]
	if len(results) != len(want) {
		t.Fatalf("got %d results", len(results))
	}
	for i, r := range results {
		if r.(pathResult).path != want[i] {
			t.Errorf("position %d: got %s, want %s", i, r.(pathResult).path, want[i])
		}
	}
}

func TestRunDedupesInput(t *testing.T) {
	cache := source.NewCache(source.NewMap(testFiles()))
	d := &stubDelegate{kind: "paths"}

	p := New([]Delegate{d}, WithCache(cache))
	buckets, _, err := p.Run(context.Background(), []string{"a.ts", "./a.ts", "a.ts"})
	if err != nil {
		t.Fatal(err)
	}
	if len(buckets["paths"]) != 1 {
		t.Errorf("got %d results, want 1", len(buckets["paths"]))
	}
	if cache.Parses() != 1 {
		t.Errorf("Parses = %d, want 1", cache.Parses())
	}
}

func TestRunParseErrorPassThrough(t *testing.T) {
	files := testFiles()
	files["notes.txt"] = []byte("not source\n")
	cache := source.NewCache(source.NewMap(files))

	skipper := &stubDelegate{kind: "skipper"}
	acceptor := &stubDelegate{kind: "acceptor", wantErrs: true}

	p := New([]Delegate{skipper, acceptor}, WithCache(cache))
	buckets, skips, err := p.Run(context.Background(), []string{"a.ts", "notes.txt"})
	if err != nil {
		t.Fatal(err)
	}

	// The failed parse is reported but never aborts the run.
	if skips == nil || !skips.HasErrors() {
		t.Error("expected parse failure recorded in skips")
	}
	if len(buckets["skipper"]) != 1 {
		t.Errorf("skipper saw %d files, want 1", len(buckets["skipper"]))
	}
	if len(buckets["acceptor"]) != 2 {
		t.Errorf("acceptor saw %d files, want 2 (ParseErr contexts pass through)", len(buckets["acceptor"]))
	}
}

func TestRunDelegateErrorIsLocal(t *testing.T) {
	cache := source.NewCache(source.NewMap(testFiles()))
	failing := &stubDelegate{kind: "failing", failOn: "b.ts"}
	healthy := &stubDelegate{kind: "healthy"}

	p := New([]Delegate{failing, healthy}, WithCache(cache))
	buckets, skips, err := p.Run(context.Background(), []string{"a.ts", "b.ts", "c.py"})
	if err != nil {
		t.Fatal(err)
	}

	if len(buckets["failing"]) != 2 {
		t.Errorf("failing bucket = %d, want 2", len(buckets["failing"]))
	}
	if len(buckets["healthy"]) != 3 {
		t.Errorf("healthy bucket = %d, want 3 (other delegates unaffected)", len(buckets["healthy"]))
	}
	if skips == nil || !skips.HasErrors() {
		t.Error("expected the delegate failure recorded in skips")
	}
}

func TestRunEmptyInput(t *testing.T) {
	p := New([]Delegate{&stubDelegate{kind: "any"}})
	buckets, skips, err := p.Run(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if skips != nil {
		t.Errorf("skips = %v", skips)
	}
	if len(buckets) != 0 {
		t.Errorf("buckets = %v", buckets)
	}
}

func TestRunProgress(t *testing.T) {
	cache := source.NewCache(source.NewMap(testFiles()))
	var ticks atomic.Int64

	p := New([]Delegate{&stubDelegate{kind: "any"}},
		WithCache(cache),
		WithProgress(func() { ticks.Add(1) }),
	)
	if _, _, err := p.Run(context.Background(), []string{"a.ts", "b.ts", "c.py"}); err != nil {
		t.Fatal(err)
	}
	if ticks.Load() != 3 {
		t.Errorf("progress ticks = %d, want 3", ticks.Load())
	}
}

func TestRunSharedCacheAcrossRuns(t *testing.T) {
	cache := source.NewCache(source.NewMap(testFiles()))
	p := New([]Delegate{&stubDelegate{kind: "any"}}, WithCache(cache))

	for i := 0; i < 3; i++ {
		if _, _, err := p.Run(context.Background(), []string{"a.ts", "b.ts"}); err != nil {
			t.Fatal(err)
		}
	}
	if got := cache.Parses(); got != 2 {
		t.Errorf("Parses = %d, want 2 (repeat runs reuse contexts)", got)
	}
}
