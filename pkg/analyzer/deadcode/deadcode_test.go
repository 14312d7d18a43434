package deadcode

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/arborlint/arbor/pkg/models"
)

func writeTree(t *testing.T, files map[string]string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, 0, len(files))
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, path)
	}
	return dir, paths
}

func findIssues(a *Analysis, kind models.DeadCodeKind) []models.DeadCodeIssue {
	var out []models.DeadCodeIssue
	for _, issue := range a.Issues {
		if issue.Kind == kind {
			out = append(out, issue)
		}
	}
	return out
}

func TestAnalyzeApp(t *testing.T) {
	dir, paths := writeTree(t, map[string]string{
		"src/main.ts": `import { render } from "./render"

export function main() {
  render()
}
`,
		"src/render.ts": `export function render() {
  const label = makeLabel()
  return label
}

export function makeLabel() {
  return "x"
}

export function orphan() {
  const unused = 1
  return 2
}

export class Ghost {
  blink() {
    return 1
  }
}
`,
		"src/dead.ts": `export function lonely() {
  return 1
}
`,
	})

	a := New(WithRoot(dir), WithSourceDir("src"))
	result, err := a.Analyze(context.Background(), paths)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(result.EntryPoints) != 1 || filepath.Base(result.EntryPoints[0]) != "main.ts" {
		t.Errorf("EntryPoints = %v", result.EntryPoints)
	}

	deadFiles := findIssues(result, models.DeadFile)
	if len(deadFiles) != 1 || deadFiles[0].Name != "dead.ts" || deadFiles[0].Line != 1 {
		t.Errorf("deadFile issues = %v", deadFiles)
	}

	deadFns := findIssues(result, models.DeadFunction)
	if len(deadFns) != 1 || deadFns[0].Name != "orphan" || deadFns[0].Line != 10 {
		t.Errorf("deadFunction issues = %v", deadFns)
	}
	// Symbols inside a dead file are not reported separately.
	for _, issue := range deadFns {
		if filepath.Base(issue.File) == "dead.ts" {
			t.Errorf("dead file symbols must not be classified: %v", issue)
		}
	}

	deadClasses := findIssues(result, models.DeadClass)
	if len(deadClasses) != 1 || deadClasses[0].Name != "Ghost" || deadClasses[0].Line != 15 {
		t.Errorf("deadClass issues = %v", deadClasses)
	}

	unusedVars := findIssues(result, models.UnusedVariable)
	if len(unusedVars) != 1 || unusedVars[0].Name != "unused" || unusedVars[0].Owner != "orphan" || unusedVars[0].Line != 11 {
		t.Errorf("unusedVariable issues = %v", unusedVars)
	}

	if result.Summary.TotalFiles != 3 || result.Summary.ReachableFiles != 2 {
		t.Errorf("summary = %+v", result.Summary)
	}
	if result.Graph.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1", result.Graph.EdgeCount())
	}
}

func TestAnalyzeIssuesSorted(t *testing.T) {
	dir, paths := writeTree(t, map[string]string{
		"src/main.ts": `export function main() {
  const a = 1
  const b = 2
}
`,
	})

	a := New(WithRoot(dir), WithSourceDir("src"))
	result, err := a.Analyze(context.Background(), paths)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Issues) != 2 {
		t.Fatalf("got %d issues: %v", len(result.Issues), result.Issues)
	}
	for i := 1; i < len(result.Issues); i++ {
		if result.Issues[i].Less(result.Issues[i-1]) {
			t.Errorf("issues out of order at %d: %v", i, result.Issues)
		}
	}
}

func TestAnalyzeCycleReachability(t *testing.T) {
	dir, paths := writeTree(t, map[string]string{
		"src/main.ts": `import { a } from "./a"

export function main() {
  a()
}
`,
		"src/a.ts": `import { b } from "./b"

export function a() {
  return b()
}
`,
		"src/b.ts": `import { a } from "./a"

export function b() {
  return a()
}
`,
	})

	an := New(WithRoot(dir), WithSourceDir("src"))
	result, err := an.Analyze(context.Background(), paths)
	if err != nil {
		t.Fatal(err)
	}

	if result.Summary.ReachableFiles != 3 {
		t.Errorf("ReachableFiles = %d, want 3 (cycle must not block BFS)", result.Summary.ReachableFiles)
	}
	if issues := findIssues(result, models.DeadFile); len(issues) != 0 {
		t.Errorf("unexpected dead files: %v", issues)
	}
	if issues := findIssues(result, models.DeadFunction); len(issues) != 0 {
		t.Errorf("unexpected dead functions: %v", issues)
	}
}

func TestAnalyzeLibraryPublicAPI(t *testing.T) {
	dir, paths := writeTree(t, map[string]string{
		"src/index.ts": `import { helper } from "./internal/helper"

export function api() {
  return helper()
}

export function extra() {
  return 1
}
`,
		"src/internal/helper.ts": `export function helper() {
  return 1
}

export function leftover() {
  return 2
}
`,
	})

	an := New(
		WithRoot(dir),
		WithSourceDir("src"),
		WithProjectKind(ProjectLibrary),
		WithInternalDirs([]string{"internal"}),
	)
	result, err := an.Analyze(context.Background(), paths)
	if err != nil {
		t.Fatal(err)
	}

	// No main anywhere: files directly under src/ are the entries.
	if len(result.EntryPoints) != 1 || filepath.Base(result.EntryPoints[0]) != "index.ts" {
		t.Errorf("EntryPoints = %v", result.EntryPoints)
	}

	deadFns := findIssues(result, models.DeadFunction)
	if len(deadFns) != 1 || deadFns[0].Name != "leftover" {
		t.Errorf("deadFunction issues = %v (public extra must be exempt, internal leftover must not)", deadFns)
	}
}

func TestAnalyzeLibraryWithMainDropsExemption(t *testing.T) {
	dir, paths := writeTree(t, map[string]string{
		"src/index.ts": `export function main() {
  return 1
}

export function extra() {
  return 1
}
`,
	})

	an := New(WithRoot(dir), WithSourceDir("src"), WithProjectKind(ProjectLibrary))
	result, err := an.Analyze(context.Background(), paths)
	if err != nil {
		t.Fatal(err)
	}

	// A real main makes reachability authoritative even for libraries.
	deadFns := findIssues(result, models.DeadFunction)
	if len(deadFns) != 1 || deadFns[0].Name != "extra" {
		t.Errorf("deadFunction issues = %v", deadFns)
	}
}

func TestAnalyzeMainNeverDead(t *testing.T) {
	dir, paths := writeTree(t, map[string]string{
		"src/main.ts": `export function main() {
  return 1
}
`,
	})

	an := New(WithRoot(dir), WithSourceDir("src"))
	result, err := an.Analyze(context.Background(), paths)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Issues) != 0 {
		t.Errorf("main must never be reported dead: %v", result.Issues)
	}
}

func TestAnalyzeNoEntryPoints(t *testing.T) {
	dir, paths := writeTree(t, map[string]string{
		"src/a.ts": `export function first() {
  return second()
}
`,
		"src/b.ts": `export function second() {
  return 1
}
`,
	})

	an := New(WithRoot(dir), WithSourceDir("src"))
	result, err := an.Analyze(context.Background(), paths)
	if err != nil {
		t.Fatal(err)
	}

	// Without entries every file counts as reachable and usage is
	// unioned project-wide: second is used by first, first by nobody.
	if result.Summary.ReachableFiles != 2 {
		t.Errorf("ReachableFiles = %d, want 2", result.Summary.ReachableFiles)
	}
	if issues := findIssues(result, models.DeadFile); len(issues) != 0 {
		t.Errorf("unexpected dead files: %v", issues)
	}
	deadFns := findIssues(result, models.DeadFunction)
	if len(deadFns) != 1 || deadFns[0].Name != "first" {
		t.Errorf("deadFunction issues = %v", deadFns)
	}
}

func TestAnalyzeSuppression(t *testing.T) {
	dir, paths := writeTree(t, map[string]string{
		"src/main.ts": `import { keep } from "./keep"

export function main() {
  keep()
}
`,
		// File-level directive: no issues from this file, but its
		// imports still feed the graph.
		"src/keep.ts": `// arbor:disable generated bindings
import { base } from "./base"

export function keep() {
  return base()
}

export function neverCalled() {
  return 1
}
`,
		"src/base.ts": `export function base() {
  return 1
}

// arbor:ignore kept for downstream consumers
export function hook() {
  return 2
}

export function gone() {
  return 3
}
`,
	})

	an := New(WithRoot(dir), WithSourceDir("src"))
	result, err := an.Analyze(context.Background(), paths)
	if err != nil {
		t.Fatal(err)
	}

	// base.ts stays reachable only because the suppressed file's
	// import edge survives.
	if result.Summary.ReachableFiles != 3 {
		t.Errorf("ReachableFiles = %d, want 3", result.Summary.ReachableFiles)
	}

	deadFns := findIssues(result, models.DeadFunction)
	if len(deadFns) != 1 || deadFns[0].Name != "gone" {
		t.Errorf("deadFunction issues = %v (neverCalled and hook are suppressed)", deadFns)
	}
}

func TestAnalyzeSuppressedUnreachableFile(t *testing.T) {
	dir, paths := writeTree(t, map[string]string{
		"src/main.ts": `export function main() {
  return 1
}
`,
		"src/legacy.ts": `// arbor:disable scheduled for removal
export function old() {
  return 1
}
`,
	})

	an := New(WithRoot(dir), WithSourceDir("src"))
	result, err := an.Analyze(context.Background(), paths)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Issues) != 0 {
		t.Errorf("suppressed unreachable file must stay silent: %v", result.Issues)
	}
	if result.Summary.TotalFiles != 2 || result.Summary.ReachableFiles != 1 {
		t.Errorf("summary = %+v", result.Summary)
	}
}

func TestAnalyzeUnusedParameters(t *testing.T) {
	dir, paths := writeTree(t, map[string]string{
		"src/main.ts": `export class Shape {
  constructor(private size: number) {
    this.created = Date.now()
  }
  area(scale: number) {
    return this.size * scale
  }
  resize(width: number, height: number) {
    return width
  }
  sketch(pen: string) {}
  override draw(canvas: string) {
    return 1
  }
}

export function main() {
  const s = new Shape(1)
  return s.area(2) + s.resize(3, 4) + s.sketch("p") + s.draw("c")
}
`,
	})

	an := New(WithRoot(dir), WithSourceDir("src"))
	result, err := an.Analyze(context.Background(), paths)
	if err != nil {
		t.Fatal(err)
	}

	// size is promoted, scale and width are read, pen's body is empty,
	// canvas belongs to an override. Only height remains.
	if len(result.Issues) != 1 {
		t.Fatalf("Issues = %v, want one unused parameter", result.Issues)
	}
	issue := result.Issues[0]
	if issue.Kind != models.UnusedVariable || issue.Name != "height" || issue.Owner != "Shape.resize" || issue.Line != 8 {
		t.Errorf("issue = %+v", issue)
	}
}

func TestAnalyzeSkipVariables(t *testing.T) {
	dir, paths := writeTree(t, map[string]string{
		"src/main.ts": `export function main() {
  const leftover = 1
  return 2
}
`,
	})

	an := New(WithRoot(dir), WithSourceDir("src"), WithUnusedVariables(false))
	result, err := an.Analyze(context.Background(), paths)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Issues) != 0 {
		t.Errorf("variable reporting disabled, got %v", result.Issues)
	}
}

func TestAnalyzePackageRootImports(t *testing.T) {
	dir, paths := writeTree(t, map[string]string{
		"src/main.ts": `import { util } from "myapp/util"

export function main() {
  util()
}
`,
		"src/util.ts": `export function util() {
  return 1
}
`,
	})

	an := New(WithRoot(dir), WithSourceDir("src"), WithPackage("myapp"))
	result, err := an.Analyze(context.Background(), paths)
	if err != nil {
		t.Fatal(err)
	}
	if issues := findIssues(result, models.DeadFile); len(issues) != 0 {
		t.Errorf("package-root import must resolve: %v", issues)
	}
}

func TestAnalyzePythonFromImportSubmodule(t *testing.T) {
	dir, paths := writeTree(t, map[string]string{
		"src/main.py": `from .internal import impl

def main():
    impl.run()

if __name__ == "__main__":
    main()
`,
		"src/internal/impl.py": `def run():
    return 1
`,
	})

	an := New(WithRoot(dir), WithSourceDir("src"))
	result, err := an.Analyze(context.Background(), paths)
	if err != nil {
		t.Fatal(err)
	}

	// the imported name is a submodule, not a symbol of the package
	if dead := findIssues(result, models.DeadFile); len(dead) != 0 {
		t.Errorf("deadFile issues = %v, want none", dead)
	}
	if result.Summary.ReachableFiles != 2 {
		t.Errorf("ReachableFiles = %d, want 2", result.Summary.ReachableFiles)
	}
}

func TestReduceDuplicatePathsCollapse(t *testing.T) {
	facts := []*FileFacts{
		{Path: "src/a.ts", Used: map[string]struct{}{}, HasMain: true},
		{Path: "./src/a.ts", Used: map[string]struct{}{}},
		nil,
	}

	an := New()
	result := an.Reduce(facts)
	if result.Summary.TotalFiles != 1 {
		t.Errorf("TotalFiles = %d, want 1 (cleaned duplicates collapse)", result.Summary.TotalFiles)
	}
}
