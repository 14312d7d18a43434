package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arborlint/arbor/pkg/config"
	"github.com/arborlint/arbor/pkg/parser"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func relPaths(t *testing.T, root string, files []string) map[string]bool {
	t.Helper()
	got := make(map[string]bool, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		if err != nil {
			t.Fatal(err)
		}
		got[filepath.ToSlash(rel)] = true
	}
	return got
}

func TestScanDir(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"src/app.ts":                 "export const x = 1\n",
		"src/view.tsx":               "export const v = 1\n",
		"scripts/run.py":             "print('hi')\n",
		"main.go":                    "package main\n",
		"README.md":                  "# readme\n",
		"node_modules/pkg/index.js":  "module.exports = {}\n",
		"vendor/lib/lib.go":          "package lib\n",
		"src/app.test.ts":            "it('works')\n",
		"src/style.min.js":           "var a=1\n",
		"go.sum":                     "abc\n",
	})

	s := NewScanner(nil)
	files, err := s.ScanDir(root)
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}

	got := relPaths(t, root, files)
	want := []string{"src/app.ts", "src/view.tsx", "scripts/run.py", "main.go"}
	if len(got) != len(want) {
		t.Fatalf("got %d files %v, want %d", len(got), got, len(want))
	}
	for _, w := range want {
		if !got[w] {
			t.Errorf("missing %s in scan results", w)
		}
	}
}

func TestScanDirGitignore(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"src/keep.ts":      "export const k = 1\n",
		"generated/gen.ts": "export const g = 1\n",
		".gitignore":       "generated/\n",
	})
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}

	s := NewScanner(nil)
	files, err := s.ScanDir(root)
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}

	got := relPaths(t, root, files)
	if !got["src/keep.ts"] {
		t.Errorf("expected src/keep.ts to be scanned, got %v", got)
	}
	if got["generated/gen.ts"] {
		t.Error("expected generated/gen.ts to be excluded by .gitignore")
	}
}

func TestScanDirCustomExcludes(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"src/app.ts":     "export const x = 1\n",
		"src/legacy.ts":  "export const y = 1\n",
		"build/out.js":   "var z = 1\n",
	})

	cfg := config.DefaultConfig()
	cfg.Exclude.Patterns = append(cfg.Exclude.Patterns, "legacy.ts")
	cfg.Exclude.Dirs = append(cfg.Exclude.Dirs, "build")

	s := NewScanner(cfg)
	files, err := s.ScanDir(root)
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}

	got := relPaths(t, root, files)
	if len(got) != 1 || !got["src/app.ts"] {
		t.Errorf("got %v, want only src/app.ts", got)
	}
}

func TestScanFile(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"app.ts":      "export const x = 1\n",
		"app.test.ts": "it('works')\n",
		"notes.txt":   "notes\n",
	})

	cases := []struct {
		name string
		want bool
	}{
		{"app.ts", true},
		{"app.test.ts", false},
		{"notes.txt", false},
	}
	for _, tc := range cases {
		s := NewScanner(nil)
		got, err := s.ScanFile(filepath.Join(root, tc.name))
		if err != nil {
			t.Fatalf("ScanFile(%s): %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("ScanFile(%s) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestScanFileMissing(t *testing.T) {
	s := NewScanner(nil)
	if _, err := s.ScanFile(filepath.Join(t.TempDir(), "nope.ts")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestScanFileDir(t *testing.T) {
	s := NewScanner(nil)
	ok, err := s.ScanFile(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("directories should not be scannable")
	}
}

func TestFilterByLanguage(t *testing.T) {
	files := []string{"a.ts", "b.py", "c.go", "d.tsx"}
	s := NewScanner(nil)

	py := s.FilterByLanguage(files, parser.LangPython)
	if len(py) != 1 || py[0] != "b.py" {
		t.Errorf("python filter = %v", py)
	}
	ts := s.FilterByLanguage(files, parser.LangTypeScript)
	if len(ts) != 1 || ts[0] != "a.ts" {
		t.Errorf("typescript filter = %v", ts)
	}
}

func TestGroupByLanguage(t *testing.T) {
	files := []string{"a.ts", "b.py", "c.go", "d.py", "e.txt"}
	s := NewScanner(nil)

	groups := s.GroupByLanguage(files)
	if len(groups[parser.LangPython]) != 2 {
		t.Errorf("python group = %v", groups[parser.LangPython])
	}
	if len(groups[parser.LangGo]) != 1 {
		t.Errorf("go group = %v", groups[parser.LangGo])
	}
	if _, ok := groups[parser.LangUnknown]; ok {
		t.Error("unknown language should not be grouped")
	}
}

func TestFilterBySize(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"small.ts": "x\n",
		"big.ts":   string(make([]byte, 4096)),
	})
	files := []string{
		filepath.Join(root, "small.ts"),
		filepath.Join(root, "big.ts"),
		filepath.Join(root, "missing.ts"),
	}

	filtered, skipped := FilterBySize(files, 1024)
	if len(filtered) != 1 || filepath.Base(filtered[0]) != "small.ts" {
		t.Errorf("filtered = %v", filtered)
	}
	if skipped != 2 {
		t.Errorf("skipped = %d, want 2", skipped)
	}

	all, skipped := FilterBySize(files, 0)
	if len(all) != 3 || skipped != 0 {
		t.Error("maxSize 0 should return input unchanged")
	}
}
