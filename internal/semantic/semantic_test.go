package semantic

import (
	"testing"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/arborlint/arbor/pkg/parser"
)

func parseSource(t *testing.T, src string, lang parser.Language) (*sitter.Node, []byte) {
	t.Helper()
	p := parser.New()
	t.Cleanup(p.Close)
	result, err := p.Parse([]byte(src), lang, "test")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return result.Tree.RootNode(), []byte(src)
}

func callableByName(t *testing.T, infos []CallableInfo, name string) CallableInfo {
	t.Helper()
	for _, c := range infos {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("no callable named %q in %+v", name, infos)
	return CallableInfo{}
}

func collectImports(root *sitter.Node, src []byte, g Grammar) []string {
	var out []string
	parser.Walk(root, src, func(node *sitter.Node, src []byte) bool {
		out = append(out, g.Imports(node, src)...)
		return true
	})
	return out
}

func TestCallablesTypeScript(t *testing.T) {
	src := `class Widget {
  constructor(private size: number) {}
  render(opts?: string) { return this.size }
}
function helper(a: number, b = 1) { return a + b }
`
	root, bytes := parseSource(t, src, parser.LangTypeScript)
	infos := Callables(root, bytes, parser.LangTypeScript)
	if len(infos) != 3 {
		t.Fatalf("callables = %+v, want 3", infos)
	}

	ctor := callableByName(t, infos, "constructor")
	if ctor.Kind != KindConstructor || ctor.Owner != "Widget" {
		t.Errorf("constructor = %+v", ctor)
	}
	if len(ctor.Params) != 1 || !ctor.Params[0].Promoted || ctor.Params[0].TypeText != "number" {
		t.Errorf("constructor params = %+v", ctor.Params)
	}

	render := callableByName(t, infos, "render")
	if render.Kind != KindMethod || render.Symbol() != "Widget.render" {
		t.Errorf("render = %+v", render)
	}
	if len(render.Params) != 1 || !render.Params[0].Optional {
		t.Errorf("render params = %+v", render.Params)
	}

	helper := callableByName(t, infos, "helper")
	if helper.Kind != KindFunction || helper.Owner != "" || helper.Line != 5 {
		t.Errorf("helper = %+v", helper)
	}
	if len(helper.Params) != 2 {
		t.Fatalf("helper params = %+v", helper.Params)
	}
	if helper.Params[0].Optional || helper.Params[0].TypeText != "number" {
		t.Errorf("param a = %+v", helper.Params[0])
	}
	if !helper.Params[1].HasDefault || !helper.Params[1].Optional {
		t.Errorf("param b = %+v", helper.Params[1])
	}
}

func TestCallablesPython(t *testing.T) {
	src := `class Store:
    def __init__(self, size):
        self.size = size

    def get(self):
        return self.size

def helper(a, b=1):
    return a + b
`
	root, bytes := parseSource(t, src, parser.LangPython)
	infos := Callables(root, bytes, parser.LangPython)
	if len(infos) != 3 {
		t.Fatalf("callables = %+v, want 3", infos)
	}

	init := callableByName(t, infos, "__init__")
	if init.Kind != KindConstructor || init.Owner != "Store" {
		t.Errorf("__init__ = %+v", init)
	}
	get := callableByName(t, infos, "get")
	if get.Kind != KindMethod || get.Symbol() != "Store.get" {
		t.Errorf("get = %+v", get)
	}
	helper := callableByName(t, infos, "helper")
	if helper.Kind != KindFunction || helper.Owner != "" {
		t.Errorf("helper = %+v", helper)
	}
}

func TestCallablesGo(t *testing.T) {
	src := `package store

type Store struct{}

func (s *Store) Get(key string) string { return key }

func Helper(n int) int { return n }
`
	root, bytes := parseSource(t, src, parser.LangGo)
	infos := Callables(root, bytes, parser.LangGo)
	if len(infos) != 2 {
		t.Fatalf("callables = %+v, want 2", infos)
	}

	get := callableByName(t, infos, "Get")
	if get.Kind != KindMethod {
		t.Errorf("Get kind = %v", get.Kind)
	}
	var receiver *ParamInfo
	for i := range get.Params {
		if get.Params[i].Name == "s" {
			receiver = &get.Params[i]
		}
	}
	if receiver == nil || !receiver.Promoted {
		t.Errorf("receiver should be promoted: %+v", get.Params)
	}

	helper := callableByName(t, infos, "Helper")
	if helper.Kind != KindFunction {
		t.Errorf("Helper kind = %v", helper.Kind)
	}
	if len(helper.Params) != 1 || helper.Params[0].TypeText != "int" {
		t.Errorf("Helper params = %+v", helper.Params)
	}
}

func TestImportsTypeScript(t *testing.T) {
	src := `import { a } from "./a"
export { b } from "../lib/b"
import x from 'pkg'
`
	root, bytes := parseSource(t, src, parser.LangTypeScript)
	got := collectImports(root, bytes, &tsGrammar{typed: true})

	want := []string{"./a", "../lib/b", "pkg"}
	if len(got) != len(want) {
		t.Fatalf("imports = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("imports[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestImportsPython(t *testing.T) {
	src := `import os.path
import json as j
from .sibling import x
from ..pkg.mod import y
from a.b import c
`
	root, bytes := parseSource(t, src, parser.LangPython)
	got := collectImports(root, bytes, &pyGrammar{})

	// from-imports emit both the module path and per-name submodule
	// candidates
	want := []string{
		"os/path", "json",
		"./sibling", "./sibling/x",
		"../pkg/mod", "../pkg/mod/y",
		"a/b", "a/b/c",
	}
	if len(got) != len(want) {
		t.Fatalf("imports = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("imports[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPythonRelativeToPath(t *testing.T) {
	tests := []struct {
		spec string
		want string
	}{
		{".mod", "./mod"},
		{"..pkg.mod", "../pkg/mod"},
		{".", "."},
		{"..", ".."},
	}
	for _, tt := range tests {
		if got := pyRelativeToPath(tt.spec); got != tt.want {
			t.Errorf("pyRelativeToPath(%q) = %q, want %q", tt.spec, got, tt.want)
		}
	}
}

func TestEntryGuardPython(t *testing.T) {
	src := `def main():
    pass

if __name__ == "__main__":
    main()
`
	root, bytes := parseSource(t, src, parser.LangPython)
	g := &pyGrammar{}

	var found bool
	parser.Walk(root, bytes, func(node *sitter.Node, src []byte) bool {
		if g.EntryGuard(node, src) {
			found = true
		}
		return true
	})
	if !found {
		t.Error("expected __main__ guard to be detected")
	}
}

func TestEmptyBodyTypeScript(t *testing.T) {
	src := `function empty() { /* nothing */ }
function full() { return 1 }
`
	root, bytes := parseSource(t, src, parser.LangTypeScript)
	infos := Callables(root, bytes, parser.LangTypeScript)
	g := &tsGrammar{typed: true}

	if !g.EmptyBody(callableByName(t, infos, "empty").Body, bytes) {
		t.Error("comment-only body should be empty")
	}
	if g.EmptyBody(callableByName(t, infos, "full").Body, bytes) {
		t.Error("body with statements should not be empty")
	}
}

func TestEmptyBodyPython(t *testing.T) {
	src := `def stub():
    """Docstring only."""
    pass

def real():
    return 1
`
	root, bytes := parseSource(t, src, parser.LangPython)
	infos := Callables(root, bytes, parser.LangPython)
	g := &pyGrammar{}

	if !g.EmptyBody(callableByName(t, infos, "stub").Body, bytes) {
		t.Error("docstring-and-pass body should be empty")
	}
	if g.EmptyBody(callableByName(t, infos, "real").Body, bytes) {
		t.Error("body with statements should not be empty")
	}
}

func TestForLanguage(t *testing.T) {
	for _, lang := range SupportedLanguages() {
		if ForLanguage(lang) == nil {
			t.Errorf("no grammar for %v", lang)
		}
	}
	if ForLanguage(parser.LangUnknown) != nil {
		t.Error("unknown language should have no grammar")
	}
}
