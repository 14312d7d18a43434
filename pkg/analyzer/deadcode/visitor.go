package deadcode

import (
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/arborlint/arbor/internal/semantic"
	"github.com/arborlint/arbor/pkg/models"
	"github.com/arborlint/arbor/pkg/parser"
	"github.com/arborlint/arbor/pkg/source"
)

// Suppression directives recognized in line comments.
const (
	directiveDisable = "arbor:disable"
	directiveIgnore  = "arbor:ignore"
)

func hasDirective(line string) bool {
	return strings.Contains(line, directiveDisable) || strings.Contains(line, directiveIgnore)
}

// localDecl is one name declared in an open scope frame.
type localDecl struct {
	name    string
	line    uint32
	isParam bool
}

// scopeFrame tracks declarations and uses for one lexical scope. Frames
// are pushed for callables and plain block scopes, and popped in reverse
// order; the pop emits unused-variable candidates.
type scopeFrame struct {
	owner        string
	declared     map[string]localDecl
	used         map[string]struct{}
	exemptParams bool
}

type visitor struct {
	g     semantic.Grammar
	src   []byte
	lines []string
	path  string
	lang  parser.Language

	frames     []*scopeFrame
	classStack []string
	sawDecl    bool

	facts   *FileFacts
	depSeen map[string]struct{}
}

// extractFacts runs the single-pass per-file extraction. Files without a
// grammar profile (or without a tree) produce empty facts.
func extractFacts(fc *source.FileContext) *FileFacts {
	facts := &FileFacts{
		Path:     fc.Path,
		Language: fc.Language,
		Used:     make(map[string]struct{}),
	}
	g := semantic.ForLanguage(fc.Language)
	root := fc.Root()
	if g == nil || root == nil {
		return facts
	}

	v := &visitor{
		g:       g,
		src:     fc.Source,
		lines:   fc.Lines,
		path:    fc.Path,
		lang:    fc.Language,
		facts:   facts,
		depSeen: make(map[string]struct{}),
	}
	v.walk(root)
	return facts
}

func (v *visitor) walk(node *sitter.Node) {
	t := node.Type()

	if t == "comment" {
		// a directive before the first declaration suppresses the file
		if !v.sawDecl && hasDirective(parser.GetNodeText(node, v.src)) {
			v.facts.Suppressed = true
		}
		return
	}

	if specs := v.g.Imports(node, v.src); len(specs) > 0 {
		for _, s := range specs {
			if _, dup := v.depSeen[s]; dup {
				continue
			}
			v.depSeen[s] = struct{}{}
			v.facts.Deps = append(v.facts.Deps, s)
		}
		// re-exports still need their specifiers classified
		if t != "export_statement" {
			return
		}
	}

	if v.g.EntryGuard(node, v.src) {
		v.facts.HasMain = true
	}

	if name, ok := v.g.ClassName(node, v.src); ok {
		v.sawDecl = true
		if v.topLevel() {
			v.facts.Symbols = append(v.facts.Symbols, Symbol{
				Name:       name,
				Kind:       SymbolClass,
				Line:       node.StartPoint().Row + 1,
				Suppressed: v.suppressedAt(node.StartPoint().Row + 1),
			})
		}
		v.classStack = append(v.classStack, name)
		v.walkChildren(node)
		v.classStack = v.classStack[:len(v.classStack)-1]
		return
	}

	if info, ok := v.g.Callable(node, v.src); ok {
		v.visitCallable(node, info)
		return
	}

	if v.g.IsScope(t) {
		frame := &scopeFrame{
			owner:    v.currentOwner(),
			declared: make(map[string]localDecl),
			used:     make(map[string]struct{}),
		}
		v.frames = append(v.frames, frame)
		for _, d := range v.g.LocalDecls(node, v.src) {
			v.declare(d.Name, d.Line, false, d.IfAbsent)
		}
		v.walkChildren(node)
		v.popFrame()
		return
	}

	for _, d := range v.g.LocalDecls(node, v.src) {
		v.declare(d.Name, d.Line, false, d.IfAbsent)
	}

	if v.g.IsIdentifier(t) {
		name := parser.GetNodeText(node, v.src)
		if name == "" || name == "_" {
			return
		}
		switch v.g.IdentifierRole(node, v.src) {
		case semantic.RoleValue:
			v.markUsed(name)
		case semantic.RoleMemberName, semantic.RoleTypeName:
			v.facts.Used[name] = struct{}{}
		}
		return
	}

	v.walkChildren(node)
}

func (v *visitor) walkChildren(node *sitter.Node) {
	for i := range int(node.ChildCount()) {
		v.walk(node.Child(i))
	}
}

func (v *visitor) visitCallable(node *sitter.Node, info *semantic.CallableInfo) {
	v.sawDecl = true
	line := info.Line
	owner := ""
	if len(v.classStack) > 0 {
		owner = v.classStack[len(v.classStack)-1]
	}

	if v.topLevel() && info.Name != "" {
		v.facts.Symbols = append(v.facts.Symbols, Symbol{
			Name:       info.Name,
			Kind:       SymbolFunction,
			Line:       line,
			Suppressed: v.suppressedAt(line),
		})
		if info.Name == "main" {
			v.facts.HasMain = true
		}
	} else if len(v.frames) == 0 && owner != "" && info.Name != "" {
		v.facts.Symbols = append(v.facts.Symbols, Symbol{
			Name:       info.Name,
			Kind:       SymbolMethod,
			Line:       line,
			Owner:      owner,
			Suppressed: v.suppressedAt(line),
		})
	}

	// nested functions are locals of the enclosing scope
	if len(v.frames) > 0 && info.Name != "" {
		v.declare(info.Name, line, false, false)
	}

	frameOwner := info.Name
	if owner != "" && frameOwner != "" {
		frameOwner = owner + "." + frameOwner
	} else if frameOwner == "" {
		frameOwner = v.currentOwner()
	}
	frame := &scopeFrame{
		owner:        frameOwner,
		declared:     make(map[string]localDecl),
		used:         make(map[string]struct{}),
		exemptParams: info.Override || v.g.EmptyBody(info.Body, v.src),
	}
	v.frames = append(v.frames, frame)

	for _, p := range info.Params {
		if p.Name == "" || p.Name == "_" {
			continue
		}
		frame.declared[p.Name] = localDecl{name: p.Name, line: p.Line, isParam: true}
		if p.Promoted {
			// promoted constructor parameters declare a field; the
			// binding is used by definition
			frame.used[p.Name] = struct{}{}
		}
	}

	// the class context does not extend into callable bodies
	saved := v.classStack
	v.classStack = nil
	v.walkChildren(node)
	v.classStack = saved

	v.popFrame()
}

func (v *visitor) topLevel() bool {
	return len(v.frames) == 0 && len(v.classStack) == 0
}

func (v *visitor) currentOwner() string {
	for i := len(v.frames) - 1; i >= 0; i-- {
		if v.frames[i].owner != "" {
			return v.frames[i].owner
		}
	}
	return ""
}

// declare adds a name to the innermost frame. Empty and discard names
// are never declared. With ifAbsent, a name already visible in any open
// frame is treated as a write, not a new declaration.
func (v *visitor) declare(name string, line uint32, isParam, ifAbsent bool) {
	if name == "" || name == "_" || len(v.frames) == 0 {
		return
	}
	if ifAbsent {
		for i := len(v.frames) - 1; i >= 0; i-- {
			if _, ok := v.frames[i].declared[name]; ok {
				return
			}
		}
	}
	top := v.frames[len(v.frames)-1]
	if _, ok := top.declared[name]; ok {
		return
	}
	top.declared[name] = localDecl{name: name, line: line, isParam: isParam}
}

// markUsed resolves a value identifier innermost-out; unresolved names
// land in the file-global used set.
func (v *visitor) markUsed(name string) {
	for i := len(v.frames) - 1; i >= 0; i-- {
		if _, ok := v.frames[i].declared[name]; ok {
			v.frames[i].used[name] = struct{}{}
			return
		}
	}
	v.facts.Used[name] = struct{}{}
}

// popFrame emits unused-variable candidates for the popped scope in
// (line, name) order.
func (v *visitor) popFrame() {
	frame := v.frames[len(v.frames)-1]
	v.frames = v.frames[:len(v.frames)-1]

	var unused []localDecl
	for name, d := range frame.declared {
		if _, used := frame.used[name]; used {
			continue
		}
		if d.isParam && frame.exemptParams {
			continue
		}
		if v.suppressedAt(d.line) {
			continue
		}
		unused = append(unused, d)
	}
	sort.Slice(unused, func(i, j int) bool {
		if unused[i].line != unused[j].line {
			return unused[i].line < unused[j].line
		}
		return unused[i].name < unused[j].name
	})
	for _, d := range unused {
		v.facts.LocalIssues = append(v.facts.LocalIssues, models.DeadCodeIssue{
			Kind:  models.UnusedVariable,
			File:  v.path,
			Line:  d.line,
			Name:  d.name,
			Owner: frame.owner,
		})
	}
}

// suppressedAt reports whether the 1-based line, or the line directly
// above it, carries a suppression directive.
func (v *visitor) suppressedAt(line uint32) bool {
	idx := int(line) - 1
	if idx >= 0 && idx < len(v.lines) && hasDirective(v.lines[idx]) {
		return true
	}
	if idx-1 >= 0 && idx-1 < len(v.lines) && hasDirective(v.lines[idx-1]) {
		return true
	}
	return false
}
