// Package semantic holds the per-language syntax knowledge the analyzers
// share: which nodes open scopes, declare names, access members, sit in
// type positions, or import other modules. Each supported language
// implements the Grammar interface over its tree-sitter node types.
package semantic

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/arborlint/arbor/pkg/parser"
)

// CallableKind classifies a callable declaration.
type CallableKind int

const (
	KindFunction CallableKind = iota
	KindMethod
	KindConstructor
)

func (k CallableKind) String() string {
	switch k {
	case KindMethod:
		return "method"
	case KindConstructor:
		return "constructor"
	default:
		return "function"
	}
}

// ParamInfo describes one declared parameter.
type ParamInfo struct {
	Name       string
	Line       uint32
	Named      bool // keyword-only / named-argument parameter
	Optional   bool
	TypeText   string // whitespace-stripped type annotation text
	HasDefault bool
	Promoted   bool // constructor parameter that also declares a field
}

// CallableInfo describes a function, method, or constructor declaration.
type CallableInfo struct {
	Node     *sitter.Node
	Kind     CallableKind
	Name     string
	Line     uint32
	Owner    string // enclosing class, filled by Callables
	Params   []ParamInfo
	Body     *sitter.Node
	Override bool
}

// Symbol returns the display name, qualified by owner for members.
func (c *CallableInfo) Symbol() string {
	if c.Owner != "" {
		return c.Owner + "." + c.Name
	}
	return c.Name
}

// Role classifies an identifier occurrence for usage tracking.
type Role int

const (
	// RoleValue is an ordinary identifier use, resolved against open
	// scopes innermost-out, falling back to the file's global used set.
	RoleValue Role = iota
	// RoleDeclName is the name position of a declaration; never a usage.
	RoleDeclName
	// RoleMemberName is a property/attribute access name; contributes to
	// the global used set only, never resolved locally.
	RoleMemberName
	// RoleTypeName is an identifier in type position; global set only.
	RoleTypeName
	// RoleLabel is a statement label or named-argument label; no usage.
	RoleLabel
	// RoleIgnore is an occurrence usage tracking skips entirely.
	RoleIgnore
)

// Decl is one name introduced into the current scope by a node.
type Decl struct {
	Name string
	Line uint32
	// IfAbsent marks write-or-declare forms (Python assignment): the
	// name is declared only when no open scope already has it.
	IfAbsent bool
}

// Grammar is the per-language syntax profile.
type Grammar interface {
	// Callable returns declaration info when node is a callable.
	Callable(node *sitter.Node, src []byte) (*CallableInfo, bool)

	// ClassName returns the declared name when node is a class-like
	// declaration.
	ClassName(node *sitter.Node, src []byte) (string, bool)

	// IsScope reports whether node opens a plain block scope (blocks,
	// loop bodies, catch clauses). Callables are handled separately.
	IsScope(nodeType string) bool

	// IsIdentifier reports whether the node type is an identifier
	// occurrence that usage tracking should classify.
	IsIdentifier(nodeType string) bool

	// IdentifierRole classifies one identifier occurrence.
	IdentifierRole(node *sitter.Node, src []byte) Role

	// LocalDecls returns the names node introduces into the current
	// scope (variable declarators, loop variables, catch parameters).
	// Callable parameters are handled via Callable.
	LocalDecls(node *sitter.Node, src []byte) []Decl

	// Imports returns the raw dependency specifiers when node is an
	// import/re-export statement.
	Imports(node *sitter.Node, src []byte) []string

	// EntryGuard reports whether node is a script entry guard
	// (Python's __main__ check). Languages without one return false.
	EntryGuard(node *sitter.Node, src []byte) bool

	// EmptyBody reports whether a callable body contains no effective
	// statements (docstrings and pass count as empty).
	EmptyBody(body *sitter.Node, src []byte) bool
}

// ForLanguage returns the Grammar for lang, or nil when the language has
// no profile.
func ForLanguage(lang parser.Language) Grammar {
	switch lang {
	case parser.LangTypeScript, parser.LangTSX:
		return &tsGrammar{typed: true}
	case parser.LangJavaScript:
		return &tsGrammar{}
	case parser.LangPython:
		return &pyGrammar{}
	case parser.LangGo:
		return &goGrammar{}
	default:
		return nil
	}
}

// SupportedLanguages returns languages with Grammar implementations.
func SupportedLanguages() []parser.Language {
	return []parser.Language{
		parser.LangTypeScript,
		parser.LangTSX,
		parser.LangJavaScript,
		parser.LangPython,
		parser.LangGo,
	}
}

// Callables walks the tree and returns every callable declaration with
// its enclosing class recorded as Owner. Kind is upgraded to method or
// constructor based on the class context.
func Callables(root *sitter.Node, src []byte, lang parser.Language) []CallableInfo {
	g := ForLanguage(lang)
	if g == nil || root == nil {
		return nil
	}
	var out []CallableInfo
	var walk func(node *sitter.Node, owner string)
	walk = func(node *sitter.Node, owner string) {
		if name, ok := g.ClassName(node, src); ok {
			owner = name
		}
		if info, ok := g.Callable(node, src); ok {
			info.Owner = owner
			if owner != "" && info.Kind == KindFunction {
				info.Kind = KindMethod
			}
			if owner != "" && isConstructorName(info.Name, lang) {
				info.Kind = KindConstructor
			}
			out = append(out, *info)
			// Nested callables keep the class owner only for direct
			// members; function bodies reset it.
			owner = ""
		}
		for i := range int(node.ChildCount()) {
			walk(node.Child(i), owner)
		}
	}
	walk(root, "")
	return out
}

func isConstructorName(name string, lang parser.Language) bool {
	switch lang {
	case parser.LangPython:
		return name == "__init__"
	case parser.LangTypeScript, parser.LangTSX, parser.LangJavaScript:
		return name == "constructor"
	default:
		return false
	}
}

// nodeLine returns the 1-based start line of a node.
func nodeLine(node *sitter.Node) uint32 {
	return node.StartPoint().Row + 1
}

// fieldIs reports whether node fills the given field of parent.
func fieldIs(parent *sitter.Node, field string, node *sitter.Node) bool {
	if parent == nil {
		return false
	}
	f := parent.ChildByFieldName(field)
	return f != nil && sameNode(f, node)
}

// sameNode reports whether two handles refer to the same node. Handles
// from different lookups differ as pointers, so compare extents.
func sameNode(a, b *sitter.Node) bool {
	return a != nil && b != nil &&
		a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}

// stripQuotes removes one layer of string quotes from an import spec.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		switch s[0] {
		case '"', '\'', '`':
			if s[len(s)-1] == s[0] {
				return s[1 : len(s)-1]
			}
		}
	}
	return s
}
