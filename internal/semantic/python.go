package semantic

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/arborlint/arbor/pkg/parser"
)

type pyGrammar struct{}

var pyScopeTypes = map[string]bool{
	"block":           true,
	"for_statement":   true,
	"while_statement": true,
	"with_statement":  true,
	"except_clause":   true,
}

func (g *pyGrammar) IsScope(nodeType string) bool      { return pyScopeTypes[nodeType] }
func (g *pyGrammar) IsIdentifier(nodeType string) bool { return nodeType == "identifier" }

func (g *pyGrammar) ClassName(node *sitter.Node, src []byte) (string, bool) {
	if node.Type() != "class_definition" {
		return "", false
	}
	name := node.ChildByFieldName("name")
	if name == nil {
		return "", false
	}
	return parser.GetNodeText(name, src), true
}

func (g *pyGrammar) Callable(node *sitter.Node, src []byte) (*CallableInfo, bool) {
	if node.Type() != "function_definition" {
		return nil, false
	}

	info := &CallableInfo{
		Node: node,
		Kind: KindFunction,
		Line: nodeLine(node),
		Body: node.ChildByFieldName("body"),
	}
	if name := node.ChildByFieldName("name"); name != nil {
		info.Name = parser.GetNodeText(name, src)
	}
	info.Override = pyHasOverrideDecorator(node, src)

	params := node.ChildByFieldName("parameters")
	if params == nil {
		return info, true
	}
	keywordOnly := false
	for i := range int(params.NamedChildCount()) {
		c := params.NamedChild(i)
		p := ParamInfo{Line: nodeLine(c), Named: keywordOnly}
		switch c.Type() {
		case "identifier":
			p.Name = parser.GetNodeText(c, src)
		case "typed_parameter":
			if id := c.NamedChild(0); id != nil && id.Type() == "identifier" {
				p.Name = parser.GetNodeText(id, src)
				p.Line = nodeLine(id)
			}
			if tn := c.ChildByFieldName("type"); tn != nil {
				p.TypeText = stripSpace(parser.GetNodeText(tn, src))
			}
		case "default_parameter", "typed_default_parameter":
			if name := c.ChildByFieldName("name"); name != nil {
				p.Name = parser.GetNodeText(name, src)
				p.Line = nodeLine(name)
			}
			if tn := c.ChildByFieldName("type"); tn != nil {
				p.TypeText = stripSpace(parser.GetNodeText(tn, src))
			}
			p.HasDefault = true
			p.Optional = true
		case "list_splat_pattern", "dictionary_splat_pattern":
			// *args / **kwargs; everything after a splat is keyword-only
			keywordOnly = true
			if id := c.NamedChild(0); id != nil && id.Type() == "identifier" {
				p.Name = parser.GetNodeText(id, src)
				p.Line = nodeLine(id)
			}
		case "keyword_separator":
			keywordOnly = true
			continue
		case "positional_separator":
			continue
		default:
			continue
		}
		if p.Name == "" {
			continue
		}
		info.Params = append(info.Params, p)
	}
	return info, true
}

func pyHasOverrideDecorator(node *sitter.Node, src []byte) bool {
	parent := node.Parent()
	if parent == nil || parent.Type() != "decorated_definition" {
		return false
	}
	for i := range int(parent.NamedChildCount()) {
		c := parent.NamedChild(i)
		if c.Type() != "decorator" {
			continue
		}
		text := parser.GetNodeText(c, src)
		if strings.Contains(text, "override") {
			return true
		}
	}
	return false
}

func (g *pyGrammar) IdentifierRole(node *sitter.Node, src []byte) Role {
	parent := node.Parent()
	if parent == nil {
		return RoleValue
	}

	switch parent.Type() {
	case "attribute":
		if fieldIs(parent, "attribute", node) {
			return RoleMemberName
		}
	case "keyword_argument":
		if fieldIs(parent, "name", node) {
			return RoleLabel
		}
	case "function_definition", "class_definition":
		if fieldIs(parent, "name", node) {
			return RoleDeclName
		}
	case "parameters":
		return RoleDeclName
	case "typed_parameter":
		if fieldIs(parent, "type", node) {
			return RoleTypeName
		}
		return RoleDeclName
	case "default_parameter", "typed_default_parameter":
		if fieldIs(parent, "name", node) {
			return RoleDeclName
		}
		if fieldIs(parent, "type", node) {
			return RoleTypeName
		}
	case "list_splat_pattern", "dictionary_splat_pattern":
		if pyInBindingPosition(parent) {
			return RoleDeclName
		}
	case "type":
		return RoleTypeName
	case "assignment":
		if fieldIs(parent, "left", node) {
			return RoleDeclName
		}
	case "pattern_list", "tuple_pattern":
		if pyInBindingPosition(parent) {
			return RoleDeclName
		}
	case "for_statement":
		if fieldIs(parent, "left", node) {
			return RoleDeclName
		}
	case "as_pattern":
		if fieldIs(parent, "alias", node) {
			return RoleDeclName
		}
	case "as_pattern_target":
		return RoleDeclName
	case "dotted_name":
		if anc := parent.Parent(); anc != nil {
			switch anc.Type() {
			case "import_statement", "import_from_statement", "aliased_import", "relative_import":
				return RoleIgnore
			}
		}
	case "aliased_import":
		return RoleIgnore
	case "import_from_statement":
		// bare imported names: `from x import a, b`
		return RoleIgnore
	}
	return RoleValue
}

// pyInBindingPosition reports whether a pattern container sits on the
// binding side of an assignment, loop, or parameter list.
func pyInBindingPosition(node *sitter.Node) bool {
	parent := node.Parent()
	if parent == nil {
		return false
	}
	switch parent.Type() {
	case "parameters":
		return true
	case "assignment":
		return fieldIs(parent, "left", node)
	case "for_statement":
		return fieldIs(parent, "left", node)
	case "pattern_list", "tuple_pattern":
		return pyInBindingPosition(parent)
	}
	return false
}

func (g *pyGrammar) LocalDecls(node *sitter.Node, src []byte) []Decl {
	switch node.Type() {
	case "assignment":
		left := node.ChildByFieldName("left")
		decls := pyTargetNames(left, src)
		for i := range decls {
			decls[i].IfAbsent = true
		}
		return decls
	case "for_statement":
		left := node.ChildByFieldName("left")
		decls := pyTargetNames(left, src)
		for i := range decls {
			decls[i].IfAbsent = true
		}
		return decls
	case "as_pattern":
		if alias := node.ChildByFieldName("alias"); alias != nil {
			target := alias
			if target.Type() == "as_pattern_target" {
				target = target.NamedChild(0)
			}
			if target != nil && target.Type() == "identifier" {
				return []Decl{{Name: parser.GetNodeText(target, src), Line: nodeLine(target)}}
			}
		}
	}
	return nil
}

// pyTargetNames extracts bindable identifiers from an assignment or loop
// target, ignoring attribute and subscript stores.
func pyTargetNames(node *sitter.Node, src []byte) []Decl {
	if node == nil {
		return nil
	}
	switch node.Type() {
	case "identifier":
		return []Decl{{Name: parser.GetNodeText(node, src), Line: nodeLine(node)}}
	case "pattern_list", "tuple_pattern", "list_pattern":
		var out []Decl
		for i := range int(node.NamedChildCount()) {
			out = append(out, pyTargetNames(node.NamedChild(i), src)...)
		}
		return out
	case "list_splat_pattern":
		return pyTargetNames(node.NamedChild(0), src)
	}
	return nil
}

func (g *pyGrammar) Imports(node *sitter.Node, src []byte) []string {
	switch node.Type() {
	case "import_statement":
		var specs []string
		for i := range int(node.NamedChildCount()) {
			c := node.NamedChild(i)
			switch c.Type() {
			case "dotted_name":
				specs = append(specs, pyDottedToPath(parser.GetNodeText(c, src)))
			case "aliased_import":
				if name := c.ChildByFieldName("name"); name != nil {
					specs = append(specs, pyDottedToPath(parser.GetNodeText(name, src)))
				}
			}
		}
		return specs
	case "import_from_statement":
		module := node.ChildByFieldName("module_name")
		if module == nil {
			return nil
		}
		var base string
		switch module.Type() {
		case "dotted_name":
			base = pyDottedToPath(parser.GetNodeText(module, src))
		case "relative_import":
			base = pyRelativeToPath(parser.GetNodeText(module, src))
		default:
			return nil
		}
		specs := []string{base}
		// imported names may be submodules rather than symbols, so each
		// is also emitted as a candidate path; names that only exist as
		// symbols drop out during resolution
		for i := range int(node.NamedChildCount()) {
			c := node.NamedChild(i)
			if c.Equal(module) {
				continue
			}
			name := c
			if c.Type() == "aliased_import" {
				name = c.ChildByFieldName("name")
			}
			if name == nil || name.Type() != "dotted_name" {
				continue
			}
			if text := pyDottedToPath(parser.GetNodeText(name, src)); text != "" {
				specs = append(specs, base+"/"+text)
			}
		}
		return specs
	}
	return nil
}

// pyDottedToPath converts a.b.c to a/b/c.
func pyDottedToPath(dotted string) string {
	return strings.ReplaceAll(strings.TrimSpace(dotted), ".", "/")
}

// pyRelativeToPath converts relative import prefixes: ".mod" resolves to
// ./mod, "..pkg.mod" to ../pkg/mod, and a bare "." to the package itself.
func pyRelativeToPath(spec string) string {
	spec = strings.TrimSpace(spec)
	dots := 0
	for dots < len(spec) && spec[dots] == '.' {
		dots++
	}
	rest := pyDottedToPath(spec[dots:])
	prefix := "./"
	if dots > 1 {
		prefix = strings.Repeat("../", dots-1)
	}
	if rest == "" {
		return strings.TrimSuffix(prefix, "/")
	}
	return prefix + rest
}

func (g *pyGrammar) EntryGuard(node *sitter.Node, src []byte) bool {
	if node.Type() != "if_statement" {
		return false
	}
	cond := node.ChildByFieldName("condition")
	if cond == nil {
		return false
	}
	text := parser.GetNodeText(cond, src)
	return strings.Contains(text, "__name__") && strings.Contains(text, "__main__")
}

func (g *pyGrammar) EmptyBody(body *sitter.Node, src []byte) bool {
	if body == nil {
		return true
	}
	for i := range int(body.NamedChildCount()) {
		c := body.NamedChild(i)
		switch c.Type() {
		case "comment", "pass_statement":
			continue
		case "expression_statement":
			// docstring-only bodies count as empty
			if c.NamedChildCount() == 1 && c.NamedChild(0).Type() == "string" {
				continue
			}
			return false
		default:
			return false
		}
	}
	return true
}
