package semantic

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/arborlint/arbor/pkg/parser"
)

// tsGrammar covers TypeScript, TSX, and JavaScript. The typed flag is
// informational only; the node-type checks degrade naturally for JS
// trees that never produce type nodes.
type tsGrammar struct {
	typed bool
}

var tsCallableTypes = map[string]bool{
	"function_declaration":           true,
	"generator_function_declaration": true,
	"function_expression":            true,
	"generator_function":             true,
	"arrow_function":                 true,
	"method_definition":              true,
}

var tsClassTypes = map[string]bool{
	"class_declaration":          true,
	"abstract_class_declaration": true,
	"interface_declaration":      true,
	"type_alias_declaration":     true,
	"enum_declaration":           true,
}

var tsScopeTypes = map[string]bool{
	"statement_block":  true,
	"for_statement":    true,
	"for_in_statement": true,
	"while_statement":  true,
	"do_statement":     true,
	"catch_clause":     true,
}

var tsIdentifierTypes = map[string]bool{
	"identifier":                            true,
	"property_identifier":                   true,
	"type_identifier":                       true,
	"shorthand_property_identifier":         true,
	"shorthand_property_identifier_pattern": true,
	"statement_identifier":                  true,
	"private_property_identifier":           true,
}

func (g *tsGrammar) IsScope(nodeType string) bool      { return tsScopeTypes[nodeType] }
func (g *tsGrammar) IsIdentifier(nodeType string) bool { return tsIdentifierTypes[nodeType] }

func (g *tsGrammar) ClassName(node *sitter.Node, src []byte) (string, bool) {
	if !tsClassTypes[node.Type()] {
		return "", false
	}
	name := node.ChildByFieldName("name")
	if name == nil {
		return "", false
	}
	return parser.GetNodeText(name, src), true
}

func (g *tsGrammar) Callable(node *sitter.Node, src []byte) (*CallableInfo, bool) {
	t := node.Type()
	if !tsCallableTypes[t] {
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
	if info.Name == "" {
		info.Name = tsInferredName(node, src)
	}
	if t == "method_definition" {
		info.Kind = KindMethod
		if info.Name == "constructor" {
			info.Kind = KindConstructor
		}
		info.Override = tsHasModifier(node, "override_modifier") || tsHasModifier(node, "override")
	}

	params := node.ChildByFieldName("parameters")
	if params == nil {
		// single-identifier arrow parameter
		if p := node.ChildByFieldName("parameter"); p != nil && p.Type() == "identifier" {
			info.Params = append(info.Params, ParamInfo{
				Name: parser.GetNodeText(p, src),
				Line: nodeLine(p),
			})
		}
		return info, true
	}
	for i := range int(params.NamedChildCount()) {
		c := params.NamedChild(i)
		info.Params = append(info.Params, g.param(c, src)...)
	}
	return info, true
}

// param expands one formal parameter into ParamInfos; destructuring
// parameters yield one entry per bound name.
func (g *tsGrammar) param(c *sitter.Node, src []byte) []ParamInfo {
	base := ParamInfo{Line: nodeLine(c)}
	pattern := c

	switch c.Type() {
	case "required_parameter", "optional_parameter":
		base.Optional = c.Type() == "optional_parameter"
		if tn := c.ChildByFieldName("type"); tn != nil {
			// type_annotation wraps the actual type node
			if inner := tn.NamedChild(0); inner != nil {
				base.TypeText = stripSpace(parser.GetNodeText(inner, src))
			}
		}
		if c.ChildByFieldName("value") != nil {
			base.HasDefault = true
			base.Optional = true
		}
		base.Promoted = tsHasModifier(c, "accessibility_modifier") || tsHasModifier(c, "readonly")
		pattern = c.ChildByFieldName("pattern")
		if pattern == nil {
			return nil
		}
	case "identifier":
		// plain JS formal parameter
	case "rest_pattern":
		pattern = c.NamedChild(0)
		if pattern == nil {
			return nil
		}
	case "this":
		return nil
	default:
		return nil
	}

	if pattern.Type() == "identifier" {
		base.Name = parser.GetNodeText(pattern, src)
		base.Line = nodeLine(pattern)
		return []ParamInfo{base}
	}
	if pattern.Type() == "rest_pattern" {
		if inner := pattern.NamedChild(0); inner != nil && inner.Type() == "identifier" {
			base.Name = parser.GetNodeText(inner, src)
			base.Line = nodeLine(inner)
			return []ParamInfo{base}
		}
		return nil
	}

	// destructured parameter: one entry per bound name
	var out []ParamInfo
	for _, d := range collectPatternNames(pattern, src) {
		p := base
		p.Name = d.Name
		p.Line = d.Line
		out = append(out, p)
	}
	return out
}

// tsInferredName names anonymous function values after their binding:
// const fn = () => {}, { handler: function() {} }, obj.fn = () => {}.
func tsInferredName(node *sitter.Node, src []byte) string {
	parent := node.Parent()
	if parent == nil {
		return ""
	}
	switch parent.Type() {
	case "variable_declarator":
		if name := parent.ChildByFieldName("name"); name != nil && name.Type() == "identifier" {
			return parser.GetNodeText(name, src)
		}
	case "pair":
		if key := parent.ChildByFieldName("key"); key != nil {
			return parser.GetNodeText(key, src)
		}
	case "assignment_expression":
		if left := parent.ChildByFieldName("left"); left != nil {
			text := parser.GetNodeText(left, src)
			if idx := strings.LastIndex(text, "."); idx >= 0 {
				return text[idx+1:]
			}
			return text
		}
	case "public_field_definition":
		if name := parent.ChildByFieldName("name"); name != nil {
			return parser.GetNodeText(name, src)
		}
	}
	return ""
}

func tsHasModifier(node *sitter.Node, modType string) bool {
	for i := range int(node.ChildCount()) {
		if node.Child(i).Type() == modType {
			return true
		}
	}
	return false
}

func (g *tsGrammar) IdentifierRole(node *sitter.Node, src []byte) Role {
	parent := node.Parent()

	switch node.Type() {
	case "statement_identifier":
		return RoleLabel
	case "type_identifier":
		if parent != nil && tsClassTypes[parent.Type()] && fieldIs(parent, "name", node) {
			return RoleDeclName
		}
		if parent != nil && parent.Type() == "type_parameter" {
			return RoleDeclName
		}
		return RoleTypeName
	case "private_property_identifier":
		if parent != nil && parent.Type() == "method_definition" && fieldIs(parent, "name", node) {
			return RoleDeclName
		}
		return RoleMemberName
	case "property_identifier":
		if parent == nil {
			return RoleMemberName
		}
		switch parent.Type() {
		case "method_definition", "public_field_definition", "abstract_method_signature",
			"method_signature", "property_signature", "enum_assignment":
			if fieldIs(parent, "name", node) {
				return RoleDeclName
			}
		case "pair", "pair_pattern":
			if fieldIs(parent, "key", node) {
				return RoleLabel
			}
		case "nested_type_identifier":
			return RoleTypeName
		}
		return RoleMemberName
	case "shorthand_property_identifier":
		return RoleValue
	case "shorthand_property_identifier_pattern":
		return RoleDeclName
	}

	// plain identifier
	if parent == nil {
		return RoleValue
	}
	switch parent.Type() {
	case "function_declaration", "generator_function_declaration", "function_expression",
		"function", "generator_function", "class_declaration", "variable_declarator",
		"enum_declaration":
		if fieldIs(parent, "name", node) {
			return RoleDeclName
		}
	case "required_parameter", "optional_parameter":
		if fieldIs(parent, "pattern", node) {
			return RoleDeclName
		}
	case "arrow_function":
		if fieldIs(parent, "parameter", node) {
			return RoleDeclName
		}
	case "catch_clause":
		if fieldIs(parent, "parameter", node) {
			return RoleDeclName
		}
	case "for_in_statement":
		if fieldIs(parent, "left", node) {
			return RoleDeclName
		}
	case "rest_pattern", "array_pattern", "object_pattern":
		return RoleDeclName
	case "pair_pattern":
		if fieldIs(parent, "value", node) {
			return RoleDeclName
		}
	case "assignment_pattern":
		if fieldIs(parent, "left", node) {
			return RoleDeclName
		}
	case "import_specifier", "namespace_import", "import_clause":
		return RoleIgnore
	case "export_specifier":
		// re-exports keep the symbol alive
		return RoleValue
	case "extends_clause", "implements_clause", "extends_type_clause":
		return RoleTypeName
	case "break_statement", "continue_statement":
		return RoleLabel
	}
	return RoleValue
}

func (g *tsGrammar) LocalDecls(node *sitter.Node, src []byte) []Decl {
	switch node.Type() {
	case "variable_declarator":
		if name := node.ChildByFieldName("name"); name != nil {
			return collectPatternNames(name, src)
		}
	case "for_in_statement":
		if left := node.ChildByFieldName("left"); left != nil {
			decls := collectPatternNames(left, src)
			for i := range decls {
				decls[i].IfAbsent = true
			}
			return decls
		}
	case "catch_clause":
		if p := node.ChildByFieldName("parameter"); p != nil {
			return collectPatternNames(p, src)
		}
	}
	return nil
}

func (g *tsGrammar) Imports(node *sitter.Node, src []byte) []string {
	switch node.Type() {
	case "import_statement", "export_statement":
		if s := node.ChildByFieldName("source"); s != nil {
			return []string{stripQuotes(parser.GetNodeText(s, src))}
		}
	}
	return nil
}

func (g *tsGrammar) EntryGuard(node *sitter.Node, src []byte) bool {
	return false
}

func (g *tsGrammar) EmptyBody(body *sitter.Node, src []byte) bool {
	if body == nil || body.Type() != "statement_block" {
		// expression-bodied arrow functions are never empty
		return body == nil
	}
	for i := range int(body.NamedChildCount()) {
		if body.NamedChild(i).Type() != "comment" {
			return false
		}
	}
	return true
}

// collectPatternNames gathers binding names from a (possibly nested)
// destructuring pattern, skipping default-value expressions.
func collectPatternNames(node *sitter.Node, src []byte) []Decl {
	var out []Decl
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "identifier", "shorthand_property_identifier_pattern":
			name := parser.GetNodeText(n, src)
			if name != "" {
				out = append(out, Decl{Name: name, Line: nodeLine(n)})
			}
			return
		case "assignment_pattern":
			// only the left side binds; the right is the default value
			walk(n.ChildByFieldName("left"))
			return
		case "property_identifier":
			// object pattern key, not a binding
			return
		}
		for i := range int(n.NamedChildCount()) {
			walk(n.NamedChild(i))
		}
	}
	walk(node)
	return out
}

func stripSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
