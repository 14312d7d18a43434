package semantic

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/arborlint/arbor/pkg/parser"
)

// goGrammar is intentionally shallow: Go has no promoted parameters,
// override markers, or named-argument labels, and its directory-based
// imports don't map onto the file-candidate resolver, so the profile
// contributes symbols and usages but no dependency edges.
type goGrammar struct{}

var goCallableTypes = map[string]bool{
	"function_declaration": true,
	"method_declaration":   true,
	"func_literal":         true,
}

var goScopeTypes = map[string]bool{
	"block":                       true,
	"for_statement":               true,
	"expression_switch_statement": true,
	"type_switch_statement":       true,
	"select_statement":            true,
}

var goIdentifierTypes = map[string]bool{
	"identifier":         true,
	"field_identifier":   true,
	"type_identifier":    true,
	"package_identifier": true,
	"label_name":         true,
}

func (g *goGrammar) IsScope(nodeType string) bool      { return goScopeTypes[nodeType] }
func (g *goGrammar) IsIdentifier(nodeType string) bool { return goIdentifierTypes[nodeType] }

func (g *goGrammar) ClassName(node *sitter.Node, src []byte) (string, bool) {
	if node.Type() != "type_spec" {
		return "", false
	}
	name := node.ChildByFieldName("name")
	if name == nil {
		return "", false
	}
	return parser.GetNodeText(name, src), true
}

func (g *goGrammar) Callable(node *sitter.Node, src []byte) (*CallableInfo, bool) {
	t := node.Type()
	if !goCallableTypes[t] {
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
	if t == "method_declaration" {
		info.Kind = KindMethod
	}

	if params := node.ChildByFieldName("parameters"); params != nil {
		info.Params = append(info.Params, goParams(params, src)...)
	}
	// Receivers are conventionally named even when unused; mark them
	// promoted so they're never reported.
	if recv := node.ChildByFieldName("receiver"); recv != nil {
		for _, p := range goParams(recv, src) {
			p.Promoted = true
			info.Params = append(info.Params, p)
		}
	}
	return info, true
}

func goParams(list *sitter.Node, src []byte) []ParamInfo {
	var out []ParamInfo
	for i := range int(list.NamedChildCount()) {
		c := list.NamedChild(i)
		switch c.Type() {
		case "parameter_declaration", "variadic_parameter_declaration":
		default:
			continue
		}
		typeText := ""
		if tn := c.ChildByFieldName("type"); tn != nil {
			typeText = stripSpace(parser.GetNodeText(tn, src))
		}
		named := false
		for j := range int(c.NamedChildCount()) {
			id := c.NamedChild(j)
			if id.Type() != "identifier" {
				continue
			}
			named = true
			out = append(out, ParamInfo{
				Name:     parser.GetNodeText(id, src),
				Line:     nodeLine(id),
				TypeText: typeText,
			})
		}
		if !named && typeText != "" {
			// unnamed parameter still shapes the signature
			out = append(out, ParamInfo{TypeText: typeText, Line: nodeLine(c)})
		}
	}
	return out
}

func (g *goGrammar) IdentifierRole(node *sitter.Node, src []byte) Role {
	parent := node.Parent()

	switch node.Type() {
	case "label_name":
		return RoleLabel
	case "package_identifier":
		return RoleValue
	case "type_identifier":
		if parent != nil && parent.Type() == "type_spec" && fieldIs(parent, "name", node) {
			return RoleDeclName
		}
		return RoleTypeName
	case "field_identifier":
		if parent == nil {
			return RoleMemberName
		}
		switch parent.Type() {
		case "method_declaration":
			if fieldIs(parent, "name", node) {
				return RoleDeclName
			}
		case "field_declaration":
			return RoleDeclName
		case "keyed_element", "literal_element":
			// struct literal field labels
			return RoleLabel
		}
		return RoleMemberName
	}

	if parent == nil {
		return RoleValue
	}
	switch parent.Type() {
	case "function_declaration":
		if fieldIs(parent, "name", node) {
			return RoleDeclName
		}
	case "parameter_declaration", "variadic_parameter_declaration":
		return RoleDeclName
	case "var_spec", "const_spec":
		return goSpecRole(parent, node)
	case "expression_list":
		gp := parent.Parent()
		if gp != nil {
			if gp.Type() == "short_var_declaration" && fieldIs(gp, "left", parent) {
				return RoleDeclName
			}
			if gp.Type() == "range_clause" && fieldIs(gp, "left", parent) {
				return RoleDeclName
			}
		}
	case "import_spec":
		return RoleIgnore
	}
	return RoleValue
}

// goSpecRole distinguishes declared names from value expressions inside
// var/const specs, where names are direct identifier children.
func goSpecRole(spec, node *sitter.Node) Role {
	if value := spec.ChildByFieldName("value"); value != nil {
		if node.StartByte() >= value.StartByte() && node.EndByte() <= value.EndByte() {
			return RoleValue
		}
	}
	if tn := spec.ChildByFieldName("type"); tn != nil {
		if node.StartByte() >= tn.StartByte() && node.EndByte() <= tn.EndByte() {
			return RoleTypeName
		}
	}
	return RoleDeclName
}

func (g *goGrammar) LocalDecls(node *sitter.Node, src []byte) []Decl {
	switch node.Type() {
	case "short_var_declaration":
		return goExprListNames(node.ChildByFieldName("left"), src)
	case "range_clause":
		decls := goExprListNames(node.ChildByFieldName("left"), src)
		for i := range decls {
			decls[i].IfAbsent = true
		}
		return decls
	case "var_spec", "const_spec":
		var out []Decl
		for i := range int(node.NamedChildCount()) {
			c := node.NamedChild(i)
			if c.Type() != "identifier" {
				continue
			}
			if goSpecRole(node, c) != RoleDeclName {
				continue
			}
			out = append(out, Decl{Name: parser.GetNodeText(c, src), Line: nodeLine(c)})
		}
		return out
	}
	return nil
}

func goExprListNames(list *sitter.Node, src []byte) []Decl {
	if list == nil {
		return nil
	}
	var out []Decl
	for i := range int(list.NamedChildCount()) {
		c := list.NamedChild(i)
		if c.Type() != "identifier" {
			continue
		}
		out = append(out, Decl{Name: parser.GetNodeText(c, src), Line: nodeLine(c)})
	}
	return out
}

func (g *goGrammar) Imports(node *sitter.Node, src []byte) []string {
	return nil
}

func (g *goGrammar) EntryGuard(node *sitter.Node, src []byte) bool {
	return false
}

func (g *goGrammar) EmptyBody(body *sitter.Node, src []byte) bool {
	if body == nil {
		return true
	}
	for i := range int(body.NamedChildCount()) {
		if body.NamedChild(i).Type() != "comment" {
			return false
		}
	}
	return true
}
