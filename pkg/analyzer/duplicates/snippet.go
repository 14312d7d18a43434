package duplicates

import (
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/arborlint/arbor/internal/semantic"
	"github.com/arborlint/arbor/pkg/parser"
	"github.com/arborlint/arbor/pkg/source"
)

// extractSnippets pulls one snippet per eligible callable from a parsed
// file: a normalized token sequence, the non-empty body line count, and
// the canonical signature key used to gate pairing.
func extractSnippets(fc *source.FileContext, cfg Config) *FileSnippets {
	out := &FileSnippets{Path: fc.Path}
	root := fc.Root()
	if root == nil {
		return out
	}

	for _, info := range semantic.Callables(root, fc.Source, fc.Language) {
		if info.Body == nil {
			continue
		}
		body := parser.GetNodeText(info.Body, fc.Source)
		tokens := normalizeTokens(tokenize(body), fc.Language)
		if len(tokens) < cfg.MinTokens {
			continue
		}
		lines := countNonEmptyLines(body)
		if lines < cfg.MinLines {
			continue
		}
		symbol := info.Symbol()
		if symbol == "" {
			symbol = "<anonymous>"
		}
		out.Snippets = append(out.Snippets, Snippet{
			File:   fc.Path,
			Line:   info.Line,
			Symbol: symbol,
			Tokens: tokens,
			Lines:  lines,
			SigKey: signatureKey(info.Params),
		})
	}
	return out
}

// signatureKey hashes the canonical parameter signature: per parameter
// the positional/named flag, required/optional flag, whitespace-stripped
// type text, and whether a default exists. Names and default values
// never participate, so renamed parameters keep the same key.
func signatureKey(params []semantic.ParamInfo) uint64 {
	var b strings.Builder
	for _, p := range params {
		if p.Named {
			b.WriteByte('n')
		} else {
			b.WriteByte('p')
		}
		if p.Optional {
			b.WriteByte('o')
		} else {
			b.WriteByte('r')
		}
		if p.HasDefault {
			b.WriteByte('d')
		} else {
			b.WriteByte('-')
		}
		b.WriteString(stripWhitespace(p.TypeText))
		b.WriteByte(';')
	}
	return xxhash.Sum64String(b.String())
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, s)
}

func countNonEmptyLines(body string) int {
	n := 0
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

// normalizeTokens maps identifiers to ID, numbers to NUM, and string
// literals to STR; the language's keywords, operators, and delimiters
// pass through.
func normalizeTokens(tokens []string, lang parser.Language) []string {
	kw := keywordSet(lang)
	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		normalized := normalizeToken(token, kw)
		if normalized != "" {
			result = append(result, normalized)
		}
	}
	return result
}

func normalizeToken(token string, kw map[string]bool) string {
	if token == "" {
		return ""
	}
	if kw[token] {
		return token
	}
	if isStringLiteral(token) {
		return "STR"
	}
	if isNumberLiteral(token) {
		return "NUM"
	}
	if isOperatorOrDelimiter(token) {
		return token
	}
	if isIdentifierStart(rune(token[0])) {
		return "ID"
	}
	return token
}

var goKeywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true,
	"for": true, "func": true, "go": true, "goto": true, "if": true,
	"import": true, "interface": true, "map": true, "package": true,
	"range": true, "return": true, "select": true, "struct": true,
	"switch": true, "type": true, "var": true,
	"nil": true, "true": true, "false": true, "iota": true,
}

var pythonKeywords = map[string]bool{
	"and": true, "as": true, "assert": true, "async": true, "await": true,
	"break": true, "class": true, "continue": true, "def": true, "del": true,
	"elif": true, "else": true, "except": true, "finally": true, "for": true,
	"from": true, "global": true, "if": true, "import": true, "in": true,
	"is": true, "lambda": true, "nonlocal": true, "not": true, "or": true,
	"pass": true, "raise": true, "return": true, "try": true, "while": true,
	"with": true, "yield": true,
	"None": true, "True": true, "False": true,
}

var jsKeywords = map[string]bool{
	"async": true, "await": true, "break": true, "case": true, "catch": true,
	"class": true, "const": true, "continue": true, "debugger": true,
	"default": true, "delete": true, "do": true, "else": true, "export": true,
	"extends": true, "finally": true, "for": true, "function": true,
	"if": true, "implements": true, "import": true, "in": true,
	"instanceof": true, "interface": true, "let": true, "new": true,
	"of": true, "return": true, "static": true, "super": true,
	"switch": true, "this": true, "throw": true, "try": true, "type": true,
	"typeof": true, "var": true, "void": true, "while": true, "with": true,
	"yield": true,
	"null": true, "undefined": true, "true": true, "false": true,
}

var keywordsByLang = map[parser.Language]map[string]bool{
	parser.LangGo:         goKeywords,
	parser.LangPython:     pythonKeywords,
	parser.LangTypeScript: jsKeywords,
	parser.LangTSX:        jsKeywords,
	parser.LangJavaScript: jsKeywords,
}

// keywordSet returns the keyword table for a language. Unknown
// languages get no keywords, so every word collapses to ID.
func keywordSet(lang parser.Language) map[string]bool {
	return keywordsByLang[lang]
}

func isStringLiteral(token string) bool {
	switch token[0] {
	case '"', '\'', '`':
		return true
	}
	return false
}

func isNumberLiteral(token string) bool {
	if token[0] >= '0' && token[0] <= '9' {
		return true
	}
	return len(token) > 1 && token[0] == '-' && token[1] >= '0' && token[1] <= '9'
}

// operators is a pre-allocated set of operators and delimiters.
var operators = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true,
	"=": true, "==": true, "!=": true, "<": true, ">": true,
	"<=": true, ">=": true, "&&": true, "||": true, "!": true,
	"&": true, "|": true, "^": true, "<<": true, ">>": true,
	"+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
	"++": true, "--": true, "->": true, "=>": true, "::": true,
	"..": true, "...": true, "?": true, ":": true, "??": true,
	"===": true, "!==": true,
	"(": true, ")": true, "[": true, "]": true, "{": true, "}": true,
	",": true, ";": true, ".": true,
}

func isOperatorOrDelimiter(token string) bool {
	return operators[token]
}

// tokenize splits code into tokens: string literals, numbers,
// identifiers, operators, and delimiters. Whitespace is dropped.
func tokenize(content string) []string {
	var tokens []string
	runes := []rune(content)
	i := 0

	for i < len(runes) {
		c := runes[i]

		if isWhitespace(c) {
			i++
			continue
		}

		// line comments
		if c == '/' && i+1 < len(runes) && runes[i+1] == '/' {
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			continue
		}
		if c == '#' {
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			continue
		}

		// block comments
		if c == '/' && i+1 < len(runes) && runes[i+1] == '*' {
			i += 2
			for i+1 < len(runes) && !(runes[i] == '*' && runes[i+1] == '/') {
				i++
			}
			i += 2
			continue
		}

		if c == '"' || c == '\'' || c == '`' {
			tokens = append(tokens, collectStringLiteral(runes, &i, c))
			continue
		}

		if isDigit(c) {
			tokens = append(tokens, collectNumber(runes, &i))
			continue
		}

		if isIdentifierStart(c) {
			tokens = append(tokens, collectIdentifier(runes, &i))
			continue
		}

		if op := collectOperator(runes, &i); op != "" {
			tokens = append(tokens, op)
			continue
		}

		tokens = append(tokens, string(c))
		i++
	}

	return tokens
}

// collectStringLiteral collects a string literal including quotes.
func collectStringLiteral(runes []rune, i *int, quote rune) string {
	var sb strings.Builder
	sb.WriteRune(runes[*i])
	*i++

	for *i < len(runes) {
		c := runes[*i]
		sb.WriteRune(c)
		*i++

		if c == quote {
			break
		}
		if c == '\\' && *i < len(runes) {
			sb.WriteRune(runes[*i])
			*i++
		}
	}

	return sb.String()
}

// collectNumber collects a numeric literal.
func collectNumber(runes []rune, i *int) string {
	var sb strings.Builder

	for *i < len(runes) {
		c := runes[*i]
		if isDigit(c) || c == '.' || c == '_' || c == 'x' || c == 'X' ||
			c == 'b' || c == 'B' || c == 'o' || c == 'O' ||
			(c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') ||
			c == 'e' || c == 'E' {
			sb.WriteRune(c)
			*i++
		} else {
			break
		}
	}

	return sb.String()
}

// collectIdentifier collects an identifier.
func collectIdentifier(runes []rune, i *int) string {
	var sb strings.Builder

	for *i < len(runes) {
		c := runes[*i]
		if isIdentifierChar(c) {
			sb.WriteRune(c)
			*i++
		} else {
			break
		}
	}

	return sb.String()
}

// collectOperator collects multi-character operators.
func collectOperator(runes []rune, i *int) string {
	if *i >= len(runes) {
		return ""
	}

	if *i+2 < len(runes) {
		op3 := string(runes[*i : *i+3])
		if op3 == "<<=" || op3 == ">>=" || op3 == "..." || op3 == "===" || op3 == "!==" {
			*i += 3
			return op3
		}
	}

	if *i+1 < len(runes) {
		op2 := string(runes[*i : *i+2])
		switch op2 {
		case "==", "!=", "<=", ">=", "&&", "||", "<<", ">>",
			"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
			"++", "--", "->", "=>", "::", "..", "??":
			*i += 2
			return op2
		}
	}

	return ""
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func isIdentifierStart(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '$'
}

func isIdentifierChar(c rune) bool {
	return isIdentifierStart(c) || isDigit(c)
}

func isWhitespace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
