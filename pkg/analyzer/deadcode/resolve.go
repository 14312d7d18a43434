package deadcode

import (
	"path/filepath"
	"strings"

	"github.com/arborlint/arbor/pkg/parser"
)

// resolver maps raw dependency specifiers to analyzed files. Specs that
// resolve outside the analyzed set (external packages, generated code)
// are dropped.
type resolver struct {
	root    string
	pkg     string
	srcDir  string
	present map[string]struct{}
}

func newResolver(root, pkg, srcDir string, files []string) *resolver {
	present := make(map[string]struct{}, len(files))
	for _, f := range files {
		present[filepath.Clean(f)] = struct{}{}
	}
	return &resolver{
		root:    filepath.Clean(root),
		pkg:     pkg,
		srcDir:  srcDir,
		present: present,
	}
}

// resolve maps one specifier, relative to the importing file, onto an
// analyzed file. Relative specs resolve against the importer's
// directory; package-root specs (<pkg>/rest) against <root>/<srcDir>;
// plain specs are tried under the project root and the source root.
func (r *resolver) resolve(from, spec string) (string, bool) {
	if spec == "" {
		return "", false
	}
	exts := parser.Extensions(parser.DetectLanguage(from))

	var bases []string
	switch {
	case isRelative(spec):
		bases = []string{filepath.Join(filepath.Dir(from), spec)}
	case r.pkg != "" && (spec == r.pkg || strings.HasPrefix(spec, r.pkg+"/")):
		rest := strings.TrimPrefix(strings.TrimPrefix(spec, r.pkg), "/")
		bases = []string{filepath.Join(r.root, r.srcDir, rest)}
	default:
		bases = []string{
			filepath.Join(r.root, spec),
			filepath.Join(r.root, r.srcDir, spec),
		}
	}

	for _, base := range bases {
		for _, cand := range candidates(base, exts) {
			if _, ok := r.present[filepath.Clean(cand)]; ok {
				return filepath.Clean(cand), true
			}
		}
	}
	return "", false
}

func isRelative(spec string) bool {
	return spec == "." || spec == ".." ||
		strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")
}

// candidates expands a resolved base path into the files it could name:
// the path itself, extension variants, and directory index modules.
func candidates(base string, exts []string) []string {
	out := []string{base}
	for _, e := range exts {
		out = append(out, base+e)
	}
	for _, e := range exts {
		switch e {
		case ".ts", ".tsx", ".js", ".jsx":
			out = append(out, filepath.Join(base, "index"+e))
		case ".py":
			out = append(out, filepath.Join(base, "__init__.py"))
		}
	}
	return out
}
