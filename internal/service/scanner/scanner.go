// Package scanner wraps the file scanner as a service used by the CLI
// and the MCP server.
package scanner

import (
	"path/filepath"

	"github.com/arborlint/arbor/internal/scanner"
	"github.com/arborlint/arbor/pkg/config"
	"github.com/arborlint/arbor/pkg/parser"
)

// ScanResult contains the result of a file scan.
type ScanResult struct {
	Files          []string
	LanguageGroups map[parser.Language][]string
}

// Service provides file scanning functionality.
type Service struct {
	config *config.Config
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// New creates a new scanner service.
func New(opts ...Option) *Service {
	s := &Service{
		config: config.LoadOrDefault("."),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.config == nil {
		s.config = config.DefaultConfig()
	}
	return s
}

// ScanPaths scans multiple paths and returns all found source files.
// Paths naming single files are included directly when eligible.
func (s *Service) ScanPaths(paths []string) (*ScanResult, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	scan := scanner.NewScanner(s.config)
	var files []string

	for _, path := range paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, &PathError{Path: path, Err: err}
		}
		if ok, err := scan.ScanFile(absPath); err == nil && ok {
			files = append(files, absPath)
			continue
		}
		found, err := scan.ScanDir(absPath)
		if err != nil {
			return nil, &ScanError{Path: path, Err: err}
		}
		files = append(files, found...)
	}

	files = s.filterLanguages(scan, files)

	result := &ScanResult{
		Files:          files,
		LanguageGroups: scan.GroupByLanguage(files),
	}

	return result, nil
}

// filterLanguages applies the analysis.languages allow-list.
func (s *Service) filterLanguages(scan *scanner.Scanner, files []string) []string {
	if len(s.config.Analysis.Languages) == 0 {
		return files
	}
	allowed := make(map[parser.Language]struct{}, len(s.config.Analysis.Languages))
	for _, name := range s.config.Analysis.Languages {
		allowed[parser.Language(name)] = struct{}{}
	}
	filtered := files[:0]
	for _, f := range files {
		if _, ok := allowed[parser.DetectLanguage(f)]; ok {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

// FilterBySize filters files by maximum size.
func (s *Service) FilterBySize(files []string, maxSize int64) ([]string, int) {
	return scanner.FilterBySize(files, maxSize)
}

// PathError indicates an invalid path.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return "invalid path " + e.Path + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// ScanError indicates a scanning failure.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return "failed to scan directory " + e.Path + ": " + e.Err.Error()
}

func (e *ScanError) Unwrap() error {
	return e.Err
}
