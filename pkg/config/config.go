// Package config loads and validates arbor configuration from
// arbor.toml / arbor.yaml / arbor.json, searched upward from the
// working directory.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	koanfjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/arborlint/arbor/pkg/analyzer/duplicates"
)

// Config holds all configuration options for arbor.
type Config struct {
	// Project settings drive entry-point and import resolution.
	Project ProjectConfig `koanf:"project"`

	// DeadCode settings
	DeadCode DeadCodeConfig `koanf:"deadcode"`

	// Duplicates settings
	Duplicates DuplicatesConfig `koanf:"duplicates"`

	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output"`
}

// ProjectConfig describes the project layout.
type ProjectConfig struct {
	// Kind is "auto", "app", or "library". Auto behaves as app.
	Kind string `koanf:"kind"`
	// Package is the package name used for package-root imports.
	Package string `koanf:"package"`
	// SourceDir is the source directory under the project root.
	SourceDir string `koanf:"source_dir"`
	// InternalDirs lists source-root subdirectories that are not part
	// of the public API of a library.
	InternalDirs []string `koanf:"internal_dirs"`
}

// DeadCodeConfig controls dead-code analysis.
type DeadCodeConfig struct {
	Enabled               bool `koanf:"enabled"`
	ReportUnusedVariables bool `koanf:"report_unused_variables"`
}

// DuplicatesConfig controls duplicate detection.
type DuplicatesConfig struct {
	Enabled   bool    `koanf:"enabled"`
	MinTokens int     `koanf:"min_tokens"`
	MinLines  int     `koanf:"min_lines"`
	Threshold float64 `koanf:"threshold"`
}

// Thresholds converts the section into analyzer thresholds.
func (c DuplicatesConfig) Thresholds() duplicates.Config {
	return duplicates.Config{
		MinTokens: c.MinTokens,
		MinLines:  c.MinLines,
		Threshold: c.Threshold,
	}
}

// AnalysisConfig controls shared analysis behavior.
type AnalysisConfig struct {
	// Languages limits analysis to the named languages; empty means all
	// supported languages.
	Languages []string `koanf:"languages"`
	// Workers caps the parallel extraction workers; 0 means auto.
	Workers int `koanf:"workers"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns   []string `koanf:"patterns"`
	Extensions []string `koanf:"extensions"`
	Dirs       []string `koanf:"dirs"`
	Gitignore  bool     `koanf:"gitignore"`
}

// CacheConfig controls result caching.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
	TTLDays int    `koanf:"ttl_days"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format"` // text, json, markdown, toon
	Color   bool   `koanf:"color"`
	Verbose bool   `koanf:"verbose"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	dup := duplicates.DefaultConfig()
	return &Config{
		Project: ProjectConfig{
			Kind:         "auto",
			SourceDir:    "src",
			InternalDirs: []string{"internal"},
		},
		DeadCode: DeadCodeConfig{
			Enabled:               true,
			ReportUnusedVariables: true,
		},
		Duplicates: DuplicatesConfig{
			Enabled:   true,
			MinTokens: dup.MinTokens,
			MinLines:  dup.MinLines,
			Threshold: dup.Threshold,
		},
		Analysis: AnalysisConfig{
			Workers: 0,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*_test.go",
				"*.test.ts",
				"*.spec.ts",
				"*_test.py",
				"*.min.js",
				"*.min.css",
			},
			Extensions: []string{
				".lock",
				".sum",
			},
			Dirs: []string{
				"vendor",
				"node_modules",
				".git",
				".arbor",
				"dist",
				"build",
				"__pycache__",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".arbor/cache",
			TTLDays: 7,
		},
		Output: OutputConfig{
			Format:  "text",
			Color:   true,
			Verbose: false,
		},
	}
}

// Load loads configuration from a file, validates it against the
// embedded schema, and merges it over the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = koanfjson.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	if err := validate(k.Raw()); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// configNames are the file names searched for, in priority order.
var configNames = []string{
	"arbor.toml",
	"arbor.yaml",
	"arbor.yml",
	"arbor.json",
	".arbor.toml",
	".arbor.yaml",
	".arbor.yml",
	".arbor.json",
}

// LoadOrDefault searches the given directory and its ancestors for a
// config file and falls back to the defaults when none loads.
func LoadOrDefault(dir string) *Config {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return DefaultConfig()
	}

	for {
		for _, name := range configNames {
			path := filepath.Join(abs, name)
			if _, err := os.Stat(path); err == nil {
				if cfg, err := Load(path); err == nil {
					return cfg
				}
			}
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			break
		}
		abs = parent
	}

	return DefaultConfig()
}

// validate checks the raw config tree against the embedded JSON Schema
// so typos and out-of-range values fail loudly instead of silently
// falling back to defaults.
func validate(raw map[string]interface{}) error {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	value, err := jsonschema.UnmarshalJSON(bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	return sch.Validate(value)
}

func compiledSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(configSchema))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("arbor://config.schema.json", doc); err != nil {
		return nil, err
	}
	return c.Compile("arbor://config.schema.json")
}

const configSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "project": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "kind": {"type": "string", "enum": ["auto", "app", "library"]},
        "package": {"type": "string"},
        "source_dir": {"type": "string"},
        "internal_dirs": {"type": "array", "items": {"type": "string"}}
      }
    },
    "deadcode": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "enabled": {"type": "boolean"},
        "report_unused_variables": {"type": "boolean"}
      }
    },
    "duplicates": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "enabled": {"type": "boolean"},
        "min_tokens": {"type": "integer", "minimum": 1},
        "min_lines": {"type": "integer", "minimum": 1},
        "threshold": {"type": "number", "minimum": 0, "maximum": 1}
      }
    },
    "analysis": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "languages": {"type": "array", "items": {"type": "string"}},
        "workers": {"type": "integer", "minimum": 0}
      }
    },
    "exclude": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "patterns": {"type": "array", "items": {"type": "string"}},
        "extensions": {"type": "array", "items": {"type": "string"}},
        "dirs": {"type": "array", "items": {"type": "string"}},
        "gitignore": {"type": "boolean"}
      }
    },
    "cache": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "enabled": {"type": "boolean"},
        "dir": {"type": "string"},
        "ttl_days": {"type": "integer", "minimum": 0}
      }
    },
    "output": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "format": {"type": "string", "enum": ["text", "json", "markdown", "toon"]},
        "color": {"type": "boolean"},
        "verbose": {"type": "boolean"}
      }
    }
  }
}`

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	ext := filepath.Ext(path)
	for _, excludeExt := range c.Exclude.Extensions {
		if ext == excludeExt {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}
