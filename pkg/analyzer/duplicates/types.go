package duplicates

import (
	"github.com/arborlint/arbor/pkg/engine"
	"github.com/arborlint/arbor/pkg/models"
)

// Kind is the pipeline bucket for duplicate-detection results.
const Kind engine.Kind = "duplicates"

// Config holds duplicate detection thresholds.
type Config struct {
	// MinTokens is the minimum normalized token count for a snippet to
	// participate in pairing.
	MinTokens int `json:"min_tokens" koanf:"min_tokens"`
	// MinLines is the minimum non-empty body line count.
	MinLines int `json:"min_lines" koanf:"min_lines"`
	// Threshold is the similarity cutoff in [0,1]; pairs at or above it
	// are reported.
	Threshold float64 `json:"threshold" koanf:"threshold"`
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{
		MinTokens: 20,
		MinLines:  10,
		Threshold: 0.8,
	}
}

// Snippet is one eligible callable body in normalized token form.
type Snippet struct {
	File   string   `json:"file"`
	Line   uint32   `json:"line"`
	Symbol string   `json:"symbol"`
	Tokens []string `json:"-"`
	Lines  int      `json:"lines"`
	// SigKey gates candidate pairing: only snippets whose canonical
	// parameter signatures hash identically are ever compared.
	SigKey uint64 `json:"sig_key"`
}

// FileSnippets is the per-file extraction result.
type FileSnippets struct {
	Path     string    `json:"path"`
	Snippets []Snippet `json:"snippets,omitempty"`
}

// ResultKind implements engine.Result.
func (f *FileSnippets) ResultKind() engine.Kind { return Kind }

// Analysis is the whole-project duplicate detection result.
type Analysis struct {
	Issues  []models.DuplicateCodeIssue `json:"issues"`
	Summary models.DuplicateSummary     `json:"summary"`
}
