package models

import (
	"fmt"
	"math"
)

// DuplicateCodeIssue is one reported pair of similar callables.
type DuplicateCodeIssue struct {
	FileA      string  `json:"file_a"`
	LineA      uint32  `json:"line_a"`
	SymbolA    string  `json:"symbol_a"`
	FileB      string  `json:"file_b"`
	LineB      uint32  `json:"line_b"`
	SymbolB    string  `json:"symbol_b"`
	Similarity float64 `json:"similarity"` // 0.0-1.0
	Lines      int     `json:"lines"`      // min body line count of the pair
}

// String renders the canonical one-line form:
//
//	<pct>% (<n> lines) <pathA>:<lineA> <-> <pathB>:<lineB> (<symbolA>, <symbolB>)
func (i DuplicateCodeIssue) String() string {
	pct := int(math.Round(i.Similarity * 100))
	return fmt.Sprintf("%d%% (%d lines) %s:%d <-> %s:%d (%s, %s)",
		pct, i.Lines, i.FileA, i.LineA, i.FileB, i.LineB, i.SymbolA, i.SymbolB)
}

// Less orders issues by (similarity desc, lines desc, fileA, fileB,
// lineA, lineB, symbolA, symbolB) for deterministic output.
func (i DuplicateCodeIssue) Less(other DuplicateCodeIssue) bool {
	if i.Similarity != other.Similarity {
		return i.Similarity > other.Similarity
	}
	if i.Lines != other.Lines {
		return i.Lines > other.Lines
	}
	if i.FileA != other.FileA {
		return i.FileA < other.FileA
	}
	if i.FileB != other.FileB {
		return i.FileB < other.FileB
	}
	if i.LineA != other.LineA {
		return i.LineA < other.LineA
	}
	if i.LineB != other.LineB {
		return i.LineB < other.LineB
	}
	if i.SymbolA != other.SymbolA {
		return i.SymbolA < other.SymbolA
	}
	return i.SymbolB < other.SymbolB
}

// DuplicateSummary provides aggregate statistics over reported pairs.
type DuplicateSummary struct {
	TotalPairs      int            `json:"total_pairs"`
	SnippetCount    int            `json:"snippet_count"`
	FilesScanned    int            `json:"files_scanned"`
	DuplicatedLines int            `json:"duplicated_lines"`
	AvgSimilarity   float64        `json:"avg_similarity"`
	P50Similarity   float64        `json:"p50_similarity"`
	P95Similarity   float64        `json:"p95_similarity"`
	FileOccurrences map[string]int `json:"file_occurrences"`
}

// NewDuplicateSummary creates an initialized summary.
func NewDuplicateSummary() DuplicateSummary {
	return DuplicateSummary{
		FileOccurrences: make(map[string]int),
	}
}

// AddPair updates the summary with a reported pair.
func (s *DuplicateSummary) AddPair(i DuplicateCodeIssue) {
	s.TotalPairs++
	s.DuplicatedLines += i.Lines
	s.FileOccurrences[i.FileA]++
	if i.FileA != i.FileB {
		s.FileOccurrences[i.FileB]++
	}
}
