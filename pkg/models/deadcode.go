package models

import "fmt"

// DeadCodeKind classifies a dead-code issue.
type DeadCodeKind string

const (
	DeadFile       DeadCodeKind = "deadFile"
	DeadClass      DeadCodeKind = "deadClass"
	DeadFunction   DeadCodeKind = "deadFunction"
	UnusedVariable DeadCodeKind = "unusedVariable"
)

// DeadCodeIssue is a single dead-code finding. Owner is set for issues
// scoped to an enclosing declaration (the function owning an unused
// variable).
type DeadCodeIssue struct {
	Kind  DeadCodeKind `json:"kind"`
	File  string       `json:"file"`
	Line  uint32       `json:"line"`
	Name  string       `json:"name"`
	Owner string       `json:"owner,omitempty"`
}

// String renders the canonical one-line form:
//
//	<path>:<line>: <kind> "<name>" in <owner>
//
// with the owner suffix omitted when Owner is empty.
func (i DeadCodeIssue) String() string {
	s := fmt.Sprintf("%s:%d: %s %q", i.File, i.Line, i.Kind, i.Name)
	if i.Owner != "" {
		s += " in " + i.Owner
	}
	return s
}

// Less orders issues by (file, line, kind, name) for deterministic output.
func (i DeadCodeIssue) Less(other DeadCodeIssue) bool {
	if i.File != other.File {
		return i.File < other.File
	}
	if i.Line != other.Line {
		return i.Line < other.Line
	}
	if i.Kind != other.Kind {
		return i.Kind < other.Kind
	}
	return i.Name < other.Name
}

// DeadCodeSummary provides aggregate statistics.
type DeadCodeSummary struct {
	TotalFiles      int            `json:"total_files"`
	ReachableFiles  int            `json:"reachable_files"`
	DeadFiles       int            `json:"dead_files"`
	DeadClasses     int            `json:"dead_classes"`
	DeadFunctions   int            `json:"dead_functions"`
	UnusedVariables int            `json:"unused_variables"`
	ByFile          map[string]int `json:"by_file"`
}

// NewDeadCodeSummary creates an initialized summary.
func NewDeadCodeSummary() DeadCodeSummary {
	return DeadCodeSummary{
		ByFile: make(map[string]int),
	}
}

// Add updates the summary with one issue.
func (s *DeadCodeSummary) Add(i DeadCodeIssue) {
	switch i.Kind {
	case DeadFile:
		s.DeadFiles++
	case DeadClass:
		s.DeadClasses++
	case DeadFunction:
		s.DeadFunctions++
	case UnusedVariable:
		s.UnusedVariables++
	}
	s.ByFile[i.File]++
}

// Total returns the total number of recorded issues.
func (s *DeadCodeSummary) Total() int {
	return s.DeadFiles + s.DeadClasses + s.DeadFunctions + s.UnusedVariables
}
