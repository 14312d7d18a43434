package models

import (
	"sort"
	"testing"
)

func TestDeadCodeIssueString(t *testing.T) {
	tests := []struct {
		name  string
		issue DeadCodeIssue
		want  string
	}{
		{
			name:  "dead function",
			issue: DeadCodeIssue{Kind: DeadFunction, File: "src/util.ts", Line: 12, Name: "helper"},
			want:  `src/util.ts:12: deadFunction "helper"`,
		},
		{
			name:  "dead file reports line 1",
			issue: DeadCodeIssue{Kind: DeadFile, File: "src/old.ts", Line: 1, Name: "old.ts"},
			want:  `src/old.ts:1: deadFile "old.ts"`,
		},
		{
			name:  "unused variable carries owner",
			issue: DeadCodeIssue{Kind: UnusedVariable, File: "src/a.ts", Line: 4, Name: "tmp", Owner: "process"},
			want:  `src/a.ts:4: unusedVariable "tmp" in process`,
		},
		{
			name:  "dead class",
			issue: DeadCodeIssue{Kind: DeadClass, File: "lib/m.py", Line: 30, Name: "Legacy"},
			want:  `lib/m.py:30: deadClass "Legacy"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.issue.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeadCodeIssueOrdering(t *testing.T) {
	issues := []DeadCodeIssue{
		{Kind: DeadFunction, File: "b.ts", Line: 1, Name: "x"},
		{Kind: UnusedVariable, File: "a.ts", Line: 9, Name: "v"},
		{Kind: DeadFunction, File: "a.ts", Line: 9, Name: "a"},
		{Kind: DeadClass, File: "a.ts", Line: 2, Name: "C"},
	}

	sort.Slice(issues, func(i, j int) bool { return issues[i].Less(issues[j]) })

	got := make([]string, len(issues))
	for i, issue := range issues {
		got[i] = issue.String()
	}
	want := []string{
		`a.ts:2: deadClass "C"`,
		`a.ts:9: deadFunction "a"`,
		`a.ts:9: unusedVariable "v"`,
		`b.ts:1: deadFunction "x"`,
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDeadCodeSummaryAdd(t *testing.T) {
	s := NewDeadCodeSummary()
	s.Add(DeadCodeIssue{Kind: DeadFile, File: "a.ts"})
	s.Add(DeadCodeIssue{Kind: DeadFunction, File: "a.ts"})
	s.Add(DeadCodeIssue{Kind: DeadFunction, File: "b.ts"})
	s.Add(DeadCodeIssue{Kind: DeadClass, File: "b.ts"})
	s.Add(DeadCodeIssue{Kind: UnusedVariable, File: "b.ts"})

	if s.DeadFiles != 1 || s.DeadFunctions != 2 || s.DeadClasses != 1 || s.UnusedVariables != 1 {
		t.Errorf("unexpected counts: %+v", s)
	}
	if s.Total() != 5 {
		t.Errorf("Total() = %d, want 5", s.Total())
	}
	if s.ByFile["a.ts"] != 2 || s.ByFile["b.ts"] != 3 {
		t.Errorf("ByFile = %v", s.ByFile)
	}
}
