// Package analyzer defines the contract shared by arbor's analyzers.
package analyzer

import "context"

// FileAnalyzer is the interface that all file-based analyzers implement.
// Both the dead-code and duplicate-code analyzers satisfy it, which lets
// the service layer and the pipeline treat them uniformly.
type FileAnalyzer[T any] interface {
	// Analyze processes a collection of files and returns the analysis result.
	// The context can be used for cancellation and progress reporting.
	Analyze(ctx context.Context, files []string) (T, error)

	// Close releases any resources held by the analyzer.
	Close()
}
