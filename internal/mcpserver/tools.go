package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	toon "github.com/toon-format/toon-go"

	"github.com/arborlint/arbor/internal/output"
	"github.com/arborlint/arbor/internal/service/analysis"
	scannerSvc "github.com/arborlint/arbor/internal/service/scanner"
	"github.com/arborlint/arbor/pkg/analyzer/duplicates"
	"github.com/arborlint/arbor/pkg/config"
)

// AnalyzeInput is the base input for all analyze tools.
type AnalyzeInput struct {
	Paths  []string `json:"paths,omitempty" jsonschema:"Paths to analyze. Defaults to current directory if empty."`
	Format string   `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// DeadcodeInput adds dead-code options.
type DeadcodeInput struct {
	AnalyzeInput
	Kind          string `json:"kind,omitempty" jsonschema:"Project kind: auto (default), app, or library. Libraries exempt public symbols."`
	Package       string `json:"package,omitempty" jsonschema:"Package name used to resolve package-root imports."`
	SourceDir     string `json:"source_dir,omitempty" jsonschema:"Source directory under the project root. Default src."`
	SkipVariables bool   `json:"skip_variables,omitempty" jsonschema:"Skip unused local variable reporting."`
}

// DuplicatesInput adds duplicate detection options.
type DuplicatesInput struct {
	AnalyzeInput
	MinTokens int     `json:"min_tokens,omitempty" jsonschema:"Minimum normalized tokens per snippet. Default 20."`
	MinLines  int     `json:"min_lines,omitempty" jsonschema:"Minimum non-empty body lines per snippet. Default 10."`
	Threshold float64 `json:"threshold,omitempty" jsonschema:"Similarity threshold (0.0-1.0). Default 0.8."`
}

// GraphInput adds graph options.
type GraphInput struct {
	AnalyzeInput
	Mermaid bool `json:"mermaid,omitempty" jsonschema:"Return a Mermaid diagram instead of metrics."`
}

// Helper functions

func getPaths(input AnalyzeInput) []string {
	if len(input.Paths) == 0 {
		return []string{"."}
	}
	return input.Paths
}

func getFormat(input AnalyzeInput) output.Format {
	switch input.Format {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func formatOutput(data any, format output.Format) (string, error) {
	out, err := toon.Marshal(data, toon.WithIndent(2))
	if err != nil {
		return "", err
	}
	if format == output.FormatMarkdown {
		return "```\n" + string(out) + "\n```", nil
	}
	return string(out), nil
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func scanFiles(paths []string) ([]string, *mcp.CallToolResult, any, error) {
	scanner := scannerSvc.New()
	scanResult, err := scanner.ScanPaths(paths)
	if err != nil {
		r, d, e := toolError(err.Error())
		return nil, r, d, e
	}
	if len(scanResult.Files) == 0 {
		r, d, e := toolError("no source files found")
		return nil, r, d, e
	}
	return scanResult.Files, nil, nil, nil
}

// Tool handlers

func handleAnalyzeDeadcode(ctx context.Context, req *mcp.CallToolRequest, input DeadcodeInput) (*mcp.CallToolResult, any, error) {
	paths := getPaths(input.AnalyzeInput)
	format := getFormat(input.AnalyzeInput)

	files, res, data, err := scanFiles(paths)
	if files == nil {
		return res, data, err
	}

	cfg := config.LoadOrDefault(paths[0])
	if input.Kind != "" {
		cfg.Project.Kind = input.Kind
	}
	if input.Package != "" {
		cfg.Project.Package = input.Package
	}
	if input.SourceDir != "" {
		cfg.Project.SourceDir = input.SourceDir
	}
	if input.SkipVariables {
		cfg.DeadCode.ReportUnusedVariables = false
	}

	svc := analysis.New(analysis.WithConfig(cfg))
	result, aerr := svc.AnalyzeDeadCode(ctx, files, analysis.DeadCodeOptions{Root: paths[0]})
	if aerr != nil {
		return toolError(aerr.Error())
	}

	return toolResult(result, format)
}

func handleAnalyzeDuplicates(ctx context.Context, req *mcp.CallToolRequest, input DuplicatesInput) (*mcp.CallToolResult, any, error) {
	paths := getPaths(input.AnalyzeInput)
	format := getFormat(input.AnalyzeInput)

	files, res, data, err := scanFiles(paths)
	if files == nil {
		return res, data, err
	}

	th := duplicates.DefaultConfig()
	if input.MinTokens > 0 {
		th.MinTokens = input.MinTokens
	}
	if input.MinLines > 0 {
		th.MinLines = input.MinLines
	}
	if input.Threshold > 0 {
		th.Threshold = input.Threshold
	}

	svc := analysis.New()
	result, aerr := svc.AnalyzeDuplicates(ctx, files, analysis.DuplicatesOptions{Thresholds: &th})
	if aerr != nil {
		return toolError(aerr.Error())
	}

	return toolResult(result, format)
}

func handleAnalyzeProject(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, any, error) {
	paths := getPaths(input)
	format := getFormat(input)

	files, res, data, err := scanFiles(paths)
	if files == nil {
		return res, data, err
	}

	svc := analysis.New(analysis.WithConfig(config.LoadOrDefault(paths[0])))
	result, aerr := svc.AnalyzeProject(ctx, files, analysis.ProjectOptions{Root: paths[0]})
	if aerr != nil {
		return toolError(aerr.Error())
	}

	return toolResult(result, format)
}

func handleAnalyzeGraph(ctx context.Context, req *mcp.CallToolRequest, input GraphInput) (*mcp.CallToolResult, any, error) {
	paths := getPaths(input.AnalyzeInput)
	format := getFormat(input.AnalyzeInput)

	files, res, data, err := scanFiles(paths)
	if files == nil {
		return res, data, err
	}

	svc := analysis.New(analysis.WithConfig(config.LoadOrDefault(paths[0])))
	result, aerr := svc.AnalyzeGraph(ctx, files, analysis.DeadCodeOptions{Root: paths[0]})
	if aerr != nil {
		return toolError(aerr.Error())
	}

	if input.Mermaid {
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: result.Graph.ToMermaid()},
			},
		}, nil, nil
	}

	return toolResult(result, format)
}
