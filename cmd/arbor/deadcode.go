package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arborlint/arbor/internal/output"
	"github.com/arborlint/arbor/internal/service/analysis"
	scannerSvc "github.com/arborlint/arbor/internal/service/scanner"
)

var deadcodeCmd = &cobra.Command{
	Use:     "deadcode [path...]",
	Aliases: []string{"dc"},
	Short:   "Detect unreachable files, unused symbols, and unused variables",
	RunE:    runDeadCode,
}

func init() {
	deadcodeCmd.Flags().String("kind", "", "Project kind: auto, app, library")
	deadcodeCmd.Flags().String("package", "", "Package name for self-import resolution")
	deadcodeCmd.Flags().String("source-dir", "", "Source directory for package-root imports")
	deadcodeCmd.Flags().Bool("skip-variables", false, "Skip unused local variable reporting")

	analyzeCmd.AddCommand(deadcodeCmd)
}

func runDeadCode(cmd *cobra.Command, args []string) error {
	paths := getPaths(args)

	cfg, err := loadConfig(paths)
	if err != nil {
		return err
	}
	if kind, _ := cmd.Flags().GetString("kind"); kind != "" {
		cfg.Project.Kind = kind
	}
	if pkg, _ := cmd.Flags().GetString("package"); pkg != "" {
		cfg.Project.Package = pkg
	}
	if srcDir, _ := cmd.Flags().GetString("source-dir"); srcDir != "" {
		cfg.Project.SourceDir = srcDir
	}
	if skip, _ := cmd.Flags().GetBool("skip-variables"); skip {
		cfg.DeadCode.ReportUnusedVariables = false
	}

	scanSvc := scannerSvc.New(scannerSvc.WithConfig(cfg))
	scanResult, err := scanSvc.ScanPaths(paths)
	if err != nil {
		return err
	}

	if len(scanResult.Files) == 0 {
		color.Yellow("No source files found")
		return nil
	}

	tracker := newTracker("Detecting dead code...", len(scanResult.Files))
	svc := analysis.New(analysis.WithConfig(cfg))
	result, err := svc.AnalyzeDeadCode(cmd.Context(), scanResult.Files, analysis.DeadCodeOptions{
		Root:       rootPath(paths),
		OnProgress: tracker.Tick,
	})
	tracker.FinishSuccess()
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	formatter, err := output.NewFormatter(output.ParseFormat(getFormat(cmd)), getOutputFile(cmd), true)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() == output.FormatJSON || formatter.Format() == output.FormatTOON {
		return formatter.Output(result)
	}

	if len(result.Issues) > 0 {
		var rows [][]string
		for _, issue := range result.Issues {
			kind := string(issue.Kind)
			if issue.Kind == "deadFile" {
				kind = color.RedString(kind)
			}
			rows = append(rows, []string{
				fmt.Sprintf("%s:%d", issue.File, issue.Line),
				kind,
				issue.Name,
				issue.Owner,
			})
		}

		table := output.NewTable(
			"Dead Code",
			[]string{"Location", "Kind", "Name", "Owner"},
			rows,
			nil,
			result,
		)
		if err := formatter.Output(table); err != nil {
			return err
		}
	}

	fmt.Printf("\nSummary: %d dead files, %d dead classes, %d dead functions, %d unused variables (%d of %d files reachable)\n",
		result.Summary.DeadFiles,
		result.Summary.DeadClasses,
		result.Summary.DeadFunctions,
		result.Summary.UnusedVariables,
		result.Summary.ReachableFiles,
		result.Summary.TotalFiles)

	return nil
}
