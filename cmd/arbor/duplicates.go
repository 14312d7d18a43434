package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arborlint/arbor/internal/output"
	"github.com/arborlint/arbor/internal/service/analysis"
	scannerSvc "github.com/arborlint/arbor/internal/service/scanner"
)

var duplicatesCmd = &cobra.Command{
	Use:     "duplicates [path...]",
	Aliases: []string{"dup", "clones"},
	Short:   "Detect near-duplicate functions and methods",
	RunE:    runDuplicates,
}

func init() {
	duplicatesCmd.Flags().Int("min-tokens", 0, "Minimum normalized tokens per snippet")
	duplicatesCmd.Flags().Int("min-lines", 0, "Minimum body lines per snippet")
	duplicatesCmd.Flags().Float64("threshold", 0, "Similarity threshold (0.0-1.0)")

	analyzeCmd.AddCommand(duplicatesCmd)
}

func runDuplicates(cmd *cobra.Command, args []string) error {
	paths := getPaths(args)

	cfg, err := loadConfig(paths)
	if err != nil {
		return err
	}

	th := cfg.Duplicates.Thresholds()
	if n, _ := cmd.Flags().GetInt("min-tokens"); n > 0 {
		th.MinTokens = n
	}
	if n, _ := cmd.Flags().GetInt("min-lines"); n > 0 {
		th.MinLines = n
	}
	if t, _ := cmd.Flags().GetFloat64("threshold"); t > 0 {
		th.Threshold = t
	}
	if th.Threshold < 0 || th.Threshold > 1 {
		return fmt.Errorf("--threshold must be between 0.0 and 1.0 (got %g)", th.Threshold)
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

	tracker := newTracker("Detecting duplicates...", len(scanResult.Files))
	svc := analysis.New(analysis.WithConfig(cfg))
	result, err := svc.AnalyzeDuplicates(cmd.Context(), scanResult.Files, analysis.DuplicatesOptions{
		Thresholds: &th,
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

	if len(result.Issues) == 0 {
		fmt.Fprintf(formatter.Writer(), "No duplicates found across %d files\n", result.Summary.FilesScanned)
		return nil
	}

	var rows [][]string
	for _, issue := range result.Issues {
		simStr := fmt.Sprintf("%.0f%%", issue.Similarity*100)
		if issue.Similarity >= 0.95 {
			simStr = color.RedString(simStr)
		} else if issue.Similarity >= 0.9 {
			simStr = color.YellowString(simStr)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%s:%d", issue.FileA, issue.LineA),
			issue.SymbolA,
			fmt.Sprintf("%s:%d", issue.FileB, issue.LineB),
			issue.SymbolB,
			simStr,
			fmt.Sprintf("%d", issue.Lines),
		})
	}

	table := output.NewTable(
		"Duplicate Code",
		[]string{"Location A", "Symbol A", "Location B", "Symbol B", "Similarity", "Lines"},
		rows,
		[]string{
			fmt.Sprintf("Pairs: %d", result.Summary.TotalPairs),
			fmt.Sprintf("Duplicated Lines: %d", result.Summary.DuplicatedLines),
			fmt.Sprintf("Avg Sim: %.0f%%", result.Summary.AvgSimilarity*100),
		},
		result,
	)

	if err := formatter.Output(table); err != nil {
		return err
	}

	fmt.Printf("\nSummary: %d duplicate pairs across %d files (thresholds: %d tokens, %d lines, %.0f%%)\n",
		result.Summary.TotalPairs,
		result.Summary.FilesScanned,
		th.MinTokens,
		th.MinLines,
		th.Threshold*100)

	return nil
}
