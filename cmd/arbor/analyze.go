package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arborlint/arbor/internal/output"
	"github.com/arborlint/arbor/internal/service/analysis"
	scannerSvc "github.com/arborlint/arbor/internal/service/scanner"
)

var analyzeCmd = &cobra.Command{
	Use:     "analyze [path...]",
	Aliases: []string{"a"},
	Short:   "Run all analyzers through the shared single-pass pipeline",
	RunE:    runAnalyze,
}

func init() {
	// Persistent flags inherited by all analyzer subcommands
	analyzeCmd.PersistentFlags().StringP("format", "f", "text", "Output format: text, json, markdown, toon")
	analyzeCmd.PersistentFlags().StringP("output", "o", "", "Write output to file")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	paths := getPaths(args)

	cfg, err := loadConfig(paths)
	if err != nil {
		return err
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

	formatter, err := output.NewFormatter(output.ParseFormat(getFormat(cmd)), getOutputFile(cmd), true)
	if err != nil {
		return err
	}
	defer formatter.Close()

	startTime := time.Now()

	tracker := newTracker("Analyzing project...", len(scanResult.Files))
	svc := analysis.New(analysis.WithConfig(cfg))
	result, err := svc.AnalyzeProject(cmd.Context(), scanResult.Files, analysis.ProjectOptions{
		Root:       rootPath(paths),
		OnProgress: tracker.Tick,
	})
	tracker.FinishSuccess()
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(formatter.Writer(), "Parsed %d files in %s\n\n",
			result.Parses, time.Since(startTime).Round(time.Millisecond))
	}

	if formatter.Format() == output.FormatJSON || formatter.Format() == output.FormatTOON {
		return formatter.Output(result)
	}

	w := formatter.Writer()

	if result.DeadCode != nil {
		if formatter.Colored() {
			color.Cyan("=== Dead Code ===")
		} else {
			fmt.Fprintln(w, "=== Dead Code ===")
		}
		for _, issue := range result.DeadCode.Issues {
			fmt.Fprintln(w, issue.String())
		}
		s := result.DeadCode.Summary
		fmt.Fprintf(w, "\n%d issues across %d files (%d reachable of %d)\n\n",
			s.Total(), len(s.ByFile), s.ReachableFiles, s.TotalFiles)
	}

	if result.Duplicates != nil {
		if formatter.Colored() {
			color.Cyan("=== Duplicates ===")
		} else {
			fmt.Fprintln(w, "=== Duplicates ===")
		}
		for _, issue := range result.Duplicates.Issues {
			fmt.Fprintln(w, issue.String())
		}
		s := result.Duplicates.Summary
		fmt.Fprintf(w, "\n%d duplicate pairs, %d duplicated lines across %d files\n",
			s.TotalPairs, s.DuplicatedLines, s.FilesScanned)
	}

	return nil
}
