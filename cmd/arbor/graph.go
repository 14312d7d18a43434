package main

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arborlint/arbor/internal/output"
	"github.com/arborlint/arbor/internal/service/analysis"
	scannerSvc "github.com/arborlint/arbor/internal/service/scanner"
)

var graphCmd = &cobra.Command{
	Use:     "graph [path...]",
	Aliases: []string{"dag"},
	Short:   "Build the module dependency graph (Mermaid output)",
	RunE:    runGraph,
}

func init() {
	graphCmd.Flags().Bool("metrics", false, "Include PageRank and centrality metrics")

	analyzeCmd.AddCommand(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
	paths := getPaths(args)
	includeMetrics, _ := cmd.Flags().GetBool("metrics")

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

	tracker := newTracker("Building dependency graph...", len(scanResult.Files))
	svc := analysis.New(analysis.WithConfig(cfg))
	result, err := svc.AnalyzeGraph(cmd.Context(), scanResult.Files, analysis.DeadCodeOptions{
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
		if includeMetrics {
			return formatter.Output(result)
		}
		return formatter.Output(result.Graph)
	}

	w := formatter.Writer()
	fmt.Fprintln(w, "```mermaid")
	fmt.Fprint(w, result.Graph.ToMermaid())
	fmt.Fprintln(w, "```")

	if includeMetrics && result.Metrics != nil {
		metrics := result.Metrics

		fmt.Fprintln(w)
		if formatter.Colored() {
			color.Cyan("Graph Metrics:")
		} else {
			fmt.Fprintln(w, "Graph Metrics:")
		}
		fmt.Fprintf(w, "  Nodes: %d\n", metrics.Summary.TotalNodes)
		fmt.Fprintf(w, "  Edges: %d\n", metrics.Summary.TotalEdges)
		fmt.Fprintf(w, "  Avg Degree: %.2f\n", metrics.Summary.AvgDegree)
		fmt.Fprintf(w, "  Density: %.4f\n", metrics.Summary.Density)
		fmt.Fprintf(w, "  Components: %d\n", metrics.Summary.Components)
		if metrics.Summary.IsCyclic {
			fmt.Fprintf(w, "  Cycles: %d involving %d modules\n",
				metrics.Summary.CycleCount, len(metrics.Summary.CycleNodes))
		}

		if len(metrics.NodeMetrics) > 0 {
			fmt.Fprintln(w)
			if formatter.Colored() {
				color.Cyan("Top Modules by PageRank:")
			} else {
				fmt.Fprintln(w, "Top Modules by PageRank:")
			}
			sort.Slice(metrics.NodeMetrics, func(i, j int) bool {
				return metrics.NodeMetrics[i].PageRank > metrics.NodeMetrics[j].PageRank
			})
			for i, nm := range metrics.NodeMetrics {
				if i >= 5 {
					break
				}
				fmt.Fprintf(w, "  %s: %.4f (in: %d, out: %d)\n",
					nm.Name, nm.PageRank, nm.InDegree, nm.OutDegree)
			}
		}
	}

	return nil
}
