package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/arborlint/arbor/internal/progress"
	"github.com/arborlint/arbor/pkg/config"
)

// getPaths returns paths from args, defaulting to ["."]
func getPaths(args []string) []string {
	if len(args) == 0 {
		return []string{"."}
	}
	return args
}

// getFormat returns the format flag value from the command.
func getFormat(cmd *cobra.Command) string {
	format, _ := cmd.Flags().GetString("format")
	return format
}

// getOutputFile returns the output file path from the command.
func getOutputFile(cmd *cobra.Command) string {
	outputFile, _ := cmd.Flags().GetString("output")
	return outputFile
}

// loadConfig loads the config named by --config, or discovers one from
// the first analyzed path upward.
func loadConfig(paths []string) (*config.Config, error) {
	var cfg *config.Config
	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.LoadOrDefault(paths[0])
	}
	cfg.Exclude.Patterns = append(cfg.Exclude.Patterns, excludePatterns...)
	return cfg, nil
}

// rootPath resolves the project root used for import resolution.
func rootPath(paths []string) string {
	abs, err := filepath.Abs(paths[0])
	if err != nil {
		return paths[0]
	}
	if info, serr := os.Stat(abs); serr == nil && !info.IsDir() {
		return filepath.Dir(abs)
	}
	return abs
}

// newTracker creates a progress bar unless --no-progress is set. A nil
// tracker is safe to tick and finish.
func newTracker(label string, total int) *progress.Tracker {
	if noProgress {
		return nil
	}
	return progress.NewTracker(label, total)
}
