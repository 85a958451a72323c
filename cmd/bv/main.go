package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/groblegark/beadviz/internal/tracker"
	"github.com/groblegark/beadviz/internal/ui"
)

var (
	workDir    string
	trackerBin string
	jsonOutput bool
	noColor    bool
)

func defaultTrackerBin() string {
	if s := os.Getenv("BEADVIZ_TRACKER_BIN"); s != "" {
		return s
	}
	if p := activeProfileTrackerBin(); p != "" {
		return p
	}
	return "bd"
}

func defaultDir() string {
	if s := os.Getenv("BEADVIZ_DIR"); s != "" {
		return s
	}
	if p := activeProfileDir(); p != "" {
		return p
	}
	return "."
}

// newGateway builds the tracker gateway for the flags in effect.
func newGateway() tracker.Gateway {
	return tracker.NewCLI(trackerBin, workDir)
}

var rootCmd = &cobra.Command{
	Use:   "bv <command>",
	Short: "Visualize and sync the dependency graph of a bd issue tracker",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor || !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&workDir, "dir", defaultDir(), "working directory holding the tracker's storage")
	rootCmd.PersistentFlags().StringVar(&trackerBin, "tracker-bin", defaultTrackerBin(), "path to the tracker binary")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(profileCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
