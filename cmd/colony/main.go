package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"colony.ai/internal/logging"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "colony",
		Short: "Foraging colony simulator",
		Long: `colony runs a discrete-time foraging simulation: bots search a grid for
resource patches, carry units back to storage and optionally lay trails
that other bots follow.

Runs are deterministic per seed. Snapshots and the per-tick log make a run
resumable and verifiable with "colony replay".`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")

	rootCmd.AddCommand(
		newRunCmd(),
		newReplayCmd(),
		newInspectCmd(),
		newTuningCmd(),
	)
	return rootCmd
}

func loggerFor(cmd *cobra.Command) (*log.Logger, error) {
	level, _ := cmd.Flags().GetString("log-level")
	return logging.New(cmd.ErrOrStderr(), level)
}
