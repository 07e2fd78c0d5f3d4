package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"colony.ai/internal/sim/tuning"
)

func newTuningCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tuning",
		Short: "Print or validate tuning files",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "defaults",
			Short: "Print the default tuning as YAML",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				b, err := tuning.Defaults().YAML()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(b)
				return err
			},
		},
		&cobra.Command{
			Use:   "validate <file>",
			Short: "Check a tuning file against the schema and the world rules",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				t, err := tuning.Load(args[0])
				if err != nil {
					return err
				}
				if err := t.Check(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "OK: %s\n", args[0])
				return nil
			},
		},
	)
	return cmd
}
