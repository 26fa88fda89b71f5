package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/jobgraph/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the jobgraph version",
		Args:  cobra.NoArgs,
		// Skips config loading.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), info)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "jobgraph version %s (commit: %s)\n", info.Version, info.Commit)
			return nil
		},
	}
}

func getOutputFormat(cmd *cobra.Command) string {
	output, _ := cmd.Root().PersistentFlags().GetString("output")
	return output
}
