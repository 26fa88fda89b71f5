package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/jobgraph/dag"
)

func newValidateCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <pipeline>",
		Short: "Check that a pipeline builds into a valid job graph",
		Long:  "Loads a pipeline file (or a pipeline by name from the configured directories) and builds its graph without storing it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := st.loadPipeline(args[0])
			if err != nil {
				return err
			}
			m, err := dag.New(p, append(st.cfg.Engine.GraphOptions(), dag.WithLogger(st.log))...)
			if err != nil {
				return err
			}

			nodes, edges := len(m.AllNodes()), len(m.Edges())
			if st.json() {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"name":  p.Name,
					"valid": true,
					"nodes": nodes,
					"edges": edges,
				})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Pipeline %s is valid (%d nodes, %d edges)\n", p.Name, nodes, edges)
			return nil
		},
	}
}
