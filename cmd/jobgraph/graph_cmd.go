package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/jobgraph/dag"
)

func newGraphCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "graph <pipeline>",
		Short: "Print the job graph a pipeline builds into",
		Long:  "Prints nodes with their levels and the typed edges between them. JSON output is the stored graph structure.",
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
			if st.json() {
				return printJSON(cmd.OutOrStdout(), m.Graph())
			}

			out := cmd.OutOrStdout()
			var rows [][]string
			for _, n := range m.AllNodes() {
				rows = append(rows, []string{
					n.NodeName,
					string(n.Kind),
					n.AlgorithmName,
					strconv.Itoa(n.Level),
					strings.Join(m.Parents(n.NodeName), ","),
				})
			}
			printTable(out, []string{"node", "kind", "algorithm", "level", "parents"}, rows)

			rows = rows[:0]
			for _, e := range m.Edges() {
				types := make([]string, len(e.Value.Types))
				for i, t := range e.Value.Types {
					types[i] = string(t)
				}
				rows = append(rows, []string{e.Source, e.Target, strings.Join(types, ",")})
			}
			if len(rows) > 0 {
				_, _ = fmt.Fprintln(out)
				printTable(out, []string{"source", "target", "types"}, rows)
			}
			return nil
		},
	}
}
