package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kbukum/jobgraph/dag"
	"github.com/kbukum/jobgraph/runner"
)

func newSubmitCmd(st *cliState) *cobra.Command {
	var jobID string

	cmd := &cobra.Command{
		Use:   "submit <pipeline>",
		Short: "Store a new job graph and dispatch its entry nodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := st.loadPipeline(args[0])
			if err != nil {
				return err
			}
			if jobID == "" {
				jobID = uuid.NewString()
			}
			return st.withEngine(cmd, func(ctx context.Context, r *runner.Runner) error {
				ready, err := r.Submit(ctx, jobID, p)
				if err != nil {
					return err
				}
				return st.printReady(cmd.OutOrStdout(), jobID, ready)
			})
		},
	}

	cmd.Flags().StringVar(&jobID, "job-id", "", "Job id (default: a random UUID)")
	return cmd
}

func (st *cliState) printReady(w io.Writer, jobID string, ready []dag.ReadyNode) error {
	if st.json() {
		if ready == nil {
			ready = []dag.ReadyNode{}
		}
		return printJSON(w, map[string]any{"jobId": jobID, "ready": ready})
	}
	if len(ready) == 0 {
		_, _ = fmt.Fprintf(w, "Job %s: no nodes ready\n", jobID)
		return nil
	}
	_, _ = fmt.Fprintf(w, "Job %s\n", jobID)
	rows := make([][]string, 0, len(ready))
	for _, n := range ready {
		parents := make([]string, 0, len(n.ParentOutput))
		for _, po := range n.ParentOutput {
			ref := po.Node
			if po.Index > 0 {
				ref += ":" + strconv.Itoa(po.Index)
			}
			parents = append(parents, ref)
		}
		index := "-"
		if n.Index > 0 {
			index = strconv.Itoa(n.Index)
		}
		rows = append(rows, []string{n.NodeName, index, strings.Join(parents, ",")})
	}
	printTable(w, []string{"ready", "index", "parents"}, rows)
	return nil
}
