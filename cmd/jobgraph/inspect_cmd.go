package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kbukum/jobgraph/runner"
)

func newInspectCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <jobId>",
		Short: "Show the node states of a stored job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.withEngine(cmd, func(ctx context.Context, r *runner.Runner) error {
				status, err := r.Inspect(ctx, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if st.json() {
					return printJSON(out, status)
				}

				state := "running"
				if status.Completed {
					state = "completed"
				}
				_, _ = fmt.Fprintf(out, "Job %s (%s)\n", status.JobID, state)
				rows := make([][]string, 0, len(status.Nodes))
				for _, n := range status.Nodes {
					rows = append(rows, []string{
						n.Name,
						string(n.Kind),
						strconv.Itoa(n.Level),
						string(n.Status),
						strconv.Itoa(n.Batch),
						strconv.FormatBool(n.Completed),
					})
				}
				printTable(out, []string{"node", "kind", "level", "status", "batch", "completed"}, rows)

				if len(status.Results) > 0 {
					_, _ = fmt.Fprintln(out)
					rows = rows[:0]
					for _, res := range status.Results {
						index := "-"
						if res.BatchIndex > 0 {
							index = strconv.Itoa(res.BatchIndex)
						}
						rows = append(rows, []string{res.NodeName, index, string(res.Status), compact(res.Result)})
					}
					printTable(out, []string{"result", "index", "status", "value"}, rows)
				}
				return nil
			})
		},
	}
}

func newJobsCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "List stored job ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return st.withEngine(cmd, func(ctx context.Context, r *runner.Runner) error {
				ids, err := r.Jobs(ctx)
				if err != nil {
					return err
				}
				if st.json() {
					if ids == nil {
						ids = []string{}
					}
					return printJSON(cmd.OutOrStdout(), ids)
				}
				rows := make([][]string, len(ids))
				for i, id := range ids {
					rows[i] = []string{id}
				}
				printTable(cmd.OutOrStdout(), []string{"job"}, rows)
				return nil
			})
		},
	}
}

func newForgetCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "forget <jobId>",
		Short: "Delete a stored job graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.withEngine(cmd, func(ctx context.Context, r *runner.Runner) error {
				if err := r.Forget(ctx, args[0]); err != nil {
					return err
				}
				if st.json() {
					return printJSON(cmd.OutOrStdout(), map[string]string{"deleted": args[0]})
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Job %s deleted\n", args[0])
				return nil
			})
		},
	}
}
