package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/jobgraph/dag"
	apperrors "github.com/kbukum/jobgraph/errors"
	"github.com/kbukum/jobgraph/runner"
)

func newEventCmd(st *cliState) *cobra.Command {
	var (
		file   string
		ev     runner.TaskEvent
		status string
		result string
	)

	cmd := &cobra.Command{
		Use:   "event <jobId>",
		Short: "Apply a task event to a stored job",
		Long: `Applies a task state change to a stored job and prints the nodes that became ready.
The event is built from flags, or read as JSON from --file ("-" for stdin).`,
		Example: `  jobgraph event job-1 --node green --status succeed --result '{"ok":true}'
  echo '{"jobId":"job-1","nodeName":"green","status":"failed","error":"boom"}' | jobgraph event job-1 -f -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if file != "" {
				decoded, err := readEvent(cmd.InOrStdin(), file)
				if err != nil {
					return err
				}
				ev = decoded
			} else {
				ev.Status = dag.Status(status)
				if result != "" {
					if err := json.Unmarshal([]byte(result), &ev.Result); err != nil {
						ev.Result = result
					}
				}
			}
			ev.JobID = args[0]

			return st.withEngine(cmd, func(ctx context.Context, r *runner.Runner) error {
				ready, err := r.HandleEvent(ctx, ev)
				if err != nil {
					return err
				}
				return st.printReady(cmd.OutOrStdout(), ev.JobID, ready)
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the event as JSON from a file, or - for stdin")
	cmd.Flags().StringVar(&ev.TaskID, "task-id", "", "Task id (default: the node's own task)")
	cmd.Flags().StringVar(&ev.NodeName, "node", "", "Node name")
	cmd.Flags().StringVar(&status, "status", string(dag.StatusSucceed), "Task status")
	cmd.Flags().StringVar(&result, "result", "", "Task result; parsed as JSON when possible")
	cmd.Flags().StringVar(&ev.Error, "error", "", "Task error message")
	cmd.Flags().StringVar(&ev.Warning, "warning", "", "Task warning message")
	return cmd
}

func readEvent(stdin io.Reader, file string) (runner.TaskEvent, error) {
	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return runner.TaskEvent{}, apperrors.InvalidInput("file", err.Error())
	}
	var ev runner.TaskEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return runner.TaskEvent{}, apperrors.InvalidInput("event", err.Error())
	}
	return ev, nil
}
