package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/jobgraph/component"
)

func newHealthCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Start the configured backends and report their health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := st.newEngine()
			if err != nil {
				return err
			}
			return e.app.RunTask(cmd.Context(), func(ctx context.Context) error {
				return st.printHealth(cmd, e.app.Components.HealthAll(ctx))
			})
		},
	}
}

func (st *cliState) printHealth(cmd *cobra.Command, reports []component.Health) error {
	overall := component.Overall(reports)
	if st.json() {
		if err := printJSON(cmd.OutOrStdout(), map[string]any{
			"status":     overall,
			"components": reports,
		}); err != nil {
			return err
		}
	} else {
		rows := make([][]string, 0, len(reports))
		for _, h := range reports {
			msg := h.Message
			if msg == "" {
				msg = "-"
			}
			rows = append(rows, []string{h.Name, string(h.Status), msg})
		}
		printTable(cmd.OutOrStdout(), []string{"component", "status", "message"}, rows)
	}
	if overall != component.StatusHealthy {
		return fmt.Errorf("overall status %s", overall)
	}
	return nil
}
