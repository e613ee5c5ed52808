package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"framemill/internal/workflow"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var showFailures bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show recorded processing progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := ctx.ensureRoot(cmd)
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger(cmd)
			if err != nil {
				return err
			}

			runner := workflow.NewRunner(root, ctx.processor(""), logger)
			summary, failed, err := runner.Status(cmd.Context())
			if err != nil {
				return err
			}

			rows := [][]string{
				{"pending", strconv.Itoa(summary.Pending)},
				{"in progress", strconv.Itoa(summary.InProgress)},
				{"done", strconv.Itoa(summary.Done)},
				{"failed", strconv.Itoa(summary.Failed)},
				{"total", strconv.Itoa(summary.Total())},
			}
			out := cmd.OutOrStdout()
			printOutput(out, renderTable(
				[]string{"Status", "Photos"}, rows, []columnAlignment{alignLeft, alignRight}))

			if showFailures && len(failed) > 0 {
				failureRows := make([][]string, 0, len(failed))
				for _, record := range failed {
					failureRows = append(failureRows, []string{record.Identity.String(), record.Error})
				}
				printOutput(out, renderTable(
					[]string{"Photo", "Reason"}, failureRows, []columnAlignment{alignLeft, alignLeft}))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showFailures, "failures", false, "List failed photos with reasons")
	return cmd
}
