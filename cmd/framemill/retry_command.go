package main

import (
	"github.com/spf13/cobra"

	"framemill/internal/workflow"
)

func newRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry",
		Short: "Re-queue failed photos for the next run",
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
			retried, err := runner.RetryFailed(cmd.Context())
			if err != nil {
				return err
			}

			printer := newCountPrinter()
			printer.Fprintf(cmd.OutOrStdout(), "re-queued %d failed photos\n", retried)
			return nil
		},
	}
}
