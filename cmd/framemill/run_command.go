package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"framemill/internal/scheduler"
	"framemill/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var converter string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scan the project and develop every pending photo",
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

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runner := workflow.NewRunner(root, ctx.processor(converter), logger)
			result, err := runner.Run(runCtx)
			if result != nil {
				printRunResult(cmd, result)
			}
			if errors.Is(err, scheduler.ErrBudgetExceeded) {
				return fmt.Errorf("halted: more than %d photos failed", root.MaxProcessingErrors)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&converter, "converter", "", "Raw converter binary")
	return cmd
}

func printRunResult(cmd *cobra.Command, result *workflow.Result) {
	printer := newCountPrinter()
	printer.Fprintf(cmd.OutOrStdout(), "scanned %d photos, selected %d\n", result.Scanned, result.Sampled)
	printer.Fprintf(cmd.OutOrStdout(), "succeeded %d, failed %d, skipped %d\n",
		result.Summary.Succeeded, result.Summary.Failed, result.Summary.Skipped)

	if len(result.Summary.Failures) > 0 {
		rows := make([][]string, 0, len(result.Summary.Failures))
		for _, failure := range result.Summary.Failures {
			rows = append(rows, []string{failure.Photo.Identity(), failure.Reason})
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(
			[]string{"Photo", "Reason"}, rows, []columnAlignment{alignLeft, alignLeft}))
	}
}
