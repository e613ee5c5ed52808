package main

import (
	"github.com/spf13/cobra"

	"framemill/internal/workflow"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Walk the project and report what a run would process",
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
			counts, photos, err := runner.Scan(cmd.Context())
			if err != nil {
				return err
			}

			printer := newCountPrinter()
			printer.Fprintf(cmd.OutOrStdout(), "%d dates, %d groups, %d photos\n",
				counts.Dates, counts.Groups, counts.Photos)

			if list {
				for _, photo := range photos {
					printer.Fprintf(cmd.OutOrStdout(), "%s\n", photo.Identity())
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "List every photo the scan selected")
	return cmd
}
