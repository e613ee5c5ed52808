package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"framemill/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and bootstrap configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newConfigInitCommand())
	cmd.AddCommand(newConfigShowCommand(ctx))
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Write a commented sample configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigFileName
			if len(args) == 1 {
				path = args[0]
			}
			expanded, err := config.ExpandPath(path)
			if err != nil {
				return err
			}
			if err := config.CreateSample(expanded); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", expanded)
			return nil
		},
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved global configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := ctx.ensureRoot(cmd)
			if err != nil {
				return err
			}
			settings, err := root.GlobalSettings()
			if err != nil {
				return err
			}

			rows := [][]string{
				{"project", root.Project},
				{"config", root.ConfigPath},
				{"database", root.Database},
				{"log", root.LogFile},
				{"workers", strconv.Itoa(root.Workers)},
				{"max processing errors", strconv.Itoa(root.MaxProcessingErrors)},
				{"sample", formatSample(root.Sample)},
				{"date format", settings.DateFormat},
				{"group ordering", string(settings.GroupOrdering)},
				{"white balance", formatMultipliers(
					settings.WhiteBalance.Red, settings.WhiteBalance.Green1,
					settings.WhiteBalance.Blue, settings.WhiteBalance.Green2)},
				{"chromatic aberration", formatMultipliers(
					settings.ChromaticAberration.Red, settings.ChromaticAberration.Blue)},
				{"median filter", strconv.Itoa(settings.MedianFilter)},
				{"dark frame", settings.DarkFrame},
				{"exclude dates", strings.Join(settings.ExcludedDates(), ", ")},
			}
			printOutput(cmd.OutOrStdout(), renderTable(
				[]string{"Option", "Value"}, rows, []columnAlignment{alignLeft, alignLeft}))
			return nil
		},
	}
}

func formatSample(spec config.SampleSpec) string {
	if !spec.Enabled {
		return "disabled"
	}
	if spec.Randomized {
		return "~" + strconv.Itoa(spec.Size)
	}
	return strconv.Itoa(spec.Size)
}

func formatMultipliers(values ...float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, " ")
}
