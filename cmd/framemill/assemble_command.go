package main

import (
	"github.com/spf13/cobra"

	"framemill/internal/encode"
	"framemill/internal/workflow"
)

func newAssembleCommand(ctx *commandContext) *cobra.Command {
	var (
		outputDir string
		frameRate int
		crf       int
		ffmpeg    string
	)

	cmd := &cobra.Command{
		Use:   "assemble",
		Short: "Encode one timelapse clip per group from developed frames",
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

			var encoder encode.Encoder
			if ffmpeg != "" {
				encoder = encode.NewFFmpeg(encode.WithBinary(ffmpeg))
			} else {
				encoder = encode.NewFFmpeg()
			}

			runner := workflow.NewRunner(root, ctx.processor(""), logger)
			clips, err := runner.Assemble(cmd.Context(), encoder, workflow.AssembleOptions{
				OutputDir: outputDir,
				FrameRate: frameRate,
				CRF:       crf,
			})
			if err != nil {
				return err
			}

			printer := newCountPrinter()
			for _, clip := range clips {
				printer.Fprintf(cmd.OutOrStdout(), "%s (%d frames)\n", clip.Path, clip.Frames)
			}
			printer.Fprintf(cmd.OutOrStdout(), "assembled %d clips\n", len(clips))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "clips", "Directory for assembled clips")
	cmd.Flags().IntVar(&frameRate, "fps", 30, "Clip frame rate")
	cmd.Flags().IntVar(&crf, "crf", 18, "x264 constant rate factor")
	cmd.Flags().StringVar(&ffmpeg, "ffmpeg", "", "ffmpeg binary")
	return cmd
}
