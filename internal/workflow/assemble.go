package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"framemill/internal/develop"
	"framemill/internal/encode"
	"framemill/internal/logging"
	"framemill/internal/project"
)

// AssembleOptions control clip assembly.
type AssembleOptions struct {
	OutputDir string
	FrameRate int
	CRF       int
}

// Clip reports one assembled group.
type Clip struct {
	Date   string
	Group  string
	Frames int
	Path   string
}

// Assemble encodes one clip per scanned group from the developed frames
// a previous run produced. Groups with no developed frames are skipped.
func (r *Runner) Assemble(ctx context.Context, encoder encode.Encoder, opts AssembleOptions) ([]Clip, error) {
	if encoder == nil {
		encoder = encode.NewFFmpeg()
	}
	if opts.OutputDir == "" {
		return nil, errors.New("output directory required")
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	_, photos, err := r.Scan(ctx)
	if err != nil {
		return nil, err
	}

	var clips []Clip
	for _, group := range groupRuns(photos) {
		frames := developedFrames(group.photos)
		if len(frames) == 0 {
			r.logger.Warn("group has no developed frames, skipping",
				logging.String(logging.FieldDate, group.date),
				logging.String(logging.FieldGroup, group.name))
			continue
		}

		outputPath := filepath.Join(opts.OutputDir,
			fmt.Sprintf("%s_%s.mp4", group.date, group.name))
		err := encoder.Encode(ctx, encode.Request{
			Frames:     frames,
			FrameRate:  opts.FrameRate,
			CRF:        opts.CRF,
			OutputPath: outputPath,
		})
		if err != nil {
			return clips, fmt.Errorf("assemble %s/%s: %w", group.date, group.name, err)
		}

		clips = append(clips, Clip{
			Date:   group.date,
			Group:  group.name,
			Frames: len(frames),
			Path:   outputPath,
		})
		r.logger.Info("clip assembled",
			logging.String(logging.FieldDate, group.date),
			logging.String(logging.FieldGroup, group.name),
			logging.Int("frames", len(frames)))
	}
	return clips, nil
}

type groupRun struct {
	date   string
	name   string
	photos []project.Photo
}

// groupRuns splits the scan-ordered photo list into contiguous groups.
func groupRuns(photos []project.Photo) []groupRun {
	var runs []groupRun
	for _, p := range photos {
		if len(runs) == 0 || runs[len(runs)-1].date != p.Date || runs[len(runs)-1].name != p.Group {
			runs = append(runs, groupRun{date: p.Date, name: p.Group})
		}
		last := &runs[len(runs)-1]
		last.photos = append(last.photos, p)
	}
	return runs
}

// developedFrames maps raw photos to the converter outputs that exist on
// disk, preserving order.
func developedFrames(photos []project.Photo) []string {
	var frames []string
	for _, p := range photos {
		developed := develop.OutputPath(p.Path)
		if _, err := os.Stat(developed); err == nil {
			frames = append(frames, developed)
		}
	}
	return frames
}
