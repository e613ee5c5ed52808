package encode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Request describes one clip: the developed frames in display order and
// where the clip should land.
type Request struct {
	Frames     []string
	FrameRate  int
	CRF        int
	OutputPath string
}

// Encoder turns a frame sequence into a clip.
type Encoder interface {
	Encode(ctx context.Context, req Request) error
}

// Option configures the ffmpeg encoder.
type Option func(*FFmpeg)

// WithBinary overrides the default ffmpeg binary name.
func WithBinary(binary string) Option {
	return func(e *FFmpeg) {
		if binary != "" {
			e.binary = binary
		}
	}
}

// FFmpeg assembles clips with the system ffmpeg.
type FFmpeg struct {
	binary string
}

// NewFFmpeg constructs an encoder using defaults.
func NewFFmpeg(opts ...Option) *FFmpeg {
	enc := &FFmpeg{binary: "ffmpeg"}
	for _, opt := range opts {
		opt(enc)
	}
	return enc
}

// Encode writes a concat list for the frames and runs ffmpeg. Stderr is
// captured and surfaced on failure.
func (e *FFmpeg) Encode(ctx context.Context, req Request) error {
	if len(req.Frames) == 0 {
		return errors.New("no frames to encode")
	}
	if req.OutputPath == "" {
		return errors.New("output path required")
	}

	listPath, err := writeConcatList(req.Frames)
	if err != nil {
		return err
	}
	defer os.Remove(listPath)

	args := BuildArgs(listPath, req)
	cmd := exec.CommandContext(ctx, e.binary, args...) //nolint:gosec

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			return fmt.Errorf("ffmpeg: %w", err)
		}
		if idx := strings.LastIndexByte(detail, '\n'); idx >= 0 {
			detail = detail[idx+1:]
		}
		return fmt.Errorf("ffmpeg: %w: %s", err, detail)
	}
	return nil
}

// BuildArgs constructs the ffmpeg argument slice for a concat list input.
func BuildArgs(listPath string, req Request) []string {
	frameRate := req.FrameRate
	if frameRate <= 0 {
		frameRate = 30
	}
	crf := req.CRF
	if crf <= 0 {
		crf = 18
	}

	return []string{
		"-hide_banner", "-nostdin", "-y",
		"-loglevel", "error",
		"-f", "concat",
		"-safe", "0",
		"-r", strconv.Itoa(frameRate),
		"-i", listPath,
		"-c:v", "libx264",
		"-crf", strconv.Itoa(crf),
		"-pix_fmt", "yuv420p",
		req.OutputPath,
	}
}

func writeConcatList(frames []string) (string, error) {
	file, err := os.CreateTemp("", "framemill-concat-*.txt")
	if err != nil {
		return "", fmt.Errorf("create concat list: %w", err)
	}
	defer file.Close()

	var b strings.Builder
	for _, frame := range frames {
		absolute, err := filepath.Abs(frame)
		if err != nil {
			os.Remove(file.Name())
			return "", fmt.Errorf("resolve frame path %q: %w", frame, err)
		}
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(absolute, "'", `'\''`))
		b.WriteString("'\n")
	}
	if _, err := file.WriteString(b.String()); err != nil {
		os.Remove(file.Name())
		return "", fmt.Errorf("write concat list: %w", err)
	}
	return file.Name(), nil
}
