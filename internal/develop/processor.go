package develop

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"framemill/internal/config"
	"framemill/internal/project"
)

var commandContext = exec.CommandContext

// Processor develops one raw photo under the resolved settings.
type Processor interface {
	Process(ctx context.Context, photo project.Photo, settings config.Settings) error
}

// Option configures the CLI processor.
type Option func(*CLI)

// WithBinary overrides the default converter binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithExtraArgs appends fixed arguments to every invocation.
func WithExtraArgs(args ...string) Option {
	return func(c *CLI) {
		c.extraArgs = append(c.extraArgs, args...)
	}
}

// CLI drives a dcraw-compatible raw converter.
type CLI struct {
	binary    string
	extraArgs []string
}

// NewCLI constructs a CLI processor using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "dcraw_emu"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Process develops the photo in place, writing the converter's output
// next to the raw file.
func (c *CLI) Process(ctx context.Context, photo project.Photo, settings config.Settings) error {
	if _, err := os.Stat(photo.Path); err != nil {
		return Wrap(ErrIO, "stat "+photo.Identity(), err)
	}

	args := BuildArgs(photo.Path, settings)
	args = append(args, c.extraArgs...)

	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return classify(photo, err, output)
	}
	return nil
}

// OutputPath returns where the converter writes the developed image for
// a raw file.
func OutputPath(rawPath string) string {
	ext := filepath.Ext(rawPath)
	return strings.TrimSuffix(rawPath, ext) + ".tiff"
}

// BuildArgs assembles the converter arguments for one photo.
func BuildArgs(path string, settings config.Settings) []string {
	args := []string{"-T"}

	wb := settings.WhiteBalance
	if wb != (config.WhiteBalance{Red: 1, Green1: 1, Blue: 1, Green2: 1}) {
		args = append(args, "-r",
			formatMultiplier(wb.Red),
			formatMultiplier(wb.Green1),
			formatMultiplier(wb.Blue),
			formatMultiplier(wb.Green2))
	}
	ca := settings.ChromaticAberration
	if ca != (config.ChromaticAberration{Red: 1, Blue: 1}) {
		args = append(args, "-C", formatMultiplier(ca.Red), formatMultiplier(ca.Blue))
	}
	if settings.MedianFilter > 0 {
		args = append(args, "-m", strconv.Itoa(settings.MedianFilter))
	}
	if settings.DarkFrame != "" {
		args = append(args, "-K", settings.DarkFrame)
	}

	return append(args, path)
}

func formatMultiplier(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func classify(photo project.Photo, err error, output []byte) error {
	operation := "develop " + photo.Identity()

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Wrap(ErrTimeout, operation, err)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		detail := firstLine(output)
		if detail == "" {
			detail = exitErr.Error()
		}
		if strings.Contains(strings.ToLower(detail), "corrupt") ||
			strings.Contains(strings.ToLower(detail), "decod") {
			return Wrap(ErrDecode, operation, fmt.Errorf("%s", detail))
		}
		return Wrap(ErrExternalTool, operation, fmt.Errorf("%s", detail))
	}

	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return Wrap(ErrExternalTool, operation, err)
	}
	return Wrap(ErrIO, operation, err)
}

func firstLine(output []byte) string {
	text := strings.TrimSpace(string(output))
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
