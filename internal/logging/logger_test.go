package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newTestLogger(verbosity Verbosity) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	level := new(slog.LevelVar)
	level.Set(verbosity.level())
	return slog.New(newConsoleHandler(&buf, level)), &buf
}

func TestConsoleHandlerHoistsComponent(t *testing.T) {
	logger, buf := newTestLogger(VerbosityNormal)
	NewComponentLogger(logger, "scanner").Info("scan complete", Int("photos", 12))

	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, "INFO scanner: scan complete") {
		t.Fatalf("component should prefix the message: %q", line)
	}
	if !strings.Contains(line, "photos=12") {
		t.Fatalf("attrs should render as key=value: %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component attr should not repeat: %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	logger, buf := newTestLogger(VerbosityNormal)
	logger.Warn("photo failed", String("reason", "decode error"))

	if !strings.Contains(buf.String(), `reason="decode error"`) {
		t.Fatalf("values with spaces should be quoted: %q", buf.String())
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	logger, buf := newTestLogger(VerbosityQuiet)
	logger.Info("should be dropped")
	logger.Warn("should be kept")

	out := buf.String()
	if strings.Contains(out, "should be dropped") {
		t.Fatalf("quiet logger should drop info records: %q", out)
	}
	if !strings.Contains(out, "should be kept") {
		t.Fatalf("quiet logger should keep warnings: %q", out)
	}
}

func TestConsoleHandlerFlattensGroups(t *testing.T) {
	logger, buf := newTestLogger(VerbosityNormal)
	logger.WithGroup("run").Info("finished", Int("failed", 2))

	if !strings.Contains(buf.String(), "run.failed=2") {
		t.Fatalf("group attrs should flatten with dots: %q", buf.String())
	}
}

func TestErrorAttr(t *testing.T) {
	logger, buf := newTestLogger(VerbosityNormal)
	logger.Error("boom", Error(errors.New("disk full")))

	if !strings.Contains(buf.String(), `error="disk full"`) {
		t.Fatalf("error attr should render the message: %q", buf.String())
	}
}

func TestFormatValueKinds(t *testing.T) {
	cases := []struct {
		value slog.Value
		want  string
	}{
		{slog.StringValue("plain"), "plain"},
		{slog.BoolValue(true), "true"},
		{slog.Float64Value(1.5), "1.5"},
		{slog.DurationValue(2 * time.Second), "2s"},
		{slog.StringValue(""), `""`},
	}
	for _, tc := range cases {
		if got := formatValue(tc.value); got != tc.want {
			t.Errorf("formatValue(%v) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should never be enabled")
	}
}
