package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"framemill/internal/testsupport"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigInitWritesSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "framemill.toml")
	out, err := execute(t, "config", "init", path)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Fatalf("output should name the written file: %q", out)
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "max_processing_errors") {
		t.Fatalf("sample missing expected option: %s", contents)
	}
}

func TestScanCommandReportsCounts(t *testing.T) {
	tree := testsupport.NewTree(t)
	tree.AddPhotos("2024-01-05", "a", "img1.dng", "img2.dng")
	tree.AddPhotos("2024-01-06", "b", "img3.dng")

	out, err := execute(t, "scan", "--project", tree.Dir, "--silent")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if !strings.Contains(out, "2 dates, 2 groups, 3 photos") {
		t.Fatalf("unexpected scan output: %q", out)
	}
}

func TestScanCommandListsPhotos(t *testing.T) {
	tree := testsupport.NewTree(t)
	tree.AddPhotos("2024-01-05", "a", "img1.dng")

	out, err := execute(t, "scan", "--project", tree.Dir, "--silent", "--list")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if !strings.Contains(out, "2024-01-05/a/img1.dng") {
		t.Fatalf("expected photo listing, got %q", out)
	}
}

func TestScanCommandHonorsExcludeFlag(t *testing.T) {
	tree := testsupport.NewTree(t)
	tree.AddPhotos("2024-01-05", "a", "img1.dng")
	tree.AddPhotos("2024-01-06", "a", "img2.dng")

	out, err := execute(t, "scan", "--project", tree.Dir, "--silent",
		"--exclude-dates", "2024-01-06")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if !strings.Contains(out, "1 dates, 1 groups, 1 photos") {
		t.Fatalf("exclude flag ignored: %q", out)
	}
}

func TestRunCommandRejectsConflictingVerbosity(t *testing.T) {
	tree := testsupport.NewTree(t)
	_, err := execute(t, "scan", "--project", tree.Dir, "-v", "-q")
	if err == nil {
		t.Fatal("expected conflicting verbosity flags to fail")
	}
}

func TestStatusCommandOnEmptyProject(t *testing.T) {
	tree := testsupport.NewTree(t)
	out, err := execute(t, "status", "--project", tree.Dir, "--silent")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(out, "total") {
		t.Fatalf("expected status table, got %q", out)
	}
}

func TestInvalidSampleFlag(t *testing.T) {
	tree := testsupport.NewTree(t)
	_, err := execute(t, "scan", "--project", tree.Dir, "--silent", "--sample", "zero")
	if err == nil {
		t.Fatal("expected invalid sample value to fail")
	}
}
