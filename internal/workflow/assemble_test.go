package workflow_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"framemill/internal/config"
	"framemill/internal/encode"
	"framemill/internal/testsupport"
	"framemill/internal/workflow"
)

type recordingEncoder struct {
	requests []encode.Request
}

func (e *recordingEncoder) Encode(_ context.Context, req encode.Request) error {
	e.requests = append(e.requests, req)
	return nil
}

func addDevelopedFrame(t *testing.T, tree *testsupport.Tree, date, group, rawName string) {
	t.Helper()
	developed := strings.TrimSuffix(rawName, filepath.Ext(rawName)) + ".tiff"
	path := filepath.Join(tree.Dir, date, group, developed)
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write developed frame: %v", err)
	}
}

func TestAssembleEncodesOneClipPerGroup(t *testing.T) {
	tree := testsupport.NewTree(t)
	tree.AddPhotos("2024-01-05", "a", "img1.dng", "img2.dng")
	tree.AddPhotos("2024-01-05", "b", "img3.dng")
	addDevelopedFrame(t, tree, "2024-01-05", "a", "img1.dng")
	addDevelopedFrame(t, tree, "2024-01-05", "a", "img2.dng")
	addDevelopedFrame(t, tree, "2024-01-05", "b", "img3.dng")

	root, err := config.LoadRoot(tree.Dir, config.RootOverrides{})
	if err != nil {
		t.Fatalf("LoadRoot returned error: %v", err)
	}

	encoder := &recordingEncoder{}
	outputDir := t.TempDir()
	clips, err := workflow.NewRunner(root, nil, nil).Assemble(context.Background(), encoder,
		workflow.AssembleOptions{OutputDir: outputDir, FrameRate: 24, CRF: 20})
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}

	if len(clips) != 2 {
		t.Fatalf("expected 2 clips, got %d", len(clips))
	}
	if clips[0].Group != "a" || clips[0].Frames != 2 {
		t.Fatalf("unexpected first clip: %+v", clips[0])
	}
	if clips[1].Group != "b" || clips[1].Frames != 1 {
		t.Fatalf("unexpected second clip: %+v", clips[1])
	}
	if len(encoder.requests) != 2 {
		t.Fatalf("encoder ran %d times, want 2", len(encoder.requests))
	}
	if encoder.requests[0].FrameRate != 24 || encoder.requests[0].CRF != 20 {
		t.Fatalf("options not forwarded: %+v", encoder.requests[0])
	}
	wantOutput := filepath.Join(outputDir, "2024-01-05_a.mp4")
	if encoder.requests[0].OutputPath != wantOutput {
		t.Fatalf("unexpected output path: %q", encoder.requests[0].OutputPath)
	}
	if !strings.HasSuffix(encoder.requests[0].Frames[0], "img1.tiff") {
		t.Fatalf("frames should be developed outputs: %v", encoder.requests[0].Frames)
	}
}

func TestAssembleSkipsGroupsWithoutDevelopedFrames(t *testing.T) {
	tree := testsupport.NewTree(t)
	tree.AddPhotos("2024-01-05", "a", "img1.dng")
	tree.AddPhotos("2024-01-05", "b", "img2.dng")
	addDevelopedFrame(t, tree, "2024-01-05", "a", "img1.dng")

	root, err := config.LoadRoot(tree.Dir, config.RootOverrides{})
	if err != nil {
		t.Fatalf("LoadRoot returned error: %v", err)
	}

	encoder := &recordingEncoder{}
	clips, err := workflow.NewRunner(root, nil, nil).Assemble(context.Background(), encoder,
		workflow.AssembleOptions{OutputDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	if len(clips) != 1 || clips[0].Group != "a" {
		t.Fatalf("expected only group a to be assembled: %+v", clips)
	}
}
