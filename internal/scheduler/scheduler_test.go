package scheduler_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"framemill/internal/config"
	"framemill/internal/develop"
	"framemill/internal/progress"
	"framemill/internal/project"
	"framemill/internal/scheduler"
)

type fakeProcessor struct {
	processed atomic.Int64
	fail      func(photo project.Photo) error
}

func (p *fakeProcessor) Process(_ context.Context, photo project.Photo, _ config.Settings) error {
	p.processed.Add(1)
	if p.fail != nil {
		return p.fail(photo)
	}
	return nil
}

func openStore(t *testing.T) *progress.Store {
	t.Helper()
	store, err := progress.Open(filepath.Join(t.TempDir(), "framemill.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func buildItems(n int) []scheduler.Item {
	items := make([]scheduler.Item, n)
	for i := range items {
		items[i] = scheduler.Item{
			Photo: project.Photo{
				Date:  "2024-01-05",
				Group: "a",
				Name:  fmt.Sprintf("img%03d.dng", i),
			},
			Settings: config.DefaultSettings(),
		}
	}
	return items
}

func TestRunProcessesEverything(t *testing.T) {
	store := openStore(t)
	proc := &fakeProcessor{}

	summary, err := scheduler.Run(context.Background(), buildItems(10),
		scheduler.Options{Workers: 4, ErrorBudget: 5, RunID: "run-1"}, store, proc)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.Succeeded != 10 || summary.Failed != 0 || summary.Skipped != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	counts, err := store.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if counts.Done != 10 {
		t.Fatalf("expected 10 done records, got %+v", counts)
	}
}

func TestRunHaltsWhenFailuresExceedBudget(t *testing.T) {
	store := openStore(t)
	proc := &fakeProcessor{fail: func(project.Photo) error {
		return develop.Wrap(develop.ErrDecode, "develop", errors.New("bad frame"))
	}}

	summary, err := scheduler.Run(context.Background(), buildItems(10),
		scheduler.Options{Workers: 1, ErrorBudget: 2, RunID: "run-1"}, store, proc)
	if !errors.Is(err, scheduler.ErrBudgetExceeded) {
		t.Fatalf("expected ErrBudgetExceeded, got %v", err)
	}
	if !summary.Halted {
		t.Fatal("expected halted summary")
	}
	if summary.Failed != 3 {
		t.Fatalf("budget 2 should halt after the third failure, got %d", summary.Failed)
	}
	if summary.Succeeded != 0 {
		t.Fatalf("unexpected successes: %+v", summary)
	}
	if len(summary.Failures) != 3 {
		t.Fatalf("expected 3 recorded failures, got %d", len(summary.Failures))
	}
	if summary.Failures[0].Reason == "" {
		t.Fatal("failure reasons should be recorded")
	}

	counts, err := store.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if counts.Failed != 3 {
		t.Fatalf("expected 3 failed records, got %+v", counts)
	}
	if counts.InProgress != 0 {
		t.Fatalf("no record should be left in progress: %+v", counts)
	}
	if counts.Done != 0 {
		t.Fatalf("no record should be done: %+v", counts)
	}
}

func TestRunBudgetZeroHaltsOnFirstFailure(t *testing.T) {
	store := openStore(t)
	proc := &fakeProcessor{fail: func(project.Photo) error {
		return errors.New("boom")
	}}

	summary, err := scheduler.Run(context.Background(), buildItems(5),
		scheduler.Options{Workers: 1, ErrorBudget: 0, RunID: "run-1"}, store, proc)
	if !errors.Is(err, scheduler.ErrBudgetExceeded) {
		t.Fatalf("expected ErrBudgetExceeded, got %v", err)
	}
	if summary.Failed != 1 {
		t.Fatalf("budget 0 should halt after the first failure, got %d", summary.Failed)
	}
}

func TestRunHaltLeavesUnclaimedPhotosPending(t *testing.T) {
	store := openStore(t)
	proc := &fakeProcessor{fail: func(project.Photo) error {
		return errors.New("boom")
	}}

	summary, err := scheduler.Run(context.Background(), buildItems(3),
		scheduler.Options{Workers: 1, ErrorBudget: 0, RunID: "run-1"}, store, proc)
	if !errors.Is(err, scheduler.ErrBudgetExceeded) {
		t.Fatalf("expected ErrBudgetExceeded, got %v", err)
	}
	if summary.Failed != 1 {
		t.Fatalf("budget 0 should halt after the first failure, got %d", summary.Failed)
	}
	if summary.Skipped != 0 {
		t.Fatalf("skipped counts photos already done, not photos abandoned by the halt: %+v", summary)
	}

	counts, err := store.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if counts.Failed != 1 {
		t.Fatalf("expected 1 failed record, got %+v", counts)
	}
	if counts.Pending != 1 {
		t.Fatalf("the photo dispatched but abandoned should stay pending, got %+v", counts)
	}
	if counts.Done != 0 || counts.InProgress != 0 {
		t.Fatalf("no record should be done or claimed: %+v", counts)
	}
}

func TestRunToleratesFailuresWithinBudget(t *testing.T) {
	store := openStore(t)
	proc := &fakeProcessor{fail: func(photo project.Photo) error {
		if photo.Name == "img002.dng" || photo.Name == "img005.dng" {
			return errors.New("boom")
		}
		return nil
	}}

	summary, err := scheduler.Run(context.Background(), buildItems(10),
		scheduler.Options{Workers: 3, ErrorBudget: 2, RunID: "run-1"}, store, proc)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.Halted {
		t.Fatal("run within budget should not halt")
	}
	if summary.Failed != 2 || summary.Succeeded != 8 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestRunSkipsPhotosAlreadyDone(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	items := buildItems(10)

	for _, item := range items[:6] {
		id := progress.Identity{Date: item.Photo.Date, Group: item.Photo.Group, FileName: item.Photo.Name}
		if err := store.MarkPending(ctx, id, "run-0"); err != nil {
			t.Fatalf("MarkPending: %v", err)
		}
		if err := store.MarkInProgress(ctx, id, "run-0"); err != nil {
			t.Fatalf("MarkInProgress: %v", err)
		}
		if err := store.MarkDone(ctx, id, "run-0"); err != nil {
			t.Fatalf("MarkDone: %v", err)
		}
	}

	proc := &fakeProcessor{}
	summary, err := scheduler.Run(ctx, items,
		scheduler.Options{Workers: 2, ErrorBudget: 5, RunID: "run-1"}, store, proc)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.Skipped != 6 || summary.Succeeded != 4 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if got := proc.processed.Load(); got != 4 {
		t.Fatalf("processor should only see unfinished photos, ran %d times", got)
	}
}

type failingStore struct {
	*progress.Store
}

func (s failingStore) MarkPending(context.Context, progress.Identity, string) error {
	return errors.New("disk full")
}

func TestRunAbortsOnStoreError(t *testing.T) {
	store := openStore(t)
	proc := &fakeProcessor{}

	_, err := scheduler.Run(context.Background(), buildItems(5),
		scheduler.Options{Workers: 2, ErrorBudget: 5, RunID: "run-1"}, failingStore{store}, proc)
	if err == nil || err.Error() != "disk full" {
		t.Fatalf("expected store error to abort the run, got %v", err)
	}
	if got := proc.processed.Load(); got != 0 {
		t.Fatalf("no photo should be processed after a store failure, ran %d times", got)
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	store := openStore(t)
	proc := &fakeProcessor{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := scheduler.Run(ctx, buildItems(5),
		scheduler.Options{Workers: 2, ErrorBudget: 5, RunID: "run-1"}, store, proc)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
