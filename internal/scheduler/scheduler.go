package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"framemill/internal/config"
	"framemill/internal/develop"
	"framemill/internal/logging"
	"framemill/internal/progress"
	"framemill/internal/project"
)

// ErrBudgetExceeded is returned when the run halted because more photos
// failed than the error budget allows.
var ErrBudgetExceeded = errors.New("error budget exceeded")

// Item pairs a photo with the settings resolved for its group.
type Item struct {
	Photo    project.Photo
	Settings config.Settings
}

// Store is the slice of the progress store the scheduler needs.
type Store interface {
	Status(ctx context.Context, id progress.Identity) (progress.Status, error)
	MarkPending(ctx context.Context, id progress.Identity, runID string) error
	MarkInProgress(ctx context.Context, id progress.Identity, runID string) error
	MarkDone(ctx context.Context, id progress.Identity, runID string) error
	MarkFailed(ctx context.Context, id progress.Identity, reason, runID string) error
}

// Options control one scheduler run.
type Options struct {
	// Workers is the pool size; values below 1 run a single worker.
	Workers int
	// ErrorBudget is the number of photo failures tolerated before the
	// run halts. Zero halts on the first failure.
	ErrorBudget int
	RunID       string
	Logger      *slog.Logger
}

// Failure records one failed photo and the condensed reason.
type Failure struct {
	Photo  project.Photo
	Reason string
}

// Summary reports the outcome of a run. Skipped counts only photos the
// store already recorded done; photos abandoned by a halt stay pending
// and are not counted.
type Summary struct {
	Succeeded int
	Failed    int
	Skipped   int
	Failures  []Failure
	Halted    bool
}

// Run processes items through the pool. Photos already recorded done are
// skipped without being re-queued. When failures exceed the budget,
// dispatch stops and in-flight photos finish, but photos not yet claimed
// stay pending. Store errors abort the run immediately.
func Run(ctx context.Context, items []Item, opts Options, store Store, proc develop.Processor) (Summary, error) {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "scheduler")

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		succeeded atomic.Int64
		failed    atomic.Int64
		skipped   atomic.Int64
		halted    atomic.Bool

		failuresMu sync.Mutex
		failures   []Failure

		fatalOnce sync.Once
		fatalErr  error
	)

	fatal := func(err error) {
		fatalOnce.Do(func() {
			fatalErr = err
			cancel()
		})
	}

	recordFailure := func(photo project.Photo, reason string) {
		failuresMu.Lock()
		failures = append(failures, Failure{Photo: photo, Reason: reason})
		failuresMu.Unlock()

		count := failed.Add(1)
		if count > int64(opts.ErrorBudget) && halted.CompareAndSwap(false, true) {
			logger.Error("error budget exceeded, halting dispatch",
				logging.Int64("failures", count),
				logging.Int("budget", opts.ErrorBudget))
		}
	}

	work := make(chan Item)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range work {
				if halted.Load() || runCtx.Err() != nil {
					// Drained without a claim; the record stays pending
					// for the next run.
					continue
				}
				processItem(runCtx, item, opts.RunID, store, proc, logger,
					&succeeded, recordFailure, fatal)
			}
		}()
	}

dispatch:
	for _, item := range items {
		if halted.Load() || runCtx.Err() != nil {
			break
		}
		id := identity(item.Photo)

		status, err := store.Status(runCtx, id)
		if err != nil {
			fatal(err)
			break
		}
		if status == progress.StatusDone {
			skipped.Add(1)
			logger.Debug("photo already done, skipping",
				logging.String(logging.FieldPhoto, item.Photo.Identity()))
			continue
		}
		if err := store.MarkPending(runCtx, id, opts.RunID); err != nil {
			fatal(err)
			break
		}

		select {
		case work <- item:
		case <-runCtx.Done():
			break dispatch
		}
	}
	close(work)
	wg.Wait()

	summary := Summary{
		Succeeded: int(succeeded.Load()),
		Failed:    int(failed.Load()),
		Skipped:   int(skipped.Load()),
		Failures:  failures,
		Halted:    halted.Load(),
	}

	logger.Info("run finished",
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped),
		logging.Bool("halted", summary.Halted))

	switch {
	case fatalErr != nil:
		return summary, fatalErr
	case ctx.Err() != nil:
		return summary, ctx.Err()
	case summary.Halted:
		return summary, ErrBudgetExceeded
	default:
		return summary, nil
	}
}

func processItem(
	ctx context.Context,
	item Item,
	runID string,
	store Store,
	proc develop.Processor,
	logger *slog.Logger,
	succeeded *atomic.Int64,
	recordFailure func(project.Photo, string),
	fatal func(error),
) {
	id := identity(item.Photo)

	if err := store.MarkInProgress(ctx, id, runID); err != nil {
		fatal(err)
		return
	}

	if err := proc.Process(ctx, item.Photo, item.Settings); err != nil {
		reason := develop.Reason(err)
		logger.Warn("photo failed",
			logging.String(logging.FieldPhoto, item.Photo.Identity()),
			logging.String("reason", reason))
		if markErr := store.MarkFailed(ctx, id, reason, runID); markErr != nil {
			fatal(markErr)
			return
		}
		recordFailure(item.Photo, reason)
		return
	}

	if err := store.MarkDone(ctx, id, runID); err != nil {
		fatal(err)
		return
	}
	succeeded.Add(1)
	logger.Debug("photo done", logging.String(logging.FieldPhoto, item.Photo.Identity()))
}

func identity(photo project.Photo) progress.Identity {
	return progress.Identity{Date: photo.Date, Group: photo.Group, FileName: photo.Name}
}
