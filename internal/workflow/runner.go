package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"framemill/internal/config"
	"framemill/internal/develop"
	"framemill/internal/logging"
	"framemill/internal/progress"
	"framemill/internal/project"
	"framemill/internal/sampling"
	"framemill/internal/scheduler"
)

// Runner executes complete preprocessing runs over one project.
type Runner struct {
	root      *config.Root
	processor develop.Processor
	logger    *slog.Logger
}

// NewRunner builds a runner for the loaded project root. A nil processor
// selects the default raw converter.
func NewRunner(root *config.Root, processor develop.Processor, logger *slog.Logger) *Runner {
	if processor == nil {
		processor = develop.NewCLI()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		root:      root,
		processor: processor,
		logger:    logging.NewComponentLogger(logger, "workflow"),
	}
}

// Result reports one finished run.
type Result struct {
	RunID   string
	Scanned int
	Sampled int
	Summary scheduler.Summary
}

// Run scans the project, applies sampling, and processes the selected
// photos through the scheduler. Photos recorded done by earlier runs are
// skipped; photos stranded in progress by an interrupted run are
// re-queued first.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	unlock, err := r.acquireLock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	store, err := progress.Open(r.root.Database)
	if err != nil {
		return nil, fmt.Errorf("open progress store: %w", err)
	}
	defer store.Close()

	reset, err := store.ResetInProgress(ctx)
	if err != nil {
		return nil, err
	}
	if reset > 0 {
		r.logger.Info("re-queued photos stranded by an interrupted run", logging.Int("count", reset))
	}

	runID := uuid.NewString()
	logger := r.logger.With(logging.String(logging.FieldRunID, runID))

	resolver := r.root.NewResolver()
	scanner := project.NewScanner(
		r.root.Project, r.root.ConfigName, resolver,
		!r.root.Sample.Randomized, logger)

	photos, err := scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}

	selected := sampling.Sample(photos, r.root.Sample)
	if len(selected) < len(photos) {
		logger.Info("sampling applied",
			logging.Int("scanned", len(photos)),
			logging.Int("selected", len(selected)))
	}

	items, err := buildItems(resolver, selected)
	if err != nil {
		return nil, err
	}

	summary, err := scheduler.Run(ctx, items, scheduler.Options{
		Workers:     r.root.Workers,
		ErrorBudget: r.root.MaxProcessingErrors,
		RunID:       runID,
		Logger:      logger,
	}, store, r.processor)

	result := &Result{
		RunID:   runID,
		Scanned: len(photos),
		Sampled: len(selected),
		Summary: summary,
	}
	if err != nil {
		return result, err
	}
	return result, nil
}

// ScanCounts summarizes a scan without processing anything.
type ScanCounts struct {
	Dates  int
	Groups int
	Photos int
}

// Scan walks the project and returns what a run would process.
func (r *Runner) Scan(ctx context.Context) (ScanCounts, []project.Photo, error) {
	resolver := r.root.NewResolver()
	scanner := project.NewScanner(r.root.Project, r.root.ConfigName, resolver, true, r.logger)

	photos, err := scanner.Scan(ctx)
	if err != nil {
		return ScanCounts{}, nil, err
	}

	dates := make(map[string]struct{})
	groups := make(map[string]struct{})
	for _, p := range photos {
		dates[p.Date] = struct{}{}
		groups[p.Date+"/"+p.Group] = struct{}{}
	}
	return ScanCounts{Dates: len(dates), Groups: len(groups), Photos: len(photos)}, photos, nil
}

// RetryFailed re-queues failed photos and returns how many were reset.
func (r *Runner) RetryFailed(ctx context.Context) (int, error) {
	store, err := progress.Open(r.root.Database)
	if err != nil {
		return 0, fmt.Errorf("open progress store: %w", err)
	}
	defer store.Close()
	return store.RetryFailed(ctx)
}

// Status returns the persisted record summary and failed records.
func (r *Runner) Status(ctx context.Context) (progress.Summary, []progress.Record, error) {
	store, err := progress.Open(r.root.Database)
	if err != nil {
		return progress.Summary{}, nil, fmt.Errorf("open progress store: %w", err)
	}
	defer store.Close()

	summary, err := store.Summary(ctx)
	if err != nil {
		return progress.Summary{}, nil, err
	}
	failed, err := store.Failed(ctx)
	if err != nil {
		return progress.Summary{}, nil, err
	}
	return summary, failed, nil
}

func (r *Runner) acquireLock() (func(), error) {
	lockPath := r.root.Database + ".lock"
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, errors.New("another framemill run already holds this project")
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release project lock", logging.Error(err))
		}
	}, nil
}

func buildItems(resolver *config.Resolver, photos []project.Photo) ([]scheduler.Item, error) {
	items := make([]scheduler.Item, len(photos))
	for i, photo := range photos {
		settings, err := resolver.Resolve(photo.Date, photo.Group)
		if err != nil {
			return nil, err
		}
		items[i] = scheduler.Item{Photo: photo, Settings: settings}
	}
	return items, nil
}
