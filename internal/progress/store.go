package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store manages photo processing records backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the progress database at path and
// applies migrations. Parent directories are created as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	// Pragmas go in the DSN so every connection the pool opens carries
	// them; workers write concurrently and each connection needs its own
	// busy timeout.
	dsn := "file:" + path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(ON)" +
		"&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// MarkPending records a photo as queued for processing. Photos already
// done keep their record untouched.
func (s *Store) MarkPending(ctx context.Context, id Identity, runID string) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO photo_records (date, group_name, file_name, status, error, run_id, updated_at)
        VALUES (?, ?, ?, ?, NULL, ?, ?)
        ON CONFLICT (date, group_name, file_name) DO UPDATE SET
            status = excluded.status,
            error = NULL,
            run_id = excluded.run_id,
            updated_at = excluded.updated_at
        WHERE photo_records.status <> ?`,
		id.Date, id.Group, id.FileName, StatusPending, runID, timestamp(), StatusDone)
	if err != nil {
		return fmt.Errorf("mark pending %s: %w", id, err)
	}
	return nil
}

// MarkInProgress claims a photo for processing. The claim fails with
// ErrAlreadyClaimed when another worker holds the photo in progress, and
// with ErrNotTracked when the photo was never marked pending.
func (s *Store) MarkInProgress(ctx context.Context, id Identity, runID string) error {
	res, err := s.db.ExecContext(ctx, `
        UPDATE photo_records
        SET status = ?, error = NULL, run_id = ?, updated_at = ?
        WHERE date = ? AND group_name = ? AND file_name = ? AND status <> ?`,
		StatusInProgress, runID, timestamp(),
		id.Date, id.Group, id.FileName, StatusInProgress)
	if err != nil {
		return fmt.Errorf("mark in progress %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark in progress %s: rows affected: %w", id, err)
	}
	if affected == 0 {
		if _, getErr := s.Get(ctx, id); errors.Is(getErr, ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotTracked, id)
		}
		return fmt.Errorf("%w: %s", ErrAlreadyClaimed, id)
	}
	return nil
}

// MarkDone records a successful result.
func (s *Store) MarkDone(ctx context.Context, id Identity, runID string) error {
	return s.setStatus(ctx, id, StatusDone, "", runID)
}

// MarkFailed records a failure with its reason.
func (s *Store) MarkFailed(ctx context.Context, id Identity, reason, runID string) error {
	return s.setStatus(ctx, id, StatusFailed, reason, runID)
}

func (s *Store) setStatus(ctx context.Context, id Identity, status Status, reason, runID string) error {
	res, err := s.db.ExecContext(ctx, `
        UPDATE photo_records
        SET status = ?, error = ?, run_id = ?, updated_at = ?
        WHERE date = ? AND group_name = ? AND file_name = ?`,
		status, nullableString(reason), runID, timestamp(),
		id.Date, id.Group, id.FileName)
	if err != nil {
		return fmt.Errorf("mark %s %s: %w", status, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark %s %s: rows affected: %w", status, id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotTracked, id)
	}
	return nil
}

// Status returns a photo's recorded status, StatusUnknown when no record
// exists.
func (s *Store) Status(ctx context.Context, id Identity) (Status, error) {
	record, err := s.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return StatusUnknown, nil
	}
	if err != nil {
		return StatusUnknown, err
	}
	return record.Status, nil
}

// Get returns the full record for a photo, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id Identity) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT date, group_name, file_name, status, error, run_id, updated_at
        FROM photo_records
        WHERE date = ? AND group_name = ? AND file_name = ?`,
		id.Date, id.Group, id.FileName)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return record, err
}

// List returns every record ordered by key.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT date, group_name, file_name, status, error, run_id, updated_at
        FROM photo_records
        ORDER BY date, group_name, file_name`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// Failed returns every failed record ordered by key.
func (s *Store) Failed(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT date, group_name, file_name, status, error, run_id, updated_at
        FROM photo_records
        WHERE status = ?
        ORDER BY date, group_name, file_name`, StatusFailed)
	if err != nil {
		return nil, fmt.Errorf("list failed records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate failed records: %w", err)
	}
	return records, nil
}

// Summary counts records grouped by status.
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT status, COUNT(1)
        FROM photo_records
        GROUP BY status`)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize records: %w", err)
	}
	defer rows.Close()

	var summary Summary
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Summary{}, fmt.Errorf("scan summary row: %w", err)
		}
		switch Status(status) {
		case StatusPending:
			summary.Pending = count
		case StatusInProgress:
			summary.InProgress = count
		case StatusDone:
			summary.Done = count
		case StatusFailed:
			summary.Failed = count
		}
	}
	if err := rows.Err(); err != nil {
		return Summary{}, fmt.Errorf("iterate summary: %w", err)
	}
	return summary, nil
}

// RetryFailed moves every failed record back to pending and returns how
// many were reset.
func (s *Store) RetryFailed(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `
        UPDATE photo_records
        SET status = ?, error = NULL, updated_at = ?
        WHERE status = ?`,
		StatusPending, timestamp(), StatusFailed)
	if err != nil {
		return 0, fmt.Errorf("retry failed records: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("retry failed records: rows affected: %w", err)
	}
	return int(affected), nil
}

// ResetInProgress moves records stranded in progress by an interrupted
// run back to pending and returns how many were reset.
func (s *Store) ResetInProgress(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `
        UPDATE photo_records
        SET status = ?, error = NULL, updated_at = ?
        WHERE status = ?`,
		StatusPending, timestamp(), StatusInProgress)
	if err != nil {
		return 0, fmt.Errorf("reset stranded records: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset stranded records: rows affected: %w", err)
	}
	return int(affected), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		record     Record
		status     string
		errMsg     sql.NullString
		runID      sql.NullString
		updatedRaw string
	)
	if err := row.Scan(
		&record.Identity.Date,
		&record.Identity.Group,
		&record.Identity.FileName,
		&status,
		&errMsg,
		&runID,
		&updatedRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan record: %w", err)
	}

	parsed, ok := ParseStatus(status)
	if !ok {
		return nil, fmt.Errorf("record %s has unknown status %q", record.Identity, status)
	}
	record.Status = parsed
	record.Error = errMsg.String
	record.RunID = runID.String
	if updated, err := time.Parse(time.RFC3339Nano, updatedRaw); err == nil {
		record.UpdatedAt = updated
	}
	return &record, nil
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
