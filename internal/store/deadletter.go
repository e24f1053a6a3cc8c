package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"talentd/internal/notify"
)

// DeadLetter is a notification job that exhausted its retry budget, kept for
// inspection and manual retry.
type DeadLetter struct {
	ID         string
	Recipient  string
	Subject    string
	Body       string
	Attempts   int
	LastError  string
	EnqueuedAt time.Time
	FailedAt   time.Time
}

// InsertDeadLetter records a permanently failed notification job. Implements
// notify.DeadLetterSink.
func (s *Store) InsertDeadLetter(ctx context.Context, job *notify.Job) error {
	if job == nil {
		return errors.New("job is nil")
	}
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO dead_letters (id, recipient, subject, body, attempts, last_error, enqueued_at, failed_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID,
		job.Recipient,
		job.Subject,
		job.Body,
		job.Attempts,
		nullableString(job.LastError),
		timestamp(job.EnqueuedAt),
		timestamp(time.Now().UTC()),
	)
	if err != nil {
		return fmt.Errorf("insert dead letter: %w", err)
	}
	return nil
}

// ListDeadLetters returns dead-lettered jobs, oldest failure first.
func (s *Store) ListDeadLetters(ctx context.Context) ([]*DeadLetter, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, recipient, subject, body, attempts, last_error, enqueued_at, failed_at
         FROM dead_letters ORDER BY failed_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("list dead letters: %w", err)
	}
	defer rows.Close()

	var letters []*DeadLetter
	for rows.Next() {
		letter, err := scanDeadLetter(rows)
		if err != nil {
			return nil, err
		}
		letters = append(letters, letter)
	}
	return letters, rows.Err()
}

// GetDeadLetter fetches one dead letter by job identifier, or nil when absent.
func (s *Store) GetDeadLetter(ctx context.Context, id string) (*DeadLetter, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, recipient, subject, body, attempts, last_error, enqueued_at, failed_at
         FROM dead_letters WHERE id = ?`,
		id,
	)
	letter, err := scanDeadLetter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get dead letter: %w", err)
	}
	return letter, nil
}

// RemoveDeadLetter deletes a dead letter, typically after a manual retry.
func (s *Store) RemoveDeadLetter(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM dead_letters WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete dead letter: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// DeadLetterCount reports how many jobs are parked in the dead-letter table.
func (s *Store) DeadLetterCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM dead_letters`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count dead letters: %w", err)
	}
	return count, nil
}

// Job rebuilds a pending notification job from a dead letter for re-delivery.
// The attempt counter restarts so the retry budget applies afresh.
func (d *DeadLetter) Job() *notify.Job {
	return &notify.Job{
		ID:         d.ID,
		Recipient:  d.Recipient,
		Subject:    d.Subject,
		Body:       d.Body,
		EnqueuedAt: d.EnqueuedAt,
		Status:     notify.JobPending,
	}
}

func scanDeadLetter(scanner interface{ Scan(dest ...any) error }) (*DeadLetter, error) {
	var (
		letter      DeadLetter
		lastError   sql.NullString
		enqueuedRaw string
		failedRaw   string
	)
	if err := scanner.Scan(
		&letter.ID,
		&letter.Recipient,
		&letter.Subject,
		&letter.Body,
		&letter.Attempts,
		&lastError,
		&enqueuedRaw,
		&failedRaw,
	); err != nil {
		return nil, err
	}
	letter.LastError = lastError.String
	if enqueued, err := parseTimeString(enqueuedRaw); err == nil {
		letter.EnqueuedAt = enqueued
	}
	if failed, err := parseTimeString(failedRaw); err == nil {
		letter.FailedAt = failed
	}
	return &letter, nil
}
