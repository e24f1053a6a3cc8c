package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"talentd/internal/hiring"
)

// CreateApplication inserts a new application at stage APPLIED. The
// (job_id, candidate_id) UNIQUE constraint makes duplicate submissions
// idempotent failures: re-applying yields hiring.ErrAlreadyApplied and no row.
func (s *Store) CreateApplication(ctx context.Context, jobID, candidateID int64, candidateEmail string) (*hiring.Application, error) {
	now := timestamp(time.Now().UTC())
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO applications (job_id, candidate_id, candidate_email, stage, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		jobID,
		candidateID,
		nullableString(candidateEmail),
		hiring.StageApplied,
		now,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, hiring.ErrAlreadyApplied
		}
		return nil, fmt.Errorf("insert application: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetApplication(ctx, id)
}

// GetApplication fetches an application by identifier. Missing rows return nil.
func (s *Store) GetApplication(ctx context.Context, id int64) (*hiring.Application, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id)
	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	return app, nil
}

// FindApplication returns the application for a (job, candidate) pair, or nil.
func (s *Store) FindApplication(ctx context.Context, jobID, candidateID int64) (*hiring.Application, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE job_id = ? AND candidate_id = ?`,
		jobID,
		candidateID,
	)
	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find application: %w", err)
	}
	return app, nil
}

// UpdateStageIfCurrent commits a stage change with compare-and-set semantics:
// the UPDATE only matches when the stored stage still equals expected, and
// the transition record is appended in the same transaction. A concurrent
// transition that commits first leaves zero matched rows and the caller
// receives hiring.ErrStaleState.
func (s *Store) UpdateStageIfCurrent(ctx context.Context, id int64, expected, next hiring.Stage, actorID int64) (*hiring.Application, error) {
	now := timestamp(time.Now().UTC())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transition tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(
		ctx,
		`UPDATE applications SET stage = ?, updated_at = ? WHERE id = ? AND stage = ?`,
		next,
		now,
		id,
		expected,
	)
	if err != nil {
		return nil, fmt.Errorf("update stage: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM applications WHERE id = ?`, id).Scan(&exists); err != nil {
			return nil, fmt.Errorf("check application: %w", err)
		}
		if exists == 0 {
			return nil, hiring.ErrNotFound
		}
		return nil, hiring.ErrStaleState
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO transition_records (application_id, from_stage, to_stage, changed_by, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		id,
		expected,
		next,
		actorID,
		now,
	); err != nil {
		return nil, fmt.Errorf("append transition record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transition: %w", err)
	}
	return s.GetApplication(ctx, id)
}

// ApplicationsForCandidate lists a candidate's applications, oldest first.
func (s *Store) ApplicationsForCandidate(ctx context.Context, candidateID int64) ([]*hiring.Application, error) {
	return s.listApplications(ctx, `SELECT `+applicationColumns+` FROM applications WHERE candidate_id = ? ORDER BY created_at`, candidateID)
}

// ApplicationsForJob lists applications submitted to a job, oldest first.
func (s *Store) ApplicationsForJob(ctx context.Context, jobID int64) ([]*hiring.Application, error) {
	return s.listApplications(ctx, `SELECT `+applicationColumns+` FROM applications WHERE job_id = ? ORDER BY created_at`, jobID)
}

// ApplicationsForCompany lists applications across every job belonging to a
// company, newest first.
func (s *Store) ApplicationsForCompany(ctx context.Context, companyID int64) ([]*hiring.Application, error) {
	return s.listApplications(
		ctx,
		`SELECT a.id, a.job_id, a.candidate_id, a.candidate_email, a.stage, a.created_at, a.updated_at
         FROM applications a JOIN jobs j ON j.id = a.job_id
         WHERE j.company_id = ? ORDER BY a.created_at DESC`,
		companyID,
	)
}

// Stats returns a count of applications grouped by stage.
func (s *Store) Stats(ctx context.Context) (map[hiring.Stage]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT stage, COUNT(1) FROM applications GROUP BY stage`)
	if err != nil {
		return nil, fmt.Errorf("application stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[hiring.Stage]int)
	for rows.Next() {
		var stage hiring.Stage
		var count int
		if err := rows.Scan(&stage, &count); err != nil {
			return nil, err
		}
		stats[stage] = count
	}
	return stats, rows.Err()
}

func (s *Store) listApplications(ctx context.Context, query string, args ...any) ([]*hiring.Application, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var apps []*hiring.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

const applicationColumns = "id, job_id, candidate_id, candidate_email, stage, created_at, updated_at"

func scanApplication(scanner interface{ Scan(dest ...any) error }) (*hiring.Application, error) {
	var (
		id          int64
		jobID       int64
		candidateID int64
		email       sql.NullString
		stage       string
		createdRaw  string
		updatedRaw  string
	)
	if err := scanner.Scan(&id, &jobID, &candidateID, &email, &stage, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	app := &hiring.Application{
		ID:             id,
		JobID:          jobID,
		CandidateID:    candidateID,
		CandidateEmail: email.String,
		Stage:          hiring.Stage(stage),
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		app.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		app.UpdatedAt = updated
	}
	return app, nil
}
