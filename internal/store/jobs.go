package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"talentd/internal/hiring"
)

// CreateJob inserts a new open job posting owned by the recruiter.
func (s *Store) CreateJob(ctx context.Context, title, description string, recruiterID int64, recruiterEmail string, companyID int64) (*hiring.Job, error) {
	now := time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO jobs (title, description, recruiter_id, recruiter_email, company_id, status, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		title,
		nullableString(description),
		recruiterID,
		nullableString(recruiterEmail),
		companyID,
		hiring.JobOpen,
		timestamp(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetJob(ctx, id)
}

// GetJob fetches a job by identifier. A missing job returns nil, not an error.
func (s *Store) GetJob(ctx context.Context, id int64) (*hiring.Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// CloseJob marks a job as no longer accepting applications. Existing
// applications keep progressing; only new submissions are refused.
func (s *Store) CloseJob(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `UPDATE jobs SET status = ? WHERE id = ?`, hiring.JobClosed, id)
	if err != nil {
		return false, fmt.Errorf("close job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ListOpenJobs returns jobs currently accepting applications.
func (s *Store) ListOpenJobs(ctx context.Context) ([]*hiring.Job, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE status = ? ORDER BY created_at`, hiring.JobOpen)
	if err != nil {
		return nil, fmt.Errorf("list open jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*hiring.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// IsOwner reports whether the actor is the recruiter who owns the job.
func (s *Store) IsOwner(ctx context.Context, actorID, jobID int64) (bool, error) {
	var count int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM jobs WHERE id = ? AND recruiter_id = ?`,
		jobID,
		actorID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check job ownership: %w", err)
	}
	return count > 0, nil
}

const jobColumns = "id, title, description, recruiter_id, recruiter_email, company_id, status, created_at"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*hiring.Job, error) {
	var (
		id             int64
		title          string
		description    sql.NullString
		recruiterID    int64
		recruiterEmail sql.NullString
		companyID      int64
		status         string
		createdRaw     string
	)
	if err := scanner.Scan(&id, &title, &description, &recruiterID, &recruiterEmail, &companyID, &status, &createdRaw); err != nil {
		return nil, err
	}
	job := &hiring.Job{
		ID:             id,
		Title:          title,
		Description:    description.String,
		RecruiterID:    recruiterID,
		RecruiterEmail: recruiterEmail.String,
		CompanyID:      companyID,
		Status:         hiring.JobStatus(status),
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		job.CreatedAt = created
	}
	return job, nil
}
