package hiring

import "time"

// JobStatus is the posting lifecycle of a job, independent of application stages.
type JobStatus string

const (
	JobOpen   JobStatus = "OPEN"
	JobClosed JobStatus = "CLOSED"
)

// Job is a posting that candidates apply to. Ownership (recruiter_id) is the
// fact the authorization check consults before any stage change.
type Job struct {
	ID             int64
	Title          string
	Description    string
	RecruiterID    int64
	RecruiterEmail string
	CompanyID      int64
	Status         JobStatus
	CreatedAt      time.Time
}

// Application identifies a (job, candidate) pair and its current stage. At
// most one application exists per pair; the store enforces uniqueness.
type Application struct {
	ID             int64
	JobID          int64
	CandidateID    int64
	CandidateEmail string
	Stage          Stage
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TransitionRecord is an immutable audit entry for one committed stage move.
// Records are append-only; the ordered sequence for an application replays
// its stage history exactly.
type TransitionRecord struct {
	ID            int64
	ApplicationID int64
	FromStage     Stage
	ToStage       Stage
	ChangedBy     int64
	CreatedAt     time.Time
}
