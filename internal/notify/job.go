package notify

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus tracks a notification job through its delivery lifecycle.
type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobSent    JobStatus = "sent"
	JobFailed  JobStatus = "failed"
)

// Job is one unit of outbound-message work. It is owned by the queue until
// claimed, then exclusively by the worker until delivery resolves.
type Job struct {
	ID         string
	Recipient  string
	Subject    string
	Body       string
	EnqueuedAt time.Time
	Attempts   int
	Status     JobStatus
	LastError  string
}

// NewJob builds a pending job addressed to a single recipient.
func NewJob(recipient, subject, body string) *Job {
	return &Job{
		ID:         uuid.NewString(),
		Recipient:  recipient,
		Subject:    subject,
		Body:       body,
		EnqueuedAt: time.Now().UTC(),
		Status:     JobPending,
	}
}
