package hiring

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the referenced application or job does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the actor does not own the job behind an application.
	ErrForbidden = errors.New("access denied")
	// ErrInvalidTransition indicates the requested stage move is not in the transition table.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrStaleState indicates a concurrent transition committed first; callers
	// should re-read the application and retry if their intent still applies.
	ErrStaleState = errors.New("application stage changed concurrently")
	// ErrAlreadyApplied indicates the candidate already holds an application for the job.
	ErrAlreadyApplied = errors.New("already applied to this job")
	// ErrJobUnavailable indicates the job does not exist or is not open for applications.
	ErrJobUnavailable = errors.New("job not available")
)

// InvalidTransitionError reports an illegal stage move with both endpoints
// preserved so the HTTP layer can surface a descriptive message.
func InvalidTransitionError(from, to Stage) error {
	return fmt.Errorf("%w from %s to %s", ErrInvalidTransition, from, to)
}
