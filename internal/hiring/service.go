package hiring

import (
	"context"
	"fmt"
	"log/slog"

	"talentd/internal/logging"
	"talentd/internal/notify"
)

// Store is the persistence surface the service needs. The store guarantees
// per-application serializability of the stage update and history append:
// UpdateStageIfCurrent is a compare-and-set that commits both writes in one
// transaction or neither.
type Store interface {
	GetJob(ctx context.Context, id int64) (*Job, error)
	CreateApplication(ctx context.Context, jobID, candidateID int64, candidateEmail string) (*Application, error)
	GetApplication(ctx context.Context, id int64) (*Application, error)
	UpdateStageIfCurrent(ctx context.Context, id int64, expected, next Stage, actorID int64) (*Application, error)
	ApplicationsForCandidate(ctx context.Context, candidateID int64) ([]*Application, error)
	ApplicationsForJob(ctx context.Context, jobID int64) ([]*Application, error)
	ApplicationsForCompany(ctx context.Context, companyID int64) ([]*Application, error)
	History(ctx context.Context, applicationID int64) ([]*TransitionRecord, error)
	IsOwner(ctx context.Context, actorID, jobID int64) (bool, error)
}

// Enqueuer hands a notification job to the outbound pipeline without blocking.
type Enqueuer interface {
	Enqueue(job *notify.Job) error
}

// Service orchestrates application submission and stage transitions. It is
// the only writer of stage changes; everything it persists goes through the
// store's compare-and-set so concurrent requests cannot both win.
type Service struct {
	store  Store
	queue  Enqueuer
	logger *slog.Logger
}

// NewService constructs the workflow service.
func NewService(store Store, queue Enqueuer, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		queue:  queue,
		logger: logging.WithComponent(logger, "hiring"),
	}
}

// Apply submits a candidate's application to an open job. Duplicate
// submissions fail with ErrAlreadyApplied and never create a second row. On
// success a recruiter notification is enqueued best-effort.
func (s *Service) Apply(ctx context.Context, jobID, candidateID int64, candidateEmail string) (*Application, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	if job == nil || job.Status != JobOpen {
		return nil, ErrJobUnavailable
	}

	app, err := s.store.CreateApplication(ctx, jobID, candidateID, candidateEmail)
	if err != nil {
		return nil, err
	}

	s.logger.Info("application submitted",
		logging.Int64("application_id", app.ID),
		logging.Int64("job_id", jobID),
		logging.Int64("candidate_id", candidateID),
	)

	if job.RecruiterEmail != "" {
		s.enqueue(notify.NewJob(
			job.RecruiterEmail,
			"New job application received",
			fmt.Sprintf("A new candidate has applied for job ID %d", jobID),
		))
	}
	return app, nil
}

// RequestTransition moves an application to a new stage. Preconditions are
// checked in order, first failure wins: existence, actor ownership of the
// job, transition legality. The store commit is a compare-and-set; a
// concurrent winner surfaces as ErrStaleState and the caller should re-read
// and retry. The candidate notification is enqueued only after the commit
// and never rolls the transition back.
func (s *Service) RequestTransition(ctx context.Context, applicationID int64, toStage Stage, actorID int64) (*Application, error) {
	app, err := s.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("load application: %w", err)
	}
	if app == nil {
		return nil, ErrNotFound
	}

	owner, err := s.store.IsOwner(ctx, actorID, app.JobID)
	if err != nil {
		return nil, fmt.Errorf("check ownership: %w", err)
	}
	if !owner {
		return nil, ErrForbidden
	}

	fromStage := app.Stage
	if !CanTransition(fromStage, toStage) {
		return nil, InvalidTransitionError(fromStage, toStage)
	}

	updated, err := s.store.UpdateStageIfCurrent(ctx, applicationID, fromStage, toStage, actorID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("application stage updated",
		logging.Int64("application_id", applicationID),
		logging.String("from", string(fromStage)),
		logging.String("to", string(toStage)),
		logging.Int64("actor_id", actorID),
	)

	if updated.CandidateEmail != "" {
		s.enqueue(notify.NewJob(
			updated.CandidateEmail,
			"Application status updated",
			fmt.Sprintf("Your application moved from %s to %s", fromStage, toStage),
		))
	}
	return updated, nil
}

// ApplicationsForCandidate lists the candidate's own applications.
func (s *Service) ApplicationsForCandidate(ctx context.Context, candidateID int64) ([]*Application, error) {
	return s.store.ApplicationsForCandidate(ctx, candidateID)
}

// ApplicationsForJob lists applications for a job the actor owns.
func (s *Service) ApplicationsForJob(ctx context.Context, jobID, actorID int64) ([]*Application, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	if job == nil {
		return nil, ErrNotFound
	}
	if job.RecruiterID != actorID {
		return nil, ErrForbidden
	}
	return s.store.ApplicationsForJob(ctx, jobID)
}

// ApplicationsForCompany lists applications across a company's jobs.
func (s *Service) ApplicationsForCompany(ctx context.Context, companyID int64) ([]*Application, error) {
	return s.store.ApplicationsForCompany(ctx, companyID)
}

// History returns the audit trail for an application. The actor must own the
// job the application belongs to.
func (s *Service) History(ctx context.Context, applicationID, actorID int64) ([]*TransitionRecord, error) {
	app, err := s.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("load application: %w", err)
	}
	if app == nil {
		return nil, ErrNotFound
	}
	owner, err := s.store.IsOwner(ctx, actorID, app.JobID)
	if err != nil {
		return nil, fmt.Errorf("check ownership: %w", err)
	}
	if !owner {
		return nil, ErrForbidden
	}
	return s.store.History(ctx, applicationID)
}

// enqueue hands a job to the notification queue. Failures degrade the
// delivery pipeline only; the committed workflow change stands.
func (s *Service) enqueue(job *notify.Job) {
	if s.queue == nil {
		return
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("notification enqueue failed; delivery degraded",
			logging.Error(err),
			logging.String("recipient", job.Recipient),
			logging.String("subject", job.Subject),
		)
	}
}
