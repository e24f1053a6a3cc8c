package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"talentd/internal/hiring"
	"talentd/internal/logging"
)

type applicationPayload struct {
	ID          int64     `json:"id"`
	JobID       int64     `json:"job_id"`
	CandidateID int64     `json:"candidate_id"`
	Stage       string    `json:"stage"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type transitionPayload struct {
	FromStage string    `json:"from_stage"`
	ToStage   string    `json:"to_stage"`
	ChangedBy int64     `json:"changed_by"`
	CreatedAt time.Time `json:"created_at"`
}

type jobPayload struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CompanyID   int64     `json:"company_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func applicationToPayload(app *hiring.Application) applicationPayload {
	return applicationPayload{
		ID:          app.ID,
		JobID:       app.JobID,
		CandidateID: app.CandidateID,
		Stage:       string(app.Stage),
		CreatedAt:   app.CreatedAt,
		UpdatedAt:   app.UpdatedAt,
	}
}

func applicationsToPayload(apps []*hiring.Application) []applicationPayload {
	out := make([]applicationPayload, 0, len(apps))
	for _, app := range apps {
		out = append(out, applicationToPayload(app))
	}
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", logging.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "fail", "database": "not connected"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "connected"})
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		jobs, err := s.store.ListOpenJobs(r.Context())
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		payload := make([]jobPayload, 0, len(jobs))
		for _, job := range jobs {
			payload = append(payload, jobPayload{
				ID:          job.ID,
				Title:       job.Title,
				Description: job.Description,
				CompanyID:   job.CompanyID,
				Status:      string(job.Status),
				CreatedAt:   job.CreatedAt,
			})
		}
		s.writeJSON(w, http.StatusOK, payload)
	case http.MethodPost:
		s.authenticated([]Role{RoleRecruiter}, s.handleCreateJob)(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request, identity Identity) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		s.writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	job, err := s.store.CreateJob(r.Context(), req.Title, req.Description, identity.UserID, identity.Email, identity.CompanyID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, jobPayload{
		ID:          job.ID,
		Title:       job.Title,
		Description: job.Description,
		CompanyID:   job.CompanyID,
		Status:      string(job.Status),
		CreatedAt:   job.CreatedAt,
	})
}

func (s *Server) handleCloseJob(w http.ResponseWriter, r *http.Request, identity Identity) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req struct {
		JobID int64 `json:"job_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.JobID <= 0 {
		s.writeError(w, http.StatusBadRequest, "job_id is required")
		return
	}
	owner, err := s.store.IsOwner(r.Context(), identity.UserID, req.JobID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if !owner {
		s.writeError(w, http.StatusForbidden, "access denied")
		return
	}
	closed, err := s.store.CloseJob(r.Context(), req.JobID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if !closed {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request, identity Identity) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req struct {
		JobID int64 `json:"job_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.JobID <= 0 {
		s.writeError(w, http.StatusBadRequest, "job_id is required")
		return
	}
	app, err := s.hiring.Apply(r.Context(), req.JobID, identity.UserID, identity.Email)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, applicationToPayload(app))
}

func (s *Server) handleUpdateStage(w http.ResponseWriter, r *http.Request, identity Identity) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req struct {
		ApplicationID int64  `json:"application_id"`
		ToStage       string `json:"to_stage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ApplicationID <= 0 {
		s.writeError(w, http.StatusBadRequest, "application_id is required")
		return
	}
	toStage, ok := hiring.ParseStage(req.ToStage)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "unknown stage "+strconv.Quote(req.ToStage))
		return
	}
	app, err := s.hiring.RequestTransition(r.Context(), req.ApplicationID, toStage, identity.UserID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, applicationToPayload(app))
}

func (s *Server) handleMyApplications(w http.ResponseWriter, r *http.Request, identity Identity) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	apps, err := s.hiring.ApplicationsForCandidate(r.Context(), identity.UserID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, applicationsToPayload(apps))
}

func (s *Server) handleJobApplications(w http.ResponseWriter, r *http.Request, identity Identity) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	idStr := strings.TrimPrefix(r.URL.Path, "/api/applications/job/")
	if idStr == "" || strings.Contains(idStr, "/") {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	jobID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}
	apps, err := s.hiring.ApplicationsForJob(r.Context(), jobID, identity.UserID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, applicationsToPayload(apps))
}

func (s *Server) handleCompanyApplications(w http.ResponseWriter, r *http.Request, identity Identity) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	apps, err := s.hiring.ApplicationsForCompany(r.Context(), identity.CompanyID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, applicationsToPayload(apps))
}

// handleApplicationHistory serves GET /api/applications/{id}/history.
func (s *Server) handleApplicationHistory(w http.ResponseWriter, r *http.Request, identity Identity) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/applications/")
	idStr, found := strings.CutSuffix(rest, "/history")
	if !found || idStr == "" || strings.Contains(idStr, "/") {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	applicationID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid application id")
		return
	}
	records, err := s.hiring.History(r.Context(), applicationID, identity.UserID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	payload := make([]transitionPayload, 0, len(records))
	for _, record := range records {
		payload = append(payload, transitionPayload{
			FromStage: string(record.FromStage),
			ToStage:   string(record.ToStage),
			ChangedBy: record.ChangedBy,
			CreatedAt: record.CreatedAt,
		})
	}
	s.writeJSON(w, http.StatusOK, payload)
}

// writeServiceError maps the hiring error taxonomy onto HTTP status codes.
// Client errors carry their descriptive message; everything else is a
// generic 500 with the detail logged, not leaked.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, hiring.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, hiring.ErrForbidden):
		s.writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, hiring.ErrInvalidTransition),
		errors.Is(err, hiring.ErrAlreadyApplied),
		errors.Is(err, hiring.ErrJobUnavailable):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, hiring.ErrStaleState):
		s.writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error("request failed", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("write response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
