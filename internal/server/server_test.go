package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"talentd/internal/hiring"
	"talentd/internal/logging"
	"talentd/internal/notify"
	"talentd/internal/server"
	"talentd/internal/store"
	"talentd/internal/testsupport"
)

const (
	candidateToken = "candidate-token"
	recruiterToken = "recruiter-token"
	managerToken   = "manager-token"
)

func newTestServer(t *testing.T) (http.Handler, *store.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t,
		testsupport.WithToken(candidateToken, 20, "candidate@example.com", "CANDIDATE", 0),
		testsupport.WithToken(recruiterToken, 10, "recruiter@example.com", "RECRUITER", 1),
		testsupport.WithToken(managerToken, 30, "manager@example.com", "HIRING_MANAGER", 1),
	)
	st := testsupport.MustOpenStore(t, cfg)
	queue := notify.NewQueue(8)
	svc := hiring.NewService(st, queue, logging.NewNop())
	return server.New(cfg, svc, st, logging.NewNop()).Handler(), st
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &payload)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(into); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	handler, _ := newTestServer(t)
	rec := doJSON(t, handler, http.MethodGet, "/api/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	decodeJSON(t, rec, &body)
	if body["status"] != "ok" || body["database"] != "connected" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestAuthRequired(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/applications/apply", "", map[string]any{"job_id": 1})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	rec = doJSON(t, handler, http.MethodPost, "/api/applications/apply", "bogus", map[string]any{"job_id": 1})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with unknown token, got %d", rec.Code)
	}
	// A recruiter token cannot use the candidate-only endpoint.
	rec = doJSON(t, handler, http.MethodPost, "/api/applications/apply", recruiterToken, map[string]any{"job_id": 1})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for wrong role, got %d", rec.Code)
	}
}

func TestJobListingIsPublic(t *testing.T) {
	handler, st := newTestServer(t)
	testsupport.NewJob(t, st, "Backend Engineer", 10)

	rec := doJSON(t, handler, http.MethodGet, "/api/jobs", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var jobs []map[string]any
	decodeJSON(t, rec, &jobs)
	if len(jobs) != 1 || jobs[0]["title"] != "Backend Engineer" {
		t.Fatalf("unexpected jobs %v", jobs)
	}
}

func TestCreateJobRequiresRecruiter(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/jobs", "", map[string]any{"title": "SRE"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	rec = doJSON(t, handler, http.MethodPost, "/api/jobs", candidateToken, map[string]any{"title": "SRE"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	rec = doJSON(t, handler, http.MethodPost, "/api/jobs", recruiterToken, map[string]any{"title": "SRE"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestApplyAndTransitionFlow(t *testing.T) {
	handler, st := newTestServer(t)
	job := testsupport.NewJob(t, st, "Backend Engineer", 10)

	rec := doJSON(t, handler, http.MethodPost, "/api/applications/apply", candidateToken, map[string]any{"job_id": job.ID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var app map[string]any
	decodeJSON(t, rec, &app)
	if app["stage"] != "APPLIED" {
		t.Fatalf("expected APPLIED, got %v", app["stage"])
	}
	appID := int64(app["id"].(float64))

	// Duplicate application is a client error.
	rec = doJSON(t, handler, http.MethodPost, "/api/applications/apply", candidateToken, map[string]any{"job_id": job.ID})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/applications/update-stage", recruiterToken, map[string]any{
		"application_id": appID,
		"to_stage":       "SCREENING",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	decodeJSON(t, rec, &app)
	if app["stage"] != "SCREENING" {
		t.Fatalf("expected SCREENING, got %v", app["stage"])
	}

	rec = doJSON(t, handler, http.MethodGet, fmt.Sprintf("/api/applications/%d/history", appID), recruiterToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var records []map[string]any
	decodeJSON(t, rec, &records)
	if len(records) != 1 || records[0]["from_stage"] != "APPLIED" || records[0]["to_stage"] != "SCREENING" {
		t.Fatalf("unexpected history %v", records)
	}
}

func TestUpdateStageErrorMapping(t *testing.T) {
	handler, st := newTestServer(t)
	job := testsupport.NewJob(t, st, "Backend Engineer", 10)
	app := testsupport.NewApplication(t, st, job.ID, 20)

	cases := []struct {
		name     string
		body     map[string]any
		wantCode int
		wantErr  string
	}{
		{
			name:     "missing application",
			body:     map[string]any{"application_id": 9999, "to_stage": "SCREENING"},
			wantCode: http.StatusNotFound,
			wantErr:  "not found",
		},
		{
			name:     "unknown stage",
			body:     map[string]any{"application_id": app.ID, "to_stage": "ONBOARDING"},
			wantCode: http.StatusBadRequest,
			wantErr:  `unknown stage "ONBOARDING"`,
		},
		{
			name:     "stage skip",
			body:     map[string]any{"application_id": app.ID, "to_stage": "HIRED"},
			wantCode: http.StatusBadRequest,
			wantErr:  "invalid transition from APPLIED to HIRED",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, handler, http.MethodPost, "/api/applications/update-stage", recruiterToken, tc.body)
			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d: %s", tc.wantCode, rec.Code, rec.Body.String())
			}
			var body map[string]string
			decodeJSON(t, rec, &body)
			if body["error"] != tc.wantErr {
				t.Fatalf("expected error %q, got %q", tc.wantErr, body["error"])
			}
		})
	}
}

func TestTransitionRetryAfterConcurrentWinner(t *testing.T) {
	handler, st := newTestServer(t)
	job := testsupport.NewJob(t, st, "Backend Engineer", 10)
	app := testsupport.NewApplication(t, st, job.ID, 20)

	// Another writer moved the application first; a stale compare-and-set
	// loses at the store layer.
	if _, err := st.UpdateStageIfCurrent(context.Background(), app.ID, hiring.StageApplied, hiring.StageScreening, 10); err != nil {
		t.Fatalf("seed transition failed: %v", err)
	}
	if _, err := st.UpdateStageIfCurrent(context.Background(), app.ID, hiring.StageApplied, hiring.StageRejected, 10); !errors.Is(err, hiring.ErrStaleState) {
		t.Fatalf("expected ErrStaleState, got %v", err)
	}

	// A fresh request re-reads the current stage and succeeds.
	rec := doJSON(t, handler, http.MethodPost, "/api/applications/update-stage", recruiterToken, map[string]any{
		"application_id": app.ID,
		"to_stage":       "INTERVIEW",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected follow-up transition to succeed, got %d", rec.Code)
	}
}

func TestCandidateAndCompanyViews(t *testing.T) {
	handler, st := newTestServer(t)
	job := testsupport.NewJob(t, st, "Backend Engineer", 10)

	rec := doJSON(t, handler, http.MethodPost, "/api/applications/apply", candidateToken, map[string]any{"job_id": job.ID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("apply failed: %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/applications/me", candidateToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var apps []map[string]any
	decodeJSON(t, rec, &apps)
	if len(apps) != 1 {
		t.Fatalf("expected 1 application, got %d", len(apps))
	}

	rec = doJSON(t, handler, http.MethodGet, fmt.Sprintf("/api/applications/job/%d", job.ID), recruiterToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/applications/company", managerToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	decodeJSON(t, rec, &apps)
	if len(apps) != 1 {
		t.Fatalf("expected 1 company application, got %d", len(apps))
	}
}

func TestCloseJobEndpoint(t *testing.T) {
	handler, st := newTestServer(t)
	job := testsupport.NewJob(t, st, "Backend Engineer", 10)

	rec := doJSON(t, handler, http.MethodPost, "/api/jobs/close", recruiterToken, map[string]any{"job_id": job.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Applications to a closed job are refused.
	rec = doJSON(t, handler, http.MethodPost, "/api/applications/apply", candidateToken, map[string]any{"job_id": job.ID})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for closed job, got %d", rec.Code)
	}

	// Only the owning recruiter may close a job.
	other := testsupport.NewJob(t, st, "SRE", 99)
	rec = doJSON(t, handler, http.MethodPost, "/api/jobs/close", recruiterToken, map[string]any{"job_id": other.ID})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner, got %d", rec.Code)
	}
}
