package testsupport

import (
	"context"
	"testing"

	"talentd/internal/config"
	"talentd/internal/hiring"
	"talentd/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewJob creates an open job posting for tests using the provided store.
func NewJob(t testing.TB, st *store.Store, title string, recruiterID int64) *hiring.Job {
	t.Helper()

	job, err := st.CreateJob(context.Background(), title, "", recruiterID, "recruiter@example.com", 1)
	if err != nil {
		t.Fatalf("store.CreateJob: %v", err)
	}
	return job
}

// NewApplication creates an application in the APPLIED stage.
func NewApplication(t testing.TB, st *store.Store, jobID, candidateID int64) *hiring.Application {
	t.Helper()

	app, err := st.CreateApplication(context.Background(), jobID, candidateID, "candidate@example.com")
	if err != nil {
		t.Fatalf("store.CreateApplication: %v", err)
	}
	return app
}
