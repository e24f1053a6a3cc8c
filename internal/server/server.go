package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"talentd/internal/config"
	"talentd/internal/hiring"
	"talentd/internal/logging"
	"talentd/internal/store"
)

// Server hosts the talentd HTTP API.
type Server struct {
	bind     string
	logger   *slog.Logger
	hiring   *hiring.Service
	store    *store.Store
	auth     Authenticator
	server   *http.Server
	listener net.Listener
}

// New constructs the API server.
func New(cfg *config.Config, svc *hiring.Service, st *store.Store, logger *slog.Logger) *Server {
	s := &Server{
		bind:   cfg.Paths.APIBind,
		logger: logging.WithComponent(logger, "server"),
		hiring: svc,
		store:  st,
		auth:   NewAuthenticator(cfg),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/jobs", s.handleJobs)
	mux.HandleFunc("/api/jobs/close", s.authenticated([]Role{RoleRecruiter}, s.handleCloseJob))
	mux.HandleFunc("/api/applications/apply", s.authenticated([]Role{RoleCandidate}, s.handleApply))
	mux.HandleFunc("/api/applications/update-stage", s.authenticated([]Role{RoleRecruiter}, s.handleUpdateStage))
	mux.HandleFunc("/api/applications/me", s.authenticated([]Role{RoleCandidate}, s.handleMyApplications))
	mux.HandleFunc("/api/applications/job/", s.authenticated([]Role{RoleRecruiter}, s.handleJobApplications))
	mux.HandleFunc("/api/applications/company", s.authenticated([]Role{RoleHiringManager}, s.handleCompanyApplications))
	mux.HandleFunc("/api/applications/", s.authenticated([]Role{RoleRecruiter}, s.handleApplicationHistory))

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler exposes the routed handler, primarily for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins serving and shuts the server down when ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the server down, waiting briefly for in-flight requests.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr reports the bound listen address, useful when binding port 0 in tests.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}
