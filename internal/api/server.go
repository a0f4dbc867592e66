package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/edvin/backupd/internal/api/handler"
	mw "github.com/edvin/backupd/internal/api/middleware"
	"github.com/edvin/backupd/internal/core"
)

// ReadinessCheck reports whether one dependency is reachable.
type ReadinessCheck func(ctx context.Context) error

type Server struct {
	router   chi.Router
	logger   zerolog.Logger
	services *core.Services
	checks   map[string]ReadinessCheck
}

func NewServer(logger zerolog.Logger, services *core.Services, checks map[string]ReadinessCheck) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		logger:   logger,
		services: services,
		checks:   checks,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	s.router.Route("/api/v1", func(r chi.Router) {
		jobs := handler.NewBackupJob(s.services.Jobs, s.services.Executions)
		r.Get("/backup-jobs", jobs.List)
		r.Post("/backup-jobs", jobs.Create)
		r.Get("/backup-jobs/{id}", jobs.Get)
		r.Patch("/backup-jobs/{id}", jobs.Update)
		r.Delete("/backup-jobs/{id}", jobs.Delete)
		r.Post("/backup-jobs/{id}/execute", jobs.Execute)

		execs := handler.NewBackupExecution(s.services.Executions, s.services.Verifier)
		r.Get("/backup-executions", execs.List)
		r.Get("/backup-executions/available", execs.Available)
		r.Post("/backup-executions/verify", execs.VerifyMany)
		r.Get("/backup-executions/{id}", execs.Get)
		r.Post("/backup-executions/{id}/verify", execs.Verify)

		restores := handler.NewRestore(s.services.Restores)
		r.Get("/restore-operations", restores.List)
		r.Post("/restore-operations", restores.Create)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := map[string]string{}
	healthy := true
	for _, name := range names {
		if err := s.checks[name](ctx); err != nil {
			results[name] = err.Error()
			healthy = false
		} else {
			results[name] = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(results)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
