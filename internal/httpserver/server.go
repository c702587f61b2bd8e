package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fdg312/portion-planner/internal/config"
	"github.com/fdg312/portion-planner/internal/plans"
	"github.com/fdg312/portion-planner/internal/portions"
	"github.com/fdg312/portion-planner/internal/reports"
)

// Server is the HTTP front of the planner.
type Server struct {
	config     *config.Config
	logger     *zap.Logger
	mux        *http.ServeMux
	planner    *portions.Planner
	httpServer *http.Server
}

// New resolves the planner rules from cfg and registers the routes.
func New(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	rules, err := config.BuildRules(cfg.Planner)
	if err != nil {
		return nil, fmt.Errorf("planner rules: %w", err)
	}
	planner, err := portions.NewPlanner(rules)
	if err != nil {
		return nil, fmt.Errorf("planner: %w", err)
	}

	s := &Server{
		config:  cfg,
		logger:  logger,
		mux:     http.NewServeMux(),
		planner: planner,
	}
	s.routes()
	return s, nil
}

// Planner returns the planner built from the configuration.
func (s *Server) Planner() *portions.Planner {
	return s.planner
}

// routes registers the routes
func (s *Server) routes() {
	// Health check
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)

	// Plans API
	plansService := plans.NewService(s.planner, s.logger.Named("plans"))
	plansHandler := plans.NewHandler(plansService, s.config.MaxBodyKB)

	// GET /v1/groups - active groups, constants and rounding policies
	s.mux.HandleFunc("GET /v1/groups", plansHandler.HandleGroups)

	// POST /v1/plans - compute a portion plan
	s.mux.HandleFunc("POST /v1/plans", plansHandler.HandleCompute)

	// POST /v1/plans/check - recompute calories of an edited plan
	s.mux.HandleFunc("POST /v1/plans/check", plansHandler.HandleCheck)

	// Export API
	reportsService := reports.NewService(plansService, s.logger.Named("reports"))
	reportsHandler := reports.NewHandlers(reportsService, s.config.MaxBodyKB)

	// POST /v1/plans/export?format=pdf|csv - printable plan
	s.mux.HandleFunc("POST /v1/plans/export", reportsHandler.HandleExport)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}

// Handler returns the router wrapped in the middleware chain
// (outermost first): CORS → Rate Limit → Request Log → Router.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.mux
	handler = RequestLogMiddleware(s.logger.Named("http"), handler)
	handler = RateLimitMiddleware(s.config, s.logger.Named("ratelimit"), handler)
	handler = CORSMiddleware(s.config, handler)
	return handler
}

// Start listens on the configured port until Shutdown is called.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.logger.Info("server started",
		zap.String("addr", "http://localhost"+addr),
		zap.String("health", "http://localhost"+addr+"/healthz"),
		zap.String("plans", "http://localhost"+addr+"/v1/plans"),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
