package server

import (
	"github.com/go-chi/chi/v5"

	"github.com/phishnix/phishnix/internal/server/handlers"
)

// registerRoutes registers all HTTP routes
func (s *Server) registerRoutes(deps Deps) {
	// Standard health endpoints
	s.router.Get("/health", handlers.HealthHandler)
	s.router.Get("/health/live", handlers.LivenessHandler)
	s.router.Get("/health/ready", handlers.ReadinessHandler)
	s.router.Get("/health/startup", handlers.StartupHandler)

	// Version endpoint
	s.router.Get("/version", handlers.VersionHandler)

	// Metrics endpoint (in server package to access HandleError)
	s.router.Get("/metrics", MetricsHandler)

	// Analysis API
	analysis := handlers.NewAnalysisHandler(deps.Orchestrator, deps.Writer, deps.Store)
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyses", analysis.Analyze)
		r.Get("/analyses", analysis.History)
	})
}
