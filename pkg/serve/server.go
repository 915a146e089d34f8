// Package serve exposes the segmentation and tag-resolution engine over
// HTTP for collaborators that prefer an API to the CLI.
package serve

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/coolbeans/strata/pkg/segment"
)

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	registry *segment.Registry
	log      *slog.Logger
}

// NewServer creates and configures the HTTP server. The registry supplies
// named header-level specs; it may be empty but not nil.
func NewServer(registry *segment.Registry, log *slog.Logger) *Server {
	s := &Server{
		registry: registry,
		log:      log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Get("/api/specs", s.handleListSpecs)
	r.Post("/api/segment", s.handleSegment)
	r.Post("/api/resolve", s.handleResolve)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
