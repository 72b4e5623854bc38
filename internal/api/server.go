package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/newsletter/internal/subscription"
)

// Server represents the API server
type Server struct {
	handler http.Handler
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a new API server around the subscription service.
func NewServer(svc *subscription.Service) *Server {
	handlers := NewHandlers(svc)
	router := SetupRoutes(handlers)

	return &Server{
		handler: router,
		router:  router,
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.handler,
		// Request bodies here are small form posts; keep the timeouts tight.
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing
func (s *Server) Handler() http.Handler {
	return s.handler
}
