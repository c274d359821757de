// Package api exposes the tracker state over a small read-only REST API.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/maxklyga/luci-presence/internal/log"
	"github.com/maxklyga/luci-presence/internal/tracker"
)

// Server represents the API server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
}

// NewServer creates an API server publishing the given tracker.
func NewServer(t *tracker.Tracker, bindAddr string) *Server {
	s := &Server{
		router: chi.NewRouter(),
	}

	s.router.Use(Recovery)
	s.router.Use(Logger)
	s.router.Use(PrivateSubnetOnly)

	h := NewHandler(t)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/devices", h.GetDevices)
		r.Get("/devices/present", h.GetPresentDevices)
		r.Get("/status", h.GetStatus)
	})

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	s.httpServer = &http.Server{
		Addr:         bindAddr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the API server and blocks until it is shut down.
func (s *Server) Start() error {
	log.Infof("[API] Starting server on %s", s.httpServer.Addr)
	log.Infof("[API] Example: curl http://%s/api/v1/devices", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Stop gracefully stops the API server.
func (s *Server) Stop(ctx context.Context) error {
	log.Infof("[API] Shutting down server...")
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the HTTP handler (used in tests).
func (s *Server) Handler() http.Handler {
	return s.router
}
