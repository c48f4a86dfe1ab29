// Package server provides route registration for Calendraft.
package server

import (
	"net/http"

	"github.com/Leigh-Chr/calendraft-sub003/internal/response"
)

// setupRoutes registers all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check with database connectivity
	s.router.HandleFunc("GET /health", s.handleHealth)

	s.apiHandler.RegisterRoutes(s.router)
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		response.JSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "unhealthy",
			"error":  "database unavailable",
		})
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
	})
}
