// Package server provides the HTTP server and routing for Calendraft.
package server

import (
	"context"
	"net/http"

	"github.com/Leigh-Chr/calendraft-sub003/internal/api"
	"github.com/Leigh-Chr/calendraft-sub003/internal/bundles"
	"github.com/Leigh-Chr/calendraft-sub003/internal/calendars"
	"github.com/Leigh-Chr/calendraft-sub003/internal/config"
	"github.com/Leigh-Chr/calendraft-sub003/internal/database"
	"github.com/Leigh-Chr/calendraft-sub003/internal/refresh"
	"github.com/Leigh-Chr/calendraft-sub003/internal/server/middleware"
	"github.com/Leigh-Chr/calendraft-sub003/internal/util"
)

// Server is the main HTTP server for Calendraft.
type Server struct {
	config       *config.Config
	db           *database.DB
	router       *http.ServeMux
	calendarRepo *calendars.Repository
	bundleRepo   *bundles.Repository
	refresher    *refresh.Refresher
	scheduler    *refresh.Scheduler
	apiHandler   *api.Handler
}

// New creates a new Server instance.
func New(cfg *config.Config, db *database.DB) *Server {
	calendarRepo := calendars.NewRepository(db)
	bundleRepo := bundles.NewRepository(db)

	fetcher := refresh.NewFetcher(&cfg.Refresh)
	refresher := refresh.NewRefresher(calendarRepo, fetcher, cfg.Limits.MaxEventsPerCalendar)
	scheduler := refresh.NewScheduler(refresher, cfg.Refresh.Schedule)

	apiHandler := api.NewHandler(cfg, calendarRepo, bundleRepo, refresher)

	s := &Server{
		config:       cfg,
		db:           db,
		router:       http.NewServeMux(),
		calendarRepo: calendarRepo,
		bundleRepo:   bundleRepo,
		refresher:    refresher,
		scheduler:    scheduler,
		apiHandler:   apiHandler,
	}

	s.setupRoutes()

	return s
}

// Handler returns the HTTP handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	// Build middleware chain (applied in reverse order)
	var handler http.Handler = s.router

	handler = middleware.Logging(handler)
	handler = middleware.CORS(handler)
	handler = middleware.SecurityHeaders(handler)

	// Recovery middleware (outermost, catches panics)
	handler = middleware.Recovery(handler)

	return handler
}

// StartBackgroundWorkers starts the feed refresh scheduler.
func (s *Server) StartBackgroundWorkers(ctx context.Context) error {
	if err := s.scheduler.Start(ctx); err != nil {
		return err
	}
	util.Info("Background workers started")
	return nil
}

// Stop gracefully stops background work.
func (s *Server) Stop() {
	s.scheduler.Stop()
}

// DB returns the database connection.
func (s *Server) DB() *database.DB {
	return s.db
}

// Config returns the server configuration.
func (s *Server) Config() *config.Config {
	return s.config
}
