package web

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/saltyorg/cafedb/internal/config"
	"github.com/saltyorg/cafedb/internal/database"
	"github.com/saltyorg/cafedb/internal/web/handlers"
	"github.com/saltyorg/cafedb/internal/web/middleware"
)

// Options configures the HTTP server
type Options struct {
	Port       int
	Bind       string
	AllowedNet *net.IPNet
	Timeouts   *config.TimeoutConfig
	// MaintenanceSchedule is a cron expression for PRAGMA optimize; empty disables it
	MaintenanceSchedule string
}

// Server represents the web server
type Server struct {
	db          *database.DB
	opts        Options
	router      *chi.Mux
	cron        *cron.Cron
	cronEntryID cron.EntryID
	handlers    *handlers.Handlers
}

// NewServer creates a new web server
func NewServer(db *database.DB, opts Options) (*Server, error) {
	if opts.Timeouts == nil {
		opts.Timeouts = config.DefaultTimeoutConfig()
	}

	s := &Server{
		db:       db,
		opts:     opts,
		router:   chi.NewRouter(),
		cron:     cron.New(),
		handlers: handlers.New(db),
	}

	if opts.MaintenanceSchedule != "" {
		id, err := s.cron.AddFunc(opts.MaintenanceSchedule, s.runMaintenance)
		if err != nil {
			return nil, fmt.Errorf("invalid maintenance schedule %q: %w", opts.MaintenanceSchedule, err)
		}
		s.cronEntryID = id
		log.Info().Str("schedule", opts.MaintenanceSchedule).Msg("Database maintenance scheduled")
	}

	s.setupRoutes()
	return s, nil
}

// Handler returns the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	r := s.router
	h := s.handlers

	r.Use(chimiddleware.RequestID)
	// AllowSubnet must come BEFORE RealIP so we check the actual connection source
	r.Use(middleware.AllowSubnet(s.opts.AllowedNet))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Get("/healthz", h.Health)

	r.Route("/api/{table}", func(r chi.Router) {
		r.Get("/", h.ListRows)
		r.Post("/", h.CreateRow)
		r.Delete("/", h.DeleteRows)
		r.Get("/count", h.CountRows)
		r.Patch("/{id}", h.UpdateRow)
	})
}

// runMaintenance is called by cron
func (s *Server) runMaintenance() {
	start := time.Now()
	if err := s.db.Optimize(); err != nil {
		log.Error().Err(err).Msg("Scheduled database optimize failed")
		return
	}
	log.Info().Dur("duration", time.Since(start)).Msg("Scheduled database optimize complete")
}

// Start serves until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	var addr string
	if s.opts.Bind != "" {
		addr = fmt.Sprintf("%s:%d", s.opts.Bind, s.opts.Port)
	} else {
		addr = fmt.Sprintf(":%d", s.opts.Port)
	}

	server := &http.Server{
		Addr:        addr,
		Handler:     s.router,
		ReadTimeout: s.opts.Timeouts.Read,
		IdleTimeout: s.opts.Timeouts.Idle,
	}

	if s.cronEntryID != 0 {
		s.cron.Start()
		defer s.cron.Stop()
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.Timeouts.Shutdown)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}
