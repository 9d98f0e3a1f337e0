// Package server provides the HTTP API for searchd.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/cardfolio/searchd/internal/config"
	"github.com/cardfolio/searchd/internal/search"
	"github.com/cardfolio/searchd/internal/storage"
)

// Server is the HTTP server for the searchd API.
type Server struct {
	engine  *search.Engine
	storage storage.Storage
	config  *config.ServerConfig
	tuning  atomic.Pointer[config.SearchConfig]
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	engine *search.Engine,
	store storage.Storage,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	s := &Server{
		engine:  engine,
		storage: store,
		config:  &cfg.Server,
		logger:  logger,
	}
	tuning := cfg.Search
	s.tuning.Store(&tuning)
	return s
}

// UpdateSearchConfig swaps the request-boundary search tuning (limits).
// Called by config hot-reload; in-flight requests keep the old values.
func (s *Server) UpdateSearchConfig(cfg config.SearchConfig) {
	s.tuning.Store(&cfg)
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/api/v1/search", s.handleSearch)
	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
