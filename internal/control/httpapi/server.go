// Package httpapi exposes the generator's control surface over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	siggen "github.com/tphakala/go-signal-generator"
)

const (
	defaultAddr     = "127.0.0.1:8080"
	shutdownTimeout = 5 * time.Second
	readTimeout     = 10 * time.Second
	writeTimeout    = 10 * time.Second
	idleTimeout     = 60 * time.Second

	// maxJSONBody bounds channel update requests.
	maxJSONBody = 4 << 10
)

// Engine is the part of *siggen.Engine the server drives.
type Engine interface {
	Run(ctx context.Context) error
	Stop() error
	Signal(ctx context.Context, m siggen.Message) error
	SignalFrame(ctx context.Context, frame []byte) error
	State() siggen.State
	SampleRate() float64
	Stats() siggen.Stats
}

// Config holds server configuration.
type Config struct {
	Addr   string
	Logger *slog.Logger // nil discards
}

// Server is the HTTP control server.
type Server struct {
	config Config
	engine Engine
	router *chi.Mux
	logger *slog.Logger
}

// New creates a server driving engine.
func New(engine Engine, cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		config: cfg,
		engine: engine,
		router: chi.NewRouter(),
		logger: logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(s.logger.Handler(), slog.LevelDebug),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Put("/channels/{index}", s.handleSetChannel)
		r.Post("/reset", s.handleReset)
		r.Post("/run", s.handleRun)
		r.Post("/stop", s.handleStop)
		r.Post("/messages", s.handleMessage)
	})
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("control server listening", slog.String("addr", s.config.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down control server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("shutdown error", slog.Any("error", err))
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
