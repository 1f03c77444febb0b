// Package server exposes conversations over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/zero-day-ai/graphqa/internal/conversation"
	"github.com/zero-day-ai/graphqa/internal/observability"
	"github.com/zero-day-ai/graphqa/internal/types"
)

// ErrCodeInvalidConfig is returned by New for incomplete configuration.
const ErrCodeInvalidConfig types.ErrorCode = "SERVER_INVALID_CONFIG"

// Runner answers one turn. *pipeline.Pipeline implements it.
type Runner interface {
	conversation.Runner
	Strategy() string
}

// Resolver returns the runner for a strategy name; "" selects the default.
type Resolver interface {
	Resolve(strategy string) (Runner, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(strategy string) (Runner, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(strategy string) (Runner, error) {
	return f(strategy)
}

// Config wires the server to its collaborators. Store and Resolver are
// required; Health, Metrics and Logger are optional.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	Store    conversation.Store
	Resolver Resolver
	Health   *observability.HealthMonitor
	Metrics  *observability.Metrics
	Logger   *slog.Logger
}

// Server serves the conversation API.
type Server struct {
	cfg    Config
	router *mux.Router
	logger *slog.Logger

	// turns on one session are serialized so a Get/Ask/Save cycle never
	// interleaves with another on the same state.
	locks sync.Map
}

// New validates cfg and builds the routes.
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, types.NewError(ErrCodeInvalidConfig, "server requires a session store")
	}
	if cfg.Resolver == nil {
		return nil, types.NewError(ErrCodeInvalidConfig, "server requires a pipeline resolver")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 15 * time.Second
	}

	s := &Server{cfg: cfg, logger: cfg.Logger}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.observe)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.cfg.Metrics != nil {
		r.Handle("/metrics", s.cfg.Metrics.Handler()).Methods(http.MethodGet)
	}

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/sessions", s.handleCreateSession).Methods(http.MethodPost)
	v1.HandleFunc("/sessions/{id}/ask", s.handleAsk).Methods(http.MethodPost)
	v1.HandleFunc("/sessions/{id}/history", s.handleHistory).Methods(http.MethodGet)
	v1.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such route")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})
	return r
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on cfg.Address until ctx is done, then shuts down
// gracefully within ShutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "address", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) sessionLock(id string) *sync.Mutex {
	m, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	return m.(*sync.Mutex)
}
