// Package api serves pedigree scenes to an interactive rendering client.
//
// A client opens a session for an (owner, root) pair, then drives it with
// click and drag events. Every response carries the recomputed scene. Each
// session owns one pipeline.Engine; a per-session mutex makes sure only one
// request uses it at a time. Positions are persisted through the Runner's
// cache when a session is deleted, expires or the server shuts down.
package api

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/pedigree/pkg/httputil"
	"github.com/matzehuels/pedigree/pkg/pipeline"
	"github.com/matzehuels/pedigree/pkg/record"
	"github.com/matzehuels/pedigree/pkg/session"
)

// Options configures a Server.
type Options struct {
	// DefaultOwner is used when a create request names no owner.
	DefaultOwner string
	// SessionTTL is the idle time after which a session expires.
	// Zero means session.DefaultTTL.
	SessionTTL time.Duration
	// Metrics serves GET /metrics. Nil means promhttp.Handler().
	Metrics http.Handler
	Logger  *log.Logger
}

// Server is the HTTP API. Create it with New.
type Server struct {
	runner       *pipeline.Runner[record.Attributes]
	sessions     *session.Registry[record.Attributes]
	logger       *log.Logger
	defaultOwner string
	sweepEvery   time.Duration
	router       chi.Router
}

// New creates a Server that opens engines through runner.
func New(runner *pipeline.Runner[record.Attributes], opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.SessionTTL == 0 {
		opts.SessionTTL = session.DefaultTTL
	}
	if opts.DefaultOwner == "" {
		opts.DefaultOwner = "default"
	}
	if opts.Metrics == nil {
		opts.Metrics = promhttp.Handler()
	}

	s := &Server{
		runner:       runner,
		sessions:     session.NewRegistry[record.Attributes](opts.SessionTTL),
		logger:       opts.Logger,
		defaultOwner: opts.DefaultOwner,
		sweepEvery:   max(opts.SessionTTL/4, time.Second),
	}
	s.router = s.routes(opts.Metrics)
	return s
}

func (s *Server) routes(metrics http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)
	r.NotFound(httputil.NotFound)
	r.MethodNotAllowed(httputil.MethodNotAllowed)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics)

	r.Post("/sessions", s.handleCreate)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Delete("/", s.handleDelete)
		r.Get("/scene", s.handleScene)
		r.Get("/render", s.handleRender)
		r.Put("/root", s.handleRoot)
		r.Post("/events/click", s.handleClick)
		r.Post("/events/drag", s.handleDrag)
	})
	return r
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.router }

// Sessions returns the number of live sessions.
func (s *Server) Sessions() int { return s.sessions.Len() }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully within shutdownTimeout and persists every open session.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln, shutdownTimeout)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sweep(sweepCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "sessions", s.sessions.Len())
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close(shutdownCtx)
	return err
}

// Close persists and drops every session.
func (s *Server) Close(ctx context.Context) {
	s.persist(ctx, s.sessions.Drain())
}

// Sweep persists and drops expired sessions. It returns how many it removed.
func (s *Server) Sweep(ctx context.Context) int {
	expired := s.sessions.Cleanup()
	s.persist(ctx, expired)
	return len(expired)
}

func (s *Server) sweep(ctx context.Context) {
	t := time.NewTicker(s.sweepEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Sweep(ctx); n > 0 {
				s.logger.Debug("expired sessions", "count", n)
			}
		}
	}
}

func (s *Server) persist(ctx context.Context, sessions []*session.Session[record.Attributes]) {
	for _, sess := range sessions {
		sess.Lock()
		err := s.runner.Save(ctx, sess.Owner, sess.Engine)
		sess.Unlock()
		if err != nil {
			s.logger.Warn("save positions", "session", sess.ID, "err", err)
		}
	}
}
