package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	docerrors "github.com/vango-dev/doclisten/internal/errors"
	"github.com/vango-dev/doclisten/pkg/dom"
	"github.com/vango-dev/doclisten/pkg/lifecycle"
	"github.com/vango-dev/doclisten/pkg/middleware"
)

// Component sets up a session's component. It runs once per connection,
// before the session's owner mounts, and typically calls listen.Use with
// s.Owner() and s.Document().
type Component func(s *Session)

// Config configures the bridge server.
type Config struct {
	// Address is the TCP address for ListenAndServe.
	Address string

	// ReadLimit is the maximum size of a client frame in bytes.
	ReadLimit int64

	// WriteTimeout is the deadline for writing a single frame.
	WriteTimeout time.Duration

	// CheckOrigin validates the Origin header of WebSocket upgrades.
	// If nil, gorilla/websocket's same-origin check is used.
	CheckOrigin func(r *http.Request) bool

	// Logger is the structured logger. If nil, slog.Default() is used.
	Logger *slog.Logger

	// Metrics, if set, observes every session document.
	Metrics *middleware.Metrics

	// Gatherer backs /metrics. If nil, prometheus.DefaultGatherer is used.
	Gatherer prometheus.Gatherer

	// Middleware is extra dispatch middleware for every session document,
	// e.g. middleware.OpenTelemetry().
	Middleware []dom.Middleware
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Address:      ":8080",
		ReadLimit:    64 * 1024,
		WriteTimeout: 10 * time.Second,
	}
}

// Server accepts WebSocket clients and runs one component per connection.
type Server struct {
	component Component
	config    *Config
	upgrader  websocket.Upgrader
	router    chi.Router
	logger    *slog.Logger

	sessions map[string]*Session
	mu       sync.Mutex
	wg       sync.WaitGroup
	closed   atomic.Bool
	seq      atomic.Uint64

	httpServer *http.Server
}

// New creates a Server that runs component for every connection.
func New(component Component, config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "bridge")

	gatherer := config.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		component: component,
		config:    config,
		upgrader: websocket.Upgrader{
			CheckOrigin: config.CheckOrigin,
		},
		logger:   logger,
		sessions: make(map[string]*Session),
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Get("/ws", s.handleWebSocket)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	s.router = r

	return s
}

// Handler returns the HTTP handler serving /ws, /healthz and /metrics.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Sessions returns the number of connected sessions.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// ListenAndServe serves on config.Address until Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		return ErrServerClosed
	}
	s.httpServer = &http.Server{
		Addr:              s.config.Address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	s.logger.Info("listening", "address", s.config.Address)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return ErrServerClosed
	}
	return err
}

// Shutdown disconnects every session, waits for their components to tear
// down, and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed.Store(true)
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	srv := s.httpServer
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.interrupt("server shutdown")
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if srv != nil {
		return srv.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if s.closed.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("shutting down\n"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.closed.Load() {
		http.Error(w, ErrServerClosed.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	if s.config.ReadLimit > 0 {
		conn.SetReadLimit(s.config.ReadLimit)
	}

	id := fmt.Sprintf("s%d", s.seq.Add(1))

	sess := &Session{
		id:           id,
		conn:         conn,
		owner:        lifecycle.NewOwner(nil),
		writeTimeout: s.config.WriteTimeout,
		logger:       s.logger.With("session", id, "request_id", chimw.GetReqID(r.Context())),
	}
	sess.doc = dom.NewDocument(s.documentOptions(sess)...)

	if !s.register(sess) {
		sess.interrupt("server shutdown")
		sess.close()
		return
	}
	defer s.unregister(sess)

	sess.logger.Info("session started")

	if err := s.setup(sess); err != nil {
		sess.logger.Error("component setup failed", "error", err)
		sess.Send(errorFrame(err))
		s.teardown(sess)
		return
	}

	sess.owner.Mount()
	sess.readLoop(r.Context())

	// Teardown runs while the connection may still accept unlisten frames.
	s.teardown(sess)
	sess.logger.Info("session ended")
}

func (s *Server) documentOptions(sess *Session) []dom.Option {
	opts := []dom.Option{
		dom.WithLogger(sess.logger),
		dom.WithObserver(sess),
	}
	if m := s.config.Metrics; m != nil {
		opts = append(opts, dom.WithObserver(m), dom.WithMiddleware(m.Middleware()))
	}
	if len(s.config.Middleware) > 0 {
		opts = append(opts, dom.WithMiddleware(s.config.Middleware...))
	}
	return opts
}

// teardown disposes the session's component and closes its connection.
// Listeners the component left attached leave the metrics with the document.
func (s *Server) teardown(sess *Session) {
	sess.owner.Dispose()
	if m := s.config.Metrics; m != nil {
		m.DocumentClosed(sess.doc)
	}
	sess.close()
}

// setup runs the component, converting a panic into an error.
func (s *Server) setup(sess *Session) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = docerrors.Newf(docerrors.CategoryTarget, "component setup panicked: %v", r)
		}
	}()

	if s.component != nil {
		s.component(sess)
	}
	return nil
}

func (s *Server) register(sess *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return false
	}
	s.sessions[sess.id] = sess
	s.wg.Add(1)
	return true
}

func (s *Server) unregister(sess *Session) {
	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()
	s.wg.Done()
}
