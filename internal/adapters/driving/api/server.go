package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-scan/internal/logger"
)

// Config configures the HTTP server and its gates.
type Config struct {
	// Addr is the listen address, e.g. ":3000". Port 0 picks a free port.
	Addr string

	// Secret is the shared secret required on gated routes. Empty disables the check.
	Secret string

	// AllowedOrigin restricts browser callers. Empty allows any origin.
	AllowedOrigin string

	// RateLimit is requests per second per client on gated routes. Zero disables it.
	RateLimit float64

	// RateBurst is the token bucket size.
	RateBurst int
}

// Server serves the search API over HTTP.
type Server struct {
	mu       sync.Mutex
	cfg      Config
	ports    Ports
	handler  http.Handler
	server   *http.Server
	listener net.Listener
	errChan  chan error
}

// NewServer builds a server for the given services.
func NewServer(cfg Config, ports Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}
	s := &Server{
		cfg:     cfg,
		ports:   ports,
		errChan: make(chan error, 1),
	}
	s.handler = s.routes()
	return s, nil
}

// Handler returns the fully gated handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	gated := func(h http.HandlerFunc) http.Handler {
		return chain(h,
			withRateLimit(s.cfg.RateLimit, s.cfg.RateBurst),
			withSecret(s.cfg.Secret),
			withOrigin(s.cfg.AllowedOrigin, s.cfg.Secret),
		)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /filters", s.handleFilters)
	mux.Handle("POST /search", gated(s.handleSearch))
	mux.Handle("GET /sources", chain(http.HandlerFunc(s.handleSources), withSecret(s.cfg.Secret)))

	return chain(mux, withRequestID, withCORS(s.cfg.AllowedOrigin))
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.server = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case s.errChan <- err:
			default:
			}
		}
	}()

	logger.Info("listening on %s", listener.Addr())
	return nil
}

// Run starts the server and blocks until ctx is cancelled or serving fails.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return s.Stop()
	case err := <-s.errChan:
		_ = s.Stop()
		return err
	}
}

// Stop shuts down the server.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return s.cfg.Addr
	}
	return s.listener.Addr().String()
}
