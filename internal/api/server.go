package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"

	"chronology/internal/config"
	"chronology/internal/logging"
)

// Server serves an http.Handler on the configured address.
type Server struct {
	server   *http.Server
	listener net.Listener
	logger   *zap.Logger
	done     chan struct{}
}

// NewServer creates a server for handler using cfg's address and timeouts.
func NewServer(cfg *config.Config, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		logger: logging.OrNop(logger).Named("server"),
	}
}

// Start binds the listen address and serves in a background goroutine.
// Bind errors are returned; serve errors are logged.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}
	s.listener = ln
	s.done = make(chan struct{})

	s.logger.Info("Server listening", zap.String("addr", ln.Addr().String()))
	go func() {
		defer close(s.done)
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server error", zap.Error(err))
		}
	}()
	return nil
}

// Stop gracefully shuts down the server and waits for the serve loop.
func (s *Server) Stop(ctx context.Context) error {
	if s.listener == nil {
		return nil
	}
	err := s.server.Shutdown(ctx)
	<-s.done
	return err
}

// Port returns the bound port, or 0 before Start.
func (s *Server) Port() int {
	if s.listener == nil {
		return 0
	}
	if addr, ok := s.listener.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}

// URL returns the base URL of the API.
func (s *Server) URL() string {
	return fmt.Sprintf("http://127.0.0.1:%d%s", s.Port(), config.APIPrefix)
}
