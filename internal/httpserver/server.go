// Package httpserver wraps the standard http.Server in the application's
// service lifecycle.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/infrademo/infrademo/internal/app/system"
	"github.com/infrademo/infrademo/internal/config"
	"github.com/infrademo/infrademo/pkg/logger"
)

var _ system.Service = (*Server)(nil)

// Server serves the HTTP API.
type Server struct {
	srv *http.Server
	ln  net.Listener
	log *logger.Logger
}

// New builds the server around the provided handler.
func New(cfg config.ServerConfig, log *logger.Logger, handler http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         cfg.ListenAddr(),
			Handler:      handler,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		log: log,
	}
}

// Name implements system.Service.
func (s *Server) Name() string { return "http" }

// Start binds the listener and begins serving in the background. Bind
// failures surface here; serve errors after startup are logged.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.srv.Addr, err)
	}
	s.ln = ln

	s.log.Infof("http server listening on %s", ln.Addr())
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("http server terminated")
		}
	}()
	return nil
}

// Stop drains in-flight requests within the context deadline.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Addr returns the bound listen address. Before Start it returns the
// configured address.
func (s *Server) Addr() string {
	if s.ln == nil {
		return s.srv.Addr
	}
	return s.ln.Addr().String()
}
