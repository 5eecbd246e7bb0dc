package main

import (
	"context"
	"fmt"
	"time"

	"github.com/JaimeStill/scrivener/internal/config"
	"github.com/JaimeStill/scrivener/internal/infrastructure"
)

// Server owns the infrastructure, the mounted modules, and the listener.
type Server struct {
	infra   *infrastructure.Infrastructure
	modules *Modules
	http    *httpServer
}

// NewServer builds every subsystem without starting any of them.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(ctx, infra, cfg)
	if err != nil {
		infra.Adapters.Close()
		return nil, err
	}

	router := buildRouter(infra)
	modules.Mount(router)

	return &Server{
		infra:   infra,
		modules: modules,
		http:    newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

// Start starts the infrastructure and binds the listener. When the listener
// cannot bind, everything already started is shut down again.
func (s *Server) Start(shutdownTimeout time.Duration) error {
	started := time.Now()

	if err := s.infra.Start(); err != nil {
		return err
	}

	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		if serr := s.infra.Lifecycle.Shutdown(shutdownTimeout); serr != nil {
			s.infra.Logger.Error("cleanup after failed start", "error", serr)
		}
		return fmt.Errorf("start http: %w", err)
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info(
			"startup complete",
			"addr", s.http.Addr(),
			"database_ready", s.infra.Database != nil && s.infra.Database.Ready(),
			"elapsed", time.Since(started),
		)
	}()

	return nil
}

// Shutdown cancels the lifecycle and waits for every subsystem to drain.
func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}
