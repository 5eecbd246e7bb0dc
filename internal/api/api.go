// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/JaimeStill/scrivener/internal/config"
	"github.com/JaimeStill/scrivener/internal/infrastructure"
	"github.com/JaimeStill/scrivener/pkg/middleware"
	"github.com/JaimeStill/scrivener/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware,
// and binds the background process systems to the lifecycle.
func NewModule(ctx context.Context, cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	patterns := registerRoutes(mux, domain, cfg)
	runtime.Logger.Debug("routes registered", "base_path", cfg.API.BasePath, "patterns", patterns)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(
		middleware.Logger(runtime.Logger),
		middleware.Recover(runtime.Logger),
	)

	if cfg.API.Auth.Enabled {
		verifier, err := middleware.NewOIDCVerifier(ctx, &cfg.API.Auth)
		if err != nil {
			return nil, fmt.Errorf("auth: %w", err)
		}
		m.Use(middleware.Auth(verifier, runtime.Logger))
	}

	domain.Start(runtime)

	return m, nil
}
