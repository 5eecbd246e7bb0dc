// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, storage, rendering, and
// model adapters) that domain systems require.
package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/scrivener/internal/config"
	"github.com/JaimeStill/scrivener/internal/providers"
	"github.com/JaimeStill/scrivener/internal/render"
	"github.com/JaimeStill/scrivener/pkg/database"
	"github.com/JaimeStill/scrivener/pkg/lifecycle"
	"github.com/JaimeStill/scrivener/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// Database and Storage are nil when built with NewPipeline.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Renderer  render.System
	Adapters  *providers.Registry
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	infra, err := NewPipeline(cfg)
	if err != nil {
		return nil, err
	}

	db, err := database.New(&cfg.Database, infra.Logger)
	if err != nil {
		infra.Adapters.Close()
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, infra.Logger)
	if err != nil {
		infra.Adapters.Close()
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	infra.Database = db
	infra.Storage = store
	return infra, nil
}

// NewPipeline creates the subset of systems a translation run needs:
// lifecycle, logging, the renderer, and the model adapters.
func NewPipeline(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	adapters, err := providers.Open(
		context.Background(),
		cfg.Providers.Adapters,
		cfg.Providers.Default,
		logger.With("system", "providers"),
	)
	if err != nil {
		return nil, fmt.Errorf("providers init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Renderer:  render.New(&cfg.Render, logger),
		Adapters:  adapters,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	if i.Storage != nil {
		if err := i.Storage.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("storage start failed: %w", err)
		}
	}
	if err := i.Renderer.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("renderer start failed: %w", err)
	}

	i.Lifecycle.OnShutdown(func() {
		<-i.Lifecycle.Context().Done()
		if err := i.Adapters.Close(); err != nil {
			i.Logger.Error("adapter close failed", "error", err)
		}
	})
	return nil
}
