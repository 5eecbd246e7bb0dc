package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Adapter binds a named configuration to its model.
type Adapter struct {
	Config Config
	Model  Model
}

// Registry holds the configured adapters by name.
type Registry struct {
	adapters map[string]*Adapter
	order    []string
	fallback string
	closers  []io.Closer
}

// NewRegistry creates an empty registry. Get resolves an empty name to
// fallback.
func NewRegistry(fallback string) *Registry {
	return &Registry{
		adapters: make(map[string]*Adapter),
		fallback: fallback,
	}
}

// Open builds a model for every configuration and registers it.
// A failure closes any models already opened.
func Open(ctx context.Context, cfgs []Config, fallback string, logger *slog.Logger) (*Registry, error) {
	if len(cfgs) == 0 {
		return nil, ErrNoAdapters
	}
	if fallback == "" {
		fallback = cfgs[0].Name
	}

	r := NewRegistry(fallback)
	for _, cfg := range cfgs {
		model, err := open(ctx, &cfg)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("adapter %s: %w", cfg.Name, err)
		}
		if c, ok := model.(io.Closer); ok {
			r.closers = append(r.closers, c)
		}
		if err := r.Add(cfg, model); err != nil {
			r.Close()
			return nil, err
		}
		logger.Info(
			"adapter registered",
			"name", cfg.Name,
			"provider", cfg.Provider,
			"model", cfg.Model,
			"concurrency", cfg.Concurrency,
		)
	}

	if _, ok := r.adapters[fallback]; !ok {
		r.Close()
		return nil, fmt.Errorf("%w: default %q", ErrUnknownAdapter, fallback)
	}
	return r, nil
}

func open(ctx context.Context, cfg *Config) (Model, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		return newOpenAI(cfg), nil
	case ProviderVertex:
		return newVertex(ctx, cfg)
	case ProviderBedrock:
		return newBedrock(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// Add registers model under cfg.Name. When cfg carries a timeout, every
// call is bounded by it.
func (r *Registry) Add(cfg Config, model Model) error {
	if _, ok := r.adapters[cfg.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateName, cfg.Name)
	}
	if d := cfg.TimeoutDuration(); d > 0 {
		model = withTimeout(model, d)
	}
	r.adapters[cfg.Name] = &Adapter{Config: cfg, Model: model}
	r.order = append(r.order, cfg.Name)
	return nil
}

// Get returns the named adapter, or the default when name is empty.
func (r *Registry) Get(name string) (*Adapter, error) {
	if name == "" {
		name = r.fallback
	}
	a, ok := r.adapters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAdapter, name)
	}
	return a, nil
}

// Default returns the name Get resolves an empty name to.
func (r *Registry) Default() string {
	return r.fallback
}

// List returns adapter configurations in registration order.
func (r *Registry) List() []Config {
	out := make([]Config, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.adapters[name].Config)
	}
	return out
}

// Close releases provider clients that hold connections.
func (r *Registry) Close() error {
	var errs []error
	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

func withTimeout(m Model, d time.Duration) Model {
	return ModelFunc(func(ctx context.Context, req Request) (Response, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return m.Generate(ctx, req)
	})
}
