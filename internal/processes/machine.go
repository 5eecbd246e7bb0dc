package processes

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/scrivener/pkg/notify"
)

// Machine is the single entry point for process mutation. Every update is
// persisted and then pushed to the listeners registered for the process.
type Machine struct {
	store     Store
	listeners *notify.Registry[uuid.UUID, Event]
	logger    *slog.Logger
}

// NewMachine creates a Machine over store with its own listener registry.
func NewMachine(store Store, logger *slog.Logger) *Machine {
	return &Machine{
		store:     store,
		listeners: notify.New[uuid.UUID, Event](),
		logger:    logger.With("system", "processes"),
	}
}

// Store returns the underlying store.
func (m *Machine) Store() Store {
	return m.store
}

// Create persists a new pending process.
func (m *Machine) Create(ctx context.Context, p Process) (*Process, error) {
	now := time.Now().UTC()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = now
	p.Status = ""
	p.Apply(Patch{Status: ptr(StatusPending), Message: ptr("Waiting for upload")}, now)

	if err := m.store.Create(ctx, &p); err != nil {
		return nil, fmt.Errorf("create process: %w", err)
	}

	m.logger.Info("process created", "process_id", p.ID, "filename", p.Filename, "adapter", p.Config.Adapter)
	m.listeners.Notify(p.ID, p.Event())
	return &p, nil
}

// Find returns the process with id.
func (m *Machine) Find(ctx context.Context, id uuid.UUID) (*Process, error) {
	return m.store.Find(ctx, id)
}

// Update applies patch to the stored process, persists the result, and
// pushes the merged state to listeners. A finished process rejects updates
// with ErrTerminal. Otherwise updates are last-write-wins.
func (m *Machine) Update(ctx context.Context, id uuid.UUID, patch Patch) (*Process, error) {
	p, err := m.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status.Terminal() {
		return nil, fmt.Errorf("%w: status %s", ErrTerminal, p.Status)
	}

	from := p.Status
	p.Apply(patch, time.Now().UTC())

	if err := m.store.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save process %s: %w", id, err)
	}

	if from != p.Status {
		m.logger.Info("process transition", "process_id", id, "from", from, "to", p.Status, "message", p.Message)
	}

	m.listeners.Notify(id, p.Event())
	return p, nil
}

// Subscribe registers fn for events on process id.
func (m *Machine) Subscribe(id uuid.UUID, fn func(Event)) (unregister func()) {
	return m.listeners.Register(id, fn)
}
