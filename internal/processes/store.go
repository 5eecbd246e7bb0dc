package processes

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/scrivener/pkg/pagination"
)

// Store persists process records. Find and List leave HTML nil; Save only
// writes HTML when it is set.
type Store interface {
	Create(ctx context.Context, p *Process) error
	Find(ctx context.Context, id uuid.UUID) (*Process, error)
	HTML(ctx context.Context, id uuid.UUID) (string, error)
	Save(ctx context.Context, p *Process) error
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Process], error)
	Active(ctx context.Context, updatedBefore *time.Time) ([]Process, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type memory struct {
	mu    sync.RWMutex
	procs map[uuid.UUID]Process
	html  map[uuid.UUID]string
}

// NewMemoryStore creates a Store held in memory, used by the CLI and tests.
func NewMemoryStore() Store {
	return &memory{
		procs: make(map[uuid.UUID]Process),
		html:  make(map[uuid.UUID]string),
	}
}

func (m *memory) Create(_ context.Context, p *Process) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.procs[p.ID]; ok {
		return ErrDuplicate
	}
	m.store(p)
	return nil
}

func (m *memory) Find(_ context.Context, id uuid.UUID) (*Process, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.procs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *memory) HTML(_ context.Context, id uuid.UUID) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.procs[id]; !ok {
		return "", ErrNotFound
	}
	return m.html[id], nil
}

func (m *memory) Save(_ context.Context, p *Process) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.procs[p.ID]; !ok {
		return ErrNotFound
	}
	m.store(p)
	return nil
}

func (m *memory) store(p *Process) {
	cp := *p
	if cp.HTML != nil {
		m.html[cp.ID] = *cp.HTML
		cp.HTML = nil
	}
	cp.PagesInfo = slices.Clone(cp.PagesInfo)
	m.procs[cp.ID] = cp
}

func (m *memory) List(
	_ context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Process], error) {
	m.mu.RLock()
	matched := make([]Process, 0, len(m.procs))
	for _, p := range m.procs {
		if filters.match(p) && matchSearch(p, page.Search) {
			matched = append(matched, p)
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(matched, func(a, b Process) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	start := min(page.Offset(), len(matched))
	end := min(start+page.PageSize, len(matched))

	result := pagination.NewPageResult(matched[start:end], len(matched), page.Page, page.PageSize)
	return &result, nil
}

func (m *memory) Active(_ context.Context, updatedBefore *time.Time) ([]Process, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Process
	for _, p := range m.procs {
		if p.Status.Terminal() {
			continue
		}
		if updatedBefore != nil && !p.UpdatedAt.Before(*updatedBefore) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *memory) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.procs[id]; !ok {
		return ErrNotFound
	}
	delete(m.procs, id)
	delete(m.html, id)
	return nil
}

func matchSearch(p Process, search *string) bool {
	if search == nil || *search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Filename), strings.ToLower(*search))
}
