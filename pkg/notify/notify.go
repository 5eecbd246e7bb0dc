// Package notify provides an in-memory observer registry keyed by subject.
package notify

import "sync"

// Listener receives events pushed for a subject.
type Listener[E any] func(E)

// Registry maps subjects to their live listeners.
type Registry[K comparable, E any] struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[K]map[uint64]Listener[E]
}

// New creates an empty Registry.
func New[K comparable, E any]() *Registry[K, E] {
	return &Registry[K, E]{
		listeners: make(map[K]map[uint64]Listener[E]),
	}
}

// Register adds a listener for key and returns the function that removes it.
// The returned function is safe to call more than once.
func (r *Registry[K, E]) Register(key K, fn Listener[E]) (unregister func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID

	set, ok := r.listeners[key]
	if !ok {
		set = make(map[uint64]Listener[E])
		r.listeners[key] = set
	}
	set[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(key, id) })
	}
}

// Notify synchronously pushes event to every listener registered for key.
// It reports whether any listener received the event.
func (r *Registry[K, E]) Notify(key K, event E) bool {
	r.mu.RLock()
	set := r.listeners[key]
	fns := make([]Listener[E], 0, len(set))
	for _, fn := range set {
		fns = append(fns, fn)
	}
	r.mu.RUnlock()

	for _, fn := range fns {
		fn(event)
	}
	return len(fns) > 0
}

// Count returns the number of listeners registered for key.
func (r *Registry[K, E]) Count(key K) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners[key])
}

func (r *Registry[K, E]) remove(key K, id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.listeners[key]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(r.listeners, key)
	}
}
