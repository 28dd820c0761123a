package locker

import "sync"

// Registry is an in-process try-lock keyed by document id. It guarantees at
// most one concurrent generation pass per document on a single server; it is
// advisory only and does not coordinate across instances.
//
// Constructed once per process and passed by reference; deliberately not a
// package-level global.
type Registry struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		held: make(map[string]struct{}),
	}
}

// TryAcquire takes the lock for id, reporting false without blocking when it
// is already held.
func (r *Registry) TryAcquire(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.held[id]; taken {
		return false
	}
	r.held[id] = struct{}{}
	return true
}

// Release frees the lock for id. Releasing an unheld lock is a no-op.
func (r *Registry) Release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.held, id)
}

// Held reports whether the lock for id is currently taken.
func (r *Registry) Held(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, taken := r.held[id]
	return taken
}
