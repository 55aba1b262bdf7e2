package presence

import (
	"context"
	"sync"
)

// Registry tracks which users currently hold a live connection. A user id
// appears at most once; a second connection for the same user overwrites the
// first, so direct delivery always targets the most recent connection.
type Registry interface {
	Register(ctx context.Context, userID int, connID string) error
	// Unregister removes the entry only when connID still matches, so a stale
	// disconnect from an overwritten connection cannot evict the live one.
	// The boolean reports whether an entry was actually removed.
	Unregister(ctx context.Context, userID int, connID string) (bool, error)
	Lookup(ctx context.Context, userID int) (string, bool, error)
	Online(ctx context.Context) ([]int, error)
	// Refresh extends the entry's lifetime where the backend expires entries.
	Refresh(ctx context.Context, userID int) error
}

// MemoryRegistry is the single-instance registry: a mutex-guarded map scoped
// to process lifetime.
type MemoryRegistry struct {
	mu    sync.RWMutex
	conns map[int]string
}

// NewMemoryRegistry creates an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{conns: make(map[int]string)}
}

func (r *MemoryRegistry) Register(_ context.Context, userID int, connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[userID] = connID
	return nil
}

func (r *MemoryRegistry) Unregister(_ context.Context, userID int, connID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.conns[userID]; ok && current == connID {
		delete(r.conns, userID)
		return true, nil
	}
	return false, nil
}

func (r *MemoryRegistry) Lookup(_ context.Context, userID int) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connID, ok := r.conns[userID]
	return connID, ok, nil
}

func (r *MemoryRegistry) Online(_ context.Context) ([]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *MemoryRegistry) Refresh(context.Context, int) error {
	return nil
}
