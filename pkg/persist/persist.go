package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/quanta-dev/quanta/pkg/quanta"
)

// ErrNotFound is returned by Store.Load when no snapshot exists under
// the given key.
var ErrNotFound = errors.New("persist: snapshot not found")

// Snapshot is the persisted state of a set of cells, keyed by each
// cell's persist key. Values are the cells' own JSON encodings.
type Snapshot map[string]json.RawMessage

// Store saves and loads snapshots under caller-chosen keys.
type Store interface {
	Save(ctx context.Context, key string, snap Snapshot) error
	Load(ctx context.Context, key string) (Snapshot, error)
	Delete(ctx context.Context, key string) error
}

// Capture collects the state of every keyed cell owned by the scope,
// including cells owned by child scopes. Cells whose state fails to
// marshal are skipped; the rest of the snapshot is still usable.
func Capture(scope *quanta.Scope) Snapshot {
	snap := Snapshot{}
	for _, p := range scope.Persistables() {
		data, err := p.MarshalState()
		if err != nil {
			continue
		}
		snap[p.PersistKey()] = data
	}
	return snap
}

// Restore writes a snapshot back into the scope's keyed cells. Cells
// without a snapshot entry keep their current value; snapshot entries
// without a matching cell are ignored. Each restored cell notifies its
// observers as if Set had been called. Returns the first restore error
// after attempting every cell.
func Restore(scope *quanta.Scope, snap Snapshot) error {
	var firstErr error
	for _, p := range scope.Persistables() {
		data, ok := snap[p.PersistKey()]
		if !ok {
			continue
		}
		if err := p.RestoreState(data); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("persist: restore %q: %w", p.PersistKey(), err)
		}
	}
	return firstErr
}

// MemoryStore is an in-memory Store. Safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: map[string][]byte{}}
}

// Save implements Store.
func (m *MemoryStore) Save(ctx context.Context, key string, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("persist: encode snapshot: %w", err)
	}
	m.mu.Lock()
	m.snaps[key] = data
	m.mu.Unlock()
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(ctx context.Context, key string) (Snapshot, error) {
	m.mu.RLock()
	data, ok := m.snaps[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("persist: decode snapshot: %w", err)
	}
	return snap, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.snaps, key)
	m.mu.Unlock()
	return nil
}
