// Package memstore implements store.Store in process memory. It backs local
// development (DM_BACKEND=memory) and tests; nothing survives a restart.
package memstore

import (
	"context"
	"strings"
	"sync"

	"github.com/tidwall/btree"

	"github.com/alfredjeanlab/dungeonmaster/internal/store"
)

// MemStore keeps blobs in an ordered map keyed by storage key.
type MemStore struct {
	mu    sync.RWMutex
	blobs btree.Map[string, []byte]
}

// Compile-time check that MemStore implements store.Store.
var _ store.Store = (*MemStore)(nil)

func New() *MemStore {
	return &MemStore{}
}

func (m *MemStore) Put(_ context.Context, ns store.Namespace, blob []byte) error {
	cp := make([]byte, len(blob))
	copy(cp, blob)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs.Set(ns.Key(), cp)
	return nil
}

func (m *MemStore) Get(_ context.Context, ns store.Namespace) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	blob, ok := m.blobs.Get(ns.Key())
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := make([]byte, len(blob))
	copy(cp, blob)
	return cp, nil
}

func (m *MemStore) Exists(_ context.Context, ns store.Namespace) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.blobs.Get(ns.Key())
	return ok, nil
}

func (m *MemStore) Delete(_ context.Context, ns store.Namespace) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs.Delete(ns.Key())
	return nil
}

func (m *MemStore) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	m.blobs.Ascend(prefix, func(key string, _ []byte) bool {
		if !strings.HasPrefix(key, prefix) {
			return false
		}
		keys = append(keys, key)
		return true
	})
	return keys, nil
}

// Len returns the number of stored blobs.
func (m *MemStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.blobs.Len()
}

func (m *MemStore) Close() error { return nil }
