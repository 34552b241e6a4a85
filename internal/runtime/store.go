package runtime

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ariaos/aria/pkg/types"
)

// MemoryStore persists Memory rows. The core defines only the interface;
// concrete storage backends (sqlite, pgvector, lancedb, ...) are a
// connector concern, not this core's. InMemoryStore is the default,
// sufficient for tests and for embedding runtimes that hand off
// persistence to a plugin-registered Service instead.
type MemoryStore interface {
	Create(ctx context.Context, mem types.Memory, table string) (types.Memory, error)
}

// InMemoryStore appends memories to a per-table slice, guarded by a
// mutex. Memories are immutable once written (invariant 7): Create never
// mutates an existing row, only appends.
type InMemoryStore struct {
	mu     sync.Mutex
	tables map[string][]types.Memory
}

// NewInMemoryStore builds an empty InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{tables: make(map[string][]types.Memory)}
}

func (s *InMemoryStore) Create(ctx context.Context, mem types.Memory, table string) (types.Memory, error) {
	if mem.ID == "" {
		mem.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = append(s.tables[table], mem)
	return mem, nil
}

// Table returns a snapshot of every memory written to table, in write
// order (append-only per invariant 7).
func (s *InMemoryStore) Table(table string) []types.Memory {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Memory, len(s.tables[table]))
	copy(out, s.tables[table])
	return out
}
