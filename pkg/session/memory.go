package session

import (
	"context"
	"sync"
	"time"

	appErrors "github.com/noah-isme/tables-pro/pkg/errors"
)

type memoryEntry struct {
	values    Values
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. It is meant for development and tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

// Load returns a copy of the stored values.
func (m *MemoryStore) Load(ctx context.Context, id string) (Values, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[id]
	if !ok {
		return nil, appErrors.ErrSessionMiss
	}
	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		delete(m.entries, id)
		return nil, appErrors.ErrSessionMiss
	}
	return copyValues(entry.values), nil
}

// Save replaces the stored values.
func (m *MemoryStore) Save(ctx context.Context, id string, values Values, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := memoryEntry{values: copyValues(values)}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.entries[id] = entry
	return nil
}

// Delete forgets a session.
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

func copyValues(in Values) Values {
	out := make(Values, len(in))
	for k, v := range in {
		out[k] = append([]byte(nil), v...)
	}
	return out
}
