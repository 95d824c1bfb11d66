package recordstore

import (
	"context"
	"sync"
)

// MemoryMedium keeps entries in process memory. It is the default for tests
// and for throwaway stores.
type MemoryMedium struct {
	mu       sync.RWMutex
	entries  map[string]Entry
	capacity int64
}

// NewMemoryMedium returns an empty medium. A positive capacity limits the
// total size of keys and values; zero means unlimited.
func NewMemoryMedium(capacity int64) *MemoryMedium {
	return &MemoryMedium{
		entries:  make(map[string]Entry),
		capacity: capacity,
	}
}

func (m *MemoryMedium) Load(_ context.Context, key string) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok {
		return Entry{}, ErrKeyNotFound
	}
	return Entry{Data: append([]byte(nil), e.Data...), Version: e.Version}, nil
}

func (m *MemoryMedium) Store(_ context.Context, key string, data []byte, expected Version) (Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.entries[key]
	var curVersion Version
	if ok {
		curVersion = cur.Version
	}
	if curVersion != expected {
		return 0, ErrVersionConflict
	}

	if m.capacity > 0 {
		used := m.usageLocked()
		if ok {
			used -= int64(len(key) + len(cur.Data))
		}
		if used+int64(len(key)+len(data)) > m.capacity {
			return 0, ErrMediumFull
		}
	}

	next := expected + 1
	m.entries[key] = Entry{Data: append([]byte(nil), data...), Version: next}
	return next, nil
}

func (m *MemoryMedium) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MemoryMedium) Usage(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.usageLocked(), nil
}

func (m *MemoryMedium) usageLocked() int64 {
	var total int64
	for k, e := range m.entries {
		total += int64(len(k) + len(e.Data))
	}
	return total
}

func (m *MemoryMedium) Close() error {
	return nil
}
