package storage

import (
	"bytes"
	"context"
	"os"
	"sort"
	"sync"
)

// Memory is an in-memory Storage implementation for testing. It keeps
// object content in a map without any filesystem dependency beyond the
// materialized Get targets. Thread-safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemory creates a new in-memory store.
func NewMemory() *Memory {
	return &Memory{
		objects: make(map[string][]byte),
	}
}

// Get materializes the content stored under key at path.
func (m *Memory) Get(ctx context.Context, key, path string) error {
	if err := ctx.Err(); err != nil {
		return opError("get", key, err)
	}

	m.mu.RLock()
	data, ok := m.objects[key]
	m.mu.RUnlock()

	if !ok {
		return opError("get", key, ErrNotFound)
	}

	if err := writeFileAtomic(path, bytes.NewReader(data)); err != nil {
		return opError("get", key, err)
	}

	return nil
}

// Put stores the content of the file at path under key.
func (m *Memory) Put(ctx context.Context, key, path string) error {
	if err := ctx.Err(); err != nil {
		return opError("put", key, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return opError("put", key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[key] = data

	return nil
}

// Store seeds the backend with raw content. The slice is copied.
func (m *Memory) Store(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := make([]byte, len(data))
	copy(copied, data)
	m.objects[key] = copied
}

// Load returns a copy of the content stored under key.
func (m *Memory) Load(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[key]
	if !ok {
		return nil, false
	}

	copied := make([]byte, len(data))
	copy(copied, data)

	return copied, true
}

// Keys returns all stored keys in sorted order.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.objects))
	for key := range m.objects {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// Len returns the number of stored objects.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.objects)
}
