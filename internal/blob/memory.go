package blob

import (
	"context"
	"sync"
)

// Object is a stored blob.
type Object struct {
	ContentType string
	Data        []byte
}

// MemoryStore keeps objects in process memory.
type MemoryStore struct {
	baseURL string

	mu      sync.RWMutex
	objects map[string]Object
}

func NewMemoryStore(baseURL string) *MemoryStore {
	if baseURL == "" {
		baseURL = "memory://blobs"
	}
	return &MemoryStore{baseURL: baseURL, objects: make(map[string]Object)}
}

func (m *MemoryStore) Put(_ context.Context, key, contentType string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = Object{ContentType: contentType, Data: append([]byte(nil), data...)}
	return joinURL(m.baseURL, key), nil
}

func (m *MemoryStore) Get(key string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[key]
	return o, ok
}
