package identity

import (
	"context"
	"sync"
)

// MemoryBackend keeps sessions in process memory.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: map[string]map[string]string{}}
}

func (b *MemoryBackend) Session(sessionID string) KV {
	return &memoryKV{b: b, sid: sessionID}
}

type memoryKV struct {
	b   *MemoryBackend
	sid string
}

func (m *memoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.b.mu.RLock()
	defer m.b.mu.RUnlock()
	v, ok := m.b.data[m.sid][key]
	return v, ok, nil
}

func (m *memoryKV) Set(_ context.Context, key, value string) error {
	m.b.mu.Lock()
	defer m.b.mu.Unlock()
	sess, ok := m.b.data[m.sid]
	if !ok {
		sess = map[string]string{}
		m.b.data[m.sid] = sess
	}
	sess[key] = value
	return nil
}

func (m *memoryKV) Delete(_ context.Context, keys ...string) error {
	m.b.mu.Lock()
	defer m.b.mu.Unlock()
	for _, k := range keys {
		delete(m.b.data[m.sid], k)
	}
	return nil
}
