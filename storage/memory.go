package storage

import (
	"context"
	"sync"

	"github.com/rohanthewiz/serr"
)

// Memory keeps objects in a map. It backs tests and ephemeral deployments
// where nothing should touch disk.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]MemoryObject
}

// MemoryObject is a stored blob with its declared content type.
type MemoryObject struct {
	Data        []byte
	ContentType string
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string]MemoryObject)}
}

func (m *Memory) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	if path == "" {
		return "", serr.New("empty object path")
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	m.objects[path] = MemoryObject{Data: buf, ContentType: contentType}
	m.mu.Unlock()

	return m.URL(path)
}

func (m *Memory) URL(path string) (string, error) {
	if path == "" {
		return "", serr.New("empty object path")
	}
	return "memory://" + path, nil
}

// Get returns a stored object. The second result reports whether it exists.
func (m *Memory) Get(path string) (MemoryObject, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[path]
	return obj, ok
}

// Len reports how many objects are stored.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
