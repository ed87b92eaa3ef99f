package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"sync"
)

// MemoryStore keeps uploads in process. Used by STORE_BACKEND=memory and tests.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	seq     int
	// Err, when set, is returned by every call.
	Err error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: map[string][]byte{}}
}

func (m *MemoryStore) Upload(ctx context.Context, r io.Reader, folder, filename, contentType string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read upload: %v", ErrStorageUnavailable, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	m.seq++
	id := path.Join(folder, fmt.Sprintf("%d-%s", m.seq, path.Base(filename)))
	m.objects[id] = data
	return &Object{PublicID: id, URL: "memory://" + id, Bytes: int64(len(data))}, nil
}

func (m *MemoryStore) Delete(ctx context.Context, publicID, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	delete(m.objects, publicID)
	return nil
}

// Has reports whether publicID is still stored.
func (m *MemoryStore) Has(publicID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[publicID]
	return ok
}
