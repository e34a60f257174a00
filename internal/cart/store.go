package cart

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by stores when no cart exists for an id.
var ErrNotFound = errors.New("cart not found")

// Store persists carts. Writes are last-write-wins.
type Store interface {
	Get(ctx context.Context, id string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps snapshots in process memory. Used when no Redis address
// is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: map[string][]byte{}}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Cart, error) {
	m.mu.RLock()
	data, ok := m.carts[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	c, err := DecodeSnapshot(data)
	if err != nil {
		return nil, err
	}
	c.ID = id
	return c, nil
}

func (m *MemoryStore) Save(_ context.Context, c *Cart) error {
	data, err := EncodeSnapshot(c)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.carts[c.ID] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.carts, id)
	m.mu.Unlock()
	return nil
}
