package cartstate

import (
	"context"
	"sync"
)

// Fixed storage keys, matching what the store persists under.
const (
	KeyUser = "user"
	KeyCart = "cart"
)

// Storage mirrors cart state to a durable backend. SaveUser(nil)
// deletes the user entry; LoadUser and LoadCart return zero values when
// nothing was stored yet.
type Storage interface {
	LoadUser(ctx context.Context) (*User, error)
	SaveUser(ctx context.Context, user *User) error
	LoadCart(ctx context.Context) ([]Item, error)
	SaveCart(ctx context.Context, items []Item) error
}

// MemoryStorage is an in-process Storage for tests and callers that do
// not need persistence across restarts.
type MemoryStorage struct {
	mu    sync.Mutex
	user  *User
	items []Item
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) LoadUser(ctx context.Context) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil, nil
	}
	u := *m.user
	return &u, nil
}

func (m *MemoryStorage) SaveUser(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user == nil {
		m.user = nil
		return nil
	}
	u := *user
	m.user = &u
	return nil
}

func (m *MemoryStorage) LoadCart(ctx context.Context) ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Item(nil), m.items...), nil
}

func (m *MemoryStorage) SaveCart(ctx context.Context, items []Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append([]Item(nil), items...)
	return nil
}
