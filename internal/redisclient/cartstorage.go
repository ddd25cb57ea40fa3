package redisclient

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront-service/internal/cartstate"

	"github.com/go-redis/redis/v8"
)

// CartStorage persists cart session state in redis under the same fixed
// keys the original client used for local storage, namespaced per
// session. It implements cartstate.Storage.
type CartStorage struct {
	rdb       *redis.Client
	sessionID string
}

var _ cartstate.Storage = (*CartStorage)(nil)

// NewCartStorage creates storage scoped to one session.
func (c *Client) NewCartStorage(sessionID string) *CartStorage {
	return &CartStorage{rdb: c.rdb, sessionID: sessionID}
}

func (s *CartStorage) key(name string) string {
	return fmt.Sprintf("session:%s:%s", s.sessionID, name)
}

func (s *CartStorage) LoadUser(ctx context.Context) (*cartstate.User, error) {
	data, err := s.rdb.Get(ctx, s.key(cartstate.KeyUser)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var user cartstate.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("corrupt stored user: %w", err)
	}
	return &user, nil
}

func (s *CartStorage) SaveUser(ctx context.Context, user *cartstate.User) error {
	if user == nil {
		return s.rdb.Del(ctx, s.key(cartstate.KeyUser)).Err()
	}
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(cartstate.KeyUser), data, 0).Err()
}

func (s *CartStorage) LoadCart(ctx context.Context) ([]cartstate.Item, error) {
	data, err := s.rdb.Get(ctx, s.key(cartstate.KeyCart)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var items []cartstate.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("corrupt stored cart: %w", err)
	}
	return items, nil
}

func (s *CartStorage) SaveCart(ctx context.Context, items []cartstate.Item) error {
	if items == nil {
		items = []cartstate.Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(cartstate.KeyCart), data, 0).Err()
}
