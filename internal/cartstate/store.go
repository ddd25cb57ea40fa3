package cartstate

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Store wraps the reducer with a mutex and persistence. All access goes
// through Dispatch so that State, Total and Count can never drift apart
// and every transition reaches storage before the next one starts.
type Store struct {
	mu      sync.Mutex
	state   State
	storage Storage
	logger  *zap.Logger
}

// NewStore builds a store around the given storage and loads the
// persisted user and cart once, the way the original client hydrated
// from its fixed local-storage keys at startup.
func NewStore(ctx context.Context, storage Storage, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{
		state:   NewState(),
		storage: storage,
		logger:  logger,
	}

	user, err := storage.LoadUser(ctx)
	if err != nil {
		return nil, err
	}
	items, err := storage.LoadCart(ctx)
	if err != nil {
		return nil, err
	}

	s.state = Reduce(s.state, SetUser{User: user})
	s.state = Reduce(s.state, SetCart{Items: items})
	return s, nil
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Dispatch applies an action and mirrors the result to storage.
// The returned state is the post-transition snapshot.
func (s *Store) Dispatch(ctx context.Context, action Action) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := Reduce(s.state, action)

	switch action.(type) {
	case SetUser:
		if err := s.storage.SaveUser(ctx, next.User); err != nil {
			return s.snapshot(), err
		}
	default:
		if err := s.storage.SaveCart(ctx, next.Items); err != nil {
			return s.snapshot(), err
		}
	}

	s.state = next
	return s.snapshot(), nil
}

// MergeServerCart reconciles a freshly loaded server cart with whatever
// guest items accumulated locally. Lines are merged by product id with
// quantities summed; when both sides carry a product the server row id
// wins, so the merged line can be written back to the server.
func (s *Store) MergeServerCart(ctx context.Context, serverItems []Item) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := append([]Item(nil), serverItems...)
	byProduct := make(map[string]int, len(merged))
	for i, item := range merged {
		byProduct[item.Product.ID] = i
	}

	for _, local := range s.state.Items {
		if !IsLocalID(local.ID) {
			// Server rows already live in serverItems; folding them in
			// again would double their quantities.
			continue
		}
		if i, ok := byProduct[local.Product.ID]; ok {
			merged[i].Quantity += local.Quantity
		} else {
			merged = append(merged, local)
			byProduct[local.Product.ID] = len(merged) - 1
		}
	}

	next := Reduce(s.state, SetCart{Items: merged})
	if err := s.storage.SaveCart(ctx, next.Items); err != nil {
		return s.snapshot(), err
	}

	s.state = next
	s.logger.Debug("merged server cart",
		zap.Int("server_items", len(serverItems)),
		zap.Int("merged_items", len(next.Items)))
	return s.snapshot(), nil
}

// LocalItems returns the guest-only lines, i.e. those whose ids carry
// the local prefix and still need to be pushed to the server.
func (s *Store) LocalItems() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	var local []Item
	for _, item := range s.state.Items {
		if IsLocalID(item.ID) {
			local = append(local, item)
		}
	}
	return local
}

func (s *Store) snapshot() State {
	st := s.state
	st.Items = append([]Item(nil), s.state.Items...)
	return st
}
