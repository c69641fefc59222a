package push

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory SubscriptionStore. Suitable for development
// and testing; production deployments use PgStore or RedisStore.
type MemoryStore struct {
	subs map[string]Subscription // endpoint -> subscription
	mu   sync.RWMutex
}

// NewMemoryStore creates an empty in-memory registry.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subs: make(map[string]Subscription)}
}

func (s *MemoryStore) Register(ctx context.Context, sub Subscription) error {
	if sub.Endpoint == "" {
		return ErrEmptyEndpoint
	}
	if sub.UserID == "" {
		return ErrEmptyUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if existing, ok := s.subs[sub.Endpoint]; ok {
		sub.CreatedAt = existing.CreatedAt
	} else if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.LastUsedAt = now

	s.subs[sub.Endpoint] = sub
	return nil
}

func (s *MemoryStore) Unregister(ctx context.Context, userID, endpoint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Absent or foreign-owned rows are left alone without complaint.
	if sub, ok := s.subs[endpoint]; ok && sub.UserID == userID {
		delete(s.subs, endpoint)
	}
	return nil
}

func (s *MemoryStore) ListByUser(ctx context.Context, userID string) ([]Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Subscription, 0)
	for _, sub := range s.subs {
		if sub.UserID == userID {
			result = append(result, sub)
		}
	}
	return result, nil
}

func (s *MemoryStore) Touch(ctx context.Context, endpoint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub, ok := s.subs[endpoint]; ok {
		sub.LastUsedAt = time.Now()
		s.subs[endpoint] = sub
	}
	return nil
}

func (s *MemoryStore) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.subs, endpoint)
	return nil
}
