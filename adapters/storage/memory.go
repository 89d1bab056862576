package storage

import (
	"context"
	"sync"

	"fencecost/internal/errors"
)

// MemoryStore is an in-memory storage backend. Quotes are lost on exit.
type MemoryStore struct {
	quotes map[string]*StoredQuote
	mu     sync.RWMutex
}

// NewMemoryStore creates a memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		quotes: make(map[string]*StoredQuote),
	}
}

func (s *MemoryStore) Save(ctx context.Context, q *StoredQuote) error {
	if err := prepare(q); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *q
	s.quotes[q.ID] = &stored
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*StoredQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.quotes[canonicalID(id)]
	if !ok {
		return nil, errors.NotFound("quote", id)
	}
	out := *q
	return &out, nil
}

func (s *MemoryStore) List(ctx context.Context, filter *ListFilter) ([]*StoredQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*StoredQuote
	for _, q := range s.quotes {
		if filter.matches(q) {
			out := *q
			results = append(results, &out)
		}
	}
	return filter.apply(results), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := canonicalID(id)
	if _, ok := s.quotes[key]; !ok {
		return errors.NotFound("quote", id)
	}
	delete(s.quotes, key)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
