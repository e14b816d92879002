package credstore

import (
	"context"
	"sync"
)

// Store is an in-memory credential store. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	token string
}

func NewStore() *Store { return &Store{} }

func (s *Store) Get(ctx context.Context) (string, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *Store) Set(ctx context.Context, token string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}
