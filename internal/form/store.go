package form

import (
	"errors"
	"sync"
)

// ErrDraftNotFound is returned when no draft exists for an id.
var ErrDraftNotFound = errors.New("draft not found")

// Store is an in-memory set of drafts keyed by id.
type Store struct {
	drafts map[string]*Draft
	mu     sync.RWMutex
}

func NewStore() *Store {
	return &Store{
		drafts: make(map[string]*Draft),
	}
}

func (s *Store) Get(id string) (*Draft, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, exists := s.drafts[id]
	return d, exists
}

func (s *Store) Set(d *Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[d.ID()] = d
}

// Delete removes a draft and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.drafts[id]
	delete(s.drafts, id)
	return exists
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drafts)
}
