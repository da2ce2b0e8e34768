// Package profilemem keeps profiles in memory in the order they were first
// saved.
package profilemem

import (
	"context"
	"sync"

	"github.com/MichaelGiresi/cuneos/business/core/profile"
)

// Store manages the set of profiles held in memory. It implements the
// profile.Storer interface.
type Store struct {
	mu       sync.RWMutex
	index    map[string]int
	profiles []profile.Profile
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{
		index: make(map[string]int),
	}
}

// Save inserts a new profile at the end of the scan order or replaces the
// existing profile in place.
func (s *Store) Save(ctx context.Context, p profile.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.Encrypted = append([]byte(nil), p.Encrypted...)

	if i, exists := s.index[p.UserID]; exists {
		s.profiles[i] = p
		return nil
	}

	s.index[p.UserID] = len(s.profiles)
	s.profiles = append(s.profiles, p)

	return nil
}

// QueryByID returns the profile of the user.
func (s *Store) QueryByID(ctx context.Context, userID string) (profile.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, exists := s.index[userID]
	if !exists {
		return profile.Profile{}, profile.ErrNotFound
	}

	p := s.profiles[i]
	p.Encrypted = append([]byte(nil), p.Encrypted...)

	return p, nil
}

// Query returns every profile in scan order.
func (s *Store) Query(ctx context.Context) ([]profile.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ps := make([]profile.Profile, len(s.profiles))
	for i, p := range s.profiles {
		p.Encrypted = append([]byte(nil), p.Encrypted...)
		ps[i] = p
	}

	return ps, nil
}
