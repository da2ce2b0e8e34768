// Package keystore records which users hold the symmetric key of which
// other users. A grant is directed: the holder can open content sealed
// under the subject's key, which says nothing about the reverse.
package keystore

import (
	"sort"
	"sync"

	"github.com/MichaelGiresi/cuneos/foundation/blockchain/seal"
)

// Grant identifies the holder of a subject's key.
type Grant struct {
	Holder  string `json:"holder"`
	Subject string `json:"subject"`
}

// Store maintains the set of grants.
type Store struct {
	mu   sync.RWMutex
	keys map[Grant]seal.Key
}

// New constructs an empty store.
func New() *Store {
	return &Store{
		keys: make(map[Grant]seal.Key),
	}
}

// Put records that the holder can open content sealed by the subject.
func (s *Store) Put(holder, subject string, key seal.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keys[Grant{Holder: holder, Subject: subject}] = key
}

// Get returns the key the holder keeps for the subject.
func (s *Store) Get(holder, subject string) (seal.Key, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, exists := s.keys[Grant{Holder: holder, Subject: subject}]
	return key, exists
}

// Has reports whether the holder keeps a key for the subject.
func (s *Store) Has(holder, subject string) bool {
	_, exists := s.Get(holder, subject)
	return exists
}

// Remove deletes a grant and reports whether it existed.
func (s *Store) Remove(holder, subject string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := Grant{Holder: holder, Subject: subject}
	if _, exists := s.keys[g]; !exists {
		return false
	}

	delete(s.keys, g)
	return true
}

// SetSelf records a user's own profile key.
func (s *Store) SetSelf(user string, key seal.Key) {
	s.Put(user, user, key)
}

// Share gives the recipient the owner's key.
func (s *Store) Share(owner, recipient string, key seal.Key) {
	s.Put(recipient, owner, key)
}

// Revoke takes away the target's access to the revoker's content. A user
// can't revoke their own access.
func (s *Store) Revoke(revoker, target string) bool {
	if revoker == target {
		return false
	}

	return s.Remove(target, revoker)
}

// Grants returns every grant sorted by holder then subject.
func (s *Store) Grants() []Grant {
	s.mu.RLock()
	defer s.mu.RUnlock()

	grants := make([]Grant, 0, len(s.keys))
	for g := range s.keys {
		grants = append(grants, g)
	}

	sort.Slice(grants, func(i, j int) bool {
		if grants[i].Holder != grants[j].Holder {
			return grants[i].Holder < grants[j].Holder
		}
		return grants[i].Subject < grants[j].Subject
	})

	return grants
}

// Len returns the number of grants.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.keys)
}
