// Package shard maintains everything the system keeps for a single user:
// the balance, the transactions the user took part in, scored interactions,
// chat messages, the user's own profile and the profiles the user can
// currently see.
package shard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MichaelGiresi/cuneos/business/core/filter"
	"github.com/MichaelGiresi/cuneos/business/core/profile"
	"github.com/MichaelGiresi/cuneos/foundation/blockchain/database"
	"github.com/MichaelGiresi/cuneos/foundation/blockchain/keys"
	"github.com/MichaelGiresi/cuneos/foundation/blockchain/keystore"
)

// ErrNoKey is returned when the user holds no key for the requested subject.
var ErrNoKey = errors.New("no key held for subject")

// Reader is the view of the ledger needed to scan recorded transactions.
type Reader interface {
	Transactions() []database.Tx
}

// Writer is the view of the ledger needed to record transactions.
type Writer interface {
	AddBlock(ctx context.Context, trans []database.Tx) (string, error)
}

// Sweeper is the view of the ledger needed to re-share a revoked key.
type Sweeper interface {
	Writer
	SweepRevocations(pair database.Pair) int
}

// Interaction is a scored action between two users.
type Interaction struct {
	EventType string `json:"event_type"`
	ActorID   string `json:"user_id"`
	TargetID  string `json:"target_id"`
	Score     uint32 `json:"score"`
}

// Config represents the initial state of a shard.
type Config struct {
	UserID       string
	Balance      float64
	Profile      profile.Profile
	Transactions []database.Tx
	Interactions []Interaction
}

// Shard holds the state of a single user.
type Shard struct {
	mu sync.RWMutex

	userID       string
	balance      float64
	transactions []database.Tx
	interactions []Interaction
	messages     []database.Tx
	profile      profile.Profile
	relevant     []filter.Ranked
}

// New constructs a shard for the user.
func New(cfg Config) *Shard {
	return &Shard{
		userID:       cfg.UserID,
		balance:      cfg.Balance,
		transactions: append([]database.Tx(nil), cfg.Transactions...),
		interactions: append([]Interaction(nil), cfg.Interactions...),
		profile:      cfg.Profile,
	}
}

// UserID returns the owner of the shard.
func (s *Shard) UserID() string {
	return s.userID
}

// Balance returns the user's Peace balance.
func (s *Shard) Balance() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.balance
}

// Profile returns the user's own profile.
func (s *Shard) Profile() profile.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.profile
}

// Transactions returns the transactions recorded by the user.
func (s *Shard) Transactions() []database.Tx {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]database.Tx(nil), s.transactions...)
}

// Interactions returns the scored interactions.
func (s *Shard) Interactions() []Interaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]Interaction(nil), s.interactions...)
}

// Messages returns the chat transactions the user sent or received.
func (s *Shard) Messages() []database.Tx {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]database.Tx(nil), s.messages...)
}

// Relevant returns the profiles found by the last fetch.
func (s *Shard) Relevant() []filter.Ranked {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]filter.Ranked(nil), s.relevant...)
}

// AddInteraction records a scored interaction.
func (s *Shard) AddInteraction(i Interaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.interactions = append(s.interactions, i)
}

// InteractionScore sums the scores of every interaction the user took part
// in as either the actor or the target.
func (s *Shard) InteractionScore(userID string) uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.interactionScore(userID)
}

func (s *Shard) interactionScore(userID string) uint32 {
	var score uint32
	for _, i := range s.interactions {
		if i.ActorID == userID || i.TargetID == userID {
			score += i.Score
		}
	}
	return score
}

// RecordTransaction adds the transaction to the shard and applies any Peace
// it moves to the balance.
func (s *Shard) RecordTransaction(tx database.Tx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record(tx)
}

func (s *Shard) record(tx database.Tx) {
	s.transactions = append(s.transactions, tx)

	amount, ok := tx.Amount()
	if !ok {
		return
	}

	if tx.SenderID() == s.userID {
		s.balance -= amount
	}
	if tx.ReceiverID() == s.userID {
		s.balance += amount
	}
}

// =============================================================================

// FetchRelevantProfiles rebuilds the set of profiles the fetcher can see
// from the candidates and returns the users whose profiles are inaccessible.
// Interaction scores come from this shard. An age range with the minimum
// above the maximum matches nobody.
func (s *Shard) FetchRelevantProfiles(flt filter.Filter, candidates []profile.Profile, ks filter.KeyLookup, fetcherID string, r Reader) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := filter.Apply(flt, fetcherID, candidates, ks, filter.NewFacts(r.Transactions()), s.interactionScore)
	s.relevant = res.Ranked

	return res.Inaccessible
}

// Submit records a single transaction on the ledger and in the shard.
func (s *Shard) Submit(ctx context.Context, w Writer, tx database.Tx) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.submit(ctx, w, tx)
}

func (s *Shard) submit(ctx context.Context, w Writer, tx database.Tx) (string, error) {
	miner, err := w.AddBlock(ctx, []database.Tx{tx})
	if err != nil {
		return "", fmt.Errorf("recording %s: %w", tx, err)
	}

	s.record(tx)

	return miner, nil
}

// UpdateProfile reseals the user's profile, records the update on the
// ledger and saves the new profile.
func (s *Shard) UpdateProfile(ctx context.Context, w Writer, store profile.Storer, data profile.Data, ks filter.KeyLookup, timestamp, txID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, exists := ks.Get(s.userID, s.userID)
	if !exists {
		return "", ErrNoKey
	}

	p := s.profile
	sealed, err := p.Update(data, key)
	if err != nil {
		return "", fmt.Errorf("update: %w", err)
	}

	miner, err := s.submit(ctx, w, database.NewProfileUpdate(s.userID, sealed, timestamp, txID))
	if err != nil {
		return "", err
	}

	s.profile = p

	if err := store.Save(ctx, p); err != nil {
		return miner, fmt.Errorf("save: %w", err)
	}

	return miner, nil
}

// DeleteProfile marks the user's profile deleted and records the deletion.
func (s *Shard) DeleteProfile(ctx context.Context, w Writer, store profile.Storer, timestamp, txID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	miner, err := s.submit(ctx, w, database.NewProfileDeletion(s.userID, timestamp, txID))
	if err != nil {
		return "", err
	}

	s.profile.Delete()

	if err := store.Save(ctx, s.profile); err != nil {
		return miner, fmt.Errorf("save: %w", err)
	}

	return miner, nil
}

// RevokeKey takes back the target's access to the user's content and
// records the revocation.
func (s *Shard) RevokeKey(ctx context.Context, w Writer, ks *keystore.Store, targetID, timestamp, txID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	miner, err := s.submit(ctx, w, database.NewKeyRevocation(s.userID, targetID, timestamp, txID))
	if err != nil {
		return "", err
	}

	ks.Revoke(s.userID, targetID)

	return miner, nil
}

// ShareKey wraps the user's profile key for the recipient, records the share
// and gives the recipient the key.
func (s *Shard) ShareKey(ctx context.Context, w Writer, ks *keystore.Store, kp keys.KeyPair, recipientID string, recipientPublic []byte, timestamp, txID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.shareKey(ctx, w, ks, kp, recipientID, recipientPublic, timestamp, txID)
}

func (s *Shard) shareKey(ctx context.Context, w Writer, ks *keystore.Store, kp keys.KeyPair, recipientID string, recipientPublic []byte, timestamp, txID string) (string, error) {
	wrapped, err := kp.WrapProfileKey(recipientPublic)
	if err != nil {
		return "", fmt.Errorf("wrap: %w", err)
	}

	miner, err := s.submit(ctx, w, database.NewKeyShare(s.userID, recipientID, wrapped, timestamp, txID))
	if err != nil {
		return "", err
	}

	ks.Share(s.userID, recipientID, kp.ProfileKey)

	return miner, nil
}

// ReshareKey shares the key again after a revocation and sweeps the stale
// revocation so the recipient is no longer treated as revoked.
func (s *Shard) ReshareKey(ctx context.Context, sw Sweeper, ks *keystore.Store, kp keys.KeyPair, recipientID string, recipientPublic []byte, timestamp, txID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	miner, err := s.shareKey(ctx, sw, ks, kp, recipientID, recipientPublic, timestamp, txID)
	if err != nil {
		return "", err
	}

	sw.SweepRevocations(database.Pair{First: s.userID, Second: recipientID})

	return miner, nil
}
