// Package access provides the business access to profile sharing. It holds
// the key pairs and shards of the local users and records every change of
// access on the ledger before it takes effect.
package access

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MichaelGiresi/cuneos/business/core/filter"
	"github.com/MichaelGiresi/cuneos/business/core/profile"
	"github.com/MichaelGiresi/cuneos/business/core/shard"
	"github.com/MichaelGiresi/cuneos/foundation/blockchain/keys"
	"github.com/MichaelGiresi/cuneos/foundation/blockchain/keystore"
	"github.com/google/uuid"
)

// Set of error variables for access operations.
var (
	ErrUnknownUser = errors.New("unknown user")
	ErrSelf        = errors.New("users always hold their own key")
)

// Ledger is the view of the ledger needed to record and scan access changes.
type Ledger interface {
	shard.Sweeper
	shard.Reader
}

// Core manages the set of APIs for profile sharing.
type Core struct {
	ledger   Ledger
	profiles *profile.Core
	keys     *keystore.Store
	now      func() time.Time

	mu     sync.RWMutex
	pairs  map[string]keys.KeyPair
	shards map[string]*shard.Shard
}

// NewCore constructs a core for profile sharing.
func NewCore(ldg Ledger, profiles *profile.Core, ks *keystore.Store) *Core {
	return &Core{
		ledger:   ldg,
		profiles: profiles,
		keys:     ks,
		now:      time.Now,
		pairs:    make(map[string]keys.KeyPair),
		shards:   make(map[string]*shard.Shard),
	}
}

// Register makes the user known with their key pair. The user is given
// their own profile key.
func (c *Core) Register(userID string, kp keys.KeyPair) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.keys.SetSelf(userID, kp.ProfileKey)
	c.pairs[userID] = kp
	if _, exists := c.shards[userID]; !exists {
		c.shards[userID] = shard.New(shard.Config{UserID: userID})
	}
}

// Users returns the number of registered users.
func (c *Core) Users() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.pairs)
}

func (c *Core) lookup(userID string) (*shard.Shard, keys.KeyPair, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	kp, exists := c.pairs[userID]
	if !exists {
		return nil, keys.KeyPair{}, fmt.Errorf("%w: %s", ErrUnknownUser, userID)
	}

	return c.shards[userID], kp, nil
}

// Relevant returns the stored profiles the user can read that pass the
// filter, along with the users whose profiles the user cannot read.
func (c *Core) Relevant(ctx context.Context, userID string, flt filter.Filter) (filter.Result, error) {
	sh, _, err := c.lookup(userID)
	if err != nil {
		return filter.Result{}, err
	}

	candidates, err := c.profiles.Query(ctx)
	if err != nil {
		return filter.Result{}, fmt.Errorf("query: %w", err)
	}

	inaccessible := sh.FetchRelevantProfiles(flt, candidates, c.keys, userID, c.ledger)

	res := filter.Result{
		Ranked:       sh.Relevant(),
		Inaccessible: inaccessible,
	}

	return res, nil
}

// Share gives the recipient the owner's profile key. When the owner revoked
// the recipient earlier, the stale revocation is swept so access is restored.
// The name of the miner that recorded the share is returned.
func (c *Core) Share(ctx context.Context, ownerID, recipientID string) (string, error) {
	if ownerID == recipientID {
		return "", ErrSelf
	}

	sh, kp, err := c.lookup(ownerID)
	if err != nil {
		return "", err
	}

	_, recipient, err := c.lookup(recipientID)
	if err != nil {
		return "", err
	}

	timestamp, txID := c.stamp("keyshare")

	if filter.NewFacts(c.ledger.Transactions()).Revoked(ownerID, recipientID) {
		return sh.ReshareKey(ctx, c.ledger, c.keys, kp, recipientID, recipient.Public, timestamp, txID)
	}

	return sh.ShareKey(ctx, c.ledger, c.keys, kp, recipientID, recipient.Public, timestamp, txID)
}

// Revoke takes back the target's access to the owner's profile. The name of
// the miner that recorded the revocation is returned.
func (c *Core) Revoke(ctx context.Context, ownerID, targetID string) (string, error) {
	if ownerID == targetID {
		return "", ErrSelf
	}

	sh, _, err := c.lookup(ownerID)
	if err != nil {
		return "", err
	}

	if _, _, err := c.lookup(targetID); err != nil {
		return "", err
	}

	timestamp, txID := c.stamp("revoke")

	return sh.RevokeKey(ctx, c.ledger, c.keys, targetID, timestamp, txID)
}

func (c *Core) stamp(prefix string) (string, string) {
	return c.now().UTC().Format(time.DateOnly), fmt.Sprintf("%s_%s", prefix, uuid.NewString())
}
