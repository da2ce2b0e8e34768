// Package profile provides the business access to user profiles. Profiles
// are kept sealed at rest; only a holder of the owner's key can read them.
package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/MichaelGiresi/cuneos/foundation/blockchain/seal"
)

// ErrNotFound is returned when a profile doesn't exist in the store.
var ErrNotFound = errors.New("profile not found")

// Storer interface declares the behavior this package needs to persist and
// retrieve profiles. Query returns profiles in the order they were first
// saved.
type Storer interface {
	Save(ctx context.Context, p Profile) error
	QueryByID(ctx context.Context, userID string) (Profile, error)
	Query(ctx context.Context) ([]Profile, error)
}

// Core manages the set of APIs for profile access.
type Core struct {
	storer Storer
	alg    seal.Algorithm
}

// NewCore constructs a core for profile api access. New profiles are sealed
// with the specified algorithm.
func NewCore(storer Storer, alg seal.Algorithm) *Core {
	return &Core{
		storer: storer,
		alg:    alg,
	}
}

// Create seals the record for the user and stores it.
func (c *Core) Create(ctx context.Context, userID string, data Data, key seal.Key) (Profile, error) {
	p, err := NewWithAlgorithm(c.alg, userID, data, key)
	if err != nil {
		return Profile{}, fmt.Errorf("new: %w", err)
	}

	if err := c.storer.Save(ctx, p); err != nil {
		return Profile{}, fmt.Errorf("save: %w", err)
	}

	return p, nil
}

// Update reseals the user's record with the new data.
func (c *Core) Update(ctx context.Context, userID string, data Data, key seal.Key) (Profile, error) {
	p, err := c.storer.QueryByID(ctx, userID)
	if err != nil {
		return Profile{}, fmt.Errorf("query: userID[%s]: %w", userID, err)
	}

	if _, err := p.Update(data, key); err != nil {
		return Profile{}, fmt.Errorf("update: userID[%s]: %w", userID, err)
	}

	if err := c.storer.Save(ctx, p); err != nil {
		return Profile{}, fmt.Errorf("save: userID[%s]: %w", userID, err)
	}

	return p, nil
}

// Delete marks the user's profile deleted.
func (c *Core) Delete(ctx context.Context, userID string) error {
	p, err := c.storer.QueryByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("query: userID[%s]: %w", userID, err)
	}

	p.Delete()

	if err := c.storer.Save(ctx, p); err != nil {
		return fmt.Errorf("save: userID[%s]: %w", userID, err)
	}

	return nil
}

// QueryByID returns the stored profile of the user.
func (c *Core) QueryByID(ctx context.Context, userID string) (Profile, error) {
	p, err := c.storer.QueryByID(ctx, userID)
	if err != nil {
		return Profile{}, fmt.Errorf("query: userID[%s]: %w", userID, err)
	}

	return p, nil
}

// Query returns every stored profile in scan order.
func (c *Core) Query(ctx context.Context) ([]Profile, error) {
	ps, err := c.storer.Query(ctx)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return ps, nil
}
