// Package profilebolt keeps profiles in a bolt database file. A sequence
// bucket records the order profiles were first saved so scans are stable.
package profilebolt

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/MichaelGiresi/cuneos/business/core/profile"
	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"
)

// Bucket names.
var (
	profilesBucket = []byte("profiles")
	orderBucket    = []byte("order")
)

// Store manages the set of profiles held in bolt. It implements the
// profile.Storer interface.
type Store struct {
	db *bbolt.DB
}

// NewStore opens or creates the database file at the specified path.
func NewStore(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{profilesBucket, orderBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("creating bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close releases the database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts a new profile at the end of the scan order or replaces the
// existing profile in place.
func (s *Store) Save(ctx context.Context, p profile.Profile) error {
	data, err := msgpack.Marshal(toDBProfile(p))
	if err != nil {
		return fmt.Errorf("encoding profile %s: %w", p.UserID, err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		profiles := tx.Bucket(profilesBucket)
		key := []byte(p.UserID)

		if profiles.Get(key) == nil {
			order := tx.Bucket(orderBucket)

			seq, err := order.NextSequence()
			if err != nil {
				return fmt.Errorf("sequence: %w", err)
			}

			var k [8]byte
			binary.BigEndian.PutUint64(k[:], seq)
			if err := order.Put(k[:], key); err != nil {
				return fmt.Errorf("order: %w", err)
			}
		}

		return profiles.Put(key, data)
	})
}

// QueryByID returns the profile of the user.
func (s *Store) QueryByID(ctx context.Context, userID string) (profile.Profile, error) {
	var dbPrf dbProfile

	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(profilesBucket).Get([]byte(userID))
		if data == nil {
			return profile.ErrNotFound
		}

		return msgpack.Unmarshal(data, &dbPrf)
	})
	if err != nil {
		return profile.Profile{}, err
	}

	return toCoreProfile(dbPrf), nil
}

// Query returns every profile in scan order.
func (s *Store) Query(ctx context.Context) ([]profile.Profile, error) {
	var ps []profile.Profile

	err := s.db.View(func(tx *bbolt.Tx) error {
		profiles := tx.Bucket(profilesBucket)

		return tx.Bucket(orderBucket).ForEach(func(_, userID []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}

			var dbPrf dbProfile
			if err := msgpack.Unmarshal(profiles.Get(userID), &dbPrf); err != nil {
				return fmt.Errorf("decoding profile %s: %w", userID, err)
			}

			ps = append(ps, toCoreProfile(dbPrf))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return ps, nil
}
