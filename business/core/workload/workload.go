// Package workload generates batches of random Peace transfers between a
// known set of users to keep the ledger busy.
package workload

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/MichaelGiresi/cuneos/foundation/blockchain/database"
	"github.com/google/uuid"
)

// Bounds of a generated batch.
const (
	MaxBatch  = 10
	MinAmount = 1.0
	MaxAmount = 10.0
)

// Rand represents the source of randomness used to build batches.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// Generator builds batches of transfers.
type Generator struct {
	users []string
	rand  Rand
}

// New constructs a generator for the users. A nil source uses a randomly
// seeded one.
func New(users []string, rnd Rand) (*Generator, error) {
	if len(users) == 0 {
		return nil, errors.New("workload requires at least one user")
	}

	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	g := Generator{
		users: append([]string(nil), users...),
		rand:  rnd,
	}

	return &g, nil
}

// Batch returns between one and MaxBatch transfers for the block number.
// Every transfer is dated from the block number and carries a fresh id.
func (g *Generator) Batch(block uint64) ([]database.Tx, error) {
	n := 1 + g.rand.IntN(MaxBatch)
	date := Date(block)

	trans := make([]database.Tx, 0, n)
	for range n {
		sender := g.users[g.rand.IntN(len(g.users))]
		receiver := g.users[g.rand.IntN(len(g.users))]
		amount := MinAmount + g.rand.Float64()*(MaxAmount-MinAmount)

		tx, err := database.NewPeaceTransfer(sender, receiver, amount, date, uuid.NewString())
		if err != nil {
			return nil, fmt.Errorf("building transfer: %w", err)
		}

		trans = append(trans, tx)
	}

	return trans, nil
}

// Date returns the transaction date used for the block number. Block n is
// dated n-3 days into March 2025.
func Date(block uint64) string {
	return time.Date(2025, time.March, int(block)-3, 0, 0, 0, 0, time.UTC).Format(time.DateOnly)
}
