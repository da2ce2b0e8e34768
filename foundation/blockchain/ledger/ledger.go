// Package ledger maintains the chain of blocks for a single node. It selects
// the producer for each block, delegates the proof of work and runs the
// difficulty control loop that keeps block times near the target.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/MichaelGiresi/cuneos/foundation/blockchain/database"
	"github.com/MichaelGiresi/cuneos/foundation/blockchain/digest"
	"github.com/MichaelGiresi/cuneos/foundation/validate"
)

// ErrNoMiners is returned when a ledger is configured without a roster.
var ErrNoMiners = errors.New("ledger requires at least one miner")

// Values used to construct the genesis block.
const (
	genesisReceiver  = "genesis"
	genesisTimestamp = "2025-03-04"
	genesisTxID      = "genesis_tx"
)

// EventHandler defines a function that is called when events
// occur in the processing of blocks.
type EventHandler func(v string, args ...any)

// Rand represents the source used to pick the miner for each block.
type Rand interface {
	IntN(n int) int
}

// =============================================================================

// Config represents the configuration required to start a ledger.
type Config struct {
	InitialDifficulty  uint          `validate:"lte=64,gtefield=MinDifficulty,ltefield=MaxDifficulty"`
	MinDifficulty      uint          `validate:"lte=64"`
	MaxDifficulty      uint          `validate:"lte=64,gtefield=MinDifficulty"`
	TargetBlockTime    time.Duration `validate:"gt=0"`
	AdjustmentInterval int           `validate:"gte=1"`
	Miners             []database.Miner
	Rand               Rand
	Now                func() time.Time
	EvHandler          EventHandler
}

// txLoc identifies a transaction by its position on the chain.
type txLoc struct {
	block uint64
	index int
}

// Ledger manages the chain of blocks and the difficulty state.
type Ledger struct {
	mu  sync.RWMutex
	wmu sync.Mutex

	minDifficulty      float64
	maxDifficulty      float64
	targetBlockTime    time.Duration
	adjustmentInterval int
	miners             []database.Miner
	rand               Rand
	now                func() time.Time
	evHandler          EventHandler

	difficulty float64
	chain      []database.Block
	durations  []time.Duration
	ema        time.Duration
	emaSet     bool
	swept      map[txLoc]struct{}
}

// New constructs a ledger and mines the genesis block with the first miner
// at the initial difficulty.
func New(cfg Config) (*Ledger, error) {
	if len(cfg.Miners) == 0 {
		return nil, ErrNoMiners
	}

	if err := validate.Check(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	rnd := cfg.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	miners := make([]database.Miner, len(cfg.Miners))
	copy(miners, cfg.Miners)

	genesisTx, err := database.NewPeaceTransfer(database.SystemID, genesisReceiver, 0, genesisTimestamp, genesisTxID)
	if err != nil {
		return nil, fmt.Errorf("constructing genesis transaction: %w", err)
	}

	ev("ledger: New: mining genesis: miner[%s] difficulty[%d]", miners[0].Name, cfg.InitialDifficulty)

	genesis, err := database.POW(context.Background(), database.POWArgs{
		Number:       0,
		PrevHash:     digest.ZeroHash,
		Transactions: []database.Tx{genesisTx},
		Miner:        miners[0],
		Difficulty:   cfg.InitialDifficulty,
		TimeStamp:    now(),
		EvHandler:    ev,
	})
	if err != nil {
		return nil, fmt.Errorf("mining genesis: %w", err)
	}

	ldg := Ledger{
		minDifficulty:      float64(cfg.MinDifficulty),
		maxDifficulty:      float64(cfg.MaxDifficulty),
		targetBlockTime:    cfg.TargetBlockTime,
		adjustmentInterval: cfg.AdjustmentInterval,
		miners:             miners,
		rand:               rnd,
		now:                now,
		evHandler:          ev,
		difficulty:         float64(cfg.InitialDifficulty),
		chain:              []database.Block{genesis},
		swept:              make(map[txLoc]struct{}),
	}

	ev("ledger: New: genesis: hash[%s]", genesis.Hash)

	return &ldg, nil
}
