package database

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/MichaelGiresi/cuneos/foundation/blockchain/digest"
)

// Miner represents an agent that performs the proof of work search for a
// block. Power scales how far the nonce advances after each failed attempt.
type Miner struct {
	Name  string  `json:"name"`
	Power float64 `json:"power"`
}

// NewMiner constructs a miner. The power must give a stride of at least one
// or the search would never move.
func NewMiner(name string, power float64) (Miner, error) {
	m := Miner{
		Name:  name,
		Power: power,
	}

	if name == "" {
		return Miner{}, fmt.Errorf("miner name is required")
	}

	if math.IsNaN(power) || math.IsInf(power, 0) || m.Stride() == 0 {
		return Miner{}, fmt.Errorf("miner %s power %v gives no nonce stride", name, power)
	}

	return m, nil
}

// ParseMiner constructs a miner from a "name:power" pair as found in
// configuration.
func ParseMiner(s string) (Miner, error) {
	name, pwr, ok := strings.Cut(s, ":")
	if !ok {
		return Miner{}, fmt.Errorf("miner %q is not in name:power form", s)
	}

	power, err := strconv.ParseFloat(strings.TrimSpace(pwr), 64)
	if err != nil {
		return Miner{}, fmt.Errorf("miner %q power: %w", s, err)
	}

	return NewMiner(strings.TrimSpace(name), power)
}

// ParseMiners constructs the roster from a set of "name:power" pairs.
func ParseMiners(roster []string) ([]Miner, error) {
	miners := make([]Miner, 0, len(roster))
	for _, s := range roster {
		m, err := ParseMiner(s)
		if err != nil {
			return nil, err
		}
		miners = append(miners, m)
	}

	return miners, nil
}

// Stride returns the nonce increment applied after every failed attempt.
func (m Miner) Stride() uint64 {
	s := math.Round(m.Power * 1000)
	if s < 1 {
		return 0
	}

	return uint64(s)
}

// Mine does the work of finding a nonce whose hash has the difficulty
// number of leading zero hex digits. Pointer semantics are used since the
// nonce and hash are being discovered. The search starts at the block's
// current nonce.
func (m Miner) Mine(ctx context.Context, b *Block, difficulty uint, ev func(v string, args ...any)) error {
	stride := m.Stride()
	if stride == 0 {
		return fmt.Errorf("miner %s has no nonce stride", m.Name)
	}

	ev("miner: Mine: MINING: started: miner[%s] difficulty[%d] stride[%d]", m.Name, difficulty, stride)
	defer ev("miner: Mine: MINING: completed: miner[%s]", m.Name)

	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("miner: Mine: MINING: attempts[%d]", attempts)
		}

		// Did we timeout trying to solve the problem.
		if ctx.Err() != nil {
			ev("miner: Mine: MINING: CANCELLED")
			return ctx.Err()
		}

		b.Hash = b.ComputeHash()
		if digest.HasZeroPrefix(b.Hash, difficulty) {
			ev("miner: Mine: MINING: SOLVED: prevBlk[%s]: newBlk[%s]: attempts[%d]", b.PrevHash, b.Hash, attempts)
			return nil
		}

		b.Nonce += stride
	}
}
