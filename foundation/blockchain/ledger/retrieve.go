package ledger

import (
	"time"

	"github.com/MichaelGiresi/cuneos/foundation/blockchain/database"
)

// MinerStat summarizes the blocks a miner produced after genesis.
type MinerStat struct {
	Name        string        `json:"name"`
	Wins        int           `json:"wins"`
	WinRate     float64       `json:"win_rate"`
	AverageTime time.Duration `json:"average_time"`
}

// Chain returns a copy of the blocks from genesis to the latest.
func (l *Ledger) Chain() []database.Block {
	l.mu.RLock()
	defer l.mu.RUnlock()

	chain := make([]database.Block, len(l.chain))
	for i, b := range l.chain {
		chain[i] = b.Clone()
	}

	return chain
}

// Block returns the block at the specified number.
func (l *Ledger) Block(number uint64) (database.Block, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if number >= uint64(len(l.chain)) {
		return database.Block{}, false
	}

	return l.chain[number].Clone(), true
}

// LatestBlock returns the last block appended to the chain.
func (l *Ledger) LatestBlock() database.Block {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.chain[len(l.chain)-1].Clone()
}

// Height returns the number of blocks including genesis.
func (l *Ledger) Height() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.chain)
}

// Difficulty returns the continuous difficulty value.
func (l *Ledger) Difficulty() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.difficulty
}

// MiningDifficulty returns the number of leading zeros the next block needs.
func (l *Ledger) MiningDifficulty() uint {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.miningDifficulty()
}

// EMABlockTime returns the moving average of block times. The boolean is
// false until the first block after genesis has been mined.
func (l *Ledger) EMABlockTime() (time.Duration, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.ema, l.emaSet
}

// Durations returns the mining time of every block after genesis.
func (l *Ledger) Durations() []time.Duration {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return append([]time.Duration(nil), l.durations...)
}

// Miners returns the roster.
func (l *Ledger) Miners() []database.Miner {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return append([]database.Miner(nil), l.miners...)
}

// Transactions returns every transaction on the chain in order, leaving out
// those removed by SweepRevocations.
func (l *Ledger) Transactions() []database.Tx {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.query(func(database.Tx) bool { return true })
}

// QueryByKind returns the transactions of the specified kind in chain order.
func (l *Ledger) QueryByKind(kind database.Kind) []database.Tx {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.query(func(tx database.Tx) bool { return tx.Kind() == kind })
}

// Verify walks the whole chain checking linkage, hash integrity and the
// proof of work of every block.
func (l *Ledger) Verify() error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return database.ValidateChain(l.chain, l.evHandler)
}

// SweepRevocations removes every KeyRevocation for the pair from the
// transaction views of the ledger and returns how many were removed. The
// blocks keep their original transactions so their hashes still verify.
func (l *Ledger) SweepRevocations(pair database.Pair) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	var n int
	for _, b := range l.chain {
		for i, tx := range b.Transactions {
			loc := txLoc{block: b.Number, index: i}
			if _, exists := l.swept[loc]; exists {
				continue
			}

			if rp, ok := tx.RevokedPair(); ok && rp == pair {
				l.swept[loc] = struct{}{}
				n++
			}
		}
	}

	if n > 0 {
		l.evHandler("ledger: SweepRevocations: pair[%s,%s] swept[%d]", pair.First, pair.Second, n)
	}

	return n
}

// MinerStats returns the number of blocks each miner produced after genesis,
// its share of the whole chain as a percentage and its average mining time.
func (l *Ledger) MinerStats() []MinerStat {
	l.mu.RLock()
	defer l.mu.RUnlock()

	wins := make(map[string]int)
	times := make(map[string]time.Duration)
	for i, b := range l.chain[1:] {
		wins[b.MinerName]++
		times[b.MinerName] += l.durations[i]
	}

	total := float64(len(l.chain))
	stats := make([]MinerStat, len(l.miners))
	for i, m := range l.miners {
		stat := MinerStat{
			Name:    m.Name,
			Wins:    wins[m.Name],
			WinRate: float64(wins[m.Name]) / total * 100,
		}

		if stat.Wins > 0 {
			stat.AverageTime = times[m.Name] / time.Duration(stat.Wins)
		}

		stats[i] = stat
	}

	return stats
}

// query returns the live transactions accepted by the function. The caller
// must hold the lock.
func (l *Ledger) query(accept func(database.Tx) bool) []database.Tx {
	var trans []database.Tx
	for _, b := range l.chain {
		for i, tx := range b.Transactions {
			if _, exists := l.swept[txLoc{block: b.Number, index: i}]; exists {
				continue
			}

			if accept(tx) {
				trans = append(trans, tx)
			}
		}
	}

	return trans
}
