package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/MichaelGiresi/cuneos/foundation/blockchain/database"
)

// alpha is the weight given to the newest duration in the moving average.
const alpha = 0.3

// AddBlock picks a miner at random from the roster, mines a block holding
// the transactions at the current difficulty and appends it. The difficulty
// is retargeted every adjustment interval. The name of the miner that
// produced the block is returned.
//
// Only one block is mined at a time. Readers are not blocked while the
// proof of work runs.
func (l *Ledger) AddBlock(ctx context.Context, trans []database.Tx) (string, error) {
	l.wmu.Lock()
	defer l.wmu.Unlock()

	l.mu.RLock()
	latest := l.chain[len(l.chain)-1]
	difficulty := l.miningDifficulty()
	l.mu.RUnlock()

	miner := l.miners[l.rand.IntN(len(l.miners))]

	l.evHandler("ledger: AddBlock: started: block[%d] miner[%s] difficulty[%d] txs[%d]", latest.Number+1, miner.Name, difficulty, len(trans))

	start := l.now()
	block, err := database.POW(ctx, database.POWArgs{
		Number:       latest.Number + 1,
		PrevHash:     latest.Hash,
		Transactions: trans,
		Miner:        miner,
		Difficulty:   difficulty,
		TimeStamp:    start,
		EvHandler:    l.evHandler,
	})
	if err != nil {
		return "", fmt.Errorf("mining block %d: %w", latest.Number+1, err)
	}
	duration := l.now().Sub(start)

	l.updateLocalState(block, duration)

	return miner.Name, nil
}

// updateLocalState appends the mined block and runs the difficulty control
// loop.
func (l *Ledger) updateLocalState(block database.Block, duration time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.durations = append(l.durations, duration)
	l.chain = append(l.chain, block)
	l.updateEMA(duration)

	l.evHandler("ledger: AddBlock: completed: block[%d] hash[%s] duration[%v] ema[%v]", block.Number, block.Hash, duration, l.ema)

	if len(l.chain)%l.adjustmentInterval == 0 {
		l.adjustDifficulty()
	}
}

// updateEMA folds the duration into the moving average of block times.
func (l *Ledger) updateEMA(duration time.Duration) {
	if !l.emaSet {
		l.ema = duration
		l.emaSet = true
		return
	}

	l.ema = time.Duration(alpha*float64(duration) + (1-alpha)*float64(l.ema))
}
