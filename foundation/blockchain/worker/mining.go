package worker

import (
	"context"
	"errors"
	"time"
)

// miningOperations handles block production.
func (w *Worker) miningOperations() {
	w.evHandler("worker: miningOperations: G started")
	defer w.evHandler("worker: miningOperations: G completed")

	for mined := 0; w.blocks == 0 || mined < w.blocks; mined++ {
		if w.isShutdown() {
			w.evHandler("worker: miningOperations: received shut signal")
			return
		}

		if err := w.runMiningOperation(); err != nil {
			if errors.Is(err, context.Canceled) {
				w.evHandler("worker: miningOperations: MINING: CANCELLED")
				return
			}
			w.evHandler("worker: miningOperations: MINING: ERROR: %s", err)
			return
		}

		if w.interval > 0 {
			select {
			case <-time.After(w.interval):
			case <-w.shut:
				w.evHandler("worker: miningOperations: received shut signal")
				return
			}
		}
	}
}

// runMiningOperation takes a batch from the source and mines it into the
// next block.
func (w *Worker) runMiningOperation() error {
	w.evHandler("worker: runMiningOperation: MINING: started")
	defer w.evHandler("worker: runMiningOperation: MINING: completed")

	next := w.producer.LatestBlock().Number + 1

	trans, err := w.source.Batch(next)
	if err != nil {
		return err
	}

	miner, err := w.producer.AddBlock(w.ctx, trans)
	if err != nil {
		return err
	}

	block := w.producer.LatestBlock()
	w.evHandler("worker: runMiningOperation: MINING: block[%d] miner[%s] txs[%d]", block.Number, miner, len(trans))
	w.onBlock(miner, block)

	return nil
}
