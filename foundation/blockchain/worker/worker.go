// Package worker runs block production in the background, feeding the
// ledger batches of transactions until the requested number of blocks have
// been mined or the worker is shut down.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/MichaelGiresi/cuneos/foundation/blockchain/database"
)

// EventHandler defines a function that is called when events
// occur in the processing of blocks.
type EventHandler func(v string, args ...any)

// Producer is the behavior required of the ledger.
type Producer interface {
	AddBlock(ctx context.Context, trans []database.Tx) (string, error)
	LatestBlock() database.Block
}

// Source supplies the transactions for the next block.
type Source interface {
	Batch(block uint64) ([]database.Tx, error)
}

// Config represents the settings for a worker.
type Config struct {
	Producer  Producer
	Source    Source
	Blocks    int           // Zero means run until shutdown.
	Interval  time.Duration // Pause between blocks.
	OnBlock   func(miner string, block database.Block)
	EvHandler EventHandler
}

// Worker manages the block production workflow.
type Worker struct {
	producer  Producer
	source    Source
	blocks    int
	interval  time.Duration
	onBlock   func(miner string, block database.Block)
	evHandler EventHandler

	wg     sync.WaitGroup
	once   sync.Once
	ctx    context.Context
	cancel context.CancelFunc
	shut   chan struct{}
	done   chan struct{}
}

// Run creates a worker and starts the background production.
func Run(cfg Config) *Worker {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	onBlock := cfg.OnBlock
	if onBlock == nil {
		onBlock = func(string, database.Block) {}
	}

	ctx, cancel := context.WithCancel(context.Background())

	w := Worker{
		producer:  cfg.Producer,
		source:    cfg.Source,
		blocks:    cfg.Blocks,
		interval:  cfg.Interval,
		onBlock:   onBlock,
		evHandler: ev,
		ctx:       ctx,
		cancel:    cancel,
		shut:      make(chan struct{}),
		done:      make(chan struct{}),
	}

	w.wg.Add(1)

	// We don't want to return until we know the G is up and running.
	hasStarted := make(chan bool)

	go func() {
		defer w.wg.Done()
		defer close(w.done)
		hasStarted <- true
		w.miningOperations()
	}()

	<-hasStarted

	return &w
}

// Shutdown cancels any mining in progress and waits for the goroutine to
// terminate. It is safe to call more than once.
func (w *Worker) Shutdown() {
	w.once.Do(func() {
		w.evHandler("worker: shutdown: started")
		defer w.evHandler("worker: shutdown: completed")

		w.evHandler("worker: shutdown: signal cancel mining")
		w.cancel()

		w.evHandler("worker: shutdown: terminate goroutines")
		close(w.shut)
	})
	w.wg.Wait()
}

// Done is closed once production has finished.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
