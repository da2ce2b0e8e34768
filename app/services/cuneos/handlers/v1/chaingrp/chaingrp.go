// Package chaingrp maintains the group of handlers for viewing the ledger.
package chaingrp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MichaelGiresi/cuneos/business/web/errs"
	"github.com/MichaelGiresi/cuneos/foundation/blockchain/ledger"
	"github.com/MichaelGiresi/cuneos/foundation/events"
	"github.com/MichaelGiresi/cuneos/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ErrBlockNotFound is returned when the requested block is not on the chain.
var ErrBlockNotFound = errors.New("block not found")

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log    *zap.SugaredLogger
	Ledger *ledger.Ledger
	WS     websocket.Upgrader
	Evts   *events.Events
}

// Chain returns a summary of every block on the chain.
func (h *Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	chain := h.Ledger.Chain()

	blocks := make([]blockSummary, len(chain))
	for i, b := range chain {
		blocks[i] = toBlockSummary(b)
	}

	ci := chainInfo{
		Height: len(chain),
		Latest: chain[len(chain)-1].Hash,
		Blocks: blocks,
	}

	return web.Respond(ctx, w, ci, http.StatusOK)
}

// Block returns the specified block with all of its transactions.
func (h *Handlers) Block(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	number, err := web.ParamUint64(r, "number")
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	b, exists := h.Ledger.Block(number)
	if !exists {
		return errs.NewTrusted(fmt.Errorf("%w: %d", ErrBlockNotFound, number), http.StatusNotFound)
	}

	return web.Respond(ctx, w, b, http.StatusOK)
}

// Difficulty returns the current difficulty state of the ledger.
func (h *Handlers) Difficulty(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	durations := h.Ledger.Durations()

	di := difficultyInfo{
		Height:            h.Ledger.Height(),
		Difficulty:        h.Ledger.Difficulty(),
		MiningDifficulty:  h.Ledger.MiningDifficulty(),
		RecentDurationsMS: make([]int64, len(durations)),
	}

	if ema, ok := h.Ledger.EMABlockTime(); ok {
		di.EMABlockSeconds = ema.Seconds()
	}

	for i, d := range durations {
		di.RecentDurationsMS[i] = d.Milliseconds()
	}

	return web.Respond(ctx, w, di, http.StatusOK)
}

// Miners returns the roster along with the win statistics for each miner.
func (h *Handlers) Miners(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	power := make(map[string]float64)
	for _, m := range h.Ledger.Miners() {
		power[m.Name] = m.Power
	}

	stats := h.Ledger.MinerStats()

	miners := make([]minerInfo, len(stats))
	for i, st := range stats {
		miners[i] = minerInfo{
			Name:           st.Name,
			Power:          power[st.Name],
			Wins:           st.Wins,
			WinRate:        st.WinRate,
			AverageSeconds: st.AverageTime.Seconds(),
		}
	}

	return web.Respond(ctx, w, miners, http.StatusOK)
}

// Events handles a web socket to provide events to a client.
func (h *Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	h.Log.Infow("events", "traceid", v.TraceID, "status", "websocket connected", "remoteaddr", r.RemoteAddr)
	defer h.Log.Infow("events", "traceid", v.TraceID, "status", "websocket closed")

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case evt, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteJSON(evt); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}
