package chaingrp

import (
	"github.com/MichaelGiresi/cuneos/foundation/blockchain/database"
)

type blockSummary struct {
	Number     uint64 `json:"number"`
	Hash       string `json:"hash"`
	PrevHash   string `json:"previous_hash"`
	Nonce      uint64 `json:"nonce"`
	TimeStamp  uint64 `json:"timestamp"`
	MinerName  string `json:"miner_name"`
	Difficulty uint   `json:"difficulty"`
	TxCount    int    `json:"tx_count"`
}

func toBlockSummary(b database.Block) blockSummary {
	return blockSummary{
		Number:     b.Number,
		Hash:       b.Hash,
		PrevHash:   b.PrevHash,
		Nonce:      b.Nonce,
		TimeStamp:  b.TimeStamp,
		MinerName:  b.MinerName,
		Difficulty: b.Difficulty,
		TxCount:    len(b.Transactions),
	}
}

type chainInfo struct {
	Height int            `json:"height"`
	Latest string         `json:"latest_hash"`
	Blocks []blockSummary `json:"blocks"`
}

type difficultyInfo struct {
	Height            int     `json:"height"`
	Difficulty        float64 `json:"difficulty"`
	MiningDifficulty  uint    `json:"mining_difficulty"`
	EMABlockSeconds   float64 `json:"ema_block_seconds,omitempty"`
	RecentDurationsMS []int64 `json:"recent_durations_ms"`
}

type minerInfo struct {
	Name           string  `json:"name"`
	Power          float64 `json:"power"`
	Wins           int     `json:"wins"`
	WinRate        float64 `json:"win_rate"`
	AverageSeconds float64 `json:"average_seconds"`
}
