package database

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MichaelGiresi/cuneos/foundation/blockchain/digest"
)

// ErrUnconstructedTx is returned when a block is handed a zero value Tx
// that didn't come from one of the constructors.
var ErrUnconstructedTx = errors.New("transaction was not built by a constructor")

// Block represents a group of transactions batched together and sealed by
// proof of work.
type Block struct {
	Number       uint64 `json:"number"`
	Transactions []Tx   `json:"transactions"`
	PrevHash     string `json:"previous_hash"`
	Nonce        uint64 `json:"nonce"`
	Hash         string `json:"hash"`
	TimeStamp    uint64 `json:"timestamp"`  // Seconds since epoch when mining started.
	MinerName    string `json:"miner_name"` // Name of the miner that produced the block.
	Difficulty   uint   `json:"difficulty"` // Number of leading zero hex digits required.
}

// POWArgs represents the set of arguments required to run POW.
type POWArgs struct {
	Number       uint64
	PrevHash     string
	Transactions []Tx
	Miner        Miner
	Difficulty   uint
	TimeStamp    time.Time
	EvHandler    func(v string, args ...any)
}

// POW constructs a new Block and performs the work to find a nonce that
// solves the proof of work puzzle at the specified difficulty.
func POW(ctx context.Context, args POWArgs) (Block, error) {
	if args.Difficulty > digest.Size {
		return Block{}, fmt.Errorf("difficulty %d exceeds hash size %d", args.Difficulty, digest.Size)
	}

	for _, tx := range args.Transactions {
		if tx.Kind() == "" {
			return Block{}, ErrUnconstructedTx
		}
	}

	ev := args.EvHandler
	if ev == nil {
		ev = func(string, ...any) {}
	}

	trans := make([]Tx, len(args.Transactions))
	copy(trans, args.Transactions)

	nb := Block{
		Number:       args.Number,
		Transactions: trans,
		PrevHash:     args.PrevHash,
		Nonce:        0, // Will be identified by the POW algorithm.
		TimeStamp:    uint64(args.TimeStamp.UTC().Unix()),
		MinerName:    args.Miner.Name,
		Difficulty:   args.Difficulty,
	}

	if err := args.Miner.Mine(ctx, &nb, args.Difficulty, ev); err != nil {
		return Block{}, err
	}

	return nb, nil
}

// ComputeHash returns the hash of the block's contents. The layout is
// json(transactions) || previous hash || nonce || timestamp with both
// integers in big endian.
func (b Block) ComputeHash() string {
	trans := b.Transactions
	if trans == nil {
		trans = []Tx{}
	}

	data, err := json.Marshal(trans)
	if err != nil {
		return ""
	}

	var nonce, ts [8]byte
	binary.BigEndian.PutUint64(nonce[:], b.Nonce)
	binary.BigEndian.PutUint64(ts[:], b.TimeStamp)

	return digest.Hash(data, []byte(b.PrevHash), nonce[:], ts[:])
}

// IsSolved reports whether the stored hash satisfies the block's difficulty.
func (b Block) IsSolved() bool {
	return digest.HasZeroPrefix(b.Hash, b.Difficulty)
}

// Validate checks the block can follow the specified previous block.
func (b Block) Validate(prev Block) error {
	if b.Number != prev.Number+1 {
		return fmt.Errorf("block %d is not the next number, exp %d", b.Number, prev.Number+1)
	}

	if b.PrevHash != prev.Hash {
		return fmt.Errorf("block %d previous hash doesn't match parent, got %s, exp %s", b.Number, b.PrevHash, prev.Hash)
	}

	return b.ValidateHash()
}

// ValidateHash checks the stored hash matches the block contents and solves
// the proof of work puzzle.
func (b Block) ValidateHash() error {
	if hash := b.ComputeHash(); hash != b.Hash {
		return fmt.Errorf("block %d hash doesn't match contents, got %s, exp %s", b.Number, b.Hash, hash)
	}

	if !b.IsSolved() {
		return fmt.Errorf("block %d hash %s doesn't solve difficulty %d", b.Number, b.Hash, b.Difficulty)
	}

	return nil
}

// Clone returns a copy of the block that shares no slices with the original.
func (b Block) Clone() Block {
	trans := make([]Tx, len(b.Transactions))
	copy(trans, b.Transactions)
	b.Transactions = trans

	return b
}
