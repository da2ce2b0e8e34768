// Package database handles the lower level data structures of the ledger:
// the transaction variants, the blocks that batch them and the miners that
// seal blocks with proof of work.
package database

import (
	"fmt"

	"github.com/MichaelGiresi/cuneos/foundation/blockchain/digest"
)

// ValidateChain walks the blocks in order and validates the genesis block
// and every block against its parent.
func ValidateChain(blocks []Block, evHandler func(v string, args ...any)) error {
	if len(blocks) == 0 {
		return nil
	}

	ev := evHandler
	if ev == nil {
		ev = func(string, ...any) {}
	}

	genesis := blocks[0]

	ev("database: ValidateChain: validate: blk[%d]: check: genesis", genesis.Number)

	if genesis.Number != 0 || genesis.PrevHash != digest.ZeroHash {
		return fmt.Errorf("first block is not a genesis block, number %d, previous hash %s", genesis.Number, genesis.PrevHash)
	}

	if err := genesis.ValidateHash(); err != nil {
		return err
	}

	for i := 1; i < len(blocks); i++ {
		ev("database: ValidateChain: validate: blk[%d]: check: parent and proof of work", blocks[i].Number)

		if err := blocks[i].Validate(blocks[i-1]); err != nil {
			return err
		}
	}

	return nil
}
