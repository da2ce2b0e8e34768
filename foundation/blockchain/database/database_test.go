package database_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MichaelGiresi/cuneos/foundation/blockchain/database"
	"github.com/MichaelGiresi/cuneos/foundation/blockchain/digest"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func mustTransfer(t *testing.T, from, to string, amount float64, id string) database.Tx {
	t.Helper()

	tx, err := database.NewPeaceTransfer(from, to, amount, "2025-03-04", id)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct a transfer: %v", failed, err)
	}

	return tx
}

func TestPOW(t *testing.T) {
	type table struct {
		name       string
		power      float64
		difficulty uint
	}

	tt := []table{
		{name: "zero", power: 1.0, difficulty: 0},
		{name: "one", power: 1.5, difficulty: 1},
		{name: "two", power: 0.7, difficulty: 2},
	}

	t.Log("Given the need to mine blocks.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen mining at difficulty %d.", testID, tst.difficulty)
			{
				f := func(t *testing.T) {
					miner, err := database.NewMiner("Miner1", tst.power)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to construct a miner: %v", failed, testID, err)
					}

					block, err := database.POW(context.Background(), database.POWArgs{
						Number:       1,
						PrevHash:     digest.ZeroHash,
						Transactions: []database.Tx{mustTransfer(t, "system", "alice", 5, "tx001")},
						Miner:        miner,
						Difficulty:   tst.difficulty,
						TimeStamp:    time.Unix(1741046400, 0),
					})
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to mine a block: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to mine a block.", success, testID)

					if !strings.HasPrefix(block.Hash, strings.Repeat("0", int(tst.difficulty))) {
						t.Fatalf("\t%s\tTest %d:\tShould have %d leading zeros: %s", failed, testID, tst.difficulty, block.Hash)
					}
					t.Logf("\t%s\tTest %d:\tShould have %d leading zeros.", success, testID, tst.difficulty)

					if block.ComputeHash() != block.Hash {
						t.Fatalf("\t%s\tTest %d:\tShould recompute the stored hash.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould recompute the stored hash.", success, testID)

					if block.Nonce%miner.Stride() != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould advance the nonce by the miner stride: nonce %d stride %d", failed, testID, block.Nonce, miner.Stride())
					}
					t.Logf("\t%s\tTest %d:\tShould advance the nonce by the miner stride.", success, testID)

					if block.MinerName != "Miner1" || block.Difficulty != tst.difficulty {
						t.Fatalf("\t%s\tTest %d:\tShould record the miner and difficulty: %s %d", failed, testID, block.MinerName, block.Difficulty)
					}
					t.Logf("\t%s\tTest %d:\tShould record the miner and difficulty.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestPOWCancel(t *testing.T) {
	t.Log("Given the need to stop an impossible search.")
	{
		miner, err := database.NewMiner("Miner1", 1)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct a miner: %v", failed, err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err = database.POW(ctx, database.POWArgs{
			Number:     1,
			PrevHash:   digest.ZeroHash,
			Miner:      miner,
			Difficulty: digest.Size,
			TimeStamp:  time.Now(),
		})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("\t%s\tShould return the context error: %v", failed, err)
		}
		t.Logf("\t%s\tShould return the context error.", success)
	}
}

func TestNewMiner(t *testing.T) {
	t.Log("Given the need to validate miners.")
	{
		m, err := database.NewMiner("Miner3", 0.7)
		if err != nil {
			t.Fatalf("\t%s\tShould accept power 0.7: %v", failed, err)
		}
		if m.Stride() != 700 {
			t.Fatalf("\t%s\tShould round the stride to 700: got %d", failed, m.Stride())
		}
		t.Logf("\t%s\tShould round the stride to 700.", success)

		if _, err := database.NewMiner("Tiny", 0.0001); err == nil {
			t.Fatalf("\t%s\tShould reject a power with no stride.", failed)
		}
		t.Logf("\t%s\tShould reject a power with no stride.", success)

		if _, err := database.NewMiner("", 1); err == nil {
			t.Fatalf("\t%s\tShould reject a miner without a name.", failed)
		}
		t.Logf("\t%s\tShould reject a miner without a name.", success)

		miners, err := database.ParseMiners([]string{"Miner1:1.0", " Miner2 : 1.5"})
		if err != nil {
			t.Fatalf("\t%s\tShould parse a roster: %v", failed, err)
		}
		if len(miners) != 2 || miners[1].Name != "Miner2" || miners[1].Stride() != 1500 {
			t.Fatalf("\t%s\tShould parse names and powers: got %+v", failed, miners)
		}
		t.Logf("\t%s\tShould parse names and powers.", success)

		for _, bad := range []string{"Miner1", "Miner1:fast", ":1.0"} {
			if _, err := database.ParseMiner(bad); err == nil {
				t.Fatalf("\t%s\tShould reject %q.", failed, bad)
			}
		}
		t.Logf("\t%s\tShould reject malformed roster entries.", success)
	}
}

func TestValidateChain(t *testing.T) {
	t.Log("Given the need to validate a chain of blocks.")
	{
		miner, err := database.NewMiner("Miner1", 1)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct a miner: %v", failed, err)
		}

		mine := func(number uint64, prev string, tx database.Tx) database.Block {
			b, err := database.POW(context.Background(), database.POWArgs{
				Number:       number,
				PrevHash:     prev,
				Transactions: []database.Tx{tx},
				Miner:        miner,
				Difficulty:   1,
				TimeStamp:    time.Unix(1741046400+int64(number), 0),
			})
			if err != nil {
				t.Fatalf("\t%s\tShould be able to mine block %d: %v", failed, number, err)
			}
			return b
		}

		genesis := mine(0, digest.ZeroHash, mustTransfer(t, "system", "genesis", 0, "genesis_tx"))
		b1 := mine(1, genesis.Hash, mustTransfer(t, "system", "alice", 5, "tx001"))
		b2 := mine(2, b1.Hash, database.NewMatch("alice", "bob", "2025-03-06", "match_alice_bob"))

		chain := []database.Block{genesis, b1, b2}
		if err := database.ValidateChain(chain, nil); err != nil {
			t.Fatalf("\t%s\tShould validate a well formed chain: %v", failed, err)
		}
		t.Logf("\t%s\tShould validate a well formed chain.", success)

		tampered := b1.Clone()
		tampered.Transactions[0] = mustTransfer(t, "system", "alice", 500, "tx001")
		if err := database.ValidateChain([]database.Block{genesis, tampered, b2}, nil); err == nil {
			t.Fatalf("\t%s\tShould reject a block whose contents changed.", failed)
		}
		t.Logf("\t%s\tShould reject a block whose contents changed.", success)

		if err := database.ValidateChain([]database.Block{genesis, b2}, nil); err == nil {
			t.Fatalf("\t%s\tShould reject a block that skips its parent.", failed)
		}
		t.Logf("\t%s\tShould reject a block that skips its parent.", success)

		if _, err := database.POW(context.Background(), database.POWArgs{
			Number:       3,
			PrevHash:     b2.Hash,
			Transactions: []database.Tx{{}},
			Miner:        miner,
		}); !errors.Is(err, database.ErrUnconstructedTx) {
			t.Fatalf("\t%s\tShould reject a zero value transaction: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a zero value transaction.", success)
	}
}
