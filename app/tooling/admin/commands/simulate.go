package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/MichaelGiresi/cuneos/business/core/workload"
	"github.com/MichaelGiresi/cuneos/foundation/blockchain/database"
	"github.com/MichaelGiresi/cuneos/foundation/blockchain/ledger"
	"github.com/MichaelGiresi/cuneos/foundation/blockchain/worker"
	"github.com/MichaelGiresi/cuneos/foundation/logger"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type simulateConfig struct {
	blocks     int
	difficulty uint
	min        uint
	max        uint
	target     time.Duration
	interval   int
	miners     []string
	users      []string
	verbose    bool
	file       string
}

// scenarioFile is the yaml form of a simulation. Values present in the
// file override the flags.
type scenarioFile struct {
	Blocks *int `yaml:"blocks"`
	Ledger struct {
		InitialDifficulty  *uint          `yaml:"initial_difficulty"`
		MinDifficulty      *uint          `yaml:"min_difficulty"`
		MaxDifficulty      *uint          `yaml:"max_difficulty"`
		TargetBlockTime    *time.Duration `yaml:"target_block_time"`
		AdjustmentInterval *int           `yaml:"adjustment_interval"`
	} `yaml:"ledger"`
	Miners []string `yaml:"miners"`
	Users  []string `yaml:"users"`
}

// load applies the scenario file on top of the flag values.
func (sc *simulateConfig) load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var sf scenarioFile
	if err := yaml.NewDecoder(f).Decode(&sf); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}

	if sf.Blocks != nil {
		sc.blocks = *sf.Blocks
	}
	if v := sf.Ledger.InitialDifficulty; v != nil {
		sc.difficulty = *v
	}
	if v := sf.Ledger.MinDifficulty; v != nil {
		sc.min = *v
	}
	if v := sf.Ledger.MaxDifficulty; v != nil {
		sc.max = *v
	}
	if v := sf.Ledger.TargetBlockTime; v != nil {
		sc.target = *v
	}
	if v := sf.Ledger.AdjustmentInterval; v != nil {
		sc.interval = *v
	}
	if len(sf.Miners) > 0 {
		sc.miners = sf.Miners
	}
	if len(sf.Users) > 0 {
		sc.users = sf.Users
	}

	return nil
}

func simulateCmd() *cobra.Command {
	var sc simulateConfig

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Mine a local ledger and print the chain and miner statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sc.file != "" {
				if err := sc.load(sc.file); err != nil {
					return err
				}
			}
			return simulate(cmd.OutOrStdout(), sc)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&sc.blocks, "blocks", "b", 20, "Number of blocks to mine after genesis.")
	f.UintVarP(&sc.difficulty, "difficulty", "d", 3, "Initial difficulty.")
	f.UintVar(&sc.min, "min-difficulty", 1, "Lower difficulty bound.")
	f.UintVar(&sc.max, "max-difficulty", 4, "Upper difficulty bound.")
	f.DurationVar(&sc.target, "target", 5*time.Second, "Target block time.")
	f.IntVar(&sc.interval, "interval", 3, "Retarget interval in blocks.")
	f.StringSliceVar(&sc.miners, "miners", []string{"Miner1:1.0", "Miner2:1.5", "Miner3:0.7"}, "Miner roster as name:power pairs.")
	f.StringSliceVar(&sc.users, "users", []string{"alice", "bob", "charlie", "diana"}, "Users that send the transfers.")
	f.BoolVarP(&sc.verbose, "verbose", "v", false, "Log ledger events.")
	f.StringVarP(&sc.file, "config", "c", "", "Yaml scenario file overriding the flags.")

	return cmd
}

func simulate(out io.Writer, sc simulateConfig) error {
	ev := func(string, ...any) {}
	if sc.verbose {
		log, err := logger.New("ADMIN")
		if err != nil {
			return err
		}
		defer log.Sync()

		ev = func(v string, args ...any) {
			log.Infow(fmt.Sprintf(v, args...))
		}
	}

	miners, err := database.ParseMiners(sc.miners)
	if err != nil {
		return err
	}

	ldg, err := ledger.New(ledger.Config{
		InitialDifficulty:  sc.difficulty,
		MinDifficulty:      sc.min,
		MaxDifficulty:      sc.max,
		TargetBlockTime:    sc.target,
		AdjustmentInterval: sc.interval,
		Miners:             miners,
		EvHandler:          ev,
	})
	if err != nil {
		return err
	}

	gen, err := workload.New(sc.users, nil)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Genesis block mined by %s\n", ldg.LatestBlock().MinerName)

	if sc.blocks > 0 {
		w := worker.Run(worker.Config{
			Producer: ldg,
			Source:   gen,
			Blocks:   sc.blocks,
			OnBlock: func(miner string, block database.Block) {
				d := ldg.Durations()
				fmt.Fprintf(out, "Block %d mined by %s in %v, txs %d, difficulty %.2f\n",
					block.Number, miner, d[len(d)-1], len(block.Transactions), ldg.Difficulty())
			},
			EvHandler: ev,
		})
		<-w.Done()
		w.Shutdown()
	}

	if err := ldg.Verify(); err != nil {
		return fmt.Errorf("verifying chain: %w", err)
	}

	fmt.Fprintf(out, "\nChain (%d blocks):\n", ldg.Height())
	for _, b := range ldg.Chain() {
		fmt.Fprintf(out, "  #%d %s prev %s nonce %d miner %s difficulty %d\n",
			b.Number, b.Hash, b.PrevHash, b.Nonce, b.MinerName, b.Difficulty)
	}

	fmt.Fprintf(out, "\nMiner statistics:\n")
	for _, st := range ldg.MinerStats() {
		fmt.Fprintf(out, "  %s: wins %d, win rate %.1f%%, average time %v\n",
			st.Name, st.Wins, st.WinRate, st.AverageTime)
	}

	return nil
}
