package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MichaelGiresi/cuneos/app/services/cuneos/handlers"
	"github.com/MichaelGiresi/cuneos/business/core/access"
	"github.com/MichaelGiresi/cuneos/business/core/profile"
	"github.com/MichaelGiresi/cuneos/business/core/profile/stores/profilebolt"
	"github.com/MichaelGiresi/cuneos/business/core/profile/stores/profilemem"
	"github.com/MichaelGiresi/cuneos/business/core/workload"
	"github.com/MichaelGiresi/cuneos/business/sys/metrics"
	"github.com/MichaelGiresi/cuneos/foundation/blockchain/database"
	"github.com/MichaelGiresi/cuneos/foundation/blockchain/keys"
	"github.com/MichaelGiresi/cuneos/foundation/blockchain/keystore"
	"github.com/MichaelGiresi/cuneos/foundation/blockchain/ledger"
	"github.com/MichaelGiresi/cuneos/foundation/blockchain/seal"
	"github.com/MichaelGiresi/cuneos/foundation/blockchain/worker"
	"github.com/MichaelGiresi/cuneos/foundation/events"
	"github.com/MichaelGiresi/cuneos/foundation/logger"
	"github.com/ardanlabs/conf/v3"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("CUNEOS")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
			CorsOrigins     []string      `conf:"default:*"`
		}
		Ledger struct {
			InitialDifficulty  uint          `conf:"default:3"`
			MinDifficulty      uint          `conf:"default:1"`
			MaxDifficulty      uint          `conf:"default:4"`
			TargetBlockTime    time.Duration `conf:"default:5s"`
			AdjustmentInterval int           `conf:"default:3"`
			Miners             []string      `conf:"default:Miner1:1.0;Miner2:1.5;Miner3:0.7"`
		}
		Workload struct {
			Blocks   int           `conf:"default:20"`
			Interval time.Duration `conf:"default:1s"`
			Users    []string      `conf:"default:alice;bob;charlie;diana"`
		}
		Profile struct {
			DBPath   string `conf:"help:bolt file for profiles; empty keeps them in memory"`
			Exchange string `conf:"default:x25519"`
			Seal     string `conf:"default:aes-256-gcm"`
		}
		Log struct {
			File       string `conf:"help:rotating log file written next to stdout"`
			MaxSizeMB  int    `conf:"default:100"`
			MaxAgeDays int    `conf:"default:7"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "dating ledger simulation",
		},
	}

	const prefix = "CUNEOS"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// Switch to a logger that also writes the rotating file.
	if cfg.Log.File != "" {
		flog, err := logger.NewWithFile("CUNEOS", logger.FileConfig{
			Path:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxAgeDays: cfg.Log.MaxAgeDays,
		})
		if err != nil {
			return fmt.Errorf("constructing file logger: %w", err)
		}
		defer flog.Sync()
		log = flog
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	mtrcs := metrics.New()

	// The blockchain packages accept a function of this signature to allow the
	// application to log. These raw messages are also sent to any websocket
	// client that is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Log("%s", s)
	}

	// =========================================================================
	// Profile Support

	var storer profile.Storer
	switch cfg.Profile.DBPath {
	case "":
		storer = profilemem.NewStore()

	default:
		store, err := profilebolt.NewStore(cfg.Profile.DBPath)
		if err != nil {
			return fmt.Errorf("opening profile store: %w", err)
		}
		defer store.Close()
		storer = store
	}

	alg, err := seal.ParseAlgorithm(cfg.Profile.Seal)
	if err != nil {
		return err
	}
	prfCore := profile.NewCore(storer, alg)

	exchange, err := keys.ParseExchange(cfg.Profile.Exchange)
	if err != nil {
		return err
	}

	// =========================================================================
	// Blockchain Support

	miners, err := database.ParseMiners(cfg.Ledger.Miners)
	if err != nil {
		return err
	}

	ldgr, err := ledger.New(ledger.Config{
		InitialDifficulty:  cfg.Ledger.InitialDifficulty,
		MinDifficulty:      cfg.Ledger.MinDifficulty,
		MaxDifficulty:      cfg.Ledger.MaxDifficulty,
		TargetBlockTime:    cfg.Ledger.TargetBlockTime,
		AdjustmentInterval: cfg.Ledger.AdjustmentInterval,
		Miners:             miners,
		EvHandler:          ev,
	})
	if err != nil {
		return err
	}
	mtrcs.SetLedger(ldgr.Height(), ldgr.Difficulty())

	// Every workload user gets a key pair and a sealed profile. Access
	// changes made through the API are mined next to the workload.
	accCore := access.NewCore(ldgr, prfCore, keystore.New())
	if err := seedProfiles(context.Background(), log, prfCore, accCore, exchange, cfg.Workload.Users); err != nil {
		return fmt.Errorf("seeding profiles: %w", err)
	}

	gen, err := workload.New(cfg.Workload.Users, nil)
	if err != nil {
		return err
	}

	// The worker mines the workload in the background. Each block is
	// recorded in the metrics and pushed to websocket clients.
	wrk := worker.Run(worker.Config{
		Producer: ldgr,
		Source:   gen,
		Blocks:   cfg.Workload.Blocks,
		Interval: cfg.Workload.Interval,
		OnBlock: func(miner string, block database.Block) {
			var duration time.Duration
			if d := ldgr.Durations(); len(d) > 0 {
				duration = d[len(d)-1]
			}
			ema, _ := ldgr.EMABlockTime()

			mtrcs.RecordBlock(metrics.Block{
				Miner:      miner,
				Height:     ldgr.Height(),
				Txs:        len(block.Transactions),
				Duration:   duration,
				Difficulty: ldgr.Difficulty(),
				EMA:        ema,
			})

			evts.Send(events.Event{Type: events.TypeBlock, Data: block})
		},
		EvHandler: ev,
	})
	defer wrk.Shutdown()

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug router started", "host", cfg.Web.DebugHost)

	debugMux := handlers.DebugMux(build, log, mtrcs, ldgr)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown:    shutdown,
		CorsOrigins: cfg.Web.CorsOrigins,
		Log:         log,
		Metrics:     mtrcs,
		Ledger:      ldgr,
		Profile:     prfCore,
		Access:      accCore,
		Evts:        evts,
	})

	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Stop mining before the chain is verified one last time.
		wrk.Shutdown()
		if err := ldgr.Verify(); err != nil {
			log.Errorw("shutdown", "status", "chain verification failed", "ERROR", err)
		}

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}
