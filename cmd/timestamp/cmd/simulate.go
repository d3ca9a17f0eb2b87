package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	engine "github.com/onflow/flow-timestamp/engine/timestamp"
	tsmodel "github.com/onflow/flow-timestamp/model/timestamp"
	"github.com/onflow/flow-timestamp/module"
	"github.com/onflow/flow-timestamp/module/clock"
	"github.com/onflow/flow-timestamp/module/irrecoverable"
	"github.com/onflow/flow-timestamp/module/metrics"
	"github.com/onflow/flow-timestamp/module/util"
	"github.com/onflow/flow-timestamp/state/timestamp"
	"github.com/onflow/flow-timestamp/storage/inmemory"
)

func init() {
	rootCmd.AddCommand(simulateCmd)

	addSimulateFlags(simulateCmd.Flags())
}

func addSimulateFlags(flags *pflag.FlagSet) {
	flags.Int("nodes", 4, "number of simulated nodes")
	flags.Uint64("blocks", 100, "number of blocks to produce")
	flags.Duration("skew", 0, "clock offset added per node, node i runs i*skew ahead")
	flags.Duration("interval", 6*time.Second, "simulated time between blocks")
	flags.Uint64("period", tsmodel.DefaultPeriod, "minimum period between blocks, in seconds")
	flags.Int("workers", 4, "number of parallel block imports")
	flags.Uint("metrics-port", 0, "port of the prometheus metrics endpoint, 0 disables it")
	addNTPFlags(flags)
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "run nodes with skewed clocks producing and importing blocks round-robin",
	Long: `Run nodes with skewed clocks producing and importing blocks round-robin.

The nodes share a fake clock starting at the host or NTP time. Without
--data-dir the state of every node is kept in memory, otherwise each node
persists its state in a subdirectory.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := simulate(cmd.Context())
		if err != nil {
			log.Fatal().Err(err).Msg("simulation failed")
		}
	},
}

func simulate(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}

	var cfg simulateConfig
	err := decodeConfig(viper.GetViper(), &cfg)
	if err != nil {
		return err
	}

	log := log.With().Str("run_id", uuid.NewString()).Logger()

	registry := prometheus.NewRegistry()
	collector := metrics.NewTimestampCollector(registry)
	storageCollector := metrics.NewStorageCollector(registry)

	if cfg.MetricsPort > 0 {
		server := metrics.NewServer(log, cfg.MetricsPort, registry)
		err := server.Start()
		if err != nil {
			return fmt.Errorf("could not start metrics server: %w", err)
		}
		defer func() {
			err := server.Shutdown(context.Background())
			if err != nil {
				log.Warn().Err(err).Msg("could not shut down metrics server")
			}
		}()
	}

	start, err := readClock(parent, cfg.NTP)
	if err != nil {
		return fmt.Errorf("could not read start time: %w", err)
	}
	fake := clockwork.NewFakeClockAt(time.Unix(int64(start), 0))

	genesis := tsmodel.Genesis[uint64]{Period: cfg.Period}

	nodes := make([]*engine.Node[uint64], 0, cfg.Nodes)
	for i := 0; i < cfg.Nodes; i++ {
		name := fmt.Sprintf("node-%d", i)
		store, closeStore, err := simulationStore(cfg.DataDir, name, genesis, storageCollector)
		if err != nil {
			return err
		}
		defer closeStore()

		reader := clock.NewSkewedReader(clock.NewSystemReaderWithClock(fake), time.Duration(i)*cfg.Skew)
		node, err := engine.NewNode[uint64](log, collector, name, store, reader, timestamp.NewLogListener[uint64](log))
		if err != nil {
			return fmt.Errorf("could not create %s: %w", name, err)
		}
		nodes = append(nodes, node)
	}

	sim := engine.NewSimulation(log, nodes, fake, cfg.Interval, cfg.Blocks, cfg.Workers)

	ctx, cancel, errChan := irrecoverable.WithSignallerAndCancel(parent)
	defer cancel()
	sim.Start(ctx)

	err = util.WaitError(errChan, sim.Done())
	if err != nil {
		return fmt.Errorf("irrecoverable error during simulation: %w", err)
	}

	stats, err := sim.Stats()
	if err != nil {
		return err
	}
	for _, nodeStats := range stats {
		log.Info().
			Str("node", nodeStats.Name).
			Uint64("height", nodeStats.Height).
			Uint64("timestamp", nodeStats.Timestamp).
			Uint64("produced", nodeStats.Produced).
			Uint64("imported", nodeStats.Imported).
			Uint64("deferred", nodeStats.Deferred).
			Uint64("rejected", nodeStats.Rejected).
			Msg("node summary")
	}
	return nil
}

// simulationStore returns the store of a simulated node and the function
// releasing it.
func simulationStore(dir string, name string, genesis tsmodel.Genesis[uint64], collector module.StorageMetrics) (timestamp.Store[uint64], func(), error) {
	if dir == "" {
		return inmemory.NewTimestamps(genesis), func() {}, nil
	}

	db, store, err := openTimestamps(filepath.Join(dir, name), collector)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Str("node", name).Msg("could not close database")
		}
	}

	bootstrapped, err := store.IsBootstrapped()
	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("could not check bootstrap state of %s: %w", name, err)
	}
	if !bootstrapped {
		err = store.Bootstrap(genesis)
		if err != nil {
			closeDB()
			return nil, nil, fmt.Errorf("could not bootstrap %s: %w", name, err)
		}
	}
	return store, closeDB, nil
}
