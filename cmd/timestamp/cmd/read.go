package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/onflow/flow-timestamp/module/metrics"
	"github.com/onflow/flow-timestamp/state/timestamp"
)

func init() {
	rootCmd.AddCommand(readCmd)
}

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "print the timestamp state stored in --data-dir",
	Run: func(cmd *cobra.Command, args []string) {
		db, store, err := openTimestamps(viper.GetString("data-dir"), metrics.NewNoopCollector())
		if err != nil {
			log.Fatal().Err(err).Msg("could not open storage")
		}
		defer db.Close()

		bootstrapped, err := store.IsBootstrapped()
		if err != nil {
			log.Fatal().Err(err).Msg("could not check bootstrap state")
		}
		if !bootstrapped {
			log.Warn().Msg("timestamp state is not bootstrapped, showing defaults")
		}

		err = store.View(func(state timestamp.State[uint64]) error {
			now, err := state.Now()
			if err != nil {
				return err
			}
			period, err := state.Period()
			if err != nil {
				return err
			}
			didUpdate, err := state.DidUpdate()
			if err != nil {
				return err
			}

			log.Info().
				Uint64("now", now).
				Time("time", time.Unix(int64(now), 0).UTC()).
				Uint64("period", period).
				Bool("did_update", didUpdate).
				Msg("timestamp state")
			return nil
		})
		if err != nil {
			log.Fatal().Err(err).Msg("could not read timestamp state")
		}
	},
}
