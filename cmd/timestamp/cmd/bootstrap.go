package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	tsmodel "github.com/onflow/flow-timestamp/model/timestamp"
	"github.com/onflow/flow-timestamp/module/metrics"
)

func init() {
	rootCmd.AddCommand(bootstrapCmd)

	bootstrapCmd.Flags().Uint64("period", tsmodel.DefaultPeriod, "minimum period between blocks, in seconds")
}

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "write the genesis timestamp state into --data-dir",
	Run: func(cmd *cobra.Command, args []string) {
		db, store, err := openTimestamps(viper.GetString("data-dir"), metrics.NewNoopCollector())
		if err != nil {
			log.Fatal().Err(err).Msg("could not open storage")
		}
		defer db.Close()

		genesis := tsmodel.Genesis[uint64]{Period: viper.GetUint64("period")}
		err = store.Bootstrap(genesis)
		if err != nil {
			log.Fatal().Err(err).Msg("could not bootstrap timestamp state")
		}

		log.Info().Str("genesis", genesis.String()).Msg("timestamp state bootstrapped")
	},
}
