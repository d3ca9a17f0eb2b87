package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/onflow/flow-timestamp/module/clock"
)

func init() {
	rootCmd.AddCommand(clockCmd)

	addNTPFlags(clockCmd.Flags())
}

func addNTPFlags(flags *pflag.FlagSet) {
	defaults := clock.DefaultNTPConfig()
	flags.String("ntp-server", "", "read the time from this NTP server instead of the host clock")
	flags.Duration("ntp-timeout", defaults.Timeout, "timeout of a single NTP query")
	flags.Uint64("ntp-retries", defaults.Retries, "number of retries of failed NTP queries")
}

func (f ntpFlags) config() clock.NTPConfig {
	config := clock.DefaultNTPConfig()
	config.Server = f.NTPServer
	config.Timeout = f.NTPTimeout
	config.Retries = f.NTPRetries
	return config
}

// readClock samples the configured time source once.
func readClock(ctx context.Context, flags ntpFlags) (uint64, error) {
	if flags.NTPServer == "" {
		return clock.NewSystemReader().Now()
	}
	reader, err := clock.NewNTPReader(log, flags.config())
	if err != nil {
		return 0, err
	}
	return reader.NowWithContext(ctx)
}

var clockCmd = &cobra.Command{
	Use:   "clock",
	Short: "print the clock reading that would be supplied as inherent data",
	Run: func(cmd *cobra.Command, args []string) {
		var flags ntpFlags
		err := decodeConfig(viper.GetViper(), &flags)
		if err != nil {
			log.Fatal().Err(err).Msg("could not read config")
		}

		reading, err := readClock(cmd.Context(), flags)
		if err != nil {
			log.Fatal().Err(err).Msg("could not read clock")
		}
		log.Info().
			Uint64("reading", reading).
			Time("time", time.Unix(int64(reading), 0).UTC()).
			Msg("clock reading")
	},
}
