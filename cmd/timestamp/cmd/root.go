package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "TIMESTAMP"

var log zerolog.Logger

var rootCmd = &cobra.Command{
	Use:   "timestamp",
	Short: "Maintain and simulate the agreed block time of a chain",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		err := bindFlags(cmd.Flags())
		if err != nil {
			return err
		}
		return initLogger()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	addRootFlags(rootCmd.PersistentFlags())

	log = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()

	cobra.OnInitialize(initConfig)
}

func addRootFlags(flags *pflag.FlagSet) {
	flags.String("loglevel", "info", "level for logging output")
	flags.String("data-dir", "", "directory of the badger database holding the timestamp state")
}

// initConfig lets every flag be set from the environment, e.g. --data-dir
// from TIMESTAMP_DATA_DIR.
func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func bindFlags(flags *pflag.FlagSet) error {
	err := viper.BindPFlags(flags)
	if err != nil {
		return fmt.Errorf("could not bind flags: %w", err)
	}
	return nil
}

func initLogger() error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(viper.GetString("loglevel")))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	log = log.Level(lvl)
	return nil
}
