package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onflow/flow-timestamp/module/metrics"
	"github.com/onflow/flow-timestamp/state/timestamp"
	"github.com/onflow/flow-timestamp/utils/unittest"
)

func TestBootstrapCommand(t *testing.T) {
	unittest.RunWithTempDir(t, func(dir string) {
		rootCmd.SetArgs([]string{"bootstrap", "--data-dir", dir, "--period", "3", "--loglevel", "error"})
		require.NoError(t, rootCmd.Execute())

		db, store, err := openTimestamps(dir, metrics.NewNoopCollector())
		require.NoError(t, err)
		defer db.Close()

		bootstrapped, err := store.IsBootstrapped()
		require.NoError(t, err)
		assert.True(t, bootstrapped)

		err = store.View(func(state timestamp.State[uint64]) error {
			period, err := state.Period()
			require.NoError(t, err)
			assert.Equal(t, uint64(3), period)
			return nil
		})
		require.NoError(t, err)
	})
}

func TestSimulateCommand(t *testing.T) {
	rootCmd.SetArgs([]string{"simulate", "--data-dir", "", "--nodes", "3", "--blocks", "9", "--loglevel", "error"})
	require.NoError(t, rootCmd.Execute())
}

func TestSimulateCommand_Badger(t *testing.T) {
	unittest.RunWithTempDir(t, func(dir string) {
		rootCmd.SetArgs([]string{"simulate", "--data-dir", dir, "--nodes", "2", "--blocks", "4", "--loglevel", "error"})
		require.NoError(t, rootCmd.Execute())

		db, store, err := openTimestamps(dir+"/node-1", metrics.NewNoopCollector())
		require.NoError(t, err)
		defer db.Close()

		err = store.View(func(state timestamp.State[uint64]) error {
			now, err := state.Now()
			require.NoError(t, err)
			assert.NotZero(t, now)
			return nil
		})
		require.NoError(t, err)
	})
}

func TestOpenTimestamps_MissingDir(t *testing.T) {
	_, _, err := openTimestamps("", metrics.NewNoopCollector())
	require.Error(t, err)
}

func simulateFlags(t *testing.T, args ...string) *viper.Viper {
	flags := pflag.NewFlagSet("simulate", pflag.ContinueOnError)
	addSimulateFlags(flags)
	addRootFlags(flags)
	require.NoError(t, flags.Parse(args))

	v := viper.New()
	require.NoError(t, v.BindPFlags(flags))
	return v
}

func TestDecodeConfig(t *testing.T) {
	t.Run("flags", func(t *testing.T) {
		v := simulateFlags(t, "--nodes", "3", "--blocks", "7", "--interval", "9s", "--skew", "2m", "--ntp-server", "time.example.org", "--ntp-timeout", "1s")

		var cfg simulateConfig
		require.NoError(t, decodeConfig(v, &cfg))
		assert.Equal(t, 3, cfg.Nodes)
		assert.Equal(t, uint64(7), cfg.Blocks)
		assert.Equal(t, 9*time.Second, cfg.Interval)
		assert.Equal(t, 2*time.Minute, cfg.Skew)
		assert.Equal(t, "time.example.org", cfg.NTP.NTPServer)
		assert.Equal(t, time.Second, cfg.NTP.NTPTimeout)

		ntp := cfg.NTP.config()
		assert.Equal(t, "time.example.org", ntp.Server)
		require.NoError(t, ntp.Validate())
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("TIMESTAMP_BLOCKS", "11")
		v := simulateFlags(t)
		v.SetEnvPrefix(envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
		v.AutomaticEnv()

		var cfg simulateConfig
		require.NoError(t, decodeConfig(v, &cfg))
		assert.Equal(t, uint64(11), cfg.Blocks)
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		for _, args := range [][]string{
			{"--nodes", "0"},
			{"--blocks", "0"},
			{"--interval", "0s"},
			{"--workers", "0"},
			{"--metrics-port", "70000"},
		} {
			var cfg simulateConfig
			err := decodeConfig(simulateFlags(t, args...), &cfg)
			assert.ErrorContains(t, err, "invalid config", args)
		}
	})
}
