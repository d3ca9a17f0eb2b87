package cmd

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

var validate = validator.New()

// ntpFlags are the flags selecting the time source, see addNTPFlags.
type ntpFlags struct {
	NTPServer  string        `mapstructure:"ntp-server"`
	NTPTimeout time.Duration `mapstructure:"ntp-timeout"`
	NTPRetries uint64        `mapstructure:"ntp-retries"`
}

type simulateConfig struct {
	NTP ntpFlags `mapstructure:",squash"`

	DataDir     string        `mapstructure:"data-dir"`
	Nodes       int           `mapstructure:"nodes" validate:"gt=0"`
	Blocks      uint64        `mapstructure:"blocks" validate:"gt=0"`
	Skew        time.Duration `mapstructure:"skew"`
	Interval    time.Duration `mapstructure:"interval" validate:"gt=0"`
	Period      uint64        `mapstructure:"period"`
	Workers     int           `mapstructure:"workers" validate:"gt=0"`
	MetricsPort uint          `mapstructure:"metrics-port" validate:"lte=65535"`
}

// decodeConfig fills cfg from the flags and environment bound to v and
// validates the result.
func decodeConfig(v *viper.Viper, cfg interface{}) error {
	err := v.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return fmt.Errorf("could not decode config: %w", err)
	}

	err = validate.Struct(cfg)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
