package config

import (
	"os"
	"strings"

	"codeberg.org/mutker/socwatt/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configName = "socwatt"
	configType = "toml"
	configPath = "/etc"
	configEnv  = "SOCWATT_CONFIG"

	DefaultInterval  = 1000 // ms per polling round
	DefaultSamples   = 1    // windows per polling round
	DefaultTelemetry = false
	DefaultDBPath    = "/var/lib/socwatt/telemetry.db"
)

type Config struct {
	Interval      int    // polling round span in milliseconds
	Samples       int    // sample windows per polling round
	Duration      int    // seconds to run, 0 = until signalled
	Telemetry     bool   // record samples to sqlite
	TelemetryDB   string `mapstructure:"database"`
	ListenAddress string `mapstructure:"listen_address"` // prometheus exporter, empty = disabled
	Monitor       bool   // log every reading
	Debug         bool
	Verbose       bool
}

func Load() (*Config, error) {
	errFactory := errors.New()
	config := &Config{}

	fs := pflag.NewFlagSet(configName, pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Int("interval", DefaultInterval, "Polling round span in milliseconds")
	fs.Int("samples", DefaultSamples, "Sample windows per polling round")
	fs.Int("duration", 0, "Seconds to sample before exiting (0 = until signalled)")
	fs.Bool("telemetry", DefaultTelemetry, "Record samples to the telemetry database")
	fs.String("database", DefaultDBPath, "Path to the telemetry database")
	fs.String("listen-address", "", "Address for the Prometheus exporter (empty = disabled)")
	fs.Bool("monitor", false, "Log every power reading")
	fs.Bool("debug", false, "Enable debugging mode")
	fs.Bool("verbose", false, "Enable verbose logging")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("samples", DefaultSamples)
	v.SetDefault("duration", 0)
	v.SetDefault("telemetry", DefaultTelemetry)
	v.SetDefault("database", DefaultDBPath)
	v.SetDefault("listen_address", "")

	if path := os.Getenv(configEnv); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(configPath)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	// Command line flags override config file values
	fs.Visit(func(f *pflag.Flag) {
		v.Set(strings.ReplaceAll(f.Name, "-", "_"), f.Value.String())
	})

	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval < 1 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}
	if c.Samples < 1 {
		return errFactory.WithData(errors.ErrInvalidArgument, c.Samples)
	}
	if c.Duration < 0 {
		return errFactory.WithData(errors.ErrInvalidArgument, c.Duration)
	}
	if c.Telemetry && c.TelemetryDB == "" {
		return errFactory.New(errors.ErrMissingConfig)
	}

	return nil
}
