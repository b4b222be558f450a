package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// settings are the grow options, resolved from flags, LSYS_* environment variables
// and an optional config file, in that order of precedence.
type settings struct {
	Generations   int           `mapstructure:"generations"`
	Seed          uint64        `mapstructure:"seed"`
	Workers       int           `mapstructure:"workers"`
	Tick          time.Duration `mapstructure:"tick"`
	PersistDir    string        `mapstructure:"persist-dir"`
	PersistFormat string        `mapstructure:"persist-format"`
	Execute       bool          `mapstructure:"execute"`
	Metrics       bool          `mapstructure:"metrics"`
	LogLevel      string        `mapstructure:"log-level"`
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("LSYS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "lsys",
		Short:         "Grow and inspect L-system grammars",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			path := v.GetString("config")
			if path == "" {
				return nil
			}
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("reading config %s: %w", path, err)
			}
			return nil
		},
	}
	root.PersistentFlags().String("config", "", "config file (yaml, toml or json)")
	root.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn or error")
	_ = v.BindPFlags(root.PersistentFlags())

	root.AddCommand(
		newGrowCmd(v),
		newValidateCmd(),
		newGraphCmd(),
		newWatchCmd(v),
	)
	return root
}

// growFlags registers the options shared by grow and watch.
func growFlags(cmd *cobra.Command, v *viper.Viper) {
	f := cmd.Flags()
	f.IntP("generations", "n", -1, "generations to grow (default: the grammar's own)")
	f.Uint64("seed", 0, "seed for stochastic rules (default: the grammar's own)")
	f.Int("workers", 1, "parallel workers per pass")
	f.Duration("tick", 0, "grow one generation per tick and print each frame")
	f.String("persist-dir", "", "save a snapshot of every generation to this directory")
	f.String("persist-format", "yaml", "snapshot format: yaml or json")
	f.Bool("execute", false, "run the symbol commands of the final generation")
	f.Bool("metrics", false, "print Prometheus metrics to stderr when done")
	cmd.PreRunE = func(cmd *cobra.Command, _ []string) error {
		return v.BindPFlags(cmd.Flags())
	}
}

func loadSettings(v *viper.Viper) (settings, error) {
	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return settings{}, fmt.Errorf("settings: %w", err)
	}
	if s.Workers < 1 {
		return settings{}, errors.New("settings: workers must be at least 1")
	}
	if s.Tick < 0 {
		return settings{}, errors.New("settings: tick must be positive")
	}
	return s, nil
}

func newLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          "lsys",
		ReportTimestamp: lvl <= log.DebugLevel,
	}), nil
}
