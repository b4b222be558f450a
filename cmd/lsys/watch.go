package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/comalice/lsystemx/internal/extensibility"
	"github.com/comalice/lsystemx/internal/grammar"
)

func newWatchCmd(v *viper.Viper) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch <grammar>",
		Short: "Re-grow a grammar every time the file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(v)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd.ErrOrStderr(), s.LogLevel)
			if err != nil {
				return err
			}
			w, err := extensibility.NewGrammarWatcher(args[0], debounce)
			if err != nil {
				return err
			}
			defer w.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			regrow := func() {
				cfg, err := grammar.Load(args[0])
				if err == nil {
					fmt.Fprintf(out, "== %s\n", cfg.ID)
					err = grow(ctx, out, cmd.ErrOrStderr(), cfg, s, logger)
				}
				if err != nil {
					// A broken edit must not end the session.
					logger.Error("grow failed", "path", args[0], "err", err)
				}
			}

			regrow()
			for {
				select {
				case <-ctx.Done():
					return nil
				case _, ok := <-w.Events():
					if !ok {
						return nil
					}
					regrow()
				case err, ok := <-w.Errors():
					if !ok {
						return nil
					}
					logger.Warn("watch error", "err", err)
				}
			}
		},
	}
	growFlags(cmd, v)
	cmd.Flags().DurationVar(&debounce, "debounce", 100*time.Millisecond, "quiet period before re-growing")
	return cmd
}
