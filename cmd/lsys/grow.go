package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/comalice/lsystemx/internal/core"
	"github.com/comalice/lsystemx/internal/extensibility"
	"github.com/comalice/lsystemx/internal/grammar"
	"github.com/comalice/lsystemx/internal/primitives"
	"github.com/comalice/lsystemx/internal/production"
	"github.com/comalice/lsystemx/internal/sequence"
	"github.com/comalice/lsystemx/realtime"
)

func newGrowCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grow <grammar>",
		Short: "Grow a grammar and print the final generation",
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
			cfg, err := grammar.Load(args[0])
			if err != nil {
				return err
			}
			return grow(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, s, logger)
		},
	}
	growFlags(cmd, v)
	return cmd
}

// grow compiles cfg, grows it according to s and writes the result to out.
func grow(ctx context.Context, out, errOut io.Writer, cfg *primitives.GrammarConfig, s settings, logger *log.Logger) error {
	opts := []core.Option{core.WithLogger(logger), core.WithWorkers(s.Workers)}
	if s.Seed != 0 {
		opts = append(opts, core.WithSeed(s.Seed))
	}
	if s.PersistDir != "" {
		p, err := production.NewPersister(s.PersistFormat, s.PersistDir)
		if err != nil {
			return err
		}
		opts = append(opts, core.WithPersister(p))
	}
	var reg *prometheus.Registry
	if s.Metrics {
		reg = prometheus.NewRegistry()
		m, err := production.NewMetricsPublisher(reg)
		if err != nil {
			return err
		}
		opts = append(opts, core.WithPublisher(m))
	}
	compileOpts := []grammar.CompileOption{}
	if s.Execute {
		opts = append(opts, core.WithCommandRunner(
			extensibility.NewLoggingCommandRunner(&extensibility.DefaultCommandRunner{}, logger)))
		compileOpts = append(compileOpts, grammar.WithDefaultProcedure(printCommand(out)))
	}
	compileOpts = append(compileOpts, grammar.WithEngineOptions(opts...))

	e, axiom, err := grammar.Compile(cfg, compileOpts...)
	if err != nil {
		return err
	}
	logger.Info("growing", "grammar", cfg.ID, "run", e.RunID())

	n := s.Generations
	if n < 0 {
		n = cfg.Generations
	}
	if s.Tick > 0 && n > 0 {
		if err := growTicking(ctx, out, e, axiom, n, s, logger); err != nil {
			return err
		}
	} else {
		stable, err := e.IterateContext(ctx, axiom, n)
		if err != nil {
			return err
		}
		if stable {
			logger.Info("stable", "generation", e.Generation())
		}
		fmt.Fprintln(out, e.Current())
	}

	if s.Execute {
		if err := e.Execute(ctx); err != nil {
			return err
		}
	}
	if reg != nil {
		return writeMetrics(errOut, reg)
	}
	return nil
}

// growTicking steps the engine on a realtime.Grower and prints every frame.
func growTicking(ctx context.Context, out io.Writer, e *core.Engine, axiom *sequence.Sequence, n int, s settings, logger *log.Logger) error {
	g := realtime.NewGrower(e, axiom, realtime.Config{TickRate: s.Tick, MaxGenerations: n, Logger: logger})
	fmt.Fprintf(out, "%d: %s\n", 0, axiom)
	g.OnGeneration(func(f realtime.Frame) {
		if f.Stable {
			return
		}
		fmt.Fprintf(out, "%d: %s\n", f.Generation, f.Sequence)
	})
	if err := g.Start(ctx); err != nil {
		return err
	}
	select {
	case <-g.Done():
	case <-ctx.Done():
	}
	return g.Stop()
}

// printCommand turns each symbol's command label into a procedure that prints it with
// the module's arguments in name order.
func printCommand(out io.Writer) func(*primitives.SymbolConfig) primitives.Procedure {
	return func(sc *primitives.SymbolConfig) primitives.Procedure {
		if sc.Command == "" {
			return nil
		}
		command := sc.Command
		return func(args primitives.Args) {
			var b strings.Builder
			b.WriteString(command)
			for _, k := range slices.Sorted(maps.Keys(args)) {
				fmt.Fprintf(&b, " %s=%s", k, primitives.FormatValue(args[k]))
			}
			fmt.Fprintln(out, b.String())
		}
	}
}

func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := formatLabels(m.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				fmt.Fprintf(w, "%s%s %g\n", mf.GetName(), labels, m.GetCounter().GetValue())
			case dto.MetricType_GAUGE:
				fmt.Fprintf(w, "%s%s %g\n", mf.GetName(), labels, m.GetGauge().GetValue())
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				fmt.Fprintf(w, "%s_count%s %d\n", mf.GetName(), labels, h.GetSampleCount())
				fmt.Fprintf(w, "%s_sum%s %g\n", mf.GetName(), labels, h.GetSampleSum())
			}
		}
	}
	return nil
}

func formatLabels(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("%s=%q", p.GetName(), p.GetValue())
	}
	return "{" + strings.Join(parts, ",") + "}"
}

