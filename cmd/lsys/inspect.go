package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comalice/lsystemx/internal/grammar"
	"github.com/comalice/lsystemx/internal/primitives"
	"github.com/comalice/lsystemx/internal/production"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <grammar>...",
		Short: "Check grammar files without growing them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed int
			for _, path := range args {
				cfg, err := grammar.Load(path)
				if err == nil {
					_, _, err = grammar.Compile(cfg)
				}
				if err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok   %s: %s@%s (%d symbols, %d rules)\n", path, cfg.ID, primitives.ComputeVersion(cfg), len(cfg.Symbols), len(cfg.Rules))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d grammars invalid", failed, len(args))
			}
			return nil
		},
	}
}

func newGraphCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "graph <grammar>",
		Short: "Print the rule graph as Graphviz DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := grammar.Load(args[0])
			if err != nil {
				return err
			}
			v := &production.DefaultVisualizer{}
			if asJSON {
				data, err := v.ExportJSON(cfg)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			dot, err := v.ExportDOT(cfg)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), dot)
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the normalized grammar as JSON instead")
	return cmd
}
