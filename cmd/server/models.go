package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newModelsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models offered by the configured AI provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := initializeApp(flags)
			if err != nil {
				return err
			}
			gen, err := newGenerator(cmd.Context(), cfg.LLM, log)
			if err != nil {
				return err
			}

			models, err := gen.ListModels(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list models: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "default: %s\n", gen.Model())
			for _, m := range models {
				if m.Name != "" && m.Name != m.ID {
					fmt.Fprintf(out, "%s\t%s\n", m.ID, m.Name)
					continue
				}
				fmt.Fprintln(out, m.ID)
			}
			return nil
		},
	}
}
