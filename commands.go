package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kartoza/premium-estimator/internal/model"
	"github.com/kartoza/premium-estimator/internal/premium"
)

func newModelCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Manage model artifacts",
	}
	cmd.AddCommand(newModelWriteCommand(), newModelInspectCommand())
	return cmd
}

func newModelWriteCommand() *cobra.Command {
	var strategy, out string

	cmd := &cobra.Command{
		Use:   "write",
		Short: "Write the baseline regression artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := premium.ParseStrategy(strategy)
			if err != nil {
				return err
			}
			a, err := model.BaselineArtifact(s)
			if err != nil {
				return err
			}
			if err := model.Save(out, a); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s artifact to %s\n", s, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", "ordinal", "Encoding strategy: ordinal or labeled")
	cmd.Flags().StringVar(&out, "out", "insurance_model.gob", "Destination path")
	return cmd
}

func newModelInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <path>",
		Short: "Print an artifact's strategy and weights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := model.ReadArtifact(args[0])
			if err != nil {
				return err
			}
			if _, err := model.New(a); err != nil {
				return fmt.Errorf("invalid artifact: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "format:    %s v%d\n", a.Format, a.Version)
			fmt.Fprintf(out, "strategy:  %s\n", a.Strategy)
			fmt.Fprintf(out, "intercept: %.4f\n", a.Intercept)

			for i, c := range a.Coefficients {
				fmt.Fprintf(out, "  %-10s %.4f\n", premium.FeatureOrder[i], c)
			}
			for _, name := range sortedKeys(a.Numeric) {
				fmt.Fprintf(out, "  %-10s %.4f\n", name, a.Numeric[name])
			}
			for _, name := range sortedKeys(a.Categorical) {
				levels := a.Categorical[name]
				for _, level := range sortedKeys(levels) {
					fmt.Fprintf(out, "  %-10s %-10s %.4f\n", name, level, levels[level])
				}
			}
			return nil
		},
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
