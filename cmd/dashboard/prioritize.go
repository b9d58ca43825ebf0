package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joelkehle/transformation-dashboard/internal/painpoints"
)

func newPrioritizeCmd() *cobra.Command {
	var (
		input      string
		strategies string
		maxPoints  int
	)
	cmd := &cobra.Command{
		Use:   "prioritize",
		Short: "Rank pain points by strategy coverage and severity",
		Long: `Rank raw pain points the way the dashboard does and print the result as JSON.

--input holds a JSON array of pain point records. --strategies optionally holds
a JSON array of strategies ({id, title, painPointRelevances}); AI opportunity
records from a final proposal have the same shape.

Examples:
  dashboard prioritize --input painpoints.json
  dashboard prioritize --input painpoints.json --strategies opportunities.json --max 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("read pain points: %w", err)
			}
			raw, err := painpoints.DecodeRaw(data)
			if err != nil {
				return fmt.Errorf("decode pain points %s: %w", input, err)
			}

			var strats []painpoints.Strategy
			if strategies != "" {
				blob, err := os.ReadFile(strategies)
				if err != nil {
					return fmt.Errorf("read strategies: %w", err)
				}
				if err := json.Unmarshal(blob, &strats); err != nil {
					return fmt.Errorf("decode strategies %s: %w", strategies, err)
				}
			}

			ranked := painpoints.Prioritize(raw, strats, maxPoints)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(ranked)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "pain points JSON file")
	cmd.Flags().StringVar(&strategies, "strategies", "", "strategies JSON file")
	cmd.Flags().IntVar(&maxPoints, "max", painpoints.DefaultMaxPoints, "number of pain points to keep")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
