package main

import (
	"fmt"
	"time"

	"github.com/example/go-bpetok/internal/bench"
	"github.com/example/go-bpetok/internal/codec"
	"github.com/spf13/cobra"
)

func newBenchCmd() *cobra.Command {
	var (
		text      string
		runs      int
		format    string
		threshold float64
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark encode throughput",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if text == "" {
				return fmt.Errorf("--text is required")
			}
			if runs < 1 {
				return fmt.Errorf("--runs must be at least 1")
			}
			if format != "table" && format != "json" {
				return fmt.Errorf("--format must be 'table' or 'json'")
			}

			svc, err := codec.FromConfig(cfg, nil)
			if err != nil {
				return err
			}

			results := make([]bench.RunResult, 0, runs)
			durations := make([]time.Duration, 0, runs)

			for i := 0; i < runs; i++ {
				start := time.Now()
				ids, err := svc.Encode(cmd.Context(), text)
				elapsed := time.Since(start)
				if err != nil {
					return fmt.Errorf("encode run %d: %w", i+1, err)
				}

				results = append(results, bench.RunResult{
					Index:        i,
					Cold:         i == 0,
					Duration:     elapsed,
					Tokens:       len(ids),
					TokensPerSec: bench.CalcThroughput(len(ids), elapsed),
				})
				durations = append(durations, elapsed)
			}

			stats := bench.ComputeStats(durations)

			out := cmd.OutOrStdout()
			if format == "json" {
				bench.FormatJSON(results, stats, out)
			} else {
				bench.FormatTable(results, stats, out)
			}

			var meanTokSec float64
			for _, r := range results {
				meanTokSec += r.TokensPerSec
			}
			meanTokSec /= float64(len(results))

			return bench.CheckThroughputThreshold(meanTokSec, threshold)
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Text to encode on every run")
	cmd.Flags().IntVar(&runs, "runs", 5, "Number of encode runs")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table|json")
	cmd.Flags().Float64Var(&threshold, "throughput-threshold", 0, "Fail if mean tok/s falls below this value (0 disables)")

	return cmd
}
