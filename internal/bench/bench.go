// Package bench provides benchmarking primitives for the bpetok bench command.
package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Run result and stats
// ---------------------------------------------------------------------------

// RunResult holds the timing and output metadata for a single encode run.
type RunResult struct {
	Index        int
	Cold         bool // true for the first run (cold-start)
	Duration     time.Duration
	Tokens       int     // tokens produced
	TokensPerSec float64 // throughput for this run
}

// Stats holds aggregate timing statistics across all runs.
type Stats struct {
	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
}

// ComputeStats calculates min, max and mean over a slice of durations.
// The slice must be non-empty.
func ComputeStats(durations []time.Duration) Stats {
	if len(durations) == 0 {
		return Stats{}
	}
	mn, mx := durations[0], durations[0]
	var sum time.Duration
	for _, d := range durations {
		if d < mn {
			mn = d
		}
		if d > mx {
			mx = d
		}
		sum += d
	}
	return Stats{
		Min:  mn,
		Max:  mx,
		Mean: sum / time.Duration(len(durations)),
	}
}

// ---------------------------------------------------------------------------
// Throughput helpers
// ---------------------------------------------------------------------------

// CalcThroughput returns tokens per second for one run.
// Returns 0 if the duration is zero to avoid division by zero.
func CalcThroughput(tokens int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(tokens) / d.Seconds()
}

// CheckThroughputThreshold returns an error if meanTokensPerSec falls
// below threshold. A threshold of 0 disables the gate.
func CheckThroughputThreshold(meanTokensPerSec, threshold float64) error {
	if threshold <= 0 {
		return nil
	}
	if meanTokensPerSec < threshold {
		return fmt.Errorf("mean throughput %.1f tok/s below threshold %.1f tok/s", meanTokensPerSec, threshold)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Output formatters
// ---------------------------------------------------------------------------

// FormatTable writes a human-readable ASCII table of bench results to w.
func FormatTable(runs []RunResult, stats Stats, w io.Writer) {
	sb := &strings.Builder{}

	fmt.Fprintf(sb, "%-5s  %-5s  %10s  %8s  %12s\n", "Run", "Cold", "MS", "Tokens", "Tok/s")
	fmt.Fprintln(sb, strings.Repeat("-", 50))

	for _, r := range runs {
		cold := ""
		if r.Cold {
			cold = "yes"
		}
		fmt.Fprintf(sb, "%-5d  %-5s  %10.2f  %8d  %12.1f\n",
			r.Index+1, cold, float64(r.Duration.Microseconds())/1000.0, r.Tokens, r.TokensPerSec)
	}

	fmt.Fprintln(sb, strings.Repeat("-", 50))
	fmt.Fprintf(sb, "min %.2fms  max %.2fms  mean %.2fms\n",
		float64(stats.Min.Microseconds())/1000.0,
		float64(stats.Max.Microseconds())/1000.0,
		float64(stats.Mean.Microseconds())/1000.0)

	_, _ = io.WriteString(w, sb.String())
}

type jsonRun struct {
	Index        int     `json:"index"`
	Cold         bool    `json:"cold"`
	DurationMS   float64 `json:"duration_ms"`
	Tokens       int     `json:"tokens"`
	TokensPerSec float64 `json:"tokens_per_sec"`
}

type jsonReport struct {
	Runs   []jsonRun `json:"runs"`
	MinMS  float64   `json:"min_ms"`
	MaxMS  float64   `json:"max_ms"`
	MeanMS float64   `json:"mean_ms"`
}

// FormatJSON writes bench results as a single JSON document to w.
func FormatJSON(runs []RunResult, stats Stats, w io.Writer) {
	report := jsonReport{
		Runs:   make([]jsonRun, 0, len(runs)),
		MinMS:  float64(stats.Min.Microseconds()) / 1000.0,
		MaxMS:  float64(stats.Max.Microseconds()) / 1000.0,
		MeanMS: float64(stats.Mean.Microseconds()) / 1000.0,
	}

	for _, r := range runs {
		report.Runs = append(report.Runs, jsonRun{
			Index:        r.Index,
			Cold:         r.Cold,
			DurationMS:   float64(r.Duration.Microseconds()) / 1000.0,
			Tokens:       r.Tokens,
			TokensPerSec: r.TokensPerSec,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(report)
}
