package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"fjsp/internal/bench"
	"fjsp/internal/solve"
)

var (
	benchCases        string
	benchAlgos        string
	benchRuns         int
	benchBaseSeed     int64
	benchInstanceSeed int64
	benchMinDur       int
	benchMaxDur       int
	benchTimeout      time.Duration
	benchOut          string
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Compare strategies over seeded synthetic instances",
	RunE:  runBench,
}

func init() {
	benchCmd.Flags().StringVar(&benchCases, "cases", "5x5,8x5", "instance configurations, jobs x machines, comma separated")
	benchCmd.Flags().StringVar(&benchAlgos, "algos", "exact,ga,sa,ts", "strategies to compare, comma separated")
	benchCmd.Flags().IntVar(&benchRuns, "runs", 10, "runs per strategy per case (different seeds)")
	benchCmd.Flags().Int64Var(&benchBaseSeed, "seed", 1000, "base seed for strategy runs")
	benchCmd.Flags().Int64Var(&benchInstanceSeed, "instance-seed", 777, "base seed for instance generation")
	benchCmd.Flags().IntVar(&benchMinDur, "min-duration", 5, "minimum operation duration")
	benchCmd.Flags().IntVar(&benchMaxDur, "max-duration", 20, "maximum operation duration")
	benchCmd.Flags().DurationVar(&benchTimeout, "per-run-timeout", 0, "timeout per run (0 = none)")
	benchCmd.Flags().StringVar(&benchOut, "out", "artifacts/results.csv", "output CSV path")
	addHeuristicFlags(benchCmd)
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	cases, err := parseCases(benchCases)
	if err != nil {
		return err
	}

	var algos []bench.Algorithm
	for _, name := range splitCSV(benchAlgos) {
		if _, err := buildStrategy(name, 0); err != nil {
			return err
		}
		name := name
		algos = append(algos, bench.Algorithm{
			Name: name,
			Factory: func(seed int64) solve.Strategy {
				st, _ := buildStrategy(name, seed)
				return st
			},
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := bench.Runner{
		Runs:          benchRuns,
		BaseSeed:      benchBaseSeed,
		PerRunTimeout: benchTimeout,
		Logger:        logger,
	}

	var records []bench.Record
	for _, c := range cases {
		for _, a := range algos {
			logger.Info().
				Str("algo", a.Name).
				Int("jobs", c.Jobs).
				Int("machines", c.Machines).
				Int("runs", runner.Runs).
				Msg("running case")

			rec, err := runner.RunCase(ctx, c, a)
			if err != nil {
				return err
			}
			records = append(records, rec)

			fmt.Printf("%-6s %dx%d  makespan best=%d mean=%.2f std=%.2f | time mean=%.2fms std=%.2fms\n",
				rec.Algo, rec.Jobs, rec.Machines,
				rec.MakespanBest, rec.MakespanMean, rec.MakespanStd,
				rec.TimeMeanMs, rec.TimeStdMs,
			)
		}
	}

	if err := bench.WriteCSV(benchOut, records); err != nil {
		return err
	}
	logger.Info().Str("path", benchOut).Msg("results written")
	return nil
}

func parseCases(s string) ([]bench.Case, error) {
	parts := splitCSV(s)
	cases := make([]bench.Case, 0, len(parts))
	for i, p := range parts {
		jm := strings.Split(p, "x")
		if len(jm) != 2 {
			return nil, fmt.Errorf("case %q: want jobsxmachines, e.g. 8x5", p)
		}
		jobs, err := strconv.Atoi(strings.TrimSpace(jm[0]))
		if err != nil {
			return nil, fmt.Errorf("case %q: parse jobs: %w", p, err)
		}
		machines, err := strconv.Atoi(strings.TrimSpace(jm[1]))
		if err != nil {
			return nil, fmt.Errorf("case %q: parse machines: %w", p, err)
		}
		if jobs <= 0 || machines <= 0 {
			return nil, fmt.Errorf("case %q: jobs and machines must be > 0", p)
		}

		seed := benchInstanceSeed + int64(i)*10_000 + int64(jobs)*100 + int64(machines)
		cases = append(cases, bench.Case{
			Jobs:         jobs,
			Machines:     machines,
			MinDuration:  benchMinDur,
			MaxDuration:  benchMaxDur,
			InstanceSeed: seed,
		})
	}
	return cases, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
