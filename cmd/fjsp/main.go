package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"fjsp/internal/ga"
	"fjsp/internal/input"
	"fjsp/internal/jobshop"
	"fjsp/internal/milp"
	"fjsp/internal/sa"
	"fjsp/internal/solve"
	"fjsp/internal/ts"
)

var logger zerolog.Logger

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "fjsp",
	Short: "Flexible job shop scheduler for patient counter visits",
	Long: "fjsp assigns start times to every counter visit of every patient so that\n" +
		"no counter serves two patients at once and the overall completion time is\n" +
		"minimal, using either an exact branch-and-bound solver or heuristic search.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		lvl, err := zerolog.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("parse log level: %w", err)
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			Level(lvl).
			With().Timestamp().Logger()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: trace, debug, info, warn, error")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadProblem reads the instance file, or falls back to the built-in clinic
// instance when no path is given.
func loadProblem(path string) (*jobshop.Problem, error) {
	if path == "" {
		logger.Info().Msg("no instance file given, using built-in clinic instance")
		return jobshop.Clinic(), nil
	}
	return input.Load(path)
}

// Heuristic tuning flags shared by the solve and bench commands.
var (
	gaPop   int
	gaGen   int
	gaStall int
	gaElite int
	gaTour  int
	gaCx    float64
	gaMut   float64

	saIter  int
	saT0    float64
	saTmin  float64
	saAlpha float64
	saNeigh string

	tsIter      int
	tsTenure    int
	tsTenureRnd int
	tsNeighbors int
	tsNeigh     string
)

func addHeuristicFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&gaPop, "ga-pop", 100, "GA population size")
	cmd.Flags().IntVar(&gaGen, "ga-gen", 200, "GA generation limit")
	cmd.Flags().IntVar(&gaStall, "ga-stall", 50, "GA generations without improvement before stopping (0 = run all)")
	cmd.Flags().IntVar(&gaElite, "ga-elite", 10, "GA elite count carried over unchanged")
	cmd.Flags().IntVar(&gaTour, "ga-tour", 5, "GA tournament size")
	cmd.Flags().Float64Var(&gaCx, "ga-cx", 0.80, "GA crossover rate")
	cmd.Flags().Float64Var(&gaMut, "ga-mut", 0.15, "GA mutation rate")

	cmd.Flags().IntVar(&saIter, "sa-iter", 0, "SA total iterations (0 = 2000 per operation)")
	cmd.Flags().Float64Var(&saT0, "sa-t0", 500.0, "SA initial temperature")
	cmd.Flags().Float64Var(&saTmin, "sa-tmin", 0.5, "SA final temperature")
	cmd.Flags().Float64Var(&saAlpha, "sa-alpha", 0.995, "SA cooling rate")
	cmd.Flags().StringVar(&saNeigh, "sa-neigh", "swap", "SA neighborhood: swap | insert")

	cmd.Flags().IntVar(&tsIter, "ts-iter", 0, "TS total iterations (0 = 250 per operation)")
	cmd.Flags().IntVar(&tsTenure, "ts-tenure", 7, "TS tabu tenure in iterations")
	cmd.Flags().IntVar(&tsTenureRnd, "ts-tenure-rand", 3, "TS random addition to the tenure")
	cmd.Flags().IntVar(&tsNeighbors, "ts-neighbors", 60, "TS sampled neighbors per iteration")
	cmd.Flags().StringVar(&tsNeigh, "ts-neigh", "insert", "TS neighborhood: swap | insert")
}

func gaConfig() ga.Config {
	return ga.Config{
		Population:     gaPop,
		Generations:    gaGen,
		StallLimit:     gaStall,
		Elite:          gaElite,
		TournamentSize: gaTour,
		CrossoverRate:  gaCx,
		MutationRate:   gaMut,
	}
}

func saConfig() sa.Config {
	return sa.Config{
		Iterations:      saIter,
		IterationsPerOp: 2000,
		InitialTemp:     saT0,
		FinalTemp:       saTmin,
		Alpha:           saAlpha,
		Neighborhood:    sa.Neighborhood(saNeigh),
	}
}

func tsConfig() ts.Config {
	return ts.Config{
		Iterations:       tsIter,
		IterationsPerOp:  250,
		TabuTenure:       tsTenure,
		TabuTenureRand:   tsTenureRnd,
		NeighborsPerIter: tsNeighbors,
		Neighborhood:     ts.Neighborhood(tsNeigh),
	}
}

// buildStrategy constructs a solver by name. Heuristics are seeded so runs
// are reproducible.
func buildStrategy(name string, seed int64) (solve.Strategy, error) {
	switch name {
	case "exact":
		return milp.New(nil, logger), nil
	case "ga":
		return ga.New(gaConfig(), rand.New(rand.NewSource(seed)), logger)
	case "sa":
		return sa.New(saConfig(), rand.New(rand.NewSource(seed)), logger)
	case "ts":
		return ts.New(tsConfig(), rand.New(rand.NewSource(seed)), logger)
	default:
		return nil, fmt.Errorf("unknown strategy %q; available: exact, ga, sa, ts", name)
	}
}
