package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"fjsp/internal/report"
	"fjsp/internal/solve"
)

var (
	solveInput    string
	solveStrategy string
	solveSeed     int64
	solveTimeout  time.Duration
	solveCSV      string
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Compute a minimal-makespan timetable for an instance",
	Long: "Solve the scheduling instance with the chosen strategy and print the\n" +
		"timetable grouped by machine and by job. Interrupting a heuristic run\n" +
		"returns the best schedule found so far.",
	RunE: runSolve,
}

func init() {
	solveCmd.Flags().StringVar(&solveInput, "input", "", "instance YAML file (default: built-in clinic instance)")
	solveCmd.Flags().StringVar(&solveStrategy, "strategy", "exact", "strategy: exact | ga | sa | ts")
	solveCmd.Flags().Int64Var(&solveSeed, "seed", 1, "seed for heuristic strategies")
	solveCmd.Flags().DurationVar(&solveTimeout, "timeout", 0, "overall solve timeout (0 = none)")
	solveCmd.Flags().StringVar(&solveCSV, "csv", "", "also write the schedule to a CSV file")
	addHeuristicFlags(solveCmd)
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	p, err := loadProblem(solveInput)
	if err != nil {
		return err
	}

	strategy, err := buildStrategy(solveStrategy, solveSeed)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if solveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, solveTimeout)
		defer cancel()
	}

	res, err := solve.Run(ctx, p, strategy)
	if err != nil {
		return err
	}

	logger.Info().
		Str("strategy", solveStrategy).
		Int("makespan", res.Makespan).
		Int("evaluations", res.Evaluations).
		Dur("elapsed", res.Duration).
		Msg("solved")

	fmt.Print(report.Render(res.Schedule))

	if solveCSV != "" {
		f, err := os.Create(solveCSV)
		if err != nil {
			return err
		}
		if err := report.WriteCSV(f, res.Schedule); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		logger.Info().Str("path", solveCSV).Msg("schedule written")
	}
	return nil
}
