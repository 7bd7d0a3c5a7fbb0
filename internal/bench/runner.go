// Package bench compares scheduling strategies on seeded synthetic
// instances and aggregates makespan and wall-time statistics.
package bench

import (
	"context"
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"fjsp/internal/jobshop"
	"fjsp/internal/solve"
)

// Algorithm names one strategy and builds a fresh, seeded instance of it
// per run.
type Algorithm struct {
	Name    string
	Factory func(seed int64) solve.Strategy
}

// Case describes one synthetic instance configuration.
type Case struct {
	Jobs         int
	Machines     int
	MinDuration  int
	MaxDuration  int
	InstanceSeed int64
}

// Record is the aggregated outcome of running one algorithm on one case.
type Record struct {
	Algo     string
	Jobs     int
	Machines int
	Runs     int

	TimeBestMs float64
	TimeMeanMs float64
	TimeStdMs  float64

	MakespanBest int
	MakespanMean float64
	MakespanStd  float64
}

type Runner struct {
	Runs          int
	BaseSeed      int64
	PerRunTimeout time.Duration // 0 = no timeout
	Logger        zerolog.Logger
}

// RunCase executes every run through solve.Run, so each produced schedule
// is validated before it is counted.
func (r Runner) RunCase(ctx context.Context, c Case, algo Algorithm) (Record, error) {
	minDur, maxDur := c.MinDuration, c.MaxDuration
	if minDur <= 0 {
		minDur = 5
	}
	if maxDur < minDur {
		maxDur = minDur + 15
	}
	instRng := rand.New(rand.NewSource(c.InstanceSeed))
	p := jobshop.RandomProblem(c.Jobs, c.Machines, minDur, maxDur, instRng)

	makespans := make([]int, 0, r.Runs)
	timesMs := make([]float64, 0, r.Runs)

	for i := 0; i < r.Runs; i++ {
		runSeed := r.BaseSeed + int64(i)
		strategy := algo.Factory(runSeed)

		runCtx := ctx
		cancel := func() {}
		if r.PerRunTimeout > 0 {
			runCtx, cancel = context.WithTimeout(ctx, r.PerRunTimeout)
		}
		began := time.Now()
		res, err := solve.Run(runCtx, p, strategy)
		dur := time.Since(began)
		cancel()

		if err != nil {
			return Record{}, fmt.Errorf("%s run %d: %w", algo.Name, i, err)
		}

		r.Logger.Debug().
			Str("algo", algo.Name).
			Int("run", i).
			Int("makespan", res.Makespan).
			Dur("elapsed", dur).
			Msg("run finished")

		makespans = append(makespans, res.Makespan)
		timesMs = append(timesMs, float64(dur.Microseconds())/1000.0)
	}

	msStats := Summarize(intsToFloats(makespans))
	tStats := Summarize(timesMs)

	return Record{
		Algo:     algo.Name,
		Jobs:     c.Jobs,
		Machines: c.Machines,
		Runs:     r.Runs,

		TimeBestMs: tStats.Best,
		TimeMeanMs: tStats.Mean,
		TimeStdMs:  tStats.Std,

		MakespanBest: int(msStats.Best),
		MakespanMean: msStats.Mean,
		MakespanStd:  msStats.Std,
	}, nil
}

func WriteCSV(path string, records []Record) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"algo", "jobs", "machines", "runs",
		"time_best_ms", "time_mean_ms", "time_std_ms",
		"makespan_best", "makespan_mean", "makespan_std",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			r.Algo,
			strconv.Itoa(r.Jobs),
			strconv.Itoa(r.Machines),
			strconv.Itoa(r.Runs),

			ftoa(r.TimeBestMs),
			ftoa(r.TimeMeanMs),
			ftoa(r.TimeStdMs),

			strconv.Itoa(r.MakespanBest),
			ftoa(r.MakespanMean),
			ftoa(r.MakespanStd),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
