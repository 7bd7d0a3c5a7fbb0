package ga

import (
	"context"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"

	"fjsp/internal/jobshop"
	"fjsp/internal/solve"
)

func smallConfig() Config {
	return Config{
		Population:     20,
		Generations:    40,
		StallLimit:     15,
		Elite:          2,
		TournamentSize: 3,
		CrossoverRate:  0.8,
		MutationRate:   0.2,
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"population too small", func(c *Config) { c.Population = 1 }},
		{"no generations", func(c *Config) { c.Generations = 0 }},
		{"negative stall limit", func(c *Config) { c.StallLimit = -1 }},
		{"elite covers population", func(c *Config) { c.Elite = c.Population }},
		{"zero tournament", func(c *Config) { c.TournamentSize = 0 }},
		{"crossover above one", func(c *Config) { c.CrossoverRate = 1.1 }},
		{"negative mutation", func(c *Config) { c.MutationRate = -0.1 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := DefaultConfig()
			tc.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestNewRejectsNilRng(t *testing.T) {
	if _, err := New(DefaultConfig(), nil, zerolog.Nop()); err == nil {
		t.Fatal("expected error for nil rng")
	}
}

func TestSolveClinic(t *testing.T) {
	p := jobshop.Clinic()
	s, err := New(smallConfig(), rand.New(rand.NewSource(1)), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	res, err := solve.Run(context.Background(), p, s)
	if err != nil {
		t.Fatal(err)
	}
	if res.Makespan < 51 || res.Makespan > p.TotalDuration() {
		t.Fatalf("makespan = %d, want within [51, %d]", res.Makespan, p.TotalDuration())
	}
	if res.Evaluations < smallConfig().Population {
		t.Fatalf("evaluations = %d, below initial population", res.Evaluations)
	}
}

func TestSolveSingleJobIsExact(t *testing.T) {
	// One job has a unique feasible ordering, so any decoded individual is
	// already optimal.
	p, err := jobshop.NewProblem(
		[]jobshop.MachineID{"C2", "C3", "C4"},
		[]jobshop.JobSpec{{ID: "P2", Ops: []jobshop.OpSpec{
			{Machine: "C2", Duration: 5},
			{Machine: "C3", Duration: 10},
			{Machine: "C4", Duration: 18},
		}}},
	)
	if err != nil {
		t.Fatal(err)
	}

	s, err := New(smallConfig(), rand.New(rand.NewSource(2)), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	res, err := solve.Run(context.Background(), p, s)
	if err != nil {
		t.Fatal(err)
	}
	if res.Makespan != 33 {
		t.Fatalf("makespan = %d, want 33", res.Makespan)
	}
}

func TestSolveCanceledContextReturnsBest(t *testing.T) {
	p := jobshop.Clinic()
	s, err := New(smallConfig(), rand.New(rand.NewSource(3)), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := solve.Run(ctx, p, s)
	if err != nil {
		t.Fatalf("cancellation must not fail the solve: %v", err)
	}
	if res.Schedule == nil {
		t.Fatal("no schedule returned after cancellation")
	}
	if res.Meta["stopped"] != "context" {
		t.Fatalf("meta = %v, want stopped=context", res.Meta)
	}
}

func TestSolveConvergesWithBudget(t *testing.T) {
	// A starved run upper-bounds the search; the full default budget covers
	// the clinic instance's small ordering space many times over and must
	// reach the exact optimum of 51.
	p := jobshop.Clinic()
	run := func(cfg Config, seed int64) int {
		s, err := New(cfg, rand.New(rand.NewSource(seed)), zerolog.Nop())
		if err != nil {
			t.Fatal(err)
		}
		res, err := solve.Run(context.Background(), p, s)
		if err != nil {
			t.Fatal(err)
		}
		return res.Makespan
	}

	starved := Config{
		Population:     4,
		Generations:    2,
		StallLimit:     0,
		Elite:          1,
		TournamentSize: 2,
		CrossoverRate:  0.8,
		MutationRate:   0.2,
	}

	const seed = 21
	small := run(starved, seed)
	large := run(DefaultConfig(), seed)

	if large > small {
		t.Fatalf("full budget makespan %d worse than starved budget's %d", large, small)
	}
	if large != 51 {
		t.Fatalf("full budget makespan = %d, want the exact optimum 51", large)
	}
}

func TestSolveDeterministicForSeed(t *testing.T) {
	p := jobshop.Clinic()
	run := func(seed int64) int {
		s, err := New(smallConfig(), rand.New(rand.NewSource(seed)), zerolog.Nop())
		if err != nil {
			t.Fatal(err)
		}
		res, err := solve.Run(context.Background(), p, s)
		if err != nil {
			t.Fatal(err)
		}
		return res.Makespan
	}
	if a, b := run(7), run(7); a != b {
		t.Fatalf("same seed produced makespans %d and %d", a, b)
	}
}
