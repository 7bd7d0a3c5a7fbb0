package sa

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
		Iterations:   2000,
		InitialTemp:  100,
		FinalTemp:    0.5,
		Alpha:        0.995,
		Neighborhood: NeighborhoodSwap,
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
		{"no iteration budget", func(c *Config) { c.Iterations = 0; c.IterationsPerOp = 0 }},
		{"non-positive initial temp", func(c *Config) { c.InitialTemp = 0 }},
		{"non-positive final temp", func(c *Config) { c.FinalTemp = 0 }},
		{"final above initial", func(c *Config) { c.FinalTemp = c.InitialTemp }},
		{"alpha out of range", func(c *Config) { c.Alpha = 1 }},
		{"unknown neighborhood", func(c *Config) { c.Neighborhood = "reverse" }},
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

func TestSolveClinic(t *testing.T) {
	neighborhoods := []Neighborhood{NeighborhoodSwap, NeighborhoodInsert}
	for _, nb := range neighborhoods {
		t.Run(string(nb), func(t *testing.T) {
			cfg := smallConfig()
			cfg.Neighborhood = nb
			s, err := New(cfg, rand.New(rand.NewSource(5)), zerolog.Nop())
			if err != nil {
				t.Fatal(err)
			}

			p := jobshop.Clinic()
			res, err := solve.Run(context.Background(), p, s)
			if err != nil {
				t.Fatal(err)
			}
			if res.Makespan < 51 || res.Makespan > p.TotalDuration() {
				t.Fatalf("makespan = %d, want within [51, %d]", res.Makespan, p.TotalDuration())
			}
		})
	}
}

func TestSolveSingleJobIsExact(t *testing.T) {
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

	s, err := New(smallConfig(), rand.New(rand.NewSource(6)), zerolog.Nop())
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

func TestSolveReportsActualIterations(t *testing.T) {
	// A cooling rate of 0.5 crosses the temperature floor after one
	// iteration, long before the iteration budget runs out.
	cfg := Config{
		Iterations:   10_000,
		InitialTemp:  1.0,
		FinalTemp:    0.9,
		Alpha:        0.5,
		Neighborhood: NeighborhoodSwap,
	}
	s, err := New(cfg, rand.New(rand.NewSource(9)), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	res, err := solve.Run(context.Background(), jobshop.Clinic(), s)
	if err != nil {
		t.Fatal(err)
	}
	if res.Iterations != 1 {
		t.Fatalf("iterations = %d, want 1 after hitting the temperature floor", res.Iterations)
	}
}

func TestSolveCanceledContextReturnsBest(t *testing.T) {
	p := jobshop.Clinic()
	s, err := New(smallConfig(), rand.New(rand.NewSource(7)), zerolog.Nop())
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

func TestNeighborInsertPreservesPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	orders := [][]int{{0, 1, 2, 3, 4}}
	for trial := 0; trial < 100; trial++ {
		neighborInsert(orders, rng)
		seen := map[int]bool{}
		for _, v := range orders[0] {
			if seen[v] {
				t.Fatalf("trial %d: duplicate %d in %v", trial, v, orders[0])
			}
			seen[v] = true
		}
		if len(seen) != 5 {
			t.Fatalf("trial %d: lost elements: %v", trial, orders[0])
		}
	}
}
