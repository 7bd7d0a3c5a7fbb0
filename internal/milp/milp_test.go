package milp

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"fjsp/internal/constraint"
	"fjsp/internal/jobshop"
	"fjsp/internal/solve"
	"fjsp/internal/validate"
)

// bruteForceMakespan enumerates every orientation of every disjunctive
// machine pair, computes the earliest timetable per acyclic orientation and
// returns the minimum makespan. Only usable for small instances.
func bruteForceMakespan(t *testing.T, p *jobshop.Problem) int {
	t.Helper()

	type pair struct{ first, second jobshop.Operation }
	var pairs []pair
	for _, c := range constraint.Generate(p) {
		if c.Kind == constraint.Capacity {
			pairs = append(pairs, pair{first: c.First, second: c.Second})
		}
	}
	if len(pairs) > 20 {
		t.Fatalf("instance too large for brute force: %d pairs", len(pairs))
	}

	n := p.NumOperations()
	best := -1
	for mask := 0; mask < 1<<len(pairs); mask++ {
		type edge struct{ to, weight int }
		succ := make([][]edge, n)
		indeg := make([]int, n)
		add := func(from, to, w int) {
			succ[from] = append(succ[from], edge{to: to, weight: w})
			indeg[to]++
		}
		for _, job := range p.Jobs() {
			for i := 0; i+1 < len(job.Ops); i++ {
				add(job.Ops[i].ID, job.Ops[i+1].ID, job.Ops[i].Duration)
			}
		}
		for i, pr := range pairs {
			if mask&(1<<i) != 0 {
				add(pr.first.ID, pr.second.ID, pr.first.Duration)
			} else {
				add(pr.second.ID, pr.first.ID, pr.second.Duration)
			}
		}

		starts := make([]int, n)
		queue := make([]int, 0, n)
		for id, d := range indeg {
			if d == 0 {
				queue = append(queue, id)
			}
		}
		processed := 0
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			processed++
			for _, e := range succ[id] {
				if st := starts[id] + e.weight; st > starts[e.to] {
					starts[e.to] = st
				}
				indeg[e.to]--
				if indeg[e.to] == 0 {
					queue = append(queue, e.to)
				}
			}
		}
		if processed != n {
			continue // cyclic orientation
		}

		makespan := 0
		for _, op := range p.Operations() {
			if end := starts[op.ID] + op.Duration; end > makespan {
				makespan = end
			}
		}
		if best < 0 || makespan < best {
			best = makespan
		}
	}
	if best < 0 {
		t.Fatal("no acyclic orientation found")
	}
	return best
}

func TestSolveClinicOptimal(t *testing.T) {
	p := jobshop.Clinic()
	s := New(nil, zerolog.Nop())

	res, err := solve.Run(context.Background(), p, s)
	if err != nil {
		t.Fatal(err)
	}
	if res.Makespan != 51 {
		t.Fatalf("makespan = %d, want 51", res.Makespan)
	}
	if want := bruteForceMakespan(t, p); res.Makespan != want {
		t.Fatalf("makespan = %d, brute force says %d", res.Makespan, want)
	}
}

func TestSolveSingleJob(t *testing.T) {
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

	s := New(nil, zerolog.Nop())
	res, err := solve.Run(context.Background(), p, s)
	if err != nil {
		t.Fatal(err)
	}
	if res.Makespan != 33 {
		t.Fatalf("makespan = %d, want 33", res.Makespan)
	}
	want := []int{0, 5, 15}
	for i, op := range p.Operations() {
		if got := res.Schedule.Start(op); got != want[i] {
			t.Fatalf("start(%s/%s) = %d, want %d", op.Job, op.Machine, got, want[i])
		}
	}
}

func TestSolveRepeatable(t *testing.T) {
	p := jobshop.Clinic()
	s := New(nil, zerolog.Nop())

	first, err := solve.Run(context.Background(), p, s)
	if err != nil {
		t.Fatal(err)
	}
	second, err := solve.Run(context.Background(), p, s)
	if err != nil {
		t.Fatal(err)
	}
	if first.Makespan != second.Makespan {
		t.Fatalf("makespans differ across runs: %d vs %d", first.Makespan, second.Makespan)
	}
}

func TestSolveRandomAgainstBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	s := New(nil, zerolog.Nop())

	for trial := 0; trial < 5; trial++ {
		p := jobshop.RandomProblem(3, 3, 2, 12, rng)

		res, err := solve.Run(context.Background(), p, s)
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}
		if _, viols := validate.Check(p, res.Schedule, res.Makespan); len(viols) > 0 {
			t.Fatalf("trial %d: %v", trial, viols)
		}
		if want := bruteForceMakespan(t, p); res.Makespan != want {
			t.Fatalf("trial %d: makespan = %d, brute force says %d", trial, res.Makespan, want)
		}
	}
}

func TestSolveExpiredContext(t *testing.T) {
	p := jobshop.Clinic()
	s := New(nil, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	_, err := s.Solve(ctx, p)
	var be *solve.BackendError
	if !errors.As(err, &be) {
		t.Fatalf("got %v, want *solve.BackendError", err)
	}
	if be.Reason != "timeout" {
		t.Fatalf("reason = %q, want %q", be.Reason, "timeout")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error %v does not wrap context.DeadlineExceeded", err)
	}
}
