package milp

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"fjsp/internal/constraint"
	"fjsp/internal/jobshop"
	"fjsp/internal/solve"
)

// Solver is the exact strategy. It feeds the generated constraint set to an
// optimization backend minimizing the makespan variable, then interprets
// the returned ordering variables into a concrete timetable.
type Solver struct {
	backend Backend
	logger  zerolog.Logger
}

// New returns an exact solver using the given backend, or the built-in
// branch-and-bound backend when b is nil.
func New(b Backend, logger zerolog.Logger) *Solver {
	if b == nil {
		b = &BranchBound{}
	}
	return &Solver{
		backend: b,
		logger:  logger.With().Str("component", "milp_solver").Logger(),
	}
}

type orderedPair struct {
	first, second jobshop.Operation
	z             Var
}

func (s *Solver) Solve(ctx context.Context, p *jobshop.Problem) (solve.Result, error) {
	began := time.Now()

	cs := constraint.Generate(p)
	m := NewModel()

	startVars := make([]Var, p.NumOperations())
	for i := range startVars {
		startVars[i] = m.Continuous()
	}
	cmax := m.Continuous()

	var pairs []orderedPair
	for _, c := range cs {
		switch c.Kind {
		case constraint.Capacity:
			// z = 1 selects First before Second, z = 0 the reverse:
			//   start(Second) >= end(First) - M*(1-z)
			//   start(First)  >= end(Second) - M*z
			z := m.Binary()
			bigM := float64(c.BigM)
			m.AddLessEq(bigM-float64(c.First.Duration),
				Term{Var: startVars[c.First.ID], Coef: 1},
				Term{Var: startVars[c.Second.ID], Coef: -1},
				Term{Var: z, Coef: bigM})
			m.AddLessEq(-float64(c.Second.Duration),
				Term{Var: startVars[c.Second.ID], Coef: 1},
				Term{Var: startVars[c.First.ID], Coef: -1},
				Term{Var: z, Coef: -bigM})
			pairs = append(pairs, orderedPair{first: c.First, second: c.Second, z: z})
		case constraint.Precedence:
			m.AddLessEq(-float64(c.First.Duration),
				Term{Var: startVars[c.First.ID], Coef: 1},
				Term{Var: startVars[c.Second.ID], Coef: -1})
		case constraint.MakespanBound:
			m.AddLessEq(-float64(c.Op.Duration),
				Term{Var: startVars[c.Op.ID], Coef: 1},
				Term{Var: cmax, Coef: -1})
		case constraint.NonNegativity:
			if c.MakespanVar {
				m.AddLessEq(0, Term{Var: cmax, Coef: -1})
			} else {
				m.AddLessEq(0, Term{Var: startVars[c.Op.ID], Coef: -1})
			}
		}
	}
	m.Minimize(Term{Var: cmax, Coef: 1})

	s.logger.Debug().
		Int("variables", m.NumVars()).
		Int("constraints", len(cs)).
		Int("ordering_pairs", len(pairs)).
		Msg("model built")

	sol, err := s.backend.Solve(ctx, m)
	if err != nil {
		reason := "failure"
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			reason = "timeout"
		case errors.Is(err, context.Canceled):
			reason = "canceled"
		}
		return solve.Result{}, &solve.BackendError{Reason: reason, Err: err}
	}

	switch sol.Status {
	case StatusOptimal:
	case StatusInfeasible:
		return solve.Result{}, solve.ErrInfeasible
	default:
		return solve.Result{}, &solve.BackendError{Reason: "reported status " + sol.Status.String()}
	}

	starts, ok := earliestStarts(p, pairs, sol.Values)
	if !ok {
		return solve.Result{}, &solve.BackendError{Reason: "cyclic ordering in solution"}
	}

	sched := jobshop.NewSchedule(p, starts)
	ms := sched.Makespan()
	s.logger.Debug().
		Int("makespan", ms).
		Float64("objective", sol.Objective).
		Dur("elapsed", time.Since(began)).
		Msg("solved")

	return solve.Result{
		Schedule: sched,
		Makespan: ms,
		Duration: time.Since(began),
		Meta: map[string]any{
			"status":    sol.Status.String(),
			"objective": sol.Objective,
		},
	}, nil
}

// earliestStarts turns the resolved pair orientations into start times by a
// longest-path pass over the precedence-plus-ordering graph, which yields
// the tight earliest timetable for that ordering. Reports false when the
// orientations form a cycle.
func earliestStarts(p *jobshop.Problem, pairs []orderedPair, values []float64) ([]int, bool) {
	n := p.NumOperations()

	type edge struct{ to, weight int }
	succ := make([][]edge, n)
	indeg := make([]int, n)
	addEdge := func(from, to, w int) {
		succ[from] = append(succ[from], edge{to: to, weight: w})
		indeg[to]++
	}

	for _, job := range p.Jobs() {
		for i := 0; i+1 < len(job.Ops); i++ {
			addEdge(job.Ops[i].ID, job.Ops[i+1].ID, job.Ops[i].Duration)
		}
	}
	for _, pr := range pairs {
		if values[pr.z] >= 0.5 {
			addEdge(pr.first.ID, pr.second.ID, pr.first.Duration)
		} else {
			addEdge(pr.second.ID, pr.first.ID, pr.second.Duration)
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
	return starts, processed == n
}
