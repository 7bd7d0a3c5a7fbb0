// Package solve defines the strategy interface every solver implements and
// the engine wrapper that guards the solver contract: any returned schedule
// must pass validation before a caller sees it.
package solve

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fjsp/internal/jobshop"
	"fjsp/internal/validate"
)

// Strategy produces one schedule for one problem. Implementations keep all
// working state local to the call, so concurrent solves over one immutable
// problem need no locking.
type Strategy interface {
	Solve(ctx context.Context, p *jobshop.Problem) (Result, error)
}

// Result carries the schedule of one solve attempt together with search
// statistics.
type Result struct {
	Schedule    *jobshop.Schedule
	Makespan    int
	Evaluations int
	Iterations  int
	Duration    time.Duration
	Meta        map[string]any
}

// ErrInfeasible is returned by the exact strategy when the backend proves
// no feasible assignment exists. It should not arise for well-formed
// acyclic-precedence instances, but is surfaced rather than swallowed.
var ErrInfeasible = errors.New("no feasible schedule exists")

// BackendError wraps an adapter-level failure of the optimization backend:
// timeout, solver crash, malformed solution.
type BackendError struct {
	Reason string
	Err    error
}

func (e *BackendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("backend %s: %v", e.Reason, e.Err)
	}
	return "backend " + e.Reason
}

func (e *BackendError) Unwrap() error { return e.Err }

// InconsistencyError means a strategy produced a schedule that fails
// validation. It indicates a translation bug, not a data problem, and is
// always fatal to the solve attempt.
type InconsistencyError struct {
	Violations []validate.Violation
}

func (e *InconsistencyError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.String()
	}
	return fmt.Sprintf("produced schedule violates %d invariant(s): %s",
		len(e.Violations), strings.Join(msgs, "; "))
}

// Run executes a strategy and validates its result before returning it.
func Run(ctx context.Context, p *jobshop.Problem, st Strategy) (Result, error) {
	res, err := st.Solve(ctx, p)
	if err != nil {
		return Result{}, err
	}
	if res.Schedule == nil {
		return Result{}, &InconsistencyError{Violations: []validate.Violation{
			{Kind: validate.MakespanMismatch, Message: "strategy returned no schedule"},
		}}
	}
	if _, viols := validate.Check(p, res.Schedule, res.Makespan); len(viols) > 0 {
		return Result{}, &InconsistencyError{Violations: viols}
	}
	return res, nil
}
