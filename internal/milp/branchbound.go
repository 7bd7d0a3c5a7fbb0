package milp

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const (
	defaultTol      = 1e-10
	defaultMaxNodes = 1 << 20
	intTol          = 1e-6
)

// BranchBound is the built-in exact backend: depth-first branch and bound
// over the binary variables with an LP relaxation per node, solved by
// gonum's simplex method.
//
// Every model variable is non-negative (starts and the makespan carry
// explicit non-negativity rows, binaries live in [0,1]), so each relaxation
// is posed in standard form directly: A = [rows | I] with one slack per
// inequality, x >= 0, binary fixings appended as slack-free equality rows.
// Each row owns a distinct slack column, so A keeps full row rank.
type BranchBound struct {
	// Tol is the simplex tolerance; zero means the default.
	Tol float64
	// MaxNodes bounds the search tree; zero means the default.
	MaxNodes int
}

type bbState struct {
	model *Model
	tol   float64

	c []float64 // objective, dense
	g *mat.Dense
	h []float64

	fixed []int8 // -1 unfixed, 0/1 fixed

	bestObj  float64
	bestVals []float64
	found    bool
	nodes    int
	maxNodes int
}

func (bb *BranchBound) Solve(ctx context.Context, m *Model) (Solution, error) {
	n := m.NumVars()
	if n == 0 {
		return Solution{Status: StatusError}, errors.New("empty model")
	}

	st := &bbState{
		model:    m,
		tol:      bb.Tol,
		maxNodes: bb.MaxNodes,
		fixed:    make([]int8, n),
		bestObj:  math.Inf(1),
	}
	if st.tol == 0 {
		st.tol = defaultTol
	}
	if st.maxNodes == 0 {
		st.maxNodes = defaultMaxNodes
	}
	for i := range st.fixed {
		st.fixed[i] = -1
	}

	st.c = make([]float64, n)
	for _, t := range m.obj {
		st.c[t.Var] += t.Coef
	}

	// Inequality rows: the model's rows plus z <= 1 per binary. The lower
	// bound of every variable is carried by the standard form itself.
	nBin := 0
	for _, b := range m.binary {
		if b {
			nBin++
		}
	}
	rows := len(m.rows) + nBin
	g := mat.NewDense(rows, n, nil)
	h := make([]float64, rows)
	for i, r := range m.rows {
		for _, t := range r.terms {
			g.Set(i, int(t.Var), g.At(i, int(t.Var))+t.Coef)
		}
		h[i] = r.rhs
	}
	ri := len(m.rows)
	for v, b := range m.binary {
		if !b {
			continue
		}
		g.Set(ri, v, 1)
		h[ri] = 1
		ri++
	}
	st.g = g
	st.h = h

	status, err := st.branch(ctx)
	if err != nil {
		return Solution{Status: StatusError}, err
	}
	if status != StatusOptimal {
		return Solution{Status: status}, nil
	}
	return Solution{Status: StatusOptimal, Objective: st.bestObj, Values: st.bestVals}, nil
}

// branch explores the subtree under the current fixing. The returned status
// is only meaningful at the root: StatusOptimal when an incumbent exists,
// StatusInfeasible when the whole tree proved infeasible, StatusUnbounded
// when the root relaxation is unbounded.
func (st *bbState) branch(ctx context.Context) (Status, error) {
	if err := ctx.Err(); err != nil {
		return StatusError, err
	}
	st.nodes++
	if st.nodes > st.maxNodes {
		return StatusError, fmt.Errorf("node limit %d exceeded", st.maxNodes)
	}

	obj, vals, err := st.relax()
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return StatusInfeasible, nil
	case errors.Is(err, lp.ErrUnbounded):
		return StatusUnbounded, nil
	case err != nil:
		return StatusError, err
	}

	// Bound: the relaxation cannot beat the incumbent.
	if st.found && obj >= st.bestObj-intTol {
		return StatusOptimal, nil
	}

	branchVar := -1
	worst := intTol
	for v, b := range st.model.binary {
		if !b || st.fixed[v] >= 0 {
			continue
		}
		frac := math.Abs(vals[v] - math.Round(vals[v]))
		if frac > worst {
			worst = frac
			branchVar = v
		}
	}

	if branchVar < 0 {
		// Integral relaxation: candidate incumbent.
		if !st.found || obj < st.bestObj {
			st.found = true
			st.bestObj = obj
			st.bestVals = append([]float64(nil), vals...)
		}
		return StatusOptimal, nil
	}

	// Explore the nearer value first.
	first := int8(0)
	if vals[branchVar] >= 0.5 {
		first = 1
	}
	anyFeasible := false
	for _, val := range []int8{first, 1 - first} {
		st.fixed[branchVar] = val
		status, err := st.branch(ctx)
		st.fixed[branchVar] = -1
		if err != nil {
			return StatusError, err
		}
		if status == StatusUnbounded {
			return StatusUnbounded, nil
		}
		if status == StatusOptimal {
			anyFeasible = true
		}
	}
	if anyFeasible || st.found {
		return StatusOptimal, nil
	}
	return StatusInfeasible, nil
}

// relax solves the LP relaxation under the current binary fixings and
// returns the objective and the values of the original variables. The
// program is assembled in standard form: one slack column per inequality
// row, then one equality row per fixed binary.
func (st *bbState) relax() (float64, []float64, error) {
	n := st.model.NumVars()
	nIneq := len(st.h)

	nFixed := 0
	for _, f := range st.fixed {
		if f >= 0 {
			nFixed++
		}
	}

	cols := n + nIneq
	a := mat.NewDense(nIneq+nFixed, cols, nil)
	b := make([]float64, nIneq+nFixed)
	for i := 0; i < nIneq; i++ {
		for j := 0; j < n; j++ {
			if v := st.g.At(i, j); v != 0 {
				a.Set(i, j, v)
			}
		}
		a.Set(i, n+i, 1)
		b[i] = st.h[i]
	}
	ri := nIneq
	for v, f := range st.fixed {
		if f < 0 {
			continue
		}
		a.Set(ri, v, 1)
		b[ri] = float64(f)
		ri++
	}

	cStd := make([]float64, cols)
	copy(cStd, st.c)

	obj, xStd, err := lp.Simplex(cStd, a, b, st.tol, nil)
	if err != nil {
		return 0, nil, err
	}
	return obj, xStd[:n], nil
}
