package milp

import (
	"context"
	"math"
	"testing"
)

func TestBranchBoundPlainLP(t *testing.T) {
	// min x subject to x >= 3. No binaries, a single simplex call.
	m := NewModel()
	x := m.Continuous()
	m.AddLessEq(-3, Term{Var: x, Coef: -1})
	m.Minimize(Term{Var: x, Coef: 1})

	sol, err := (&BranchBound{}).Solve(context.Background(), m)
	if err != nil {
		t.Fatal(err)
	}
	if sol.Status != StatusOptimal {
		t.Fatalf("status = %v, want optimal", sol.Status)
	}
	if math.Abs(sol.Objective-3) > 1e-6 {
		t.Fatalf("objective = %g, want 3", sol.Objective)
	}
	if math.Abs(sol.Values[x]-3) > 1e-6 {
		t.Fatalf("x = %g, want 3", sol.Values[x])
	}
}

func TestBranchBoundForcesIntegrality(t *testing.T) {
	// min y subject to y >= 1.5*z1, y >= 1.5*(1-z1). The relaxation sets
	// z1 = 0.5 with y = 0.75; integrality forces y = 1.5.
	m := NewModel()
	y := m.Continuous()
	z := m.Binary()
	m.AddLessEq(0, Term{Var: z, Coef: 1.5}, Term{Var: y, Coef: -1})
	m.AddLessEq(-1.5, Term{Var: z, Coef: -1.5}, Term{Var: y, Coef: -1})
	m.AddLessEq(0, Term{Var: y, Coef: -1})
	m.Minimize(Term{Var: y, Coef: 1})

	sol, err := (&BranchBound{}).Solve(context.Background(), m)
	if err != nil {
		t.Fatal(err)
	}
	if sol.Status != StatusOptimal {
		t.Fatalf("status = %v, want optimal", sol.Status)
	}
	if math.Abs(sol.Objective-1.5) > 1e-6 {
		t.Fatalf("objective = %g, want 1.5", sol.Objective)
	}
	zv := math.Round(sol.Values[z])
	if math.Abs(sol.Values[z]-zv) > 1e-6 || (zv != 0 && zv != 1) {
		t.Fatalf("z = %g, not integral", sol.Values[z])
	}
}

func TestBranchBoundDisjunctivePair(t *testing.T) {
	// Two operations of lengths 3 and 4 compete for one machine; a binary
	// picks their order, big-M relaxes the inactive branch. Either order
	// finishes at 7. Exercises a relaxation with machine contention, which
	// the simplex phase must handle without a degenerate basis.
	m := NewModel()
	s1 := m.Continuous()
	s2 := m.Continuous()
	cmax := m.Continuous()
	z := m.Binary()
	const bigM = 7.0

	// s2 >= s1 + 3 - M(1-z)  and  s1 >= s2 + 4 - Mz.
	m.AddLessEq(bigM-3,
		Term{Var: s1, Coef: 1}, Term{Var: s2, Coef: -1}, Term{Var: z, Coef: bigM})
	m.AddLessEq(-4,
		Term{Var: s2, Coef: 1}, Term{Var: s1, Coef: -1}, Term{Var: z, Coef: -bigM})
	m.AddLessEq(-3, Term{Var: s1, Coef: 1}, Term{Var: cmax, Coef: -1})
	m.AddLessEq(-4, Term{Var: s2, Coef: 1}, Term{Var: cmax, Coef: -1})
	m.Minimize(Term{Var: cmax, Coef: 1})

	sol, err := (&BranchBound{}).Solve(context.Background(), m)
	if err != nil {
		t.Fatal(err)
	}
	if sol.Status != StatusOptimal {
		t.Fatalf("status = %v, want optimal", sol.Status)
	}
	if math.Abs(sol.Objective-7) > 1e-6 {
		t.Fatalf("objective = %g, want 7", sol.Objective)
	}
	zv := sol.Values[z]
	if math.Abs(zv-math.Round(zv)) > 1e-6 {
		t.Fatalf("z = %g, not integral", zv)
	}
}

func TestBranchBoundInfeasible(t *testing.T) {
	// x <= 1 and x >= 2 cannot both hold.
	m := NewModel()
	x := m.Continuous()
	m.AddLessEq(1, Term{Var: x, Coef: 1})
	m.AddLessEq(-2, Term{Var: x, Coef: -1})
	m.Minimize(Term{Var: x, Coef: 1})

	sol, err := (&BranchBound{}).Solve(context.Background(), m)
	if err != nil {
		t.Fatal(err)
	}
	if sol.Status != StatusInfeasible {
		t.Fatalf("status = %v, want infeasible", sol.Status)
	}
}

func TestBranchBoundNodeLimit(t *testing.T) {
	m := NewModel()
	y := m.Continuous()
	z := m.Binary()
	m.AddLessEq(0, Term{Var: z, Coef: 1.5}, Term{Var: y, Coef: -1})
	m.AddLessEq(-1.5, Term{Var: z, Coef: -1.5}, Term{Var: y, Coef: -1})
	m.AddLessEq(0, Term{Var: y, Coef: -1})
	m.Minimize(Term{Var: y, Coef: 1})

	_, err := (&BranchBound{MaxNodes: 1}).Solve(context.Background(), m)
	if err == nil {
		t.Fatal("expected node limit error")
	}
}
