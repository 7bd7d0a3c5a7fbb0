// Package milp implements the exact scheduling strategy: it translates the
// generated constraint set into a mixed-integer linear model and hands the
// model to an optimization backend. Backend vocabulary (variables, rows,
// statuses) appears only in this package.
package milp

import (
	"context"
	"fmt"
)

// Status is the outcome a backend reports for a model.
type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusUnbounded
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Var references one variable of a Model.
type Var int

// Term is one linear coefficient.
type Term struct {
	Var  Var
	Coef float64
}

// Model is a minimal mixed-integer linear model: continuous and binary
// variables, less-or-equal rows and a linear objective to minimize.
type Model struct {
	binary []bool
	rows   []row
	obj    []Term
}

type row struct {
	terms []Term
	rhs   float64
}

func NewModel() *Model { return &Model{} }

// Continuous declares a non-negative continuous variable. Further bounds
// are expressed as rows by the caller.
func (m *Model) Continuous() Var {
	m.binary = append(m.binary, false)
	return Var(len(m.binary) - 1)
}

// Binary declares a variable restricted to {0, 1}.
func (m *Model) Binary() Var {
	m.binary = append(m.binary, true)
	return Var(len(m.binary) - 1)
}

func (m *Model) NumVars() int { return len(m.binary) }

func (m *Model) IsBinary(v Var) bool { return m.binary[v] }

// AddLessEq appends the row sum(terms) <= rhs.
func (m *Model) AddLessEq(rhs float64, terms ...Term) {
	m.rows = append(m.rows, row{terms: append([]Term(nil), terms...), rhs: rhs})
}

// Minimize sets the objective.
func (m *Model) Minimize(terms ...Term) {
	m.obj = append([]Term(nil), terms...)
}

// Solution is a backend's variable assignment for a model.
type Solution struct {
	Status    Status
	Objective float64
	Values    []float64
}

// Backend solves a Model. It is the only seam between the scheduling core
// and any concrete optimization library.
type Backend interface {
	Solve(ctx context.Context, m *Model) (Solution, error)
}
