// Package constraint expands a jobshop.Problem into its full structured
// constraint set: disjunctive machine-capacity pairs (big-M form),
// per-job precedence, makespan bounds and non-negativity. The output is
// solver-agnostic data; rendering and backend translation both consume it.
package constraint

import (
	"fmt"

	"fjsp/internal/jobshop"
)

type Kind int

const (
	Capacity Kind = iota
	Precedence
	MakespanBound
	NonNegativity
)

func (k Kind) String() string {
	switch k {
	case Capacity:
		return "capacity"
	case Precedence:
		return "precedence"
	case MakespanBound:
		return "makespan-bound"
	case NonNegativity:
		return "non-negativity"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Constraint is one tagged relational constraint. Which fields are
// meaningful depends on Kind:
//
//	Capacity      — Machine, First, Second (the unordered pair), BigM.
//	                Relational form, with z the binary ordering variable:
//	                start(Second) >= end(First) - M*(1-z)
//	                start(First)  >= end(Second) - M*z
//	Precedence    — Job, First (earlier), Second (later):
//	                start(Second) >= start(First) + First.Duration
//	MakespanBound — Op: makespan >= start(Op) + Op.Duration
//	NonNegativity — Op: start(Op) >= 0, or makespan >= 0 when MakespanVar.
type Constraint struct {
	Kind        Kind
	Machine     jobshop.MachineID
	Job         jobshop.JobID
	First       jobshop.Operation
	Second      jobshop.Operation
	Op          jobshop.Operation
	MakespanVar bool
	BigM        int
}

func opLabel(op jobshop.Operation) string {
	return fmt.Sprintf("%s/%s", op.Job, op.Machine)
}

// String renders the constraint in the relational notation used by the
// project's constraint listings.
func (c Constraint) String() string {
	switch c.Kind {
	case Capacity:
		return fmt.Sprintf("start(%s) >= start(%s) + %d OR start(%s) >= start(%s) + %d  [M=%d]",
			opLabel(c.Second), opLabel(c.First), c.First.Duration,
			opLabel(c.First), opLabel(c.Second), c.Second.Duration,
			c.BigM)
	case Precedence:
		return fmt.Sprintf("start(%s) >= start(%s) + %d",
			opLabel(c.Second), opLabel(c.First), c.First.Duration)
	case MakespanBound:
		return fmt.Sprintf("Cmax >= start(%s) + %d", opLabel(c.Op), c.Op.Duration)
	case NonNegativity:
		if c.MakespanVar {
			return "Cmax >= 0"
		}
		return fmt.Sprintf("start(%s) >= 0", opLabel(c.Op))
	default:
		return c.Kind.String()
	}
}

// Summary holds per-category constraint counts.
type Summary struct {
	Capacity      int
	Precedence    int
	MakespanBound int
	NonNegativity int
	Total         int
}

func Summarize(cs []Constraint) Summary {
	var s Summary
	for _, c := range cs {
		switch c.Kind {
		case Capacity:
			s.Capacity++
		case Precedence:
			s.Precedence++
		case MakespanBound:
			s.MakespanBound++
		case NonNegativity:
			s.NonNegativity++
		}
	}
	s.Total = len(cs)
	return s
}
