// Package validate checks a finished schedule against the structural
// invariants of its problem, independent of how the schedule was produced.
package validate

import (
	"fmt"
	"sort"

	"fjsp/internal/jobshop"
)

type Kind int

const (
	// PrecedenceOrder: a job's operation starts before its predecessor ends.
	PrecedenceOrder Kind = iota
	// MachineOverlap: two operations on one machine overlap in time.
	MachineOverlap
	// NegativeStart: an operation starts before time zero.
	NegativeStart
	// MakespanMismatch: the claimed makespan is not the exact completion
	// time of the last-finishing operation.
	MakespanMismatch
)

func (k Kind) String() string {
	switch k {
	case PrecedenceOrder:
		return "precedence"
	case MachineOverlap:
		return "machine-overlap"
	case NegativeStart:
		return "negative-start"
	case MakespanMismatch:
		return "makespan-mismatch"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

type Violation struct {
	Kind    Kind
	Message string
}

func (v Violation) String() string {
	return v.Kind.String() + ": " + v.Message
}

// Check verifies every invariant and collects every violation found, in
// invariant order, without short-circuiting. The returned makespan is only
// meaningful when the violation list is empty; it then equals both the
// claimed value and the actual maximum completion time.
func Check(p *jobshop.Problem, s *jobshop.Schedule, claimed int) (int, []Violation) {
	var out []Violation

	for _, job := range p.Jobs() {
		for i := 0; i+1 < len(job.Ops); i++ {
			a, b := job.Ops[i], job.Ops[i+1]
			if s.Start(b) < s.End(a) {
				out = append(out, Violation{
					Kind: PrecedenceOrder,
					Message: fmt.Sprintf("job %s: %s starts at %d before %s ends at %d",
						job.ID, b.Machine, s.Start(b), a.Machine, s.End(a)),
				})
			}
		}
	}

	for _, m := range p.Machines() {
		ops := append([]jobshop.Operation(nil), p.MachineOperations(m)...)
		sort.Slice(ops, func(i, j int) bool {
			if s.Start(ops[i]) != s.Start(ops[j]) {
				return s.Start(ops[i]) < s.Start(ops[j])
			}
			return ops[i].ID < ops[j].ID
		})
		// Full pairwise scan: three or more stacked intervals report every
		// offending pair, not just neighbours in start order.
		for i := 0; i < len(ops); i++ {
			for j := i + 1; j < len(ops); j++ {
				if s.Start(ops[j]) < s.End(ops[i]) {
					out = append(out, Violation{
						Kind: MachineOverlap,
						Message: fmt.Sprintf("machine %s: %s [%d,%d) overlaps %s [%d,%d)",
							m, ops[i].Job, s.Start(ops[i]), s.End(ops[i]),
							ops[j].Job, s.Start(ops[j]), s.End(ops[j])),
					})
				}
			}
		}
	}

	for _, op := range p.Operations() {
		if s.Start(op) < 0 {
			out = append(out, Violation{
				Kind:    NegativeStart,
				Message: fmt.Sprintf("%s on %s starts at %d", op.Job, op.Machine, s.Start(op)),
			})
		}
	}

	actual := s.Makespan()
	for _, op := range p.Operations() {
		if end := s.End(op); claimed < end {
			out = append(out, Violation{
				Kind: MakespanMismatch,
				Message: fmt.Sprintf("claimed makespan %d is below completion %d of %s on %s",
					claimed, end, op.Job, op.Machine),
			})
		}
	}
	if claimed != actual {
		out = append(out, Violation{
			Kind:    MakespanMismatch,
			Message: fmt.Sprintf("claimed makespan %d, last completion is %d", claimed, actual),
		})
	}

	return actual, out
}
