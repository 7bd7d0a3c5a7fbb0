package constraint

import "fjsp/internal/jobshop"

// BigM returns the big-M constant for a problem: the sum of all durations,
// which no feasible completion time can exceed, so the inactive branch of a
// disjunctive pair is never binding.
func BigM(p *jobshop.Problem) int { return p.TotalDuration() }

// Generate enumerates the full constraint set for a problem. The order is
// deterministic: capacity pairs per machine in declaration order (pair
// discovery follows the machine's operation list), then precedence per job,
// then makespan bounds, then non-negativity for the continuous variables
// (each operation start, then the makespan variable). The binary ordering
// variables are constrained to {0,1} by declaration, not by a listed
// constraint, which keeps the counts aligned with the published instance.
func Generate(p *jobshop.Problem) []Constraint {
	m := BigM(p)
	var out []Constraint

	for _, mach := range p.Machines() {
		ops := p.MachineOperations(mach)
		for i := 0; i < len(ops); i++ {
			for j := i + 1; j < len(ops); j++ {
				out = append(out, Constraint{
					Kind:    Capacity,
					Machine: mach,
					First:   ops[i],
					Second:  ops[j],
					BigM:    m,
				})
			}
		}
	}

	for _, job := range p.Jobs() {
		for i := 0; i+1 < len(job.Ops); i++ {
			out = append(out, Constraint{
				Kind:   Precedence,
				Job:    job.ID,
				First:  job.Ops[i],
				Second: job.Ops[i+1],
			})
		}
	}

	for _, op := range p.Operations() {
		out = append(out, Constraint{Kind: MakespanBound, Op: op})
	}

	for _, op := range p.Operations() {
		out = append(out, Constraint{Kind: NonNegativity, Op: op})
	}
	out = append(out, Constraint{Kind: NonNegativity, MakespanVar: true})

	return out
}
