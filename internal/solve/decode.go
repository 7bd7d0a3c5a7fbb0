package solve

import "fjsp/internal/jobshop"

// DecodeMachineOrders derives a concrete timetable from per-machine
// operation orderings. perms[i] lists global operation IDs for machine i in
// the problem's machine order; every machine's slice must be a permutation
// of exactly its assigned operations. Each machine is processed in its
// permutation's order and every operation starts at the later of the
// machine's last end time and the job-precedence-ready time, so the result
// always satisfies precedence, exclusivity and non-negativity.
//
// An ordering that conflicts with job precedence across machines is
// repaired in place: the earliest schedulable operation is pulled to the
// head of its machine's order. starts must have length p.NumOperations();
// the return value is the decoded makespan.
func DecodeMachineOrders(p *jobshop.Problem, perms [][]int, starts []int) int {
	ops := p.Operations()
	jobs := p.Jobs()

	jobIdx := make(map[jobshop.JobID]int, len(jobs))
	for i, j := range jobs {
		jobIdx[j.ID] = i
	}

	jobNext := make([]int, len(jobs))
	jobReady := make([]int, len(jobs))
	machAvail := make([]int, len(perms))
	ptr := make([]int, len(perms))

	done := 0
	makespan := 0
	for done < len(ops) {
		progress := false
		for mi := range perms {
			for ptr[mi] < len(perms[mi]) {
				op := ops[perms[mi][ptr[mi]]]
				ji := jobIdx[op.Job]
				if op.Pos != jobNext[ji] {
					break
				}
				st := machAvail[mi]
				if jobReady[ji] > st {
					st = jobReady[ji]
				}
				starts[op.ID] = st
				end := st + op.Duration
				machAvail[mi] = end
				jobReady[ji] = end
				jobNext[ji]++
				ptr[mi]++
				done++
				progress = true
				if end > makespan {
					makespan = end
				}
			}
		}
		if !progress {
			repair(p, perms, ptr, jobIdx, jobNext)
		}
	}
	return makespan
}

// repair resolves a cross-machine ordering deadlock by swapping the first
// operation that is ready in job order to the head of its machine's
// permutation. While unscheduled operations remain, some job's next
// operation always exists in exactly one permutation, so a swap is found.
func repair(p *jobshop.Problem, perms [][]int, ptr []int, jobIdx map[jobshop.JobID]int, jobNext []int) {
	ops := p.Operations()
	for mi := range perms {
		for k := ptr[mi] + 1; k < len(perms[mi]); k++ {
			op := ops[perms[mi][k]]
			if op.Pos == jobNext[jobIdx[op.Job]] {
				perms[mi][ptr[mi]], perms[mi][k] = perms[mi][k], perms[mi][ptr[mi]]
				return
			}
		}
	}
	panic("no schedulable operation found in any machine order")
}
