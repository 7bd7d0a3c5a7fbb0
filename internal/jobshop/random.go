package jobshop

import (
	"fmt"
	"math/rand"
)

// RandomProblem generates a synthetic instance in the shape of the clinic
// survey data: each job visits two or three distinct machines in ascending
// machine order with durations drawn uniformly from [minDur, maxDur].
// Intended for benchmarks and tests; panics on invalid bounds.
func RandomProblem(jobs, machines, minDur, maxDur int, rng *rand.Rand) *Problem {
	if rng == nil {
		panic("генератор случайных чисел не инициализирован (nil)")
	}
	if jobs <= 0 || machines <= 0 {
		panic("jobs and machines must be > 0")
	}
	if minDur <= 0 || maxDur < minDur {
		panic("invalid duration bounds")
	}

	ms := make([]MachineID, machines)
	for i := range ms {
		ms[i] = MachineID(fmt.Sprintf("C%d", i+1))
	}

	span := maxDur - minDur + 1
	specs := make([]JobSpec, 0, jobs)
	for j := 0; j < jobs; j++ {
		nOps := 2
		if machines > 2 && rng.Intn(2) == 1 {
			nOps = 3
		}
		if nOps > machines {
			nOps = machines
		}

		picked := rng.Perm(machines)[:nOps]
		sortInts(picked)

		js := JobSpec{ID: JobID(fmt.Sprintf("P%d", j+1))}
		for _, mi := range picked {
			d := minDur
			if span > 1 {
				d += rng.Intn(span)
			}
			js.Ops = append(js.Ops, OpSpec{Machine: ms[mi], Duration: d})
		}
		specs = append(specs, js)
	}

	p, err := NewProblem(ms, specs)
	if err != nil {
		panic(err)
	}
	return p
}

func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		for k := i; k > 0 && xs[k] < xs[k-1]; k-- {
			xs[k], xs[k-1] = xs[k-1], xs[k]
		}
	}
}
