package solve

import (
	"math/rand"
	"testing"

	"fjsp/internal/jobshop"
	"fjsp/internal/validate"
)

func machineIndex(p *jobshop.Problem) map[jobshop.MachineID]int {
	idx := make(map[jobshop.MachineID]int, len(p.Machines()))
	for i, m := range p.Machines() {
		idx[m] = i
	}
	return idx
}

// declarationOrders builds per-machine permutations in global operation
// order, the natural decode order.
func declarationOrders(p *jobshop.Problem) [][]int {
	idx := machineIndex(p)
	perms := make([][]int, len(p.Machines()))
	for _, op := range p.Operations() {
		mi := idx[op.Machine]
		perms[mi] = append(perms[mi], op.ID)
	}
	return perms
}

func TestDecodeSingleJob(t *testing.T) {
	p, err := jobshop.NewProblem(
		[]jobshop.MachineID{"C2", "C3", "C4"},
		[]jobshop.JobSpec{{ID: "P2", Ops: []jobshop.OpSpec{
			{Machine: "C2", Duration: 5},
			{Machine: "C3", Duration: 10},
			{Machine: "C4", Duration: 18},
		}}},
	)
	if err != nil {
		t.Fatal(err)
	}

	starts := make([]int, p.NumOperations())
	makespan := DecodeMachineOrders(p, declarationOrders(p), starts)

	if makespan != 33 {
		t.Fatalf("makespan = %d, want 33", makespan)
	}
	want := []int{0, 5, 15}
	for i, w := range want {
		if starts[i] != w {
			t.Fatalf("starts = %v, want %v", starts, want)
		}
	}
}

func TestDecodeRepairsDeadlock(t *testing.T) {
	// J1 = M1 then M2, J2 = M2 then M1. Ordering J2's op first on M1 and
	// J1's op first on M2 is circular; the decoder must repair it.
	p, err := jobshop.NewProblem(
		[]jobshop.MachineID{"M1", "M2"},
		[]jobshop.JobSpec{
			{ID: "J1", Ops: []jobshop.OpSpec{{Machine: "M1", Duration: 3}, {Machine: "M2", Duration: 4}}},
			{ID: "J2", Ops: []jobshop.OpSpec{{Machine: "M2", Duration: 2}, {Machine: "M1", Duration: 6}}},
		},
	)
	if err != nil {
		t.Fatal(err)
	}

	// Global IDs: J1/M1=0, J1/M2=1, J2/M2=2, J2/M1=3.
	perms := [][]int{{3, 0}, {1, 2}}
	starts := make([]int, p.NumOperations())
	makespan := DecodeMachineOrders(p, perms, starts)

	s := jobshop.NewSchedule(p, starts)
	if _, viols := validate.Check(p, s, makespan); len(viols) > 0 {
		t.Fatalf("repaired decode violates invariants: %v", viols)
	}
}

func TestDecodeAlwaysFeasible(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 50; trial++ {
		p := jobshop.RandomProblem(5, 4, 1, 20, rng)
		perms := declarationOrders(p)
		for _, perm := range perms {
			rng.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
		}

		starts := make([]int, p.NumOperations())
		makespan := DecodeMachineOrders(p, perms, starts)

		s := jobshop.NewSchedule(p, starts)
		if _, viols := validate.Check(p, s, makespan); len(viols) > 0 {
			t.Fatalf("trial %d: decoded schedule violates invariants: %v", trial, viols)
		}
		if makespan > p.TotalDuration() {
			t.Fatalf("trial %d: makespan %d exceeds total duration %d", trial, makespan, p.TotalDuration())
		}
	}
}

func TestDecodeClinicDeclarationOrder(t *testing.T) {
	p := jobshop.Clinic()
	starts := make([]int, p.NumOperations())
	makespan := DecodeMachineOrders(p, declarationOrders(p), starts)

	s := jobshop.NewSchedule(p, starts)
	if _, viols := validate.Check(p, s, makespan); len(viols) > 0 {
		t.Fatalf("decoded schedule violates invariants: %v", viols)
	}
	if makespan < 51 {
		t.Fatalf("makespan %d below the instance optimum 51", makespan)
	}
}
