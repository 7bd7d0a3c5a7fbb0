package jobshop

// Clinic returns the five-patient, five-counter hospital instance from the
// survey data the project was built around. Counters: C1 registration,
// C2 consultation, C3 diagnostics, C4 specialist, C5 pharmacy.
func Clinic() *Problem {
	machines := []MachineID{"C1", "C2", "C3", "C4", "C5"}
	jobs := []JobSpec{
		{ID: "P1", Ops: []OpSpec{{Machine: "C1", Duration: 11}, {Machine: "C2", Duration: 5}}},
		{ID: "P2", Ops: []OpSpec{{Machine: "C2", Duration: 5}, {Machine: "C3", Duration: 10}, {Machine: "C4", Duration: 18}}},
		{ID: "P3", Ops: []OpSpec{{Machine: "C2", Duration: 5}, {Machine: "C3", Duration: 10}}},
		{ID: "P4", Ops: []OpSpec{{Machine: "C2", Duration: 5}, {Machine: "C3", Duration: 10}, {Machine: "C4", Duration: 18}}},
		{ID: "P5", Ops: []OpSpec{{Machine: "C1", Duration: 11}, {Machine: "C5", Duration: 15}}},
	}
	p, err := NewProblem(machines, jobs)
	if err != nil {
		panic(err)
	}
	return p
}
