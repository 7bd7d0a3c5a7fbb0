package jobshop

import "fmt"

type JobID string

type MachineID string

// Operation is one job's visit to one machine for a fixed duration.
// ID is the global index of the operation (job order, then position order)
// and doubles as the index into Schedule start slices.
type Operation struct {
	ID       int
	Job      JobID
	Pos      int
	Machine  MachineID
	Duration int
}

// Job is an ordered sequence of operations. The order is fixed at problem
// construction and never changes.
type Job struct {
	ID  JobID
	Ops []Operation
}

// OpSpec and JobSpec describe the raw input a Problem is built from.
type OpSpec struct {
	Machine  MachineID
	Duration int
}

type JobSpec struct {
	ID  JobID
	Ops []OpSpec
}

// InvalidProblemError reports malformed input data at construction time.
type InvalidProblemError struct {
	Reason string
}

func (e *InvalidProblemError) Error() string {
	return "invalid problem: " + e.Reason
}

// Problem is the immutable description of one scheduling instance.
type Problem struct {
	jobs      []Job
	machines  []MachineID
	ops       []Operation
	byMachine map[MachineID][]Operation
	totalDur  int
}

// NewProblem builds a Problem from declared machines and per-job operation
// specs. It fails with *InvalidProblemError when an operation references an
// undeclared machine, a job has zero operations, a duration is not positive,
// or a job or machine identifier repeats.
func NewProblem(machines []MachineID, jobs []JobSpec) (*Problem, error) {
	declared := make(map[MachineID]bool, len(machines))
	for _, m := range machines {
		if m == "" {
			return nil, &InvalidProblemError{Reason: "empty machine identifier"}
		}
		if declared[m] {
			return nil, &InvalidProblemError{Reason: fmt.Sprintf("duplicate machine %q", m)}
		}
		declared[m] = true
	}

	p := &Problem{
		machines:  append([]MachineID(nil), machines...),
		byMachine: make(map[MachineID][]Operation, len(machines)),
	}

	seenJobs := make(map[JobID]bool, len(jobs))
	id := 0
	for _, js := range jobs {
		if js.ID == "" {
			return nil, &InvalidProblemError{Reason: "empty job identifier"}
		}
		if seenJobs[js.ID] {
			return nil, &InvalidProblemError{Reason: fmt.Sprintf("duplicate job %q", js.ID)}
		}
		seenJobs[js.ID] = true
		if len(js.Ops) == 0 {
			return nil, &InvalidProblemError{Reason: fmt.Sprintf("job %q has no operations", js.ID)}
		}

		job := Job{ID: js.ID, Ops: make([]Operation, 0, len(js.Ops))}
		for pos, spec := range js.Ops {
			if !declared[spec.Machine] {
				return nil, &InvalidProblemError{
					Reason: fmt.Sprintf("job %q references undeclared machine %q", js.ID, spec.Machine),
				}
			}
			if spec.Duration <= 0 {
				return nil, &InvalidProblemError{
					Reason: fmt.Sprintf("job %q operation %d has non-positive duration %d", js.ID, pos, spec.Duration),
				}
			}
			op := Operation{
				ID:       id,
				Job:      js.ID,
				Pos:      pos,
				Machine:  spec.Machine,
				Duration: spec.Duration,
			}
			id++
			job.Ops = append(job.Ops, op)
			p.ops = append(p.ops, op)
			p.byMachine[spec.Machine] = append(p.byMachine[spec.Machine], op)
			p.totalDur += spec.Duration
		}
		p.jobs = append(p.jobs, job)
	}

	return p, nil
}

// Jobs returns the jobs in declaration order. The returned slice is shared;
// callers must not modify it.
func (p *Problem) Jobs() []Job { return p.jobs }

// Machines returns the declared machines in declaration order.
func (p *Problem) Machines() []MachineID { return p.machines }

// Operations returns every operation in global order: job declaration order,
// then position within the job.
func (p *Problem) Operations() []Operation { return p.ops }

// MachineOperations returns the operations assigned to a machine, in global
// operation order. Derived once at construction.
func (p *Problem) MachineOperations(m MachineID) []Operation { return p.byMachine[m] }

// NumOperations reports the total operation count.
func (p *Problem) NumOperations() int { return len(p.ops) }

// TotalDuration is the sum of all operation durations. It is a safe upper
// bound on any schedule's makespan and is used as the big-M constant.
func (p *Problem) TotalDuration() int { return p.totalDur }
