package jobshop

import "sort"

// Schedule assigns a start time to every operation of one Problem. A
// Schedule is built once per solve attempt and never mutated afterwards.
type Schedule struct {
	problem *Problem
	starts  []int
}

// NewSchedule wraps a start-time vector indexed by Operation.ID. The vector
// is copied; it must cover every operation of the problem.
func NewSchedule(p *Problem, starts []int) *Schedule {
	s := &Schedule{problem: p, starts: make([]int, len(starts))}
	copy(s.starts, starts)
	return s
}

func (s *Schedule) Problem() *Problem { return s.problem }

func (s *Schedule) Start(op Operation) int { return s.starts[op.ID] }

func (s *Schedule) End(op Operation) int { return s.starts[op.ID] + op.Duration }

// Makespan is the completion time of the last-finishing operation.
func (s *Schedule) Makespan() int {
	max := 0
	for _, op := range s.problem.ops {
		if end := s.End(op); end > max {
			max = end
		}
	}
	return max
}

// Entry is one scheduled operation with its resolved time window.
type Entry struct {
	Op    Operation
	Start int
	End   int
}

// MachineTimeline lists one machine's operations sorted by start time.
type MachineTimeline struct {
	Machine MachineID
	Entries []Entry
}

// JobTimeline lists one job's operations sorted by start time.
type JobTimeline struct {
	Job     JobID
	Entries []Entry
}

// ByMachine returns the schedule grouped per machine, machines in
// declaration order, entries sorted by start time.
func (s *Schedule) ByMachine() []MachineTimeline {
	out := make([]MachineTimeline, 0, len(s.problem.machines))
	for _, m := range s.problem.machines {
		tl := MachineTimeline{Machine: m}
		for _, op := range s.problem.byMachine[m] {
			tl.Entries = append(tl.Entries, Entry{Op: op, Start: s.Start(op), End: s.End(op)})
		}
		sortEntries(tl.Entries)
		out = append(out, tl)
	}
	return out
}

// ByJob returns the schedule grouped per job, jobs in declaration order,
// entries sorted by start time.
func (s *Schedule) ByJob() []JobTimeline {
	out := make([]JobTimeline, 0, len(s.problem.jobs))
	for _, j := range s.problem.jobs {
		tl := JobTimeline{Job: j.ID}
		for _, op := range j.Ops {
			tl.Entries = append(tl.Entries, Entry{Op: op, Start: s.Start(op), End: s.End(op)})
		}
		sortEntries(tl.Entries)
		out = append(out, tl)
	}
	return out
}

func sortEntries(es []Entry) {
	sort.Slice(es, func(i, j int) bool {
		if es[i].Start != es[j].Start {
			return es[i].Start < es[j].Start
		}
		return es[i].Op.ID < es[j].Op.ID
	})
}
