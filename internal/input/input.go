// Package input reads and writes problem instances as YAML files. The
// scheduling core itself consumes only fully constructed problems.
package input

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"fjsp/internal/jobshop"
)

type fileInstance struct {
	Machines []string  `yaml:"machines"`
	Jobs     []fileJob `yaml:"jobs"`
}

type fileJob struct {
	ID         string   `yaml:"id"`
	Operations []fileOp `yaml:"operations"`
}

type fileOp struct {
	Machine  string `yaml:"machine"`
	Duration int    `yaml:"duration"`
}

// Read decodes a YAML instance and constructs the problem; construction
// errors (undeclared machines, bad durations) surface unchanged.
func Read(r io.Reader) (*jobshop.Problem, error) {
	var fi fileInstance
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fi); err != nil {
		return nil, fmt.Errorf("decode instance: %w", err)
	}

	machines := make([]jobshop.MachineID, len(fi.Machines))
	for i, m := range fi.Machines {
		machines[i] = jobshop.MachineID(m)
	}

	jobs := make([]jobshop.JobSpec, len(fi.Jobs))
	for i, j := range fi.Jobs {
		spec := jobshop.JobSpec{ID: jobshop.JobID(j.ID)}
		for _, op := range j.Operations {
			spec.Ops = append(spec.Ops, jobshop.OpSpec{
				Machine:  jobshop.MachineID(op.Machine),
				Duration: op.Duration,
			})
		}
		jobs[i] = spec
	}

	return jobshop.NewProblem(machines, jobs)
}

func Load(path string) (*jobshop.Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Write encodes a problem back to the YAML instance format.
func Write(w io.Writer, p *jobshop.Problem) error {
	fi := fileInstance{}
	for _, m := range p.Machines() {
		fi.Machines = append(fi.Machines, string(m))
	}
	for _, j := range p.Jobs() {
		fj := fileJob{ID: string(j.ID)}
		for _, op := range j.Ops {
			fj.Operations = append(fj.Operations, fileOp{
				Machine:  string(op.Machine),
				Duration: op.Duration,
			})
		}
		fi.Jobs = append(fi.Jobs, fj)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(fi); err != nil {
		return err
	}
	return enc.Close()
}

func Save(path string, p *jobshop.Problem) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
