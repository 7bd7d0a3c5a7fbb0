// Package report renders a finished schedule for human inspection and
// tabular export. It only reads the schedule's grouped iteration contract.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"fjsp/internal/jobshop"
)

// Render returns the timetable grouped by machine and by job, entries
// sorted by start time, with per-job flow times and the makespan.
func Render(s *jobshop.Schedule) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Schedule (makespan %d)\n\n", s.Makespan())

	b.WriteString("By machine:\n")
	for _, tl := range s.ByMachine() {
		fmt.Fprintf(&b, "  %s:", tl.Machine)
		if len(tl.Entries) == 0 {
			b.WriteString(" idle\n")
			continue
		}
		b.WriteString("\n")
		for _, e := range tl.Entries {
			fmt.Fprintf(&b, "    [%4d, %4d) %s\n", e.Start, e.End, e.Op.Job)
		}
	}

	b.WriteString("\nBy job:\n")
	for _, tl := range s.ByJob() {
		first := tl.Entries[0]
		last := tl.Entries[len(tl.Entries)-1]
		fmt.Fprintf(&b, "  %s (flow %d):\n", tl.Job, last.End-first.Start)
		for _, e := range tl.Entries {
			fmt.Fprintf(&b, "    [%4d, %4d) %s\n", e.Start, e.End, e.Op.Machine)
		}
	}

	return b.String()
}

// WriteCSV emits one row per scheduled operation: job, position, machine,
// start, end.
func WriteCSV(w io.Writer, s *jobshop.Schedule) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"job", "position", "machine", "start", "end"}); err != nil {
		return err
	}
	for _, tl := range s.ByJob() {
		for _, e := range tl.Entries {
			row := []string{
				string(e.Op.Job),
				strconv.Itoa(e.Op.Pos),
				string(e.Op.Machine),
				strconv.Itoa(e.Start),
				strconv.Itoa(e.End),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
