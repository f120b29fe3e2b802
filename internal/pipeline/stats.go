package pipeline

import "sort"

// JobResult is the outcome of one trip. It is not modified after the trip
// finishes.
type JobResult struct {
	OutputPath      string
	Inputs          []string
	ExitCode        int
	IntegrityPassed bool
	Skipped         bool
	DryRun          bool
	Err             error
}

// Failed reports whether the trip belongs in the failure report. Skips and
// dry runs never do.
func (j JobResult) Failed() bool {
	if j.Skipped || j.DryRun {
		return false
	}
	return j.Err != nil || j.ExitCode != 0 || !j.IntegrityPassed
}

// RunStats tracks aggregate counters across a run.
type RunStats struct {
	Trips       int
	Current     int
	Clips       int
	Ignored     int // Clips with unparsable names.
	Written     int
	Skipped     int
	Planned     int // Dry-run trips.
	OutputBytes int64
	Photos      int
	PhotoFailed int
	Results     []JobResult
	failureSet  map[string]struct{}
}

func (s *RunStats) record(j JobResult) {
	s.Results = append(s.Results, j)
	switch {
	case j.DryRun:
		s.Planned++
	case j.Skipped:
		s.Skipped++
	case j.Failed():
		if s.failureSet == nil {
			s.failureSet = make(map[string]struct{})
		}
		s.failureSet[j.OutputPath] = struct{}{}
	default:
		s.Written++
	}
}

// Failures returns the distinct failed output paths, sorted.
func (s *RunStats) Failures() []string {
	out := make([]string, 0, len(s.failureSet))
	for p := range s.failureSet {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
