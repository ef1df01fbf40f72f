// Package report aggregates case results into a reproducible report.
//
// Aggregation is a pure function of the result sequence: no I/O, and
// results are re-sorted into discovery order before rendering, so the
// report is byte-stable regardless of how concurrent execution
// interleaved.
package report

import (
	"sort"
	"time"

	"github.com/roach88/fixcheck/internal/classify"
	"github.com/roach88/fixcheck/internal/corpus"
)

// Summary holds classification counts. Pass+Fail+Error always equals
// Total.
type Summary struct {
	Pass  int
	Fail  int
	Error int
	Total int
}

func (s *Summary) add(status classify.Status) {
	switch status {
	case classify.StatusPass:
		s.Pass++
	case classify.StatusFail:
		s.Fail++
	case classify.StatusError:
		s.Error++
	}
	s.Total++
}

// Report is the outcome of one harness run: every discovered case's
// classification exactly once, in discovery order, plus summary counts.
type Report struct {
	RunID   string
	Root    string
	Started time.Time
	Elapsed time.Duration

	Results []classify.CaseResult
	ByTool  map[corpus.Tool]Summary
	Overall Summary
}

// Build assembles a Report from case results. The input order does not
// matter: results are sorted by fixture path, restoring discovery
// order.
func Build(runID, root string, started time.Time, elapsed time.Duration, results []classify.CaseResult) *Report {
	sorted := make([]classify.CaseResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Case.Path < sorted[j].Case.Path
	})

	r := &Report{
		RunID:   runID,
		Root:    root,
		Started: started,
		Elapsed: elapsed,
		Results: sorted,
		ByTool:  make(map[corpus.Tool]Summary),
	}
	for _, res := range sorted {
		r.Overall.add(res.Status)
		s := r.ByTool[res.Case.Tool]
		s.add(res.Status)
		r.ByTool[res.Case.Tool] = s
	}
	return r
}

// Failed reports whether the run should map to a non-zero exit code.
func (r *Report) Failed() bool {
	return r.Overall.Fail > 0 || r.Overall.Error > 0
}
