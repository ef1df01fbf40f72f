// Package runner executes discovered cases through the invoker with
// bounded concurrency.
//
// Each case moves through DISCOVERED → INVOKED → {PASS|FAIL|ERROR};
// terminal states are final for the run, with no retries and no
// revisiting. Cases are independent (separate subprocess, separate
// file), so scheduling order is unconstrained — the report layer
// restores discovery order afterwards.
package runner

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"

	"github.com/roach88/fixcheck/internal/classify"
	"github.com/roach88/fixcheck/internal/corpus"
	"github.com/roach88/fixcheck/internal/toolrun"
)

// Runner fans cases out over a bounded worker pool.
type Runner struct {
	invoker toolrun.Invoker
	jobs    int
	logger  *slog.Logger
}

// New creates a Runner. jobs <= 0 defaults to the number of CPUs.
func New(invoker toolrun.Invoker, jobs int, logger *slog.Logger) *Runner {
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{invoker: invoker, jobs: jobs, logger: logger}
}

// indexed pairs a classification with its input position so results
// can be reassembled in submission order.
type indexed struct {
	index  int
	result classify.CaseResult
	err    error
}

// Run invokes and classifies every case, returning one CaseResult per
// case in input order.
//
// Concurrency is bounded by the jobs semaphore; the results channel is
// the only shared collection point and has a single reader. Per-case
// failures (tool missing, timeout) are classifications, not errors —
// Run only returns an error when the harness itself is aborted via
// ctx, in which case in-flight subprocesses have been terminated.
func (r *Runner) Run(ctx context.Context, cases []corpus.ExampleCase) ([]classify.CaseResult, error) {
	sem := make(chan struct{}, r.jobs)
	resultsCh := make(chan indexed, len(cases))

	var wg sync.WaitGroup
	for i, c := range cases {
		wg.Add(1)
		go func(idx int, c corpus.ExampleCase) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				resultsCh <- indexed{index: idx, err: ctx.Err()}
				return
			}

			inv, invErr := r.invoker.Invoke(ctx, c.Tool, c.Path)
			if invErr != nil && errors.Is(invErr, context.Canceled) {
				// Harness abort, not a per-case condition.
				resultsCh <- indexed{index: idx, err: invErr}
				return
			}

			res := classify.Classify(c, inv, invErr)
			if res.Status != classify.StatusPass {
				r.logger.Debug("case not passing",
					"label", c.Label, "tool", c.Tool, "status", res.Status, "detail", res.Detail)
			}
			resultsCh <- indexed{index: idx, result: res}
		}(i, c)
	}

	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	ordered := make([]classify.CaseResult, len(cases))
	var firstErr error
	for ix := range resultsCh {
		if ix.err != nil {
			if firstErr == nil {
				firstErr = ix.err
			}
			continue
		}
		ordered[ix.index] = ix.result
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return ordered, nil
}
