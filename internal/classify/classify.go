// Package classify maps tool invocations to PASS/FAIL/ERROR verdicts.
//
// The policy is a pure function of (expectation kind, exit status,
// output); no tool-specific parsing exists beyond the executed-test
// count the test-runner expectation requires.
package classify

import (
	"fmt"
	"time"

	"github.com/roach88/fixcheck/internal/corpus"
	"github.com/roach88/fixcheck/internal/toolrun"
)

// Status is the terminal classification of one case. Computed once,
// immutable, aggregated into the report.
type Status string

const (
	// StatusPass means the invocation matched the fixture's expectation.
	StatusPass Status = "PASS"

	// StatusFail means the tool ran but the expectation was violated:
	// a "fixed" example produced findings, a "bad" example came back
	// clean, or a test example ran zero tests.
	StatusFail Status = "FAIL"

	// StatusError means the tool itself could not run: missing binary,
	// unstartable process, or timeout. Reported distinctly from FAIL
	// so "the example misbehaved" is never conflated with "the tool
	// couldn't run at all".
	StatusError Status = "ERROR"
)

// CaseResult is the classification of one invocation against one
// case's expectation.
type CaseResult struct {
	Case     corpus.ExampleCase
	Status   Status
	Detail   string
	ExitCode int
	Duration time.Duration
}

// Classify applies the expectation policy to one invocation.
//
//	expectation       success criterion                   otherwise
//	expect_clean      exit == 0                           FAIL
//	expect_findings   exit != 0                           FAIL
//	expect_tests_pass exit == 0 and parsed test count > 0 FAIL
//
// Any invocation that itself errored classifies as ERROR regardless of
// expectation. A missing or malformed test summary is a FAIL with a
// diagnostic note, not a crash.
func Classify(c corpus.ExampleCase, inv toolrun.Invocation, invErr error) CaseResult {
	result := CaseResult{
		Case:     c,
		ExitCode: inv.ExitCode,
		Duration: inv.Duration,
	}

	if invErr != nil {
		result.Status = StatusError
		result.Detail = invErr.Error()
		return result
	}

	switch c.Expect {
	case corpus.ExpectClean:
		if inv.ExitCode == 0 {
			result.Status = StatusPass
			return result
		}
		result.Status = StatusFail
		result.Detail = fmt.Sprintf("expected clean, tool reported findings (exit %d)", inv.ExitCode)

	case corpus.ExpectFindings:
		if inv.ExitCode != 0 {
			result.Status = StatusPass
			return result
		}
		result.Status = StatusFail
		result.Detail = "expected findings, tool reported none (exit 0)"

	case corpus.ExpectTestsPass:
		if inv.ExitCode != 0 {
			result.Status = StatusFail
			result.Detail = fmt.Sprintf("expected tests to pass, runner exited %d", inv.ExitCode)
			return result
		}
		count, ok := ParseTestCount(inv.Stdout)
		switch {
		case !ok:
			result.Status = StatusFail
			result.Detail = "no test summary line found in runner output"
		case count == 0:
			result.Status = StatusFail
			result.Detail = "runner exited 0 but executed zero tests"
		default:
			result.Status = StatusPass
			result.Detail = fmt.Sprintf("%d tests passed", count)
		}

	default:
		// Unreachable with the closed Expectation set.
		result.Status = StatusError
		result.Detail = fmt.Sprintf("unknown expectation %v", c.Expect)
	}

	return result
}
