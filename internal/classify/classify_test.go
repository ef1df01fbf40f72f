package classify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fixcheck/internal/corpus"
	"github.com/roach88/fixcheck/internal/toolrun"
)

func caseWith(expect corpus.Expectation, tool corpus.Tool) corpus.ExampleCase {
	return corpus.ExampleCase{
		Path:   "tools/x/example.py",
		Tool:   tool,
		Expect: expect,
		Label:  "example",
	}
}

func TestClassifyPolicyTable(t *testing.T) {
	tests := []struct {
		name   string
		expect corpus.Expectation
		exit   int
		stdout string
		want   Status
	}{
		{"clean with zero exit passes", corpus.ExpectClean, 0, "", StatusPass},
		{"clean with findings fails", corpus.ExpectClean, 1, "E501 line too long", StatusFail},
		{"findings with non-zero exit passes", corpus.ExpectFindings, 1, "B602 subprocess call", StatusPass},
		{"findings with zero exit fails", corpus.ExpectFindings, 0, "", StatusFail},
		{"tests pass with summary", corpus.ExpectTestsPass, 0, "5 passed in 0.12s\n", StatusPass},
		{"tests failing exit fails", corpus.ExpectTestsPass, 1, "1 failed, 4 passed in 0.12s\n", StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := corpus.ToolStyleLinter
			if tt.expect == corpus.ExpectTestsPass {
				tool = corpus.ToolTestRunner
			}
			inv := toolrun.Invocation{ExitCode: tt.exit, Stdout: tt.stdout}

			result := Classify(caseWith(tt.expect, tool), inv, nil)
			assert.Equal(t, tt.want, result.Status)
			if tt.want == StatusFail {
				assert.NotEmpty(t, result.Detail)
			}
		})
	}
}

func TestClassifyInvocationErrorIsError(t *testing.T) {
	c := caseWith(corpus.ExpectClean, corpus.ToolFormatter)
	invErr := &toolrun.ExecutionError{Tool: c.Tool, Path: c.Path}

	result := Classify(c, toolrun.Invocation{}, invErr)
	assert.Equal(t, StatusError, result.Status)
	assert.Contains(t, result.Detail, "cannot run tool")
}

func TestClassifyTimeoutIsErrorRegardlessOfExpectation(t *testing.T) {
	for _, expect := range []corpus.Expectation{
		corpus.ExpectFindings, corpus.ExpectClean, corpus.ExpectTestsPass,
	} {
		c := caseWith(expect, corpus.ToolTestRunner)
		invErr := &toolrun.TimeoutError{Tool: c.Tool, Path: c.Path, Timeout: time.Second}

		result := Classify(c, toolrun.Invocation{}, invErr)
		assert.Equal(t, StatusError, result.Status, expect.String())
	}
}

func TestClassifyTestsPassWithoutSummaryFails(t *testing.T) {
	c := caseWith(corpus.ExpectTestsPass, corpus.ToolTestRunner)
	inv := toolrun.Invocation{ExitCode: 0, Stdout: "garbled output without a summary\n"}

	result := Classify(c, inv, nil)
	assert.Equal(t, StatusFail, result.Status)
	assert.Contains(t, result.Detail, "no test summary")
}

func TestClassifyTestsPassWithZeroTestsFails(t *testing.T) {
	c := caseWith(corpus.ExpectTestsPass, corpus.ToolTestRunner)
	inv := toolrun.Invocation{ExitCode: 0, Stdout: "0 passed in 0.01s\n"}

	result := Classify(c, inv, nil)
	assert.Equal(t, StatusFail, result.Status)
	assert.Contains(t, result.Detail, "zero tests")
}

func TestClassifyPreservesInvocationFacts(t *testing.T) {
	c := caseWith(corpus.ExpectClean, corpus.ToolFormatter)
	inv := toolrun.Invocation{ExitCode: 1, Duration: 42 * time.Millisecond}

	result := Classify(c, inv, nil)
	require.Equal(t, StatusFail, result.Status)
	assert.Equal(t, 1, result.ExitCode)
	assert.Equal(t, 42*time.Millisecond, result.Duration)
	assert.Equal(t, c, result.Case)
}

func TestParseTestCount(t *testing.T) {
	tests := []struct {
		output string
		count  int
		ok     bool
	}{
		{"12 passed in 0.05s\n", 12, true},
		{".....\n5 passed in 1.20s\n", 5, true},
		{"3 passed, 1 warning in 0.21s\n", 3, true},
		{"2 failed, 7 passed in 0.33s\n", 7, true},
		{"0 passed in 0.01s\n", 0, true},
		{"no tests ran in 0.01s\n", 0, false},
		{"", 0, false},
		{"collected 3 items\n...\n", 0, false},
	}

	for _, tt := range tests {
		count, ok := ParseTestCount(tt.output)
		assert.Equal(t, tt.ok, ok, tt.output)
		assert.Equal(t, tt.count, count, tt.output)
	}
}
