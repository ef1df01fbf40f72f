package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fixcheck/internal/corpus"
	"github.com/roach88/fixcheck/internal/history"
	"github.com/roach88/fixcheck/internal/report"
	"github.com/roach88/fixcheck/internal/toolrun"
)

// scriptedInvoker classifies by fixture name instead of spawning
// processes: "bad" fixtures get findings, everything else comes back
// clean, and the test runner reports a pytest-style summary.
type scriptedInvoker struct{}

func (scriptedInvoker) Invoke(_ context.Context, tool corpus.Tool, path string) (toolrun.Invocation, error) {
	name := filepath.Base(path)
	if tool == corpus.ToolTestRunner {
		return toolrun.Invocation{Stdout: "3 passed in 0.12s\n"}, nil
	}
	if strings.Contains(name, "bad") {
		return toolrun.Invocation{ExitCode: 1, Stdout: "issue found\n"}, nil
	}
	return toolrun.Invocation{}, nil
}

// brokenInvoker makes every fixture come back clean, so expect_findings
// fixtures fail.
type brokenInvoker struct{}

func (brokenInvoker) Invoke(context.Context, corpus.Tool, string) (toolrun.Invocation, error) {
	return toolrun.Invocation{}, nil
}

func writeCorpus(t *testing.T, names ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, name := range names {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0o644))
	}
	return root
}

func newTestCommand() (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	return cmd, buf
}

func checkOpts(root string) *CheckOptions {
	return &CheckOptions{
		RootOptions: &RootOptions{Format: "text"},
		Root:        root,
		TimeoutSecs: 30,
		Jobs:        2,
		Invoker:     scriptedInvoker{},
		RunID:       report.NewFixedGenerator("run-test-0001"),
	}
}

func TestCheckAllPassing(t *testing.T) {
	root := writeCorpus(t,
		"bandit_bad_example.py",
		"bandit_fixed_example.py",
		"pytest_good_example.py",
	)
	cmd, buf := newTestCommand()

	err := runCheck(checkOpts(root), cmd)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Summary: 3 passed, 0 failed, 0 errored, 3 total")
	assert.Contains(t, out, "bandit_bad_example")
	assert.Contains(t, out, "3 tests passed")
}

func TestCheckFailuresExitWithOne(t *testing.T) {
	root := writeCorpus(t, "bandit_bad_example.py", "bandit_fixed_example.py")
	opts := checkOpts(root)
	opts.Invoker = brokenInvoker{}
	cmd, buf := newTestCommand()

	err := runCheck(opts, cmd)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "1 case(s) failed")
	assert.Contains(t, buf.String(), "Summary: 1 passed, 1 failed, 0 errored, 2 total")
}

func TestCheckMissingRootExitsWithTwo(t *testing.T) {
	opts := checkOpts(filepath.Join(t.TempDir(), "no-such-dir"))
	cmd, _ := newTestCommand()

	err := runCheck(opts, cmd)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCheckUnknownToolExitsWithTwo(t *testing.T) {
	opts := checkOpts(writeCorpus(t, "bandit_bad_example.py"))
	opts.Tool = "ruff"
	cmd, _ := newTestCommand()

	err := runCheck(opts, cmd)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid --tool")
}

func TestCheckToolFilter(t *testing.T) {
	root := writeCorpus(t, "bandit_bad_example.py", "black_bad_example.py")
	opts := checkOpts(root)
	opts.Tool = "formatter"
	cmd, buf := newTestCommand()

	require.NoError(t, runCheck(opts, cmd))
	out := buf.String()
	assert.Contains(t, out, "black_bad_example")
	assert.NotContains(t, out, "bandit_bad_example")
	assert.Contains(t, out, "Summary: 1 passed, 0 failed, 0 errored, 1 total")
}

func TestCheckJSONReport(t *testing.T) {
	root := writeCorpus(t, "mypy_bad_example.py")
	opts := checkOpts(root)
	opts.Format = "json"
	cmd, buf := newTestCommand()

	require.NoError(t, runCheck(opts, cmd))

	var rep struct {
		RunID   string `json:"run_id"`
		Root    string `json:"root"`
		Summary struct {
			Overall struct {
				Pass  int `json:"pass"`
				Total int `json:"total"`
			} `json:"overall"`
		} `json:"summary"`
		Cases []struct {
			Label  string `json:"label"`
			Status string `json:"status"`
			Tool   string `json:"tool"`
		} `json:"cases"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rep))

	assert.Equal(t, "run-test-0001", rep.RunID)
	assert.Equal(t, root, rep.Root)
	assert.Equal(t, 1, rep.Summary.Overall.Pass)
	assert.Equal(t, 1, rep.Summary.Overall.Total)
	require.Len(t, rep.Cases, 1)
	assert.Equal(t, "mypy_bad_example", rep.Cases[0].Label)
	assert.Equal(t, "PASS", rep.Cases[0].Status)
	assert.Equal(t, "type-checker", rep.Cases[0].Tool)
}

func TestCheckRecordsHistory(t *testing.T) {
	root := writeCorpus(t, "flake8_bad_example.py")
	opts := checkOpts(root)
	opts.HistoryDB = filepath.Join(t.TempDir(), "runs.db")
	cmd, _ := newTestCommand()

	require.NoError(t, runCheck(opts, cmd))

	st, err := history.Open(opts.HistoryDB)
	require.NoError(t, err)
	defer st.Close()

	runs, err := st.RecentRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-test-0001", runs[0].ID)
	assert.Equal(t, 1, runs[0].Pass)

	cases, err := st.CasesForRun(context.Background(), "run-test-0001")
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, "flake8_bad_example", cases[0].Label)
	assert.Equal(t, "style-linter", cases[0].Tool)
}

func TestCheckEmptyCorpus(t *testing.T) {
	root := writeCorpus(t) // directory with no fixtures
	cmd, buf := newTestCommand()

	require.NoError(t, runCheck(checkOpts(root), cmd))
	assert.Contains(t, buf.String(), "Summary: 0 passed, 0 failed, 0 errored, 0 total")
}
