package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fixcheck/internal/classify"
	"github.com/roach88/fixcheck/internal/corpus"
	"github.com/roach88/fixcheck/internal/report"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleReport(runID string, started time.Time) *report.Report {
	results := []classify.CaseResult{
		{
			Case: corpus.ExampleCase{
				Path:   "corpus/tools/bandit/bad_example.py",
				Tool:   corpus.ToolSecurityScan,
				Expect: corpus.ExpectFindings,
				Label:  "bad_example",
			},
			Status:   classify.StatusPass,
			ExitCode: 1,
			Duration: 120 * time.Millisecond,
		},
		{
			Case: corpus.ExampleCase{
				Path:   "corpus/tools/black/good_example.py",
				Tool:   corpus.ToolFormatter,
				Expect: corpus.ExpectClean,
				Label:  "good_example",
			},
			Status:   classify.StatusFail,
			Detail:   "expected clean, tool reported findings (exit 1)",
			ExitCode: 1,
			Duration: 80 * time.Millisecond,
		},
	}
	return report.Build(runID, "corpus", started, 900*time.Millisecond, results)
}

func TestWriteRunRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rep := sampleReport("run-one", started)
	require.NoError(t, store.WriteRun(ctx, rep))

	runs, err := store.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	rec := runs[0]
	assert.Equal(t, "run-one", rec.ID)
	assert.Equal(t, "corpus", rec.Root)
	assert.True(t, rec.Started.Equal(started))
	assert.Equal(t, int64(900), rec.ElapsedMS)
	assert.Equal(t, rep.Digest(), rec.Digest)
	assert.Equal(t, 1, rec.Pass)
	assert.Equal(t, 1, rec.Fail)
	assert.Equal(t, 0, rec.Error)
	assert.Equal(t, 2, rec.Total)

	cases, err := store.CasesForRun(ctx, "run-one")
	require.NoError(t, err)
	require.Len(t, cases, 2)

	assert.Equal(t, 0, cases[0].Position)
	assert.Equal(t, "bad_example", cases[0].Label)
	assert.Equal(t, "corpus/tools/bandit/bad_example.py", cases[0].Path)
	assert.Equal(t, "security-scan", cases[0].Tool)
	assert.Equal(t, "expect_findings", cases[0].Expectation)
	assert.Equal(t, "PASS", cases[0].Status)
	assert.Equal(t, int64(120), cases[0].DurationMS)

	assert.Equal(t, 1, cases[1].Position)
	assert.Equal(t, "FAIL", cases[1].Status)
	assert.Equal(t, "expected clean, tool reported findings (exit 1)", cases[1].Detail)
}

func TestRecentRunsNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.WriteRun(ctx, sampleReport("run-old", base)))
	require.NoError(t, store.WriteRun(ctx, sampleReport("run-mid", base.Add(time.Hour))))
	require.NoError(t, store.WriteRun(ctx, sampleReport("run-new", base.Add(2*time.Hour))))

	runs, err := store.RecentRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-new", runs[0].ID)
	assert.Equal(t, "run-mid", runs[1].ID)
}

func TestWriteRunRejectsDuplicateID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.WriteRun(ctx, sampleReport("run-dup", started)))
	err := store.WriteRun(ctx, sampleReport("run-dup", started))
	require.Error(t, err)

	runs, err := store.RecentRuns(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path)
	require.NoError(t, err)
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.WriteRun(context.Background(), sampleReport("run-one", started)))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	runs, err := reopened.RecentRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestCasesForUnknownRun(t *testing.T) {
	store := openTestStore(t)
	cases, err := store.CasesForRun(context.Background(), "no-such-run")
	require.NoError(t, err)
	assert.Empty(t, cases)
}
