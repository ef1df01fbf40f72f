package history

import (
	"context"
	"fmt"
	"time"
)

// RunRecord is one persisted run summary.
type RunRecord struct {
	ID        string
	Root      string
	Started   time.Time
	ElapsedMS int64
	Digest    string
	Pass      int
	Fail      int
	Error     int
	Total     int
}

// CaseRecord is one persisted case classification.
type CaseRecord struct {
	RunID       string
	Position    int
	Label       string
	Path        string
	Tool        string
	Expectation string
	Status      string
	Detail      string
	DurationMS  int64
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, root, started, elapsed_ms, digest, pass, fail, error, total
		FROM runs
		ORDER BY started DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var started string
		if err := rows.Scan(&rec.ID, &rec.Root, &started, &rec.ElapsedMS, &rec.Digest,
			&rec.Pass, &rec.Fail, &rec.Error, &rec.Total); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.Started, err = time.Parse(time.RFC3339, started)
		if err != nil {
			return nil, fmt.Errorf("parse started %q: %w", started, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CasesForRun returns the case classifications of one run in report
// order.
func (s *Store) CasesForRun(ctx context.Context, runID string) ([]CaseRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, position, label, path, tool, expectation, status, detail, duration_ms
		FROM case_results
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query cases for run %s: %w", runID, err)
	}
	defer rows.Close()

	var records []CaseRecord
	for rows.Next() {
		var rec CaseRecord
		if err := rows.Scan(&rec.RunID, &rec.Position, &rec.Label, &rec.Path, &rec.Tool,
			&rec.Expectation, &rec.Status, &rec.Detail, &rec.DurationMS); err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
