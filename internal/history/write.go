package history

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/fixcheck/internal/report"
)

// WriteRun records one report: the run row and one case row per
// classification, atomically. Re-recording the same run id fails on
// the primary key rather than silently duplicating history.
func (s *Store) WriteRun(ctx context.Context, r *report.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, root, started, elapsed_ms, digest, pass, fail, error, total)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.RunID,
		r.Root,
		r.Started.UTC().Format(time.RFC3339),
		r.Elapsed.Milliseconds(),
		r.Digest(),
		r.Overall.Pass,
		r.Overall.Fail,
		r.Overall.Error,
		r.Overall.Total,
	)
	if err != nil {
		return fmt.Errorf("write run %s: %w", r.RunID, err)
	}

	for i, res := range r.Results {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO case_results
			(run_id, position, label, path, tool, expectation, status, detail, duration_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			r.RunID,
			i,
			res.Case.Label,
			res.Case.Path,
			string(res.Case.Tool),
			res.Case.Expect.String(),
			string(res.Status),
			res.Detail,
			res.Duration.Milliseconds(),
		)
		if err != nil {
			return fmt.Errorf("write case %d for run %s: %w", i, r.RunID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", r.RunID, err)
	}
	return nil
}
