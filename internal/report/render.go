package report

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/roach88/fixcheck/internal/classify"
	"github.com/roach88/fixcheck/internal/corpus"
)

// statusMark maps a classification to its one-character line prefix.
func statusMark(s classify.Status) string {
	switch s {
	case classify.StatusPass:
		return "✓"
	case classify.StatusFail:
		return "✗"
	default:
		return "!"
	}
}

// RenderText writes the plain-text report: one line per case in
// discovery order (with a detail line where there is something to
// say), then per-tool and overall summary counts.
func RenderText(w io.Writer, r *Report) error {
	for _, res := range r.Results {
		fmt.Fprintf(w, "%s %s [%s] %s %dms\n",
			statusMark(res.Status),
			res.Case.Label,
			res.Case.Tool,
			res.Case.Expect,
			res.Duration.Milliseconds(),
		)
		if res.Detail != "" && res.Status != classify.StatusPass {
			fmt.Fprintf(w, "  %s\n", res.Detail)
		}
	}

	fmt.Fprintln(w)
	for _, tool := range corpus.Tools() {
		s, ok := r.ByTool[tool]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%-15s pass=%d fail=%d error=%d\n", tool, s.Pass, s.Fail, s.Error)
	}
	fmt.Fprintf(w, "\nSummary: %d passed, %d failed, %d errored, %d total\n",
		r.Overall.Pass, r.Overall.Fail, r.Overall.Error, r.Overall.Total)
	return nil
}

// RenderJSON writes the machine-readable report as canonical JSON with
// a trailing newline. Byte-identical across runs given identical case
// results, so CI can diff or archive it directly.
func RenderJSON(w io.Writer, r *Report) error {
	data, err := marshalCanonical(r.snapshot(true))
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

// Digest returns a hex sha256 over the canonical report content with
// the volatile fields (run id, timestamps, durations) zeroed. Two runs
// over an unchanged corpus with a stable tool produce the same digest.
func (r *Report) Digest() string {
	data, err := marshalCanonical(r.snapshot(false))
	if err != nil {
		// snapshot only emits supported types; an error here is a bug.
		panic(fmt.Sprintf("report digest: %v", err))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// snapshot converts the report to plain maps for canonical
// serialization. Volatile fields are included only when requested:
// the JSON rendering carries them, the digest does not.
func (r *Report) snapshot(volatile bool) map[string]any {
	cases := make([]any, len(r.Results))
	for i, res := range r.Results {
		c := map[string]any{
			"label":       res.Case.Label,
			"path":        res.Case.Path,
			"tool":        string(res.Case.Tool),
			"expectation": res.Case.Expect.String(),
			"status":      string(res.Status),
			"detail":      res.Detail,
			"exit_code":   res.ExitCode,
		}
		if volatile {
			c["duration_ms"] = res.Duration.Milliseconds()
		}
		cases[i] = c
	}

	byTool := make(map[string]any, len(r.ByTool))
	for tool, s := range r.ByTool {
		byTool[string(tool)] = map[string]any{
			"pass":  s.Pass,
			"fail":  s.Fail,
			"error": s.Error,
			"total": s.Total,
		}
	}

	snap := map[string]any{
		"root":  r.Root,
		"cases": cases,
		"summary": map[string]any{
			"by_tool": byTool,
			"overall": map[string]any{
				"pass":  r.Overall.Pass,
				"fail":  r.Overall.Fail,
				"error": r.Overall.Error,
				"total": r.Overall.Total,
			},
		},
	}
	if volatile {
		snap["run_id"] = r.RunID
		snap["started"] = r.Started.UTC().Format(time.RFC3339)
		snap["elapsed_ms"] = r.Elapsed.Milliseconds()
	}
	return snap
}
