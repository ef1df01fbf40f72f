package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/fixcheck/internal/history"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// historyEntry is the JSON shape of one recorded run.
type historyEntry struct {
	ID      string `json:"id"`
	Root    string `json:"root"`
	Started string `json:"started"`
	Digest  string `json:"digest"`
	Pass    int    `json:"pass"`
	Fail    int    `json:"fail"`
	Error   int    `json:"error"`
	Total   int    `json:"total"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded runs from a history database",
		Long: `List runs previously recorded with check --history, newest first.
Matching digests between runs mean the corpus classified identically.

Example:
  run-fixture-checks history --db ./runs.db --limit 20`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite history database (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 10, "maximum runs to show")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	st, err := history.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open history database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	runs, err := st.RecentRuns(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read history", err)
	}

	if opts.Format == "json" {
		entries := make([]historyEntry, len(runs))
		for i, r := range runs {
			entries[i] = historyEntry{
				ID:      r.ID,
				Root:    r.Root,
				Started: r.Started.UTC().Format(time.RFC3339),
				Digest:  r.Digest,
				Pass:    r.Pass,
				Fail:    r.Fail,
				Error:   r.Error,
				Total:   r.Total,
			}
		}
		return writeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: entries})
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No recorded runs.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tRUN\tPASS\tFAIL\tERROR\tTOTAL\tDIGEST")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%.12s\n",
			r.Started.UTC().Format(time.RFC3339), r.ID, r.Pass, r.Fail, r.Error, r.Total, r.Digest)
	}
	return tw.Flush()
}
