package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/fixcheck/internal/report"
	"github.com/roach88/fixcheck/internal/watch"
)

// NewWatchCommand creates the watch command. It shares the check
// command's flags and re-runs the whole check whenever a corpus file
// changes.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run checks whenever the corpus changes",
		Long: `Run the checks once, then watch the corpus root and re-run after each
settled batch of file changes. Intended for editing fixture pairs with
immediate feedback. Stop with Ctrl-C.

Example:
  run-fixture-checks watch --root ./examples --tool formatter`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Root, "root", ".", "corpus root directory")
	cmd.Flags().StringVar(&opts.Tool, "tool", "", "restrict to a single tool identifier")
	cmd.Flags().StringVar(&opts.Manifest, "manifest", "", "explicit fixtures.yaml (bypasses naming heuristics)")
	cmd.Flags().IntVar(&opts.TimeoutSecs, "timeout", 30, "per-case tool timeout in seconds")
	cmd.Flags().IntVar(&opts.Jobs, "jobs", 0, "concurrent tool invocations (0 = number of CPUs)")
	cmd.Flags().StringVar(&opts.HistoryDB, "history", "", "record each run in this SQLite history database")

	return cmd
}

func runWatch(opts *CheckOptions, cmd *cobra.Command) error {
	w := cmd.OutOrStdout()

	runOnce := func() {
		rep, err := executeCheck(opts, cmd)
		if err != nil {
			fmt.Fprintf(w, "check failed: %v\n", err)
			return
		}
		if opts.Format == "json" {
			if renderErr := report.RenderJSON(w, rep); renderErr != nil {
				slog.Error("render report", "error", renderErr)
			}
		} else {
			if renderErr := report.RenderText(w, rep); renderErr != nil {
				slog.Error("render report", "error", renderErr)
			}
		}
		fmt.Fprintln(w)
	}

	// First pass before watching, so a broken root fails immediately
	// instead of sitting silent until the first edit.
	if _, err := discoverCases(opts.Root, opts.Tool, opts.Manifest, slog.Default()); err != nil {
		return err
	}
	runOnce()

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(w, "Watching %s for changes. Press Ctrl-C to stop.\n", opts.Root)
	err := watch.New(opts.Root, runOnce).Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "watcher error", err)
	}
	slog.Info("watch stopped")
	return nil
}
