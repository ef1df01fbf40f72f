package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/fixcheck/internal/corpus"
	"github.com/roach88/fixcheck/internal/history"
	"github.com/roach88/fixcheck/internal/report"
	"github.com/roach88/fixcheck/internal/runner"
	"github.com/roach88/fixcheck/internal/toolrun"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Root        string
	Tool        string
	Manifest    string
	TimeoutSecs int
	Jobs        int
	HistoryDB   string

	// Invoker allows overriding the tool invoker (for testing).
	// If nil, defaults to an ExecInvoker over the default templates.
	Invoker toolrun.Invoker

	// RunID allows overriding run id generation (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunID report.RunIDGenerator
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run every fixture through its tool and classify the outcomes",
		Long: `Discover the corpus's example pairs, invoke the matching external tool
against each fixture, and classify every outcome against the fixture's
declared expectation.

Exit codes:
  0 - every case classified PASS
  1 - one or more cases classified FAIL or ERROR
  2 - discovery failure (bad corpus root, invalid manifest, ...)

Examples:
  run-fixture-checks check --root ./examples
  run-fixture-checks check --root ./examples --tool style-linter --jobs 4
  run-fixture-checks check --root ./examples --manifest fixtures.yaml
  run-fixture-checks check --root ./examples --history ./runs.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Root, "root", ".", "corpus root directory")
	cmd.Flags().StringVar(&opts.Tool, "tool", "", "restrict to a single tool identifier")
	cmd.Flags().StringVar(&opts.Manifest, "manifest", "", "explicit fixtures.yaml (bypasses naming heuristics)")
	cmd.Flags().IntVar(&opts.TimeoutSecs, "timeout", int(toolrun.DefaultTimeout/time.Second), "per-case tool timeout in seconds")
	cmd.Flags().IntVar(&opts.Jobs, "jobs", 0, "concurrent tool invocations (0 = number of CPUs)")
	cmd.Flags().StringVar(&opts.HistoryDB, "history", "", "record the run in this SQLite history database")

	return cmd
}

func runCheck(opts *CheckOptions, cmd *cobra.Command) error {
	rep, err := executeCheck(opts, cmd)
	if err != nil {
		return err
	}

	if opts.Format == "json" {
		if err := report.RenderJSON(cmd.OutOrStdout(), rep); err != nil {
			return WrapExitError(ExitFailure, "failed to render report", err)
		}
	} else {
		if err := report.RenderText(cmd.OutOrStdout(), rep); err != nil {
			return WrapExitError(ExitFailure, "failed to render report", err)
		}
	}

	if rep.Failed() {
		return NewExitError(ExitFailure, fmt.Sprintf("%d case(s) failed, %d errored",
			rep.Overall.Fail, rep.Overall.Error))
	}
	return nil
}

// executeCheck runs discovery, the worker pool, and aggregation, and
// optionally records the run. Shared by check and watch.
func executeCheck(opts *CheckOptions, cmd *cobra.Command) (*report.Report, error) {
	logger := slog.Default()

	cases, err := discoverCases(opts.Root, opts.Tool, opts.Manifest, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("fixtures discovered", "root", opts.Root, "cases", len(cases))

	// A user interrupt must terminate in-flight subprocesses rather
	// than leaking them; the context reaches every exec.CommandContext.
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	invoker := opts.Invoker
	if invoker == nil {
		timeout := time.Duration(opts.TimeoutSecs) * time.Second
		invoker = toolrun.NewExecInvoker(toolrun.DefaultTemplates(), timeout, logger)
	}
	gen := opts.RunID
	if gen == nil {
		gen = report.UUIDv7Generator{}
	}

	started := time.Now()
	results, err := runner.New(invoker, opts.Jobs, logger).Run(ctx, cases)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "run aborted", err)
	}
	rep := report.Build(gen.Generate(), opts.Root, started, time.Since(started), results)

	if opts.HistoryDB != "" {
		if err := recordRun(ctx, opts.HistoryDB, rep); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to record run history", err)
		}
		logger.Info("run recorded", "db", opts.HistoryDB, "run_id", rep.RunID)
	}

	return rep, nil
}

// discoverCases maps discovery failures to exit code 2.
func discoverCases(root, tool, manifest string, logger *slog.Logger) ([]corpus.ExampleCase, error) {
	var toolFilter corpus.Tool
	if tool != "" {
		parsed, err := corpus.ParseTool(tool)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid --tool", err)
		}
		toolFilter = parsed
	}

	cases, err := corpus.Discover(root, corpus.DiscoverOptions{
		Tool:     toolFilter,
		Manifest: manifest,
		Logger:   logger,
	})
	if err != nil {
		var de *corpus.DiscoveryError
		if errors.As(err, &de) {
			return nil, WrapExitError(ExitCommandError, "discovery failed", err)
		}
		return nil, WrapExitError(ExitCommandError, "failed to load manifest", err)
	}
	return cases, nil
}

func recordRun(ctx context.Context, dbPath string, rep *report.Report) error {
	st, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing history database", "error", closeErr)
		}
	}()
	return st.WriteRun(ctx, rep)
}
