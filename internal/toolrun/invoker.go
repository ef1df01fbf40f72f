// Package toolrun executes external analysis tools as subprocesses.
//
// The harness treats every tool as a black box characterized only by
// exit status, captured output, and wall-clock duration. A non-zero
// exit is data (that's what "bad" fixtures are for), never an error;
// only an unstartable process or an elapsed timeout is abnormal.
package toolrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/roach88/fixcheck/internal/corpus"
)

// DefaultTimeout bounds a single tool invocation unless overridden.
const DefaultTimeout = 30 * time.Second

// waitDelay is the grace period between context cancellation and a
// hard kill of the child process.
const waitDelay = 2 * time.Second

// Invocation captures one execution of an external tool against one
// fixture. It lives only long enough to be classified.
type Invocation struct {
	// Argv is the exact command line used.
	Argv []string

	// Stdout and Stderr are the captured output streams, unparsed.
	Stdout string
	Stderr string

	// ExitCode is the tool's exit status. Zero means no findings for
	// every tool in the default template set.
	ExitCode int

	// Duration is the wall-clock time the invocation took.
	Duration time.Duration
}

// Invoker runs one tool against one fixture. It is the single
// subprocess capability in the harness; the test suite substitutes a
// stub implementation to exercise classification and aggregation
// without spawning processes.
type Invoker interface {
	Invoke(ctx context.Context, tool corpus.Tool, path string) (Invocation, error)
}

// ExecInvoker is the real Invoker, backed by os/exec.
type ExecInvoker struct {
	templates map[corpus.Tool]Template
	timeout   time.Duration
	logger    *slog.Logger
}

// NewExecInvoker builds an invoker from an immutable template map and
// a per-case timeout. A zero timeout falls back to DefaultTimeout.
// The template map is copied; later mutation by the caller has no
// effect.
func NewExecInvoker(templates map[corpus.Tool]Template, timeout time.Duration, logger *slog.Logger) *ExecInvoker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	copied := make(map[corpus.Tool]Template, len(templates))
	for k, v := range templates {
		copied[k] = v
	}
	return &ExecInvoker{templates: copied, timeout: timeout, logger: logger}
}

// Invoke spawns exactly one child process and waits for it, bounded by
// the configured timeout. No retries.
//
// Returns:
//   - (inv, nil) when the tool ran to completion, whatever its exit
//     status
//   - (inv, *TimeoutError) when the deadline elapsed; the child has
//     been killed
//   - (inv, *ExecutionError) when the process could not be started
//   - (inv, ctx.Err()) when the parent context was cancelled (harness
//     abort); the child has been terminated, not leaked
func (e *ExecInvoker) Invoke(ctx context.Context, tool corpus.Tool, path string) (Invocation, error) {
	tmpl, ok := e.templates[tool]
	if !ok {
		return Invocation{}, &ExecutionError{
			Tool: tool,
			Path: path,
			Err:  fmt.Errorf("no invocation template configured"),
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	argv := tmpl.Argv(path)
	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.logger.Debug("invoking tool", "tool", tool, "path", path, "argv", argv)

	start := time.Now()
	runErr := cmd.Run()
	inv := Invocation{
		Argv:     argv,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if runErr == nil {
		return inv, nil
	}

	// Timeout takes precedence: CommandContext has already killed the
	// child once the deadline elapsed.
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return inv, &TimeoutError{Tool: tool, Path: path, Timeout: e.timeout}
	}

	// Harness-level abort (e.g. SIGINT): the child was terminated by
	// the context; surface the cancellation itself.
	if ctx.Err() != nil {
		return inv, ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		inv.ExitCode = exitErr.ExitCode()
		return inv, nil
	}

	// Anything else means the process never ran (binary missing,
	// permission denied, ...).
	return inv, &ExecutionError{Tool: tool, Path: path, Err: runErr}
}
