package toolrun

import (
	"errors"
	"fmt"
	"time"

	"github.com/roach88/fixcheck/internal/corpus"
)

// ExecutionError means the tool process never ran: the binary could
// not be located or the process could not be started. It is distinct
// from a tool that ran and reported findings (which is a normal,
// classifiable outcome) and from a timeout.
type ExecutionError struct {
	Tool corpus.Tool
	Path string
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: cannot run tool against %s: %v", e.Tool, e.Path, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// TimeoutError means the tool ran past the per-case deadline and was
// killed. The child process is terminated before this is returned; no
// orphan survives the invocation.
type TimeoutError struct {
	Tool    corpus.Tool
	Path    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: timed out after %s against %s", e.Tool, e.Timeout, e.Path)
}

// IsExecutionError reports whether err is (or wraps) an ExecutionError.
func IsExecutionError(err error) bool {
	var ee *ExecutionError
	return errors.As(err, &ee)
}

// IsTimeout reports whether err is (or wraps) a TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
