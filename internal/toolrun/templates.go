package toolrun

import (
	"github.com/roach88/fixcheck/internal/corpus"
)

// Template is a fixed invocation recipe for one tool: binary name plus
// leading arguments, with the fixture path appended last. Templates are
// immutable configuration handed to the invoker at startup; there is no
// process-wide mutable registry.
type Template struct {
	Binary string
	Args   []string
}

// Argv builds the full command line for one fixture.
func (t Template) Argv(path string) []string {
	argv := make([]string, 0, len(t.Args)+2)
	argv = append(argv, t.Binary)
	argv = append(argv, t.Args...)
	argv = append(argv, path)
	return argv
}

// DefaultTemplates returns the invocation templates documented in the
// corpus's own "Run: <tool> <file>" headers. The flags keep the tools
// check-only (no rewriting) and quiet enough that exit status is the
// findings signal. A fresh map is returned on every call.
func DefaultTemplates() map[corpus.Tool]Template {
	return map[corpus.Tool]Template{
		corpus.ToolSecurityScan: {Binary: "bandit", Args: []string{"-q"}},
		corpus.ToolFormatter:    {Binary: "black", Args: []string{"--check", "--quiet"}},
		corpus.ToolImportSorter: {Binary: "isort", Args: []string{"--check-only"}},
		corpus.ToolTypeChecker:  {Binary: "mypy", Args: []string{"--no-error-summary"}},
		corpus.ToolStyleLinter:  {Binary: "flake8", Args: nil},
		// -q keeps pytest output to the one summary line the
		// classifier parses the executed-test count from.
		corpus.ToolTestRunner: {Binary: "pytest", Args: []string{"-q"}},
	}
}
