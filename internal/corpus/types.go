package corpus

import "fmt"

// Tool identifies one of the external analyzers the corpus teaches.
//
// The set is closed: every fixture maps to exactly one of these
// identifiers, and the invocation layer carries one template per
// identifier. Adding a tool means adding a constant here and a
// template there; nothing is derived dynamically.
type Tool string

const (
	ToolSecurityScan Tool = "security-scan"
	ToolFormatter    Tool = "formatter"
	ToolImportSorter Tool = "import-sorter"
	ToolTypeChecker  Tool = "type-checker"
	ToolStyleLinter  Tool = "style-linter"
	ToolTestRunner   Tool = "test-runner"
)

// Tools returns all tool identifiers in stable order.
func Tools() []Tool {
	return []Tool{
		ToolSecurityScan,
		ToolFormatter,
		ToolImportSorter,
		ToolTypeChecker,
		ToolStyleLinter,
		ToolTestRunner,
	}
}

// Valid reports whether t is a member of the closed tool set.
func (t Tool) Valid() bool {
	switch t {
	case ToolSecurityScan, ToolFormatter, ToolImportSorter,
		ToolTypeChecker, ToolStyleLinter, ToolTestRunner:
		return true
	}
	return false
}

// ParseTool converts a string to a Tool, rejecting anything outside
// the closed set.
func ParseTool(s string) (Tool, error) {
	t := Tool(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown tool %q: must be one of %v", s, Tools())
	}
	return t, nil
}

// Expectation is the declared outcome a fixture must produce when
// analyzed. It is an exhaustively enumerated tagged variant, populated
// once at discovery.
type Expectation int

const (
	// ExpectFindings means the tool must report at least one issue
	// (non-zero exit status).
	ExpectFindings Expectation = iota

	// ExpectClean means the tool must report zero issues (exit 0).
	ExpectClean

	// ExpectTestsPass means the test runner must exit 0 AND report at
	// least one executed test in its summary line.
	ExpectTestsPass
)

// Expectation string forms as they appear in manifests and reports.
const (
	expectFindingsName  = "expect_findings"
	expectCleanName     = "expect_clean"
	expectTestsPassName = "expect_tests_pass"
)

func (e Expectation) String() string {
	switch e {
	case ExpectFindings:
		return expectFindingsName
	case ExpectClean:
		return expectCleanName
	case ExpectTestsPass:
		return expectTestsPassName
	}
	return fmt.Sprintf("Expectation(%d)", int(e))
}

// ParseExpectation converts a manifest string to an Expectation.
func ParseExpectation(s string) (Expectation, error) {
	switch s {
	case expectFindingsName:
		return ExpectFindings, nil
	case expectCleanName:
		return ExpectClean, nil
	case expectTestsPassName:
		return ExpectTestsPass, nil
	}
	return 0, fmt.Errorf("unknown expectation %q: must be one of [%s %s %s]",
		s, expectFindingsName, expectCleanName, expectTestsPassName)
}

// ExampleCase is one discovered fixture file. Immutable once built:
// discovery fixes the tool and expectation, and nothing downstream
// re-derives them.
type ExampleCase struct {
	// Path is the absolute (or root-relative, as discovered) path to
	// the fixture file.
	Path string

	// Tool is the analyzer this fixture exercises.
	Tool Tool

	// Expect is the declared outcome for this fixture.
	Expect Expectation

	// Label is a human-readable name derived from the filename
	// (or taken verbatim from the manifest).
	Label string
}
