package corpus

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DiscoveryError indicates the corpus root itself is unusable
// (missing, unreadable, or not a directory). It aborts the whole run
// before any cases execute; per-file problems never produce it.
type DiscoveryError struct {
	Root string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("corpus root %s: %v", e.Root, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// DiscoverOptions controls fixture discovery.
type DiscoverOptions struct {
	// Tool restricts discovery to fixtures for a single tool.
	// Empty means all tools.
	Tool Tool

	// Manifest is an optional path to an explicit fixtures.yaml.
	// When set, naming heuristics are bypassed entirely and the
	// manifest is the sole source of cases.
	Manifest string

	// Logger receives exclusion notices for files matching no
	// convention. Nil falls back to slog.Default().
	Logger *slog.Logger
}

// Discover walks the corpus root and returns every classifiable
// fixture as an ExampleCase, sorted lexicographically by path so the
// report order is reproducible.
//
// With a manifest, cases come from the manifest alone (resolved
// against root); otherwise each .py file is matched against the
// corpus naming conventions. Files matching no convention, or matching
// contradictory conventions, are excluded and logged — never guessed.
func Discover(root string, opts DiscoverOptions) ([]ExampleCase, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, &DiscoveryError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &DiscoveryError{Root: root, Err: fmt.Errorf("not a directory")}
	}

	if opts.Manifest != "" {
		m, err := LoadManifest(opts.Manifest)
		if err != nil {
			return nil, err
		}
		cases, err := m.Resolve(root)
		if err != nil {
			return nil, err
		}
		return filterTool(cases, opts.Tool), nil
	}

	var cases []ExampleCase
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) != ".py" {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}

		c, reason := classifyPath(path, rel)
		if reason != "" {
			logger.Info("fixture excluded", "path", rel, "reason", reason)
			return nil
		}
		cases = append(cases, c)
		return nil
	})
	if walkErr != nil {
		return nil, &DiscoveryError{Root: root, Err: walkErr}
	}

	sort.Slice(cases, func(i, j int) bool { return cases[i].Path < cases[j].Path })
	return filterTool(cases, opts.Tool), nil
}

// classifyPath maps a fixture path to an ExampleCase using the corpus
// naming conventions. A non-empty reason means the file is excluded.
//
// Conventions observed in the corpus:
//   - tool: filename prefix ("bandit_...", "pytest_...") or an
//     ancestor directory named after the tool binary ("tools/mypy/...")
//   - expectation: "fixed"/"good" markers mean clean (tests-pass for
//     the test runner); "bad"/"donot_fixme" markers mean findings
//
// Markers are matched on underscore-separated name segments and on
// ancestor directory names, so "bad_example.py" under "tools/flake8"
// classifies while "sinbad.py" does not.
func classifyPath(path, rel string) (ExampleCase, string) {
	base := filepath.Base(rel)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	segments := strings.Split(strings.ToLower(name), "_")
	dirs := splitDirs(rel)

	tool, ok := toolForPath(segments, dirs)
	if !ok {
		return ExampleCase{}, "no tool convention matched"
	}

	findings := hasMarker(segments, dirs, findingsMarkers)
	clean := hasMarker(segments, dirs, cleanMarkers)
	switch {
	case findings && clean:
		return ExampleCase{}, "contradictory expectation markers"
	case !findings && !clean:
		return ExampleCase{}, "no expectation convention matched"
	}

	expect := ExpectFindings
	if clean {
		expect = ExpectClean
		if tool == ToolTestRunner {
			expect = ExpectTestsPass
		}
	}

	return ExampleCase{
		Path:   path,
		Tool:   tool,
		Expect: expect,
		Label:  name,
	}, ""
}

// Marker sets for the expectation conventions. "donot" covers the
// corpus's "donot_fixme" naming once split on underscores.
var (
	findingsMarkers = map[string]bool{"bad": true, "donot": true, "donot_fixme": true}
	cleanMarkers    = map[string]bool{"fixed": true, "good": true}
)

// binaryToTool maps tool binary names (used as filename prefixes and
// directory names in the corpus) to tool identifiers.
var binaryToTool = map[string]Tool{
	"bandit": ToolSecurityScan,
	"black":  ToolFormatter,
	"isort":  ToolImportSorter,
	"mypy":   ToolTypeChecker,
	"flake8": ToolStyleLinter,
	"pytest": ToolTestRunner,
}

func toolForPath(segments []string, dirs []string) (Tool, bool) {
	if len(segments) > 0 {
		if t, ok := binaryToTool[segments[0]]; ok {
			return t, true
		}
	}
	// Nearest ancestor wins, so walk from the deepest directory up.
	for i := len(dirs) - 1; i >= 0; i-- {
		if t, ok := binaryToTool[dirs[i]]; ok {
			return t, true
		}
	}
	return "", false
}

func hasMarker(segments []string, dirs []string, markers map[string]bool) bool {
	for _, s := range segments {
		if markers[s] {
			return true
		}
	}
	for _, d := range dirs {
		if markers[d] {
			return true
		}
	}
	return false
}

// splitDirs returns the lowercased directory components of a relative
// path, excluding the filename itself.
func splitDirs(rel string) []string {
	dir := filepath.Dir(rel)
	if dir == "." {
		return nil
	}
	parts := strings.Split(filepath.ToSlash(dir), "/")
	for i, p := range parts {
		parts[i] = strings.ToLower(p)
	}
	return parts
}

func filterTool(cases []ExampleCase, tool Tool) []ExampleCase {
	if tool == "" {
		return cases
	}
	filtered := make([]ExampleCase, 0, len(cases))
	for _, c := range cases {
		if c.Tool == tool {
			filtered = append(filtered, c)
		}
	}
	return filtered
}
