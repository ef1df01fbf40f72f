package classify

import (
	"regexp"
	"strconv"
	"strings"
)

// summaryRe matches the passed-count in a pytest summary line, e.g.
//
//	12 passed in 0.05s
//	3 passed, 1 warning in 0.21s
//
// The count of executed tests is the only tool output the harness
// parses anywhere.
var summaryRe = regexp.MustCompile(`(\d+) passed`)

// ParseTestCount extracts the executed-test count from runner output.
// It scans lines from the end, since the summary is the last line of
// quiet-mode output. Returns ok=false when no summary line is present.
func ParseTestCount(output string) (int, bool) {
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		m := summaryRe.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
