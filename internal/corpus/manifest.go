package corpus

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"
)

//go:embed manifest_schema.cue
var manifestSchema string

// Manifest is an explicit declaration of the corpus's cases. It exists
// because the naming conventions are heuristics: "fixed" vs "good" vs
// "donot_fixme" is not consistent across corpus directories, and a
// manifest makes the expectation machine-declared rather than inferred.
type Manifest struct {
	Cases []ManifestCase `yaml:"cases"`
}

// ManifestCase is one declared fixture entry.
type ManifestCase struct {
	// Path to the fixture, relative to the corpus root.
	Path string `yaml:"path"`

	// Tool identifier (closed set, see Tools).
	Tool string `yaml:"tool"`

	// Expect is one of expect_findings, expect_clean, expect_tests_pass.
	Expect string `yaml:"expect"`

	// Label overrides the filename-derived label. Optional.
	Label string `yaml:"label,omitempty"`
}

// LoadManifest reads, schema-validates, and parses a fixtures.yaml.
//
// The document is first unified with the embedded CUE schema, which
// rejects unknown tools and expectation kinds with a positioned error.
// It is then decoded strictly (unknown fields rejected) so typos like
// "expectation:" fail loudly instead of silently dropping a case.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	if err := validateManifestSchema(path, data); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}

	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// validateManifestSchema unifies the YAML document with the embedded
// CUE schema and checks the result is concrete and valid.
func validateManifestSchema(path string, data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(manifestSchema)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	file, err := cueyaml.Extract(path, data)
	if err != nil {
		return fmt.Errorf("parse YAML: %w", err)
	}
	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return fmt.Errorf("build document: %w", err)
	}

	unified := schema.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}

// Resolve converts the manifest entries to ExampleCases rooted at the
// corpus root, in lexicographic path order. Every listed fixture must
// exist: a manifest that points at a missing file is a discovery-level
// failure, not a per-case one.
func (m *Manifest) Resolve(root string) ([]ExampleCase, error) {
	cases := make([]ExampleCase, 0, len(m.Cases))
	for i, mc := range m.Cases {
		tool, err := ParseTool(mc.Tool)
		if err != nil {
			return nil, fmt.Errorf("manifest case %d: %w", i, err)
		}
		expect, err := ParseExpectation(mc.Expect)
		if err != nil {
			return nil, fmt.Errorf("manifest case %d: %w", i, err)
		}

		path := mc.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		if _, err := os.Stat(path); err != nil {
			return nil, &DiscoveryError{Root: root, Err: fmt.Errorf("manifest case %d: %w", i, err)}
		}

		label := mc.Label
		if label == "" {
			base := filepath.Base(path)
			label = strings.TrimSuffix(base, filepath.Ext(base))
		}

		cases = append(cases, ExampleCase{
			Path:   path,
			Tool:   tool,
			Expect: expect,
			Label:  label,
		})
	}

	sort.Slice(cases, func(i, j int) bool { return cases[i].Path < cases[j].Path })
	return cases, nil
}
