// Package corpus discovers and classifies example-pair fixture files.
//
// The teaching corpus pairs "bad" snippets (which an external analyzer
// must flag) with "fixed"/"good" snippets (which must come back clean).
// Discovery maps every fixture to exactly one tool and exactly one
// expectation kind, either from naming conventions or from an explicit
// manifest. Expectations are fixed at discovery time and never inferred
// downstream from file content.
package corpus
