// Package vgptest runs declarative scenario manifests against a
// vgp.Projector, the way internal/testsuite runs W3C test manifests
// against the SPARQL engine.
package vgptest

import (
	"encoding/json"
	"fmt"
	"os"
)

// ScenarioManifest describes a pangenome fixture (loaded from a GFA file)
// and the quad-pattern scenarios to run against it.
type ScenarioManifest struct {
	Base      string     `json:"base"`
	GFAFile   string     `json:"gfaFile"`
	Scenarios []Scenario `json:"scenarios"`
}

// Scenario is one quads_for_pattern call and its expected result. Subject,
// Predicate, and Object are IRI strings, "_:name" for a blank node, or ""
// for unbound. ExpectedCount is the total number of quads expected; when
// ExpectedContains is non-empty, each entry must also appear in the result.
type Scenario struct {
	Name             string        `json:"name"`
	Subject          string        `json:"subject"`
	Predicate        string        `json:"predicate"`
	Object           string        `json:"object"`
	ExpectedCount    int           `json:"expectedCount"`
	ExpectedContains []ExpectedSPO `json:"expectedContains,omitempty"`
}

// ExpectedSPO is a fully-bound quad a scenario's result must contain.
type ExpectedSPO struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
}

// LoadManifest reads and decodes a scenario manifest file.
func LoadManifest(path string) (*ScenarioManifest, error) {
	data, err := os.ReadFile(path) // #nosec G304 - manifest path is operator-supplied, not untrusted input
	if err != nil {
		return nil, fmt.Errorf("vgptest: failed to read manifest: %w", err)
	}

	var m ScenarioManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("vgptest: failed to parse manifest: %w", err)
	}
	return &m, nil
}
