package vgptest

import (
	"fmt"
	"os"
	"strings"

	"github.com/aleksaelezovic/vgpstore/internal/pangenome"
	"github.com/aleksaelezovic/vgpstore/pkg/rdf"
	"github.com/aleksaelezovic/vgpstore/pkg/vgp"
)

// Runner executes scenario manifests against a vgp.Projector over a
// BadgerDB-backed pangenome.
type Runner struct {
	graph     *pangenome.BadgerGraph
	projector *vgp.Projector
	stats     *Stats
}

// Stats tracks scenario execution results.
type Stats struct {
	Total  int
	Passed int
	Failed int
	Errors []ScenarioError
}

// ScenarioError records why a scenario failed.
type ScenarioError struct {
	Name  string
	Error string
}

// NewRunner opens dbPath as a BadgerDB pangenome and wraps it with a
// projector rooted at base.
func NewRunner(dbPath, base string) (*Runner, error) {
	graph, err := pangenome.OpenBadgerGraph(dbPath)
	if err != nil {
		return nil, fmt.Errorf("vgptest: failed to open pangenome: %w", err)
	}
	return &Runner{
		graph:     graph,
		projector: vgp.NewProjector(base, graph),
		stats:     &Stats{},
	}, nil
}

// Close closes the underlying pangenome.
func (r *Runner) Close() error {
	return r.graph.Close()
}

// RunManifest loads manifestPath's GFA fixture into the pangenome and runs
// every scenario it declares.
func (r *Runner) RunManifest(manifestPath string) error {
	m, err := LoadManifest(manifestPath)
	if err != nil {
		return err
	}

	gfa, err := os.Open(m.GFAFile) // #nosec G304 - manifest-declared fixture path, not untrusted input
	if err != nil {
		return fmt.Errorf("vgptest: failed to open gfa fixture: %w", err)
	}
	defer gfa.Close()

	if err := r.graph.LoadGFA(gfa); err != nil {
		return fmt.Errorf("vgptest: failed to load gfa fixture: %w", err)
	}

	for _, s := range m.Scenarios {
		r.stats.Total++
		if err := r.runScenario(s); err != nil {
			r.stats.Failed++
			r.stats.Errors = append(r.stats.Errors, ScenarioError{Name: s.Name, Error: err.Error()})
			continue
		}
		r.stats.Passed++
	}
	r.PrintSummary()
	return nil
}

func (r *Runner) runScenario(s Scenario) error {
	subject := parseTerm(s.Subject)
	predicate := parseTerm(s.Predicate)
	object := parseTerm(s.Object)

	it := r.projector.QuadsForPattern(subject, predicate, object, rdf.NewDefaultGraph())
	defer it.Close()

	var quads []*rdf.Quad
	for it.Next() {
		quads = append(quads, it.Quad())
	}
	if err := it.Err(); err != nil {
		return fmt.Errorf("graph I/O error: %w", err)
	}

	if len(quads) != s.ExpectedCount {
		return fmt.Errorf("expected %d quads, got %d", s.ExpectedCount, len(quads))
	}

	for _, want := range s.ExpectedContains {
		if !containsQuad(quads, parseTerm(want.Subject), parseTerm(want.Predicate), parseTerm(want.Object)) {
			return fmt.Errorf("missing expected quad (%s, %s, %s)", want.Subject, want.Predicate, want.Object)
		}
	}
	return nil
}

func containsQuad(quads []*rdf.Quad, s, p, o rdf.Term) bool {
	for _, q := range quads {
		if q.Subject.Equals(s) && q.Predicate.Equals(p) && q.Object.Equals(o) {
			return true
		}
	}
	return false
}

// parseTerm decodes a manifest term string: "" is unbound, "_:name" is a
// blank node, anything else is an IRI.
func parseTerm(s string) rdf.Term {
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, "_:") {
		return rdf.NewBlankNode(strings.TrimPrefix(s, "_:"))
	}
	return rdf.NewNamedNode(s)
}

// PrintSummary prints scenario execution results in the same style as the
// W3C test suite's own summary.
func (r *Runner) PrintSummary() {
	fmt.Println("\n" + strings.Repeat("━", 60))
	fmt.Println("📊 SCENARIO SUMMARY")
	fmt.Println(strings.Repeat("━", 60))
	fmt.Printf("Total:  %d\n", r.stats.Total)
	fmt.Printf("Passed: %d (%.1f%%)\n", r.stats.Passed,
		float64(r.stats.Passed)/float64(r.stats.Total)*100)
	fmt.Printf("Failed: %d\n", r.stats.Failed)

	if len(r.stats.Errors) > 0 {
		fmt.Println("\n❌ ERRORS:")
		for _, e := range r.stats.Errors {
			fmt.Printf("   • %s: %s\n", e.Name, e.Error)
		}
	}
	fmt.Println(strings.Repeat("━", 60))
}

// GetStats returns the current scenario statistics.
func (r *Runner) GetStats() *Stats {
	return r.stats
}
