package vgp

import (
	"fmt"
	"testing"

	"github.com/aleksaelezovic/vgpstore/pkg/rdf"
)

// fixtureGraph is a minimal hand-rolled Graph used only by this package's
// own tests, so pkg/vgp does not depend on internal/pangenome.
type fixtureGraph struct {
	sequences map[uint64]string
	edges     map[uint64][]Handle
	pathNames []string
	pathSteps map[string][]Handle
}

func newFixtureGraph() *fixtureGraph {
	return &fixtureGraph{
		sequences: make(map[uint64]string),
		edges:     make(map[uint64][]Handle),
		pathSteps: make(map[string][]Handle),
	}
}

func (g *fixtureGraph) addNode(id uint64, seq string) {
	g.sequences[id] = seq
}

func (g *fixtureGraph) addEdge(from uint64, to Handle) {
	g.edges[from] = append(g.edges[from], to)
}

func (g *fixtureGraph) addPath(name string, steps []Handle) {
	g.pathNames = append(g.pathNames, name)
	g.pathSteps[name] = steps
}

func (g *fixtureGraph) Handles() (HandleIterator, error) {
	var ids []uint64
	for id := range g.sequences {
		ids = append(ids, id)
	}
	return &fixtureHandleIter{ids: ids, pos: -1}, nil
}

func (g *fixtureGraph) HasNode(id uint64) bool {
	_, ok := g.sequences[id]
	return ok
}

func (g *fixtureGraph) SequenceVec(h Handle) ([]byte, error) {
	seq, ok := g.sequences[h.Node]
	if !ok {
		return nil, fmt.Errorf("fixture: unknown node %d", h.Node)
	}
	return []byte(seq), nil
}

func (g *fixtureGraph) NodeLen(h Handle) (uint64, error) {
	seq, err := g.SequenceVec(h)
	if err != nil {
		return 0, err
	}
	return uint64(len(seq)), nil
}

func (g *fixtureGraph) Neighbors(h Handle) (NeighborIterator, error) {
	return &fixtureNeighborIter{handles: g.edges[h.Node], pos: -1}, nil
}

func (g *fixtureGraph) PathIDs() (PathIterator, error) {
	ids := make([]PathID, len(g.pathNames))
	for i := range g.pathNames {
		ids[i] = PathID(i)
	}
	return &fixturePathIter{ids: ids, pos: -1}, nil
}

func (g *fixtureGraph) PathName(p PathID) ([]byte, error) {
	if int(p) >= len(g.pathNames) {
		return nil, fmt.Errorf("fixture: unknown path %d", p)
	}
	return []byte(g.pathNames[p]), nil
}

func (g *fixtureGraph) PathIDByName(name []byte) (PathID, bool) {
	for i, n := range g.pathNames {
		if n == string(name) {
			return PathID(i), true
		}
	}
	return 0, false
}

type fixtureStep struct {
	path string
	idx  int
}

func (g *fixtureGraph) FirstStep(p PathID) (StepRef, bool) {
	name := g.pathNames[p]
	if len(g.pathSteps[name]) == 0 {
		return nil, false
	}
	return fixtureStep{path: name, idx: 0}, true
}

func (g *fixtureGraph) NextStep(s StepRef) (StepRef, bool) {
	fs := s.(fixtureStep)
	next := fixtureStep{path: fs.path, idx: fs.idx + 1}
	if next.idx >= len(g.pathSteps[next.path]) {
		return nil, false
	}
	return next, true
}

func (g *fixtureGraph) StepHandle(s StepRef) Handle {
	fs := s.(fixtureStep)
	return g.pathSteps[fs.path][fs.idx]
}

func (g *fixtureGraph) StepAtBase(p PathID, k uint64) (StepRef, bool) {
	name := g.pathNames[p]
	position := uint64(1)
	for i, h := range g.pathSteps[name] {
		n, _ := g.NodeLen(h)
		if k >= position && k < position+n {
			return fixtureStep{path: name, idx: i}, true
		}
		position += n
	}
	return nil, false
}

func (g *fixtureGraph) PackedOrdinal(s StepRef) uint64 {
	return uint64(s.(fixtureStep).idx)
}

type fixtureHandleIter struct {
	ids []uint64
	pos int
}

func (it *fixtureHandleIter) Next() bool   { it.pos++; return it.pos < len(it.ids) }
func (it *fixtureHandleIter) Handle() uint64 { return it.ids[it.pos] }
func (it *fixtureHandleIter) Err() error   { return nil }
func (it *fixtureHandleIter) Close() error { return nil }

type fixtureNeighborIter struct {
	handles []Handle
	pos     int
}

func (it *fixtureNeighborIter) Next() bool   { it.pos++; return it.pos < len(it.handles) }
func (it *fixtureNeighborIter) Handle() Handle { return it.handles[it.pos] }
func (it *fixtureNeighborIter) Err() error   { return nil }
func (it *fixtureNeighborIter) Close() error { return nil }

type fixturePathIter struct {
	ids []PathID
	pos int
}

func (it *fixturePathIter) Next() bool   { it.pos++; return it.pos < len(it.ids) }
func (it *fixturePathIter) Path() PathID { return it.ids[it.pos] }
func (it *fixturePathIter) Err() error   { return nil }
func (it *fixturePathIter) Close() error { return nil }

func drain(t *testing.T, it QuadIterator) []*rdf.Quad {
	t.Helper()
	var quads []*rdf.Quad
	for it.Next() {
		quads = append(quads, it.Quad())
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iterator error: %v", err)
	}
	return quads
}

func containsQuad(quads []*rdf.Quad, s, p, o rdf.Term) bool {
	for _, q := range quads {
		if q.Subject.Equals(s) && q.Predicate.Equals(p) && q.Object.Equals(o) {
			return true
		}
	}
	return false
}

const base = "https://example.org"

// Scenario A: single node 1 with sequence "CAAATAAG" and no edges/paths.
func TestScenarioA_SingleNode(t *testing.T) {
	g := newFixtureGraph()
	g.addNode(1, "CAAATAAG")
	p := NewProjector(base, g)

	quads := drain(t, p.QuadsForPattern(nil, nil, nil, rdf.NewDefaultGraph()))
	if len(quads) != 2 {
		t.Fatalf("expected 2 quads, got %d: %v", len(quads), quads)
	}

	nodeIRI := rdf.NewNamedNode(base + "/node/1")
	if !containsQuad(quads, nodeIRI, RDFType, VGNode) {
		t.Error("missing type quad")
	}
	if !containsQuad(quads, nodeIRI, RDFValue, rdf.NewLiteral("CAAATAAG")) {
		t.Error("missing sequence quad")
	}
}

// Scenario B: two nodes with a forward-forward edge.
func TestScenarioB_ForwardEdge(t *testing.T) {
	g := newFixtureGraph()
	g.addNode(1, "AA")
	g.addNode(2, "CC")
	g.addEdge(1, Handle{Node: 2, Orientation: Forward})
	p := NewProjector(base, g)

	quads := drain(t, p.QuadsForPattern(nil, nil, nil, rdf.NewDefaultGraph()))
	if len(quads) != 6 {
		t.Fatalf("expected 6 quads, got %d: %v", len(quads), quads)
	}

	n1, n2 := rdf.NewNamedNode(base+"/node/1"), rdf.NewNamedNode(base+"/node/2")
	if !containsQuad(quads, n1, VGLinks, n2) {
		t.Error("missing vg:links quad")
	}
	if !containsQuad(quads, n1, VGLinksForwardToForward, n2) {
		t.Error("missing vg:linksForwardToForward quad")
	}
}

func buildPathGraph() *fixtureGraph {
	g := newFixtureGraph()
	g.addNode(1, "CAAATAAG") // length 8
	g.addNode(2, "C")        // length 1
	g.addPath("x", []Handle{
		{Node: 1, Orientation: Forward},
		{Node: 2, Orientation: Forward},
	})
	return g
}

// Scenario C: path x with two forward steps over nodes 1 (len 8) then 2 (len 1).
func TestScenarioC_StepSeek(t *testing.T) {
	g := buildPathGraph()
	p := NewProjector(base, g)

	stepIRI := rdf.NewNamedNode(base + "/path/x/step/1")
	quads := drain(t, p.QuadsForPattern(stepIRI, nil, nil, rdf.NewDefaultGraph()))
	if len(quads) != 8 {
		t.Fatalf("expected 8 quads, got %d: %v", len(quads), quads)
	}

	nodeIRI := rdf.NewNamedNode(base + "/node/1")
	pathIRI := rdf.NewNamedNode(base + "/path/x")
	beg := rdf.NewNamedNode(base + "/path/x/position/1")
	end := rdf.NewNamedNode(base + "/path/x/position/9")

	for _, want := range []struct {
		pred *rdf.NamedNode
		obj  rdf.Term
	}{
		{RDFType, VGStep},
		{RDFType, FALDORegion},
		{VGNodeStep, nodeIRI},
		{VGRank, integerLiteral(1)},
		{VGPosition, integerLiteral(1)},
		{VGPath_, pathIRI},
		{FALDOBegin, beg},
		{FALDOEnd, end},
	} {
		if !containsQuad(quads, stepIRI, want.pred, want.obj) {
			t.Errorf("missing quad (%s, %s, %s)", stepIRI, want.pred, want.obj)
		}
	}
}

func TestScenarioC_TypeScan(t *testing.T) {
	g := buildPathGraph()
	p := NewProjector(base, g)

	quads := drain(t, p.QuadsForPattern(nil, RDFType, nil, rdf.NewDefaultGraph()))

	stepPrefix := base + "/path/x/"
	var count int
	for _, q := range quads {
		if nn, ok := q.Subject.(*rdf.NamedNode); ok && len(nn.IRI) > len(stepPrefix) && nn.IRI[:len(stepPrefix)] == stepPrefix {
			count++
		}
	}
	if count != 12 {
		t.Fatalf("expected 12 type quads restricted to path x subjects, got %d", count)
	}
}

// Scenario D: seek by position.
func TestScenarioD_SeekPosition(t *testing.T) {
	g := buildPathGraph()
	p := NewProjector(base, g)

	posIRI := rdf.NewNamedNode(base + "/path/x/position/9")
	quads := drain(t, p.QuadsForPattern(posIRI, nil, nil, rdf.NewDefaultGraph()))
	if len(quads) != 4 {
		t.Fatalf("expected 4 quads, got %d: %v", len(quads), quads)
	}

	pathIRI := rdf.NewNamedNode(base + "/path/x")
	for _, want := range []struct {
		pred *rdf.NamedNode
		obj  rdf.Term
	}{
		{FALDOPosition, integerLiteral(9)},
		{RDFType, FALDOExactPosition},
		{RDFType, FALDOPositionType},
		{FALDOReference, pathIRI},
	} {
		if !containsQuad(quads, posIRI, want.pred, want.obj) {
			t.Errorf("missing quad (%s, %s, %s)", posIRI, want.pred, want.obj)
		}
	}
}

// Scenario E: blank node subject yields nothing.
func TestScenarioE_BlankNodeSubject(t *testing.T) {
	g := buildPathGraph()
	p := NewProjector(base, g)

	quads := drain(t, p.QuadsForPattern(rdf.NewBlankNode("b"), nil, nil, rdf.NewDefaultGraph()))
	if len(quads) != 0 {
		t.Fatalf("expected no quads, got %d", len(quads))
	}
}

// Scenario F: unbound subject, predicate not in any family.
func TestScenarioF_UnknownPredicate(t *testing.T) {
	g := buildPathGraph()
	p := NewProjector(base, g)

	unknown := rdf.NewNamedNode("https://example.org/unrelated#predicate")
	quads := drain(t, p.QuadsForPattern(nil, unknown, nil, rdf.NewDefaultGraph()))
	if len(quads) != 0 {
		t.Fatalf("expected no quads, got %d", len(quads))
	}
}

func TestCodecClassify(t *testing.T) {
	c := NewCodec(base)

	tests := []struct {
		name string
		term rdf.Term
		kind ResourceKind
	}{
		{"node", rdf.NewNamedNode(base + "/node/1"), ResourceNode},
		{"path", rdf.NewNamedNode(base + "/path/x"), ResourcePath},
		{"step", rdf.NewNamedNode(base + "/path/x/step/3"), ResourceStep},
		{"position", rdf.NewNamedNode(base + "/path/x/position/9"), ResourcePosition},
		{"unrelated", rdf.NewNamedNode(base + "/graph/whatever"), ResourceUnknown},
		{"blank node", rdf.NewBlankNode("b1"), ResourceUnknown},
		{"literal", rdf.NewLiteral("x"), ResourceUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.term).Kind; got != tt.kind {
				t.Errorf("Classify(%v) kind = %v, want %v", tt.term, got, tt.kind)
			}
		})
	}
}

func TestClassifierDispatch(t *testing.T) {
	g := buildPathGraph()
	p := NewProjector(base, g)

	tests := []struct {
		name      string
		subject   rdf.Term
		predicate rdf.Term
		object    rdf.Term
		want      target
	}{
		{"all wildcard", nil, nil, nil, targetAll},
		{"type filter node", nil, RDFType, VGNode, targetNodes},
		{"type filter path", nil, RDFType, VGPath, targetPaths},
		{"type filter step", nil, RDFType, VGStep, targetSteps},
		{"edge predicate", nil, VGLinks, nil, targetNodes},
		{"step predicate", nil, VGRank, nil, targetSteps},
		{"label predicate", nil, RDFSLabel, nil, targetPaths},
		{"bound node subject", rdf.NewNamedNode(base + "/node/1"), nil, nil, targetNodes},
		{"bound blank subject", rdf.NewBlankNode("b"), nil, nil, targetEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.classify(tt.subject, tt.predicate, tt.object); got != tt.want {
				t.Errorf("classify() = %v, want %v", got, tt.want)
			}
		})
	}
}
