package vgp

import "github.com/aleksaelezovic/vgpstore/pkg/rdf"

// Projector answers quad-pattern lookups against a single Graph, rooted at
// a single configured base IRI. It keeps no state between calls: every
// QuadsForPattern call recomputes its result from the Graph.
type Projector struct {
	codec *Codec
	graph Graph
}

// NewProjector creates a Projector. base configures the IRI schema; graph
// is the sequence-graph collaborator. Both are fixed for the lifetime of
// the Projector.
func NewProjector(base string, graph Graph) *Projector {
	return &Projector{codec: NewCodec(base), graph: graph}
}

// QuadIterator iterates over the quads produced by a single
// QuadsForPattern call. It is finite, non-restartable, and fused: once
// Next returns false, it keeps returning false. A caller that encounters
// a graph I/O error sees it from Err after Next returns false.
type QuadIterator interface {
	Next() bool
	Quad() *rdf.Quad
	Err() error
	Close() error
}

// sliceIterator adapts a pre-computed quad slice to QuadIterator. Every
// projector in this package works by building its full result slice up
// front, with no suspension points along the way, so this is the only
// iterator implementation the package needs.
type sliceIterator struct {
	quads []*rdf.Quad
	pos   int
	err   error
}

func newSliceIterator(quads []*rdf.Quad, err error) *sliceIterator {
	return &sliceIterator{quads: quads, pos: -1, err: err}
}

func (it *sliceIterator) Next() bool {
	if it.err != nil {
		return false
	}
	it.pos++
	return it.pos < len(it.quads)
}

func (it *sliceIterator) Quad() *rdf.Quad {
	if it.pos < 0 || it.pos >= len(it.quads) {
		return nil
	}
	return it.quads[it.pos]
}

func (it *sliceIterator) Err() error { return it.err }
func (it *sliceIterator) Close() error {
	it.pos = len(it.quads)
	return nil
}

// QuadsForPattern is the VGP's single external entry point: it yields
// every projected quad whose bound components (subject, predicate,
// object) match, carrying graphName through unchanged. nil arguments are
// treated as unbound (wildcard).
func (p *Projector) QuadsForPattern(subject, predicate, object, graphName rdf.Term) QuadIterator {
	switch p.classify(subject, predicate, object) {
	case targetEmpty:
		return newSliceIterator(nil, nil)
	case targetNodes:
		quads, err := p.projectNodes(subject, predicate, object, graphName)
		return newSliceIterator(quads, err)
	case targetPaths:
		quads, err := p.projectPaths(subject, predicate, object, graphName)
		return newSliceIterator(quads, err)
	case targetSteps:
		quads, err := p.projectSteps(subject, predicate, object, graphName)
		return newSliceIterator(quads, err)
	case targetAll:
		// subject is always nil here (classify only returns targetAll when
		// subject is unbound); predicate and object are forwarded as given
		// so each projector's own termsEqual filtering still narrows the
		// union, e.g. down to just the type quads for (None, rdf:type, None).
		var quads []*rdf.Quad
		nodeQuads, err := p.projectNodes(nil, predicate, object, graphName)
		if err != nil {
			return newSliceIterator(nil, err)
		}
		quads = append(quads, nodeQuads...)
		pathQuads, err := p.projectPaths(nil, predicate, object, graphName)
		if err != nil {
			return newSliceIterator(nil, err)
		}
		quads = append(quads, pathQuads...)
		stepQuads, err := p.projectSteps(nil, predicate, object, graphName)
		if err != nil {
			return newSliceIterator(nil, err)
		}
		quads = append(quads, stepQuads...)
		return newSliceIterator(quads, nil)
	default:
		return newSliceIterator(nil, nil)
	}
}
