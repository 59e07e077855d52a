package vgp

import "github.com/aleksaelezovic/vgpstore/pkg/rdf"

// projectEdgesForHandle walks h's right-neighbors and emits the generic
// vg:links quad plus the orientation-specific link quad for each.
func (p *Projector) projectEdgesForHandle(h Handle, predicate, object, graphName rdf.Term) ([]*rdf.Quad, error) {
	it, err := p.graph.Neighbors(h)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var quads []*rdf.Quad
	for it.Next() {
		m := it.Handle()

		if object != nil {
			id, ok := p.codec.NodeIDOf(object)
			if !ok || id != m.Node {
				continue
			}
		}

		sourceIRI := p.codec.NodeIRI(h.Node)
		targetIRI := p.codec.NodeIRI(m.Node)

		if termsEqual(predicate, VGLinks) {
			quads = append(quads, rdf.NewQuad(sourceIRI, VGLinks, targetIRI, graphName))
		}

		specific := orientationLinkPredicate(h.Orientation, m.Orientation)
		if termsEqual(predicate, specific) {
			quads = append(quads, rdf.NewQuad(sourceIRI, specific, targetIRI, graphName))
		}
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return quads, nil
}

// orientationLinkPredicate picks the orientation-specific link predicate
// for a (source, target) orientation pair.
func orientationLinkPredicate(source, target Orientation) *rdf.NamedNode {
	switch {
	case source == Forward && target == Forward:
		return VGLinksForwardToForward
	case source == Forward && target == Reverse:
		return VGLinksForwardToReverse
	case source == Reverse && target == Forward:
		return VGLinksReverseToForward
	default:
		return VGLinksReverseToReverse
	}
}
