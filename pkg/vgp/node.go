package vgp

import "github.com/aleksaelezovic/vgpstore/pkg/rdf"

// projectNodes produces the type triple, the sequence triple, and (by
// delegation) every edge quad for each candidate node.
func (p *Projector) projectNodes(subject, predicate, object, graphName rdf.Term) ([]*rdf.Quad, error) {
	ids, err := p.nodeCandidates(subject)
	if err != nil {
		return nil, err
	}

	var quads []*rdf.Quad
	for _, id := range ids {
		h := Handle{Node: id, Orientation: Forward}
		nodeIRI := p.codec.NodeIRI(id)

		if termsEqual(predicate, RDFType) && termsEqual(object, VGNode) {
			quads = append(quads, rdf.NewQuad(nodeIRI, RDFType, VGNode, graphName))
		}

		if termsEqual(predicate, RDFValue) {
			seq, err := p.graph.SequenceVec(h)
			if err != nil {
				return nil, err
			}
			lit := rdf.NewLiteral(string(seq))
			if termsEqual(object, lit) {
				quads = append(quads, rdf.NewQuad(nodeIRI, RDFValue, lit, graphName))
			}
		}

		edgeQuads, err := p.projectEdgesForHandle(h, predicate, object, graphName)
		if err != nil {
			return nil, err
		}
		quads = append(quads, edgeQuads...)
	}
	return quads, nil
}

// nodeCandidates resolves the candidate node ids for a pattern: the single
// node decoded from subject when it is bound and names a node that exists
// in the graph, all graph node ids when subject is unbound, or none when
// subject is bound to anything else (a decode miss).
func (p *Projector) nodeCandidates(subject rdf.Term) ([]uint64, error) {
	if subject != nil {
		id, ok := p.codec.NodeIDOf(subject)
		if !ok || !p.graph.HasNode(id) {
			return nil, nil
		}
		return []uint64{id}, nil
	}

	it, err := p.graph.Handles()
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var ids []uint64
	for it.Next() {
		ids = append(ids, it.Handle())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
