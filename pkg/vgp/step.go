package vgp

import "github.com/aleksaelezovic/vgpstore/pkg/rdf"

// projectSteps dispatches to enumeration mode when subject is unbound,
// or to one of the two seek modes when subject decodes to a Step or
// Position resource.
func (p *Projector) projectSteps(subject, predicate, object, graphName rdf.Term) ([]*rdf.Quad, error) {
	if subject == nil {
		return p.enumerateSteps(predicate, object, graphName)
	}

	r := p.codec.Classify(subject)
	switch r.Kind {
	case ResourceStep:
		return p.seekStepByRank(r.PathName, r.Rank, predicate, object, graphName)
	case ResourcePosition:
		return p.seekPosition(r.PathName, r.Position, predicate, object, graphName)
	default:
		return nil, nil
	}
}

// enumerateSteps walks every path's steps in order, maintaining a
// (rank, position) cursor, and projects each step's quads plus, since
// this is enumeration mode, the FALDO position resources it begins and
// ends at.
func (p *Projector) enumerateSteps(predicate, object, graphName rdf.Term) ([]*rdf.Quad, error) {
	names, err := p.pathCandidates(nil)
	if err != nil {
		return nil, err
	}

	var quads []*rdf.Quad
	for _, name := range names {
		pathID, ok := p.graph.PathIDByName([]byte(name))
		if !ok {
			continue
		}

		step, ok := p.graph.FirstStep(pathID)
		rank, position := uint64(1), uint64(1)
		for ok {
			h := p.graph.StepHandle(step)
			n, err := p.graph.NodeLen(h)
			if err != nil {
				return nil, err
			}

			stepQuads, err := p.stepQuads(name, rank, position, n, h, predicate, object, graphName, true)
			if err != nil {
				return nil, err
			}
			quads = append(quads, stepQuads...)

			position += n
			rank++
			step, ok = p.graph.NextStep(step)
		}
	}
	return quads, nil
}

// seekStepByRank walks the same cursor as enumerateSteps but stops as
// soon as it reaches targetRank, so an off-by-one never emits the wrong
// step even when the path has exactly one step. No FALDO position quads
// are produced in seek mode: the consumer asked for a step resource, not
// a position resource, so those are retrieved through their own subject
// IRI in a separate call.
func (p *Projector) seekStepByRank(pathName string, targetRank uint64, predicate, object, graphName rdf.Term) ([]*rdf.Quad, error) {
	pathID, ok := p.graph.PathIDByName([]byte(pathName))
	if !ok {
		return nil, nil
	}

	step, ok := p.graph.FirstStep(pathID)
	rank, position := uint64(1), uint64(1)
	for ok {
		h := p.graph.StepHandle(step)
		n, err := p.graph.NodeLen(h)
		if err != nil {
			return nil, err
		}

		if rank == targetRank {
			return p.stepQuads(pathName, rank, position, n, h, predicate, object, graphName, false)
		}

		position += n
		rank++
		step, ok = p.graph.NextStep(step)
	}
	return nil, nil // rank out of range: decode miss, no quads
}

// seekPosition answers a pattern whose subject is a position resource
// directly from the FALDO helper, after confirming the base position is
// actually covered by some step of the path.
func (p *Projector) seekPosition(pathName string, k uint64, predicate, object, graphName rdf.Term) ([]*rdf.Quad, error) {
	pathID, ok := p.graph.PathIDByName([]byte(pathName))
	if !ok {
		return nil, nil
	}
	if _, ok := p.graph.StepAtBase(pathID, k); !ok {
		return nil, nil
	}
	return p.faldoQuads(pathName, k, predicate, object, graphName), nil
}

// stepQuads builds the fixed set of quads describing one step: its type,
// its node (or reverse-of-node) link, rank, position, path membership,
// and FALDO begin/end, plus the two FALDO position resources when called
// from enumeration mode.
func (p *Projector) stepQuads(pathName string, rank, position, nodeLen uint64, h Handle, predicate, object, graphName rdf.Term, enumeration bool) ([]*rdf.Quad, error) {
	s := p.codec.StepIRI(pathName, rank)
	n := p.codec.NodeIRI(h.Node)
	pathIRI := p.codec.PathIRI(pathName)
	beg := p.codec.PositionIRI(pathName, position)
	end := p.codec.PositionIRI(pathName, position+nodeLen)

	var quads []*rdf.Quad
	emit := func(pred *rdf.NamedNode, obj rdf.Term) {
		if termsEqual(predicate, pred) && termsEqual(object, obj) {
			quads = append(quads, rdf.NewQuad(s, pred, obj, graphName))
		}
	}

	emit(RDFType, VGStep)
	emit(RDFType, FALDORegion)
	if h.Orientation == Forward {
		emit(VGNodeStep, n)
	} else {
		emit(VGReverseOfNode, n)
	}
	emit(VGRank, integerLiteral(rank))
	emit(VGPosition, integerLiteral(position))
	emit(VGPath_, pathIRI)
	emit(FALDOBegin, beg)
	emit(FALDOEnd, end)

	if enumeration {
		quads = append(quads, p.faldoQuads(pathName, position, predicate, object, graphName)...)
		quads = append(quads, p.faldoQuads(pathName, position+nodeLen, predicate, object, graphName)...)
	}

	return quads, nil
}
