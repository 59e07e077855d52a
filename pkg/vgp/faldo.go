package vgp

import (
	"strconv"

	"github.com/aleksaelezovic/vgpstore/pkg/rdf"
)

// faldoQuads produces the four quads describing the position resource at
// base-position k of path pathName.
func (p *Projector) faldoQuads(pathName string, k uint64, predicate, object, graphName rdf.Term) []*rdf.Quad {
	q := p.codec.PositionIRI(pathName, k)
	pathIRI := p.codec.PathIRI(pathName)

	var quads []*rdf.Quad
	emit := func(pred *rdf.NamedNode, obj rdf.Term) {
		if termsEqual(predicate, pred) && termsEqual(object, obj) {
			quads = append(quads, rdf.NewQuad(q, pred, obj, graphName))
		}
	}

	emit(FALDOPosition, integerLiteral(k))
	emit(RDFType, FALDOExactPosition)
	emit(RDFType, FALDOPositionType)
	emit(FALDOReference, pathIRI)

	return quads
}

func integerLiteral(v uint64) *rdf.Literal {
	return rdf.NewLiteralWithDatatype(strconv.FormatUint(v, 10), rdf.XSDInteger)
}
