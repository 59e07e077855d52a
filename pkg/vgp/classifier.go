package vgp

import "github.com/aleksaelezovic/vgpstore/pkg/rdf"

// target names which family of projector(s) a pattern routes to. The
// projector functions each already accept (subject, predicate, object) and
// narrow their own candidate set from subject, so every rule that ends up
// wanting "the node projector" (directly, via rdf:type, or via an edge
// predicate) converges on the same target; the predicate/object filters
// are re-applied inside the projector regardless of which rule sent it
// there.
type target byte

const (
	targetEmpty target = iota
	targetNodes
	targetPaths
	targetSteps
	targetAll
)

// classify decides which projector family should run for an optional
// subject, predicate, and object. Rules are evaluated in order; the first
// that matches wins.
//
// Subject-bound dispatch runs before the catch-all, and the catch-all
// fires whenever nothing more specific matched and the subject is
// unbound, regardless of whether predicate/object happen to be bound.
// A pattern like (None, rdf:type, None), rdf:type bound with the object
// left open, needs to reach the catch-all rather than fall through to
// Empty, since a bare rdf:type scan returns type triples for every
// resource kind. Each target's own projector still re-applies the
// predicate/object filter, so an unrelated bound predicate still narrows
// the union down to nothing, matching an unknown predicate yielding an
// empty result.
func (p *Projector) classify(subject, predicate, object rdf.Term) target {
	// Rule 1: blank nodes never name a projected resource.
	if isBlankNode(subject) || isBlankNode(object) {
		return targetEmpty
	}

	// Rule 2: rdf:type with a bound object dispatches on the object's IRI.
	if isRDFType(predicate) && object != nil {
		switch {
		case termsEqual(object, VGNode):
			return targetNodes
		case termsEqual(object, VGPath):
			return targetPaths
		case termsEqual(object, VGStep), termsEqual(object, FALDORegion),
			termsEqual(object, FALDOExactPosition), termsEqual(object, FALDOPositionType):
			return targetSteps
		default:
			return targetEmpty
		}
	}

	// Rule 3: node-related edge predicates.
	if isNodeEdgePredicate(predicate) {
		return targetNodes
	}

	// Rule 4: step-associated predicates.
	if isStepAssociatedPredicate(predicate) {
		return targetSteps
	}

	// Rule 5: rdfs:label only ever appears on path resources.
	if isRDFSLabel(predicate) {
		return targetPaths
	}

	// Rule 6: a bound subject's IRI shape picks the projector.
	if subject != nil {
		switch p.codec.Classify(subject).Kind {
		case ResourceNode:
			return targetNodes
		case ResourcePath:
			return targetPaths
		case ResourceStep, ResourcePosition:
			return targetSteps
		default:
			return targetEmpty
		}
	}

	// Rule 7: nothing more specific matched and the subject is unbound,
	// so visit everything and let each projector's own filtering narrow it.
	return targetAll
}

func isBlankNode(term rdf.Term) bool {
	if term == nil {
		return false
	}
	_, ok := term.(*rdf.BlankNode)
	return ok
}
