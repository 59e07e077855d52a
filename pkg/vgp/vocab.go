package vgp

import "github.com/aleksaelezovic/vgpstore/pkg/rdf"

// Vocabulary namespaces. These match the IRIs the vg toolkit and odgi emit
// when they serialize a pangenome graph as RDF.
const (
	nsRDF   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	nsRDFS  = "http://www.w3.org/2000/01/rdf-schema#"
	nsVG    = "http://biohackathon.org/resource/vg#"
	nsFALDO = "http://biohackathon.org/resource/faldo#"
)

// Predicate and type constants. These are read-only compile-time values;
// the VGP never constructs new vocabulary IRIs at runtime.
var (
	RDFType  = rdf.NewNamedNode(nsRDF + "type")
	RDFValue = rdf.NewNamedNode(nsRDF + "value")

	RDFSLabel = rdf.NewNamedNode(nsRDFS + "label")

	VGNode = rdf.NewNamedNode(nsVG + "Node")
	VGPath = rdf.NewNamedNode(nsVG + "Path")
	VGStep = rdf.NewNamedNode(nsVG + "Step")

	VGLinks                   = rdf.NewNamedNode(nsVG + "links")
	VGLinksForwardToForward   = rdf.NewNamedNode(nsVG + "linksForwardToForward")
	VGLinksForwardToReverse   = rdf.NewNamedNode(nsVG + "linksForwardToReverse")
	VGLinksReverseToForward   = rdf.NewNamedNode(nsVG + "linksReverseToForward")
	VGLinksReverseToReverse   = rdf.NewNamedNode(nsVG + "linksReverseToReverse")

	VGRank          = rdf.NewNamedNode(nsVG + "rank")
	VGPosition      = rdf.NewNamedNode(nsVG + "position")
	VGPath_         = rdf.NewNamedNode(nsVG + "path") // vg:path, named to avoid clashing with the PathID type
	VGNodeStep      = rdf.NewNamedNode(nsVG + "node")
	VGReverseOfNode = rdf.NewNamedNode(nsVG + "reverseOfNode")

	FALDOBegin     = rdf.NewNamedNode(nsFALDO + "begin")
	FALDOEnd       = rdf.NewNamedNode(nsFALDO + "end")
	FALDOReference = rdf.NewNamedNode(nsFALDO + "reference")
	FALDOPosition  = rdf.NewNamedNode(nsFALDO + "position")

	FALDORegion        = rdf.NewNamedNode(nsFALDO + "Region")
	FALDOExactPosition = rdf.NewNamedNode(nsFALDO + "ExactPosition")
	FALDOPositionType  = rdf.NewNamedNode(nsFALDO + "Position")
)

// nodeEdgePredicates is the node-related edge predicate family.
var nodeEdgePredicates = []*rdf.NamedNode{
	VGLinks,
	VGLinksForwardToForward,
	VGLinksForwardToReverse,
	VGLinksReverseToForward,
	VGLinksReverseToReverse,
}

// stepAssociatedPredicates is the step-associated predicate family.
var stepAssociatedPredicates = []*rdf.NamedNode{
	VGRank,
	VGPosition,
	VGPath_,
	VGNodeStep,
	VGReverseOfNode,
	FALDOBegin,
	FALDOEnd,
	FALDOReference,
	FALDOPosition,
}

// asNamedNode returns term as a *rdf.NamedNode, or nil if term is unbound
// or not a named node.
func asNamedNode(term rdf.Term) *rdf.NamedNode {
	if term == nil {
		return nil
	}
	nn, ok := term.(*rdf.NamedNode)
	if !ok {
		return nil
	}
	return nn
}

// iriIn reports whether term is a bound NamedNode equal to one of candidates.
func iriIn(term rdf.Term, candidates ...*rdf.NamedNode) bool {
	nn := asNamedNode(term)
	if nn == nil {
		return false
	}
	for _, c := range candidates {
		if nn.IRI == c.IRI {
			return true
		}
	}
	return false
}

// isNodeEdgePredicate reports whether predicate is bound and a member of
// the node-related edge predicate family. An unbound (nil) predicate is
// not a member of any specific family.
func isNodeEdgePredicate(predicate rdf.Term) bool {
	return iriIn(predicate, nodeEdgePredicates...)
}

// isStepAssociatedPredicate reports whether predicate is bound and a
// member of the step-associated predicate family.
func isStepAssociatedPredicate(predicate rdf.Term) bool {
	return iriIn(predicate, stepAssociatedPredicates...)
}

// isRDFType reports whether term is bound and equal to rdf:type.
func isRDFType(term rdf.Term) bool {
	return iriIn(term, RDFType)
}

// isRDFSLabel reports whether term is bound and equal to rdfs:label.
func isRDFSLabel(term rdf.Term) bool {
	return iriIn(term, RDFSLabel)
}

// termsEqual reports whether a bound filter value equals a produced term.
// A nil filter always matches (wildcard).
func termsEqual(filter, produced rdf.Term) bool {
	if filter == nil {
		return true
	}
	return filter.Equals(produced)
}
