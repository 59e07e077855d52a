package vgp

import (
	"unicode/utf8"

	"github.com/aleksaelezovic/vgpstore/pkg/rdf"
)

// projectPaths produces the path type triple and its rdfs:label, for
// each candidate path.
func (p *Projector) projectPaths(subject, predicate, object, graphName rdf.Term) ([]*rdf.Quad, error) {
	names, err := p.pathCandidates(subject)
	if err != nil {
		return nil, err
	}

	var quads []*rdf.Quad
	for _, name := range names {
		pathIRI := p.codec.PathIRI(name)

		if termsEqual(predicate, RDFType) && termsEqual(object, VGPath) {
			quads = append(quads, rdf.NewQuad(pathIRI, RDFType, VGPath, graphName))
		}

		label := rdf.NewLiteral(name)
		if termsEqual(predicate, RDFSLabel) && termsEqual(object, label) {
			quads = append(quads, rdf.NewQuad(pathIRI, RDFSLabel, label, graphName))
		}
	}
	return quads, nil
}

// pathCandidates resolves the candidate path names for a pattern: the
// single path decoded from subject when bound and present in the graph,
// every path name when subject is unbound (skipping any path whose name
// is not valid UTF-8), or none when subject names anything else.
func (p *Projector) pathCandidates(subject rdf.Term) ([]string, error) {
	if subject != nil {
		r := p.codec.Classify(subject)
		if r.Kind != ResourcePath {
			return nil, nil
		}
		if _, ok := p.graph.PathIDByName([]byte(r.PathName)); !ok {
			return nil, nil
		}
		return []string{r.PathName}, nil
	}

	it, err := p.graph.PathIDs()
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var names []string
	for it.Next() {
		nameBytes, err := p.graph.PathName(it.Path())
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(nameBytes) {
			continue
		}
		names = append(names, string(nameBytes))
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return names, nil
}
