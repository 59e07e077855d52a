// Package vgp implements the Virtual Graph Projector: it answers SPARQL
// quad-pattern lookups against a pangenome sequence graph without ever
// materializing RDF triples on disk. Every statement about the graph is
// computed on demand from a Graph handle by decoding the IRI of a bound
// subject, or by enumerating the graph's structure when nothing is bound.
//
// The projector never stores state between calls: QuadsForPattern takes
// a pattern, asks the classifier which strategy applies, runs the
// corresponding projector, and returns the resulting quads as a fresh
// iterator.
package vgp
