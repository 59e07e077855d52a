package vgp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aleksaelezovic/vgpstore/pkg/rdf"
)

// ResourceKind tags the kind of resource an IRI decodes to.
type ResourceKind byte

const (
	ResourceUnknown ResourceKind = iota
	ResourceNode
	ResourcePath
	ResourceStep
	ResourcePosition
)

// Resource is the decoded form of an IRI produced by classify. Only the
// fields relevant to Kind are populated:
//   - ResourceNode:     Node
//   - ResourcePath:     PathName
//   - ResourceStep:     PathName, Rank
//   - ResourcePosition: PathName, Position
type Resource struct {
	Kind     ResourceKind
	Node     uint64
	PathName string
	Rank     uint64
	Position uint64
}

// Codec builds and parses the IRIs the VGP projects, all rooted at a
// single configured base. It holds no other state and is safe for
// concurrent use by multiple goroutines.
type Codec struct {
	base string
}

// NewCodec creates a Codec rooted at base. base should not have a
// trailing slash; it is used verbatim as a string prefix.
func NewCodec(base string) *Codec {
	return &Codec{base: base}
}

func (c *Codec) NodeIRI(n uint64) *rdf.NamedNode {
	return rdf.NewNamedNode(fmt.Sprintf("%s/node/%d", c.base, n))
}

func (c *Codec) PathIRI(name string) *rdf.NamedNode {
	return rdf.NewNamedNode(fmt.Sprintf("%s/path/%s", c.base, name))
}

func (c *Codec) StepIRI(pathName string, rank uint64) *rdf.NamedNode {
	return rdf.NewNamedNode(fmt.Sprintf("%s/path/%s/step/%d", c.base, pathName, rank))
}

func (c *Codec) PositionIRI(pathName string, position uint64) *rdf.NamedNode {
	return rdf.NewNamedNode(fmt.Sprintf("%s/path/%s/position/%d", c.base, pathName, position))
}

// Classify decodes term into a Resource, splitting its IRI path on "/"
// and inspecting the last up to four segments from the right. Classify
// never fails: anything it cannot recognize decodes to ResourceUnknown,
// which callers treat as "no such resource" rather than an error.
func (c *Codec) Classify(term rdf.Term) Resource {
	nn := asNamedNode(term)
	if nn == nil {
		return Resource{Kind: ResourceUnknown}
	}
	return c.classifyIRI(nn.IRI)
}

func (c *Codec) classifyIRI(iri string) Resource {
	segments := strings.Split(iri, "/")
	n := len(segments)

	last := func(offsetFromEnd int) (string, bool) {
		idx := n - offsetFromEnd
		if idx < 0 {
			return "", false
		}
		return segments[idx], true
	}

	if seg, ok := last(2); ok && seg == "node" {
		if id, ok := last(1); ok {
			if num, err := strconv.ParseUint(id, 10, 64); err == nil {
				return Resource{Kind: ResourceNode, Node: num}
			}
		}
		return Resource{Kind: ResourceUnknown}
	}

	if a, okA := last(4); okA && a == "path" {
		if b, okB := last(2); okB {
			pathName, _ := last(3)
			tail, _ := last(1)
			switch b {
			case "step":
				if rank, err := strconv.ParseUint(tail, 10, 64); err == nil {
					return Resource{Kind: ResourceStep, PathName: pathName, Rank: rank}
				}
				return Resource{Kind: ResourceUnknown}
			case "position":
				if pos, err := strconv.ParseUint(tail, 10, 64); err == nil {
					return Resource{Kind: ResourcePosition, PathName: pathName, Position: pos}
				}
				return Resource{Kind: ResourceUnknown}
			}
		}
	}

	if seg, ok := last(2); ok && seg == "path" {
		if name, ok := last(1); ok {
			return Resource{Kind: ResourcePath, PathName: name}
		}
	}

	return Resource{Kind: ResourceUnknown}
}

// NodeIDOf returns the node id encoded in term, and true iff term
// classifies as a node resource.
func (c *Codec) NodeIDOf(term rdf.Term) (uint64, bool) {
	r := c.Classify(term)
	if r.Kind != ResourceNode {
		return 0, false
	}
	return r.Node, true
}
