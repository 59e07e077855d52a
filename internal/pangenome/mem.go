// Package pangenome provides in-memory and on-disk implementations of the
// vgp.Graph collaborator: the sequence-graph handle this repository does not
// itself define, only consumes via pkg/vgp.
package pangenome

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aleksaelezovic/vgpstore/pkg/vgp"
)

type neighbor struct {
	node        uint64
	orientation vgp.Orientation
}

type memStep struct {
	pathIdx int
	stepIdx int
}

type memPath struct {
	name  []byte
	steps []vgp.Handle
}

// MemGraph is a vgp.Graph held entirely in memory, keyed by dense node ids.
// Adjacency is stored as forward-orientation edge lists, grounded on the
// adjacency-slice layout cayley's in-memory quadstore uses for its own
// neighbor lists.
type MemGraph struct {
	sequences map[uint64][]byte
	adjacency map[uint64][]neighbor
	paths     []memPath
	byName    map[string]vgp.PathID
}

// NewMemGraph returns an empty in-memory graph.
func NewMemGraph() *MemGraph {
	return &MemGraph{
		sequences: make(map[uint64][]byte),
		adjacency: make(map[uint64][]neighbor),
		byName:    make(map[string]vgp.PathID),
	}
}

// AddNode registers a node id with its forward-strand sequence.
func (g *MemGraph) AddNode(id uint64, sequence []byte) {
	g.sequences[id] = sequence
}

// AddEdge records a directed link from (fromNode, fromOrientation) to
// (toNode, toOrientation). Callers add both directions explicitly when the
// link is meant to be traversable from either side.
func (g *MemGraph) AddEdge(fromNode uint64, fromOrientation vgp.Orientation, toNode uint64, toOrientation vgp.Orientation) {
	g.adjacency[fromNode] = append(g.adjacency[fromNode], neighbor{node: toNode, orientation: toOrientation})
	_ = fromOrientation // forward adjacency only; reverse traversal derives from Handle.Orientation at query time
}

// AddPath appends a new path made of the given ordered handles, returning
// its PathID.
func (g *MemGraph) AddPath(name string, handles []vgp.Handle) vgp.PathID {
	id := vgp.PathID(len(g.paths))
	g.paths = append(g.paths, memPath{name: []byte(name), steps: handles})
	g.byName[name] = id
	return id
}

// LoadMemGraphFromGFA parses the same GFA-like S/L/P record format
// BadgerGraph.LoadGFA accepts and builds an equivalent in-memory graph.
// Edges are recorded once per L line's forward direction only, matching
// BadgerGraph's own edge semantics.
func LoadMemGraphFromGFA(r io.Reader) (*MemGraph, error) {
	g := NewMemGraph()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		switch fields[0] {
		case "S":
			if len(fields) < 3 {
				return nil, fmt.Errorf("pangenome: malformed S line %q", line)
			}
			id, err := strconv.ParseUint(fields[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("pangenome: bad node id in %q: %w", line, err)
			}
			g.AddNode(id, []byte(fields[2]))
		case "L":
			if len(fields) < 5 {
				return nil, fmt.Errorf("pangenome: malformed L line %q", line)
			}
			from, err := strconv.ParseUint(fields[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("pangenome: bad from id in %q: %w", line, err)
			}
			to, err := strconv.ParseUint(fields[3], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("pangenome: bad to id in %q: %w", line, err)
			}
			fromOrient := orientationOf(fields[2])
			toOrient := orientationOf(fields[4])
			g.AddEdge(from, fromOrient, to, toOrient)
		case "P":
			if len(fields) < 3 {
				return nil, fmt.Errorf("pangenome: malformed P line %q", line)
			}
			name := fields[1]
			var steps []vgp.Handle
			for _, tok := range strings.Split(fields[2], ",") {
				if tok == "" {
					continue
				}
				orient := vgp.Forward
				if strings.HasSuffix(tok, "-") {
					orient = vgp.Reverse
				}
				id, err := strconv.ParseUint(strings.TrimRight(tok, "+-"), 10, 64)
				if err != nil {
					return nil, fmt.Errorf("pangenome: bad step token %q in %q: %w", tok, line, err)
				}
				steps = append(steps, vgp.Handle{Node: id, Orientation: orient})
			}
			g.AddPath(name, steps)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *MemGraph) Handles() (vgp.HandleIterator, error) {
	ids := make([]uint64, 0, len(g.sequences))
	for id := range g.sequences {
		ids = append(ids, id)
	}
	return &memHandleIterator{ids: ids, pos: -1}, nil
}

func (g *MemGraph) HasNode(id uint64) bool {
	_, ok := g.sequences[id]
	return ok
}

func (g *MemGraph) SequenceVec(h vgp.Handle) ([]byte, error) {
	seq, ok := g.sequences[h.Node]
	if !ok {
		return nil, fmt.Errorf("pangenome: unknown node %d", h.Node)
	}
	if h.Orientation == vgp.Reverse {
		return reverseComplement(seq), nil
	}
	return seq, nil
}

func (g *MemGraph) NodeLen(h vgp.Handle) (uint64, error) {
	seq, err := g.SequenceVec(h)
	if err != nil {
		return 0, err
	}
	return uint64(len(seq)), nil
}

func (g *MemGraph) Neighbors(h vgp.Handle) (vgp.NeighborIterator, error) {
	var ns []neighbor
	for _, n := range g.adjacency[h.Node] {
		if h.Orientation == vgp.Reverse {
			n.orientation = !n.orientation
		}
		ns = append(ns, n)
	}
	return &memNeighborIterator{neighbors: ns, pos: -1}, nil
}

func (g *MemGraph) PathIDs() (vgp.PathIterator, error) {
	ids := make([]vgp.PathID, len(g.paths))
	for i := range g.paths {
		ids[i] = vgp.PathID(i)
	}
	return &memPathIterator{ids: ids, pos: -1}, nil
}

func (g *MemGraph) PathName(p vgp.PathID) ([]byte, error) {
	if int(p) >= len(g.paths) {
		return nil, fmt.Errorf("pangenome: unknown path %d", p)
	}
	return g.paths[p].name, nil
}

func (g *MemGraph) PathIDByName(name []byte) (vgp.PathID, bool) {
	id, ok := g.byName[string(name)]
	return id, ok
}

func (g *MemGraph) FirstStep(p vgp.PathID) (vgp.StepRef, bool) {
	if int(p) >= len(g.paths) || len(g.paths[p].steps) == 0 {
		return nil, false
	}
	return memStep{pathIdx: int(p), stepIdx: 0}, true
}

func (g *MemGraph) NextStep(s vgp.StepRef) (vgp.StepRef, bool) {
	ms := s.(memStep)
	next := memStep{pathIdx: ms.pathIdx, stepIdx: ms.stepIdx + 1}
	if next.stepIdx >= len(g.paths[next.pathIdx].steps) {
		return nil, false
	}
	return next, true
}

func (g *MemGraph) StepHandle(s vgp.StepRef) vgp.Handle {
	ms := s.(memStep)
	return g.paths[ms.pathIdx].steps[ms.stepIdx]
}

func (g *MemGraph) StepAtBase(p vgp.PathID, k uint64) (vgp.StepRef, bool) {
	if int(p) >= len(g.paths) {
		return nil, false
	}
	position := uint64(1)
	for i, h := range g.paths[p].steps {
		n, err := g.NodeLen(h)
		if err != nil {
			return nil, false
		}
		if k >= position && k < position+n {
			return memStep{pathIdx: int(p), stepIdx: i}, true
		}
		position += n
	}
	return nil, false
}

func (g *MemGraph) PackedOrdinal(s vgp.StepRef) uint64 {
	return uint64(s.(memStep).stepIdx)
}

func reverseComplement(seq []byte) []byte {
	out := make([]byte, len(seq))
	for i, b := range seq {
		out[len(seq)-1-i] = complementBase(b)
	}
	return out
}

func complementBase(b byte) byte {
	switch b {
	case 'A':
		return 'T'
	case 'T':
		return 'A'
	case 'C':
		return 'G'
	case 'G':
		return 'C'
	default:
		return 'N'
	}
}

type memHandleIterator struct {
	ids []uint64
	pos int
	err error
}

func (it *memHandleIterator) Next() bool {
	it.pos++
	return it.pos < len(it.ids)
}
func (it *memHandleIterator) Handle() uint64 { return it.ids[it.pos] }
func (it *memHandleIterator) Err() error     { return it.err }
func (it *memHandleIterator) Close() error   { return nil }

type memNeighborIterator struct {
	neighbors []neighbor
	pos       int
	err       error
}

func (it *memNeighborIterator) Next() bool {
	it.pos++
	return it.pos < len(it.neighbors)
}
func (it *memNeighborIterator) Handle() vgp.Handle {
	n := it.neighbors[it.pos]
	return vgp.Handle{Node: n.node, Orientation: n.orientation}
}
func (it *memNeighborIterator) Err() error   { return it.err }
func (it *memNeighborIterator) Close() error { return nil }

type memPathIterator struct {
	ids []vgp.PathID
	pos int
	err error
}

func (it *memPathIterator) Next() bool {
	it.pos++
	return it.pos < len(it.ids)
}
func (it *memPathIterator) Path() vgp.PathID { return it.ids[it.pos] }
func (it *memPathIterator) Err() error       { return it.err }
func (it *memPathIterator) Close() error     { return nil }
