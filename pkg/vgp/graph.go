package vgp

// Orientation is the strand a Handle refers to.
type Orientation bool

const (
	Forward Orientation = false
	Reverse Orientation = true
)

func (o Orientation) String() string {
	if o == Reverse {
		return "reverse"
	}
	return "forward"
}

// Handle is an oriented reference to a node in the sequence graph.
type Handle struct {
	Node        uint64
	Orientation Orientation
}

// PathID is an opaque identifier for a named path.
type PathID uint64

// StepRef is an opaque reference to a positioned occurrence of a handle
// in a path. The projector never inspects it; it only passes it back to
// the Graph that produced it.
type StepRef interface{}

// HandleIterator enumerates node ids, in graph iteration order.
type HandleIterator interface {
	Next() bool
	Handle() uint64
	Err() error
	Close() error
}

// NeighborIterator enumerates the right-neighbors of a handle.
type NeighborIterator interface {
	Next() bool
	Handle() Handle
	Err() error
	Close() error
}

// PathIterator enumerates path ids, in graph path-id order.
type PathIterator interface {
	Next() bool
	Path() PathID
	Err() error
	Close() error
}

// Graph is the sequence-graph collaborator the VGP projects against. It is
// provided by an external pangenome library; vgp only reads from it and
// never mutates it. See internal/pangenome for two concrete
// implementations used by this repository.
type Graph interface {
	// Handles enumerates every node id present in the graph.
	Handles() (HandleIterator, error)
	// HasNode reports whether a node id exists in the graph.
	HasNode(id uint64) bool
	// SequenceVec returns the forward-orientation sequence bytes of h's node.
	SequenceVec(h Handle) ([]byte, error)
	// NodeLen returns the sequence length of h's node.
	NodeLen(h Handle) (uint64, error)
	// Neighbors enumerates h's right-neighbors.
	Neighbors(h Handle) (NeighborIterator, error)

	// PathIDs enumerates every path id in the graph.
	PathIDs() (PathIterator, error)
	// PathName returns the byte name of a path.
	PathName(p PathID) ([]byte, error)
	// PathIDByName looks up a path id by its exact byte name.
	PathIDByName(name []byte) (PathID, bool)

	// FirstStep returns the first step of a path, if it has one.
	FirstStep(p PathID) (StepRef, bool)
	// NextStep returns the step following s, if any.
	NextStep(s StepRef) (StepRef, bool)
	// StepHandle returns the handle occupying step s.
	StepHandle(s StepRef) Handle

	// StepAtBase returns the step of path p whose base-position range
	// covers the 1-based position k.
	StepAtBase(p PathID, k uint64) (StepRef, bool)
	// PackedOrdinal returns s's 0-based ordinal within its path; rank is
	// PackedOrdinal(s) + 1.
	PackedOrdinal(s StepRef) uint64
}
