package pangenome

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/zeebo/xxh3"

	"github.com/aleksaelezovic/vgpstore/pkg/vgp"
)

// Badger key layout, namespaced by a single leading byte per concern,
// mirroring the table-prefix scheme internal/storage uses for the
// triplestore's own key space.
const (
	prefixSequence byte = 'N' // node id (8 bytes BE)              -> sequence bytes
	prefixEdge     byte = 'E' // node id + orientation (9 bytes)    -> packed neighbor list
	prefixPathMeta byte = 'P' // path id (8 bytes BE)               -> name bytes
	prefixPathName byte = 'Y' // xxh3-128 hash of name (16 bytes)   -> path id (8 bytes BE)
	prefixPathStep byte = 'S' // path id + ordinal (16 bytes BE)    -> node id + orientation (9 bytes)
	prefixPathLen  byte = 'L' // path id (8 bytes BE)               -> step count (8 bytes BE)
)

// BadgerGraph is a vgp.Graph backed by a BadgerDB instance, for pangenomes
// too large to hold comfortably in memory. It is populated once via
// LoadGFA and is read-only thereafter, matching the storage.BadgerStorage
// pattern this repository otherwise uses for its triplestore.
type BadgerGraph struct {
	db *badger.DB
}

// OpenBadgerGraph opens (or creates) a BadgerDB-backed pangenome at path.
func OpenBadgerGraph(path string) (*BadgerGraph, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("pangenome: failed to open badger db: %w", err)
	}
	return &BadgerGraph{db: db}, nil
}

// Close closes the underlying database.
func (g *BadgerGraph) Close() error {
	return g.db.Close()
}

func nodeKey(id uint64) []byte {
	key := make([]byte, 9)
	key[0] = prefixSequence
	binary.BigEndian.PutUint64(key[1:], id)
	return key
}

func edgeKey(node uint64, orientation vgp.Orientation) []byte {
	key := make([]byte, 10)
	key[0] = prefixEdge
	binary.BigEndian.PutUint64(key[1:9], node)
	if orientation == vgp.Reverse {
		key[9] = 1
	}
	return key
}

func pathMetaKey(id vgp.PathID) []byte {
	key := make([]byte, 9)
	key[0] = prefixPathMeta
	binary.BigEndian.PutUint64(key[1:], uint64(id))
	return key
}

func pathNameKey(name []byte) []byte {
	hash := xxh3.Hash128(name)
	key := make([]byte, 17)
	key[0] = prefixPathName
	binary.BigEndian.PutUint64(key[1:9], hash.Hi)
	binary.BigEndian.PutUint64(key[9:17], hash.Lo)
	return key
}

func pathLenKey(id vgp.PathID) []byte {
	key := make([]byte, 9)
	key[0] = prefixPathLen
	binary.BigEndian.PutUint64(key[1:], uint64(id))
	return key
}

func pathStepKey(id vgp.PathID, ordinal uint64) []byte {
	key := make([]byte, 17)
	key[0] = prefixPathStep
	binary.BigEndian.PutUint64(key[1:9], uint64(id))
	binary.BigEndian.PutUint64(key[9:17], ordinal)
	return key
}

func encodeHandle(h vgp.Handle) []byte {
	buf := make([]byte, 9)
	binary.BigEndian.PutUint64(buf[0:8], h.Node)
	if h.Orientation == vgp.Reverse {
		buf[8] = 1
	}
	return buf
}

func decodeHandle(buf []byte) vgp.Handle {
	h := vgp.Handle{Node: binary.BigEndian.Uint64(buf[0:8])}
	if buf[8] == 1 {
		h.Orientation = vgp.Reverse
	}
	return h
}

func (g *BadgerGraph) Handles() (vgp.HandleIterator, error) {
	var ids []uint64
	err := g.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{prefixSequence}
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek([]byte{prefixSequence}); it.ValidForPrefix([]byte{prefixSequence}); it.Next() {
			k := it.Item().KeyCopy(nil)
			ids = append(ids, binary.BigEndian.Uint64(k[1:]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &memHandleIterator{ids: ids, pos: -1}, nil
}

func (g *BadgerGraph) HasNode(id uint64) bool {
	err := g.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(nodeKey(id))
		return err
	})
	return err == nil
}

func (g *BadgerGraph) SequenceVec(h vgp.Handle) ([]byte, error) {
	var seq []byte
	err := g.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(nodeKey(h.Node))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return fmt.Errorf("pangenome: unknown node %d", h.Node)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			seq = append([]byte{}, val...)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if h.Orientation == vgp.Reverse {
		return reverseComplement(seq), nil
	}
	return seq, nil
}

func (g *BadgerGraph) NodeLen(h vgp.Handle) (uint64, error) {
	seq, err := g.SequenceVec(h)
	if err != nil {
		return 0, err
	}
	return uint64(len(seq)), nil
}

func (g *BadgerGraph) Neighbors(h vgp.Handle) (vgp.NeighborIterator, error) {
	var neighbors []neighbor
	err := g.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(edgeKey(h.Node, vgp.Forward))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			for i := 0; i+9 <= len(val); i += 9 {
				nh := decodeHandle(val[i : i+9])
				if h.Orientation == vgp.Reverse {
					nh.Orientation = !nh.Orientation
				}
				neighbors = append(neighbors, neighbor{node: nh.Node, orientation: nh.Orientation})
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &memNeighborIterator{neighbors: neighbors, pos: -1}, nil
}

func (g *BadgerGraph) PathIDs() (vgp.PathIterator, error) {
	var ids []vgp.PathID
	err := g.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{prefixPathMeta}
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek([]byte{prefixPathMeta}); it.ValidForPrefix([]byte{prefixPathMeta}); it.Next() {
			k := it.Item().KeyCopy(nil)
			ids = append(ids, vgp.PathID(binary.BigEndian.Uint64(k[1:])))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &memPathIterator{ids: ids, pos: -1}, nil
}

func (g *BadgerGraph) PathName(p vgp.PathID) ([]byte, error) {
	var name []byte
	err := g.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(pathMetaKey(p))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return fmt.Errorf("pangenome: unknown path %d", p)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			name = append([]byte{}, val...)
			return nil
		})
	})
	return name, err
}

func (g *BadgerGraph) PathIDByName(name []byte) (vgp.PathID, bool) {
	var id vgp.PathID
	found := false
	_ = g.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(pathNameKey(name))
		if err != nil {
			return nil
		}
		return item.Value(func(val []byte) error {
			id = vgp.PathID(binary.BigEndian.Uint64(val))
			found = true
			return nil
		})
	})
	return id, found
}

type badgerStep struct {
	path    vgp.PathID
	ordinal uint64
}

func (g *BadgerGraph) pathLen(p vgp.PathID) (uint64, bool) {
	var n uint64
	found := false
	_ = g.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(pathLenKey(p))
		if err != nil {
			return nil
		}
		return item.Value(func(val []byte) error {
			n = binary.BigEndian.Uint64(val)
			found = true
			return nil
		})
	})
	return n, found
}

func (g *BadgerGraph) FirstStep(p vgp.PathID) (vgp.StepRef, bool) {
	n, ok := g.pathLen(p)
	if !ok || n == 0 {
		return nil, false
	}
	return badgerStep{path: p, ordinal: 0}, true
}

func (g *BadgerGraph) NextStep(s vgp.StepRef) (vgp.StepRef, bool) {
	bs := s.(badgerStep)
	n, ok := g.pathLen(bs.path)
	if !ok || bs.ordinal+1 >= n {
		return nil, false
	}
	return badgerStep{path: bs.path, ordinal: bs.ordinal + 1}, true
}

func (g *BadgerGraph) StepHandle(s vgp.StepRef) vgp.Handle {
	bs := s.(badgerStep)
	var h vgp.Handle
	_ = g.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(pathStepKey(bs.path, bs.ordinal))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			h = decodeHandle(val)
			return nil
		})
	})
	return h
}

func (g *BadgerGraph) StepAtBase(p vgp.PathID, k uint64) (vgp.StepRef, bool) {
	n, ok := g.pathLen(p)
	if !ok {
		return nil, false
	}
	position := uint64(1)
	for ordinal := uint64(0); ordinal < n; ordinal++ {
		h := g.StepHandle(badgerStep{path: p, ordinal: ordinal})
		length, err := g.NodeLen(h)
		if err != nil {
			return nil, false
		}
		if k >= position && k < position+length {
			return badgerStep{path: p, ordinal: ordinal}, true
		}
		position += length
	}
	return nil, false
}

func (g *BadgerGraph) PackedOrdinal(s vgp.StepRef) uint64 {
	return s.(badgerStep).ordinal
}

// LoadGFA populates an empty BadgerGraph from a GFA-like text format: S
// lines declare a node and its sequence, L lines declare a forward link
// between two oriented node ends, and P lines declare a named path as a
// comma-separated list of node+orientation tokens (e.g. "P x 1+,2+,3-").
// Unrecognized record types are ignored, matching GFA's own
// forward-compatibility convention.
func (g *BadgerGraph) LoadGFA(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	return g.db.Update(func(txn *badger.Txn) error {
		var nextPathID uint64
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				continue
			}
			fields := strings.Split(line, "\t")
			switch fields[0] {
			case "S":
				if len(fields) < 3 {
					return fmt.Errorf("pangenome: malformed S line %q", line)
				}
				id, err := strconv.ParseUint(fields[1], 10, 64)
				if err != nil {
					return fmt.Errorf("pangenome: bad node id in %q: %w", line, err)
				}
				if err := txn.Set(nodeKey(id), []byte(fields[2])); err != nil {
					return err
				}
			case "L":
				if len(fields) < 5 {
					return fmt.Errorf("pangenome: malformed L line %q", line)
				}
				from, err := strconv.ParseUint(fields[1], 10, 64)
				if err != nil {
					return fmt.Errorf("pangenome: bad from id in %q: %w", line, err)
				}
				to, err := strconv.ParseUint(fields[3], 10, 64)
				if err != nil {
					return fmt.Errorf("pangenome: bad to id in %q: %w", line, err)
				}
				fromOrient := orientationOf(fields[2])
				toOrient := orientationOf(fields[4])
				if err := appendEdge(txn, from, fromOrient, to, toOrient); err != nil {
					return err
				}
			case "P":
				if len(fields) < 3 {
					return fmt.Errorf("pangenome: malformed P line %q", line)
				}
				name := []byte(fields[1])
				tokens := strings.Split(fields[2], ",")
				pathID := vgp.PathID(nextPathID)
				nextPathID++

				if err := txn.Set(pathMetaKey(pathID), name); err != nil {
					return err
				}
				nameKeyBuf := make([]byte, 8)
				binary.BigEndian.PutUint64(nameKeyBuf, uint64(pathID))
				if err := txn.Set(pathNameKey(name), nameKeyBuf); err != nil {
					return err
				}
				for ordinal, tok := range tokens {
					if tok == "" {
						continue
					}
					orient := vgp.Forward
					if strings.HasSuffix(tok, "-") {
						orient = vgp.Reverse
					}
					id, err := strconv.ParseUint(strings.TrimRight(tok, "+-"), 10, 64)
					if err != nil {
						return fmt.Errorf("pangenome: bad step token %q in %q: %w", tok, line, err)
					}
					h := vgp.Handle{Node: id, Orientation: orient}
					if err := txn.Set(pathStepKey(pathID, uint64(ordinal)), encodeHandle(h)); err != nil {
						return err
					}
				}
				lenBuf := make([]byte, 8)
				binary.BigEndian.PutUint64(lenBuf, uint64(len(tokens)))
				if err := txn.Set(pathLenKey(pathID), lenBuf); err != nil {
					return err
				}
			}
		}
		return scanner.Err()
	})
}

func orientationOf(s string) vgp.Orientation {
	if s == "-" {
		return vgp.Reverse
	}
	return vgp.Forward
}

func appendEdge(txn *badger.Txn, from uint64, fromOrient vgp.Orientation, to uint64, toOrient vgp.Orientation) error {
	key := edgeKey(from, vgp.Forward)
	_ = fromOrient // edges are always recorded against the node's forward end; orientation flips at read time

	var existing []byte
	item, err := txn.Get(key)
	if err == nil {
		if existing, err = item.ValueCopy(nil); err != nil {
			return err
		}
	} else if err != badger.ErrKeyNotFound {
		return err
	}

	if bytes.Contains(existing, encodeHandle(vgp.Handle{Node: to, Orientation: toOrient})) {
		return nil
	}
	existing = append(existing, encodeHandle(vgp.Handle{Node: to, Orientation: toOrient})...)
	return txn.Set(key, existing)
}
