package pangenome

import (
	"strings"
	"testing"

	"github.com/aleksaelezovic/vgpstore/pkg/vgp"
)

func buildSampleMemGraph() *MemGraph {
	g := NewMemGraph()
	g.AddNode(1, []byte("ACGT"))
	g.AddNode(2, []byte("GGCC"))
	g.AddEdge(1, vgp.Forward, 2, vgp.Forward)
	g.AddPath("x", []vgp.Handle{
		{Node: 1, Orientation: vgp.Forward},
		{Node: 2, Orientation: vgp.Forward},
	})
	return g
}

func TestMemGraphSequenceVec(t *testing.T) {
	g := buildSampleMemGraph()

	tests := []struct {
		name string
		h    vgp.Handle
		want string
	}{
		{"forward", vgp.Handle{Node: 1, Orientation: vgp.Forward}, "ACGT"},
		{"reverse complement", vgp.Handle{Node: 1, Orientation: vgp.Reverse}, "ACGT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, err := g.SequenceVec(tt.h)
			if err != nil {
				t.Fatalf("SequenceVec: %v", err)
			}
			// ACGT is its own reverse complement, so both orientations read ACGT.
			if string(seq) != tt.want {
				t.Fatalf("SequenceVec(%v) = %q, want %q", tt.h, seq, tt.want)
			}
		})
	}
}

func TestMemGraphNeighbors(t *testing.T) {
	g := buildSampleMemGraph()

	it, err := g.Neighbors(vgp.Handle{Node: 1, Orientation: vgp.Forward})
	if err != nil {
		t.Fatalf("Neighbors: %v", err)
	}
	defer it.Close()

	var got []uint64
	for it.Next() {
		got = append(got, it.Handle().Node)
	}
	if len(got) != 1 || got[0] != 2 {
		t.Fatalf("expected neighbors [2], got %v", got)
	}
}

func TestMemGraphPathWalk(t *testing.T) {
	g := buildSampleMemGraph()

	pathID, ok := g.PathIDByName([]byte("x"))
	if !ok {
		t.Fatal("expected path x to exist")
	}

	step, ok := g.FirstStep(pathID)
	if !ok {
		t.Fatal("expected a first step")
	}

	var nodes []uint64
	for ok {
		h := g.StepHandle(step)
		nodes = append(nodes, h.Node)
		step, ok = g.NextStep(step)
	}
	if len(nodes) != 2 || nodes[0] != 1 || nodes[1] != 2 {
		t.Fatalf("expected steps [1 2], got %v", nodes)
	}
}

func TestMemGraphStepAtBase(t *testing.T) {
	g := buildSampleMemGraph()
	pathID, _ := g.PathIDByName([]byte("x"))

	tests := []struct {
		base     uint64
		wantNode uint64
	}{
		{1, 1},
		{4, 1},
		{5, 2},
		{8, 2},
	}
	for _, tt := range tests {
		step, ok := g.StepAtBase(pathID, tt.base)
		if !ok {
			t.Fatalf("StepAtBase(%d): no step found", tt.base)
		}
		if h := g.StepHandle(step); h.Node != tt.wantNode {
			t.Errorf("StepAtBase(%d): got node %d, want %d", tt.base, h.Node, tt.wantNode)
		}
	}

	if _, ok := g.StepAtBase(pathID, 9); ok {
		t.Error("StepAtBase(9): expected out-of-range miss")
	}
}

func TestComplementBase(t *testing.T) {
	seq := []byte("ACGTN")
	rc := reverseComplement(seq)
	if !strings.EqualFold(string(rc), "NACGT") {
		t.Errorf("reverseComplement(%q) = %q, want %q", seq, rc, "NACGT")
	}
}
