package pangenome

import (
	"strings"
	"testing"

	"github.com/aleksaelezovic/vgpstore/pkg/vgp"
)

const sampleGFA = "S\t1\tACGT\n" +
	"S\t2\tGGCC\n" +
	"S\t3\tTTAA\n" +
	"L\t1\t+\t2\t+\t0M\n" +
	"P\tx\t1+,2+,3-\n"

func buildSampleBadgerGraph(t *testing.T) *BadgerGraph {
	t.Helper()
	g, err := OpenBadgerGraph(t.TempDir())
	if err != nil {
		t.Fatalf("OpenBadgerGraph: %v", err)
	}
	t.Cleanup(func() { g.Close() })

	if err := g.LoadGFA(strings.NewReader(sampleGFA)); err != nil {
		t.Fatalf("LoadGFA: %v", err)
	}
	return g
}

func TestBadgerGraphLoadGFA(t *testing.T) {
	g := buildSampleBadgerGraph(t)

	if !g.HasNode(1) || !g.HasNode(2) || !g.HasNode(3) {
		t.Fatal("expected nodes 1, 2, 3 to exist")
	}

	seq, err := g.SequenceVec(vgp.Handle{Node: 1, Orientation: vgp.Forward})
	if err != nil {
		t.Fatalf("SequenceVec: %v", err)
	}
	if string(seq) != "ACGT" {
		t.Errorf("SequenceVec(1) = %q, want ACGT", seq)
	}
}

func TestBadgerGraphNeighbors(t *testing.T) {
	g := buildSampleBadgerGraph(t)

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

func TestBadgerGraphPathSteps(t *testing.T) {
	g := buildSampleBadgerGraph(t)

	pathID, ok := g.PathIDByName([]byte("x"))
	if !ok {
		t.Fatal("expected path x to exist")
	}

	step, ok := g.FirstStep(pathID)
	if !ok {
		t.Fatal("expected a first step")
	}

	var handles []vgp.Handle
	for ok {
		handles = append(handles, g.StepHandle(step))
		step, ok = g.NextStep(step)
	}

	if len(handles) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(handles))
	}
	if handles[2].Node != 3 || handles[2].Orientation != vgp.Reverse {
		t.Errorf("expected third step to be node 3 reverse, got %+v", handles[2])
	}
}

func TestBadgerGraphStepAtBase(t *testing.T) {
	g := buildSampleBadgerGraph(t)
	pathID, _ := g.PathIDByName([]byte("x"))

	step, ok := g.StepAtBase(pathID, 5)
	if !ok {
		t.Fatal("StepAtBase(5): expected a step")
	}
	if h := g.StepHandle(step); h.Node != 2 {
		t.Errorf("StepAtBase(5): got node %d, want 2", h.Node)
	}

	if _, ok := g.StepAtBase(pathID, 100); ok {
		t.Error("StepAtBase(100): expected out-of-range miss")
	}
}
