package graph

import (
	"reflect"
	"testing"
)

// diamond: 0 -> {1,2} -> 3
func diamond() *Directed {
	g := New()
	g.AddEdge(0, 1)
	g.AddEdge(0, 2)
	g.AddEdge(1, 3)
	g.AddEdge(2, 3)
	return g
}

// loop: 0 -> 1 -> 2 -> 1
func loopGraph() *Directed {
	g := New()
	g.AddEdge(0, 1)
	g.AddEdge(1, 2)
	g.AddEdge(2, 1)
	return g
}

func TestOrders(t *testing.T) {
	g := diamond()
	if got := g.PreOrder(0); !reflect.DeepEqual(got, []int{0, 1, 3, 2}) {
		t.Errorf("PreOrder = %v", got)
	}
	if got := g.PostOrder(0); !reflect.DeepEqual(got, []int{3, 1, 2, 0}) {
		t.Errorf("PostOrder = %v", got)
	}
	if got := g.RevPostOrder(0); !reflect.DeepEqual(got, []int{0, 2, 1, 3}) {
		t.Errorf("RevPostOrder = %v", got)
	}
	if got := g.RevPreOrder(0); !reflect.DeepEqual(got, []int{2, 3, 1, 0}) {
		t.Errorf("RevPreOrder = %v", got)
	}
}

func TestDominatorsLoop(t *testing.T) {
	g := loopGraph()
	dom := g.Dominators(0)

	want := map[int][]int{
		0: {0},
		1: {0, 1},
		2: {0, 1, 2},
	}
	for n, ds := range want {
		if got := dom[n].Sorted(); !reflect.DeepEqual(got, ds) {
			t.Errorf("dom(%d) = %v, want %v", n, got, ds)
		}
	}
}

func TestIDominators(t *testing.T) {
	g := diamond()
	idom := g.IDominators(0)
	want := map[int]int{1: 0, 2: 0, 3: 0}
	if !reflect.DeepEqual(idom, want) {
		t.Errorf("idom = %v, want %v", idom, want)
	}

	idom = loopGraph().IDominators(0)
	want = map[int]int{1: 0, 2: 1}
	if !reflect.DeepEqual(idom, want) {
		t.Errorf("loop idom = %v, want %v", idom, want)
	}
}

func TestDominatorsIgnoreUnreachable(t *testing.T) {
	g := diamond()
	g.AddEdge(7, 3) // 7 unreachable from the root
	dom := g.Dominators(0)
	if _, ok := dom[7]; ok {
		t.Error("unreachable node should have no dominator entry")
	}
	if got := dom[3].Sorted(); !reflect.DeepEqual(got, []int{0, 3}) {
		t.Errorf("dom(3) = %v, want [0, 3]", got)
	}
}

func TestSCC(t *testing.T) {
	g := loopGraph()
	comps := g.SCC()
	var sizes []int
	for _, c := range comps {
		sizes = append(sizes, len(c))
	}
	if len(comps) != 2 {
		t.Fatalf("got %d components (%v), want 2", len(comps), sizes)
	}
	cycle := g.SCCOf(1)
	if got := cycle.Sorted(); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("SCC of 1 = %v, want [1, 2]", got)
	}
	if got := g.SCCOf(0).Sorted(); !reflect.DeepEqual(got, []int{0}) {
		t.Errorf("SCC of 0 = %v, want [0]", got)
	}
}

func TestTransitiveClosure(t *testing.T) {
	g := New()
	g.AddEdge(1, 2)
	g.AddEdge(2, 3)
	tc := g.TransitiveClosure()
	for _, e := range [][2]int{{1, 2}, {2, 3}, {1, 3}} {
		if !tc.HasEdge(e[0], e[1]) {
			t.Errorf("closure missing %d->%d", e[0], e[1])
		}
	}
	if tc.HasEdge(3, 1) {
		t.Error("closure has a reverse edge")
	}
}

func TestReverseDFSAndWithoutNode(t *testing.T) {
	g := loopGraph()
	reach := g.WithoutNode(1).ReverseDFS(2)
	if !reflect.DeepEqual(reach, []int{2}) {
		t.Errorf("reverse DFS avoiding the loop header = %v, want [2]", reach)
	}
}

func TestTopsort(t *testing.T) {
	g := diamond()
	order := g.Topsort(0)
	pos := map[int]int{}
	for i, n := range order {
		pos[n] = i
	}
	for _, e := range g.Edges() {
		if pos[e[0]] > pos[e[1]] {
			t.Errorf("topsort violates edge %d->%d: %v", e[0], e[1], order)
		}
	}
}
