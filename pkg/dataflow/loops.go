package dataflow

import (
	"sort"

	"github.com/fortlab/fortflow/pkg/graph"
)

// BackEdgeMap maps the source of each loop-closing edge to its target: an
// edge is a back edge exactly when its target dominates its source.
type BackEdgeMap map[int]int

// GenBackEdgeMap finds the back edges of a basic-block graph rooted at
// node 0.
func GenBackEdgeMap(g *graph.Directed) BackEdgeMap {
	dom := g.Dominators(0)
	back := make(BackEdgeMap)
	for _, e := range g.Edges() {
		s, t := e[0], e[1]
		if graph.Dominates(dom, t, s) {
			back[s] = t
		}
	}
	return back
}

// LoopNodes returns the natural loop body of every back edge: for a back
// edge m->n, the nodes that can reach m without passing through n,
// together with n itself, restricted to m's strongly connected component
// to guard against irreducible regions.
func LoopNodes(back BackEdgeMap, g *graph.Directed) []graph.NodeSet {
	var loops []graph.NodeSet
	for _, m := range sortedKeys(back) {
		n := back[m]
		loops = append(loops, loopBody(m, n, g))
	}
	return loops
}

func loopBody(m, n int, g *graph.Directed) graph.NodeSet {
	scc := g.SCCOf(m)
	body := graph.NewNodeSet(n)
	for _, x := range g.WithoutNode(n).ReverseDFS(m) {
		if scc != nil && scc.Has(x) {
			body.Add(x)
		}
	}
	return body
}

func sortedKeys(m BackEdgeMap) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
