// Package graph provides the directed-graph primitives the dataflow
// analyses are built on: traversal orders, dominators, strongly connected
// components and transitive closure over integer-node graphs.
package graph

import "sort"

// NodeSet is a set of node ids.
type NodeSet map[int]struct{}

// NewNodeSet builds a set from the given nodes.
func NewNodeSet(ns ...int) NodeSet {
	s := make(NodeSet, len(ns))
	for _, n := range ns {
		s[n] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s NodeSet) Has(n int) bool {
	_, ok := s[n]
	return ok
}

// Add inserts n.
func (s NodeSet) Add(n int) { s[n] = struct{}{} }

// Sorted returns the members in ascending order.
func (s NodeSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Equal reports set equality.
func (s NodeSet) Equal(t NodeSet) bool {
	if len(s) != len(t) {
		return false
	}
	for n := range s {
		if !t.Has(n) {
			return false
		}
	}
	return true
}

// Clone returns a copy of the set.
func (s NodeSet) Clone() NodeSet {
	out := make(NodeSet, len(s))
	for n := range s {
		out[n] = struct{}{}
	}
	return out
}

// Directed is a directed graph over integer nodes. Parallel edges are
// collapsed; node and edge insertion order does not affect results, all
// query methods return deterministically ordered slices.
type Directed struct {
	nodes NodeSet
	succs map[int]NodeSet
	preds map[int]NodeSet
}

// New returns an empty graph.
func New() *Directed {
	return &Directed{
		nodes: make(NodeSet),
		succs: make(map[int]NodeSet),
		preds: make(map[int]NodeSet),
	}
}

// AddNode ensures n is present.
func (g *Directed) AddNode(n int) {
	if !g.nodes.Has(n) {
		g.nodes.Add(n)
		g.succs[n] = make(NodeSet)
		g.preds[n] = make(NodeSet)
	}
}

// AddEdge inserts the edge u->v, adding the endpoints as needed.
func (g *Directed) AddEdge(u, v int) {
	g.AddNode(u)
	g.AddNode(v)
	g.succs[u].Add(v)
	g.preds[v].Add(u)
}

// HasNode reports whether n is in the graph.
func (g *Directed) HasNode(n int) bool { return g.nodes.Has(n) }

// HasEdge reports whether u->v is in the graph.
func (g *Directed) HasEdge(u, v int) bool {
	s, ok := g.succs[u]
	return ok && s.Has(v)
}

// Nodes returns all nodes in ascending order.
func (g *Directed) Nodes() []int { return g.nodes.Sorted() }

// Len returns the node count.
func (g *Directed) Len() int { return len(g.nodes) }

// Succs returns n's successors in ascending order.
func (g *Directed) Succs(n int) []int { return g.succs[n].Sorted() }

// Preds returns n's predecessors in ascending order.
func (g *Directed) Preds(n int) []int { return g.preds[n].Sorted() }

// Edges returns all edges ordered by source, then target.
func (g *Directed) Edges() [][2]int {
	var out [][2]int
	for _, u := range g.Nodes() {
		for _, v := range g.Succs(u) {
			out = append(out, [2]int{u, v})
		}
	}
	return out
}

// WithoutNode returns a copy of g with n and its incident edges removed.
func (g *Directed) WithoutNode(n int) *Directed {
	out := New()
	for _, u := range g.Nodes() {
		if u != n {
			out.AddNode(u)
		}
	}
	for _, e := range g.Edges() {
		if e[0] != n && e[1] != n {
			out.AddEdge(e[0], e[1])
		}
	}
	return out
}

// PreOrder returns the depth-first pre-order of nodes reachable from root.
func (g *Directed) PreOrder(root int) []int {
	var order []int
	seen := make(NodeSet)
	var visit func(n int)
	visit = func(n int) {
		if seen.Has(n) {
			return
		}
		seen.Add(n)
		order = append(order, n)
		for _, s := range g.Succs(n) {
			visit(s)
		}
	}
	if g.HasNode(root) {
		visit(root)
	}
	return order
}

// PostOrder returns the depth-first post-order of nodes reachable from root.
func (g *Directed) PostOrder(root int) []int {
	var order []int
	seen := make(NodeSet)
	var visit func(n int)
	visit = func(n int) {
		if seen.Has(n) {
			return
		}
		seen.Add(n)
		for _, s := range g.Succs(n) {
			visit(s)
		}
		order = append(order, n)
	}
	if g.HasNode(root) {
		visit(root)
	}
	return order
}

// RevPostOrder is PostOrder reversed: the natural order for forward
// dataflow analyses.
func (g *Directed) RevPostOrder(root int) []int {
	return reversed(g.PostOrder(root))
}

// RevPreOrder is PreOrder reversed: the natural order for backward
// dataflow analyses.
func (g *Directed) RevPreOrder(root int) []int {
	return reversed(g.PreOrder(root))
}

// ReverseDFS returns the nodes reachable from start by walking predecessor
// edges, in visit order.
func (g *Directed) ReverseDFS(start int) []int {
	var order []int
	seen := make(NodeSet)
	var visit func(n int)
	visit = func(n int) {
		if seen.Has(n) {
			return
		}
		seen.Add(n)
		order = append(order, n)
		for _, p := range g.Preds(n) {
			visit(p)
		}
	}
	if g.HasNode(start) {
		visit(start)
	}
	return order
}

// Topsort returns a topological order of the graph. Nodes reachable from
// root come first, in reverse post-order (nodes on cycles take their
// reverse-post-order position); nodes not reachable from root follow in
// ascending order. The result is a valid topological sort when the graph
// is acyclic and every node is reachable from root.
func (g *Directed) Topsort(root int) []int {
	order := g.RevPostOrder(root)
	seen := NewNodeSet(order...)
	for _, n := range g.Nodes() {
		if !seen.Has(n) {
			order = append(order, n)
		}
	}
	return order
}

// TransitiveClosure returns the graph with an edge u->v whenever v is
// reachable from u by one or more edges.
func (g *Directed) TransitiveClosure() *Directed {
	out := New()
	for _, n := range g.Nodes() {
		out.AddNode(n)
	}
	for _, u := range g.Nodes() {
		seen := make(NodeSet)
		stack := append([]int(nil), g.Succs(u)...)
		for len(stack) > 0 {
			v := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if seen.Has(v) {
				continue
			}
			seen.Add(v)
			out.AddEdge(u, v)
			stack = append(stack, g.Succs(v)...)
		}
	}
	return out
}

func reversed(xs []int) []int {
	out := make([]int, len(xs))
	for i, x := range xs {
		out[len(xs)-1-i] = x
	}
	return out
}
