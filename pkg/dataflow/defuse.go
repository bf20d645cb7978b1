package dataflow

import (
	"github.com/fortlab/fortflow/pkg/analysis"
	"github.com/fortlab/fortflow/pkg/ast"
	"github.com/fortlab/fortflow/pkg/graph"
	"github.com/fortlab/fortflow/pkg/sem"
)

// DUMap maps a definition's label to the labels of the AST-blocks that
// use it.
type DUMap map[int]LabelSet

// UDMap maps a use's label to the labels of the definitions that may
// reach it.
type UDMap map[int]LabelSet

// GenDUMap builds the def-use map for one basic-block graph given its
// reaching-definition solution: at each node the incoming definitions are
// replayed through the node's AST-blocks in order, recording an edge
// whenever a live definition's names overlap a block's uses.
func GenDUMap(bbgr *analysis.BBGr, bm BlockMap, dm DefMap, rd map[int]InOut[LabelSet]) DUMap {
	du := make(DUMap)
	for _, n := range bbgr.Graph.Nodes() {
		reaching := rd[n].In.Union(NewLabelSet())
		for _, b := range bbgr.Blocks[n] {
			uses := NewVarSet(sem.BlockVarUses(b)...)
			l := label(b)
			for _, d := range reaching.Sorted() {
				db, ok := bm[d]
				if !ok {
					continue
				}
				defs := NewVarSet(sem.BlockVarDefs(db)...)
				if defs.Intersects(uses) && l != analysis.NoLabel {
					if _, ok := du[d]; !ok {
						du[d] = make(LabelSet)
					}
					du[d].Add(l)
				}
			}
			reaching = reaching.Diff(stmtKill(b, dm)).Union(stmtGen(b))
		}
	}
	return du
}

// GenUDMap inverts a def-use map into a use-def map.
func GenUDMap(du DUMap) UDMap {
	ud := make(UDMap)
	for d, uses := range du {
		for u := range uses {
			if _, ok := ud[u]; !ok {
				ud[u] = make(LabelSet)
			}
			ud[u].Add(d)
		}
	}
	return ud
}

// FlowsGraph is the flows-to relation presented as a graph whose nodes
// are AST-block labels, carrying the blocks themselves.
type FlowsGraph struct {
	Graph  *graph.Directed
	Blocks map[int]ast.Statement
}

// GenFlowsTo closes the def-use map reflexively and transitively: an edge
// d->u means the value written at d may flow, possibly through
// intermediate definitions, into the block at u.
func GenFlowsTo(du DUMap, bm BlockMap) *FlowsGraph {
	g := graph.New()
	for l := range bm {
		g.AddNode(l)
	}
	for d, uses := range du {
		for u := range uses {
			g.AddEdge(d, u)
		}
	}
	closed := g.TransitiveClosure()
	for _, n := range closed.Nodes() {
		closed.AddEdge(n, n)
	}
	blocks := make(map[int]ast.Statement, len(bm))
	for l, b := range bm {
		blocks[l] = b
	}
	return &FlowsGraph{Graph: closed, Blocks: blocks}
}
