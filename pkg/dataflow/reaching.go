package dataflow

import (
	"github.com/fortlab/fortflow/pkg/analysis"
)

// ReachingDefs runs reaching-definition analysis over a basic-block
// graph: a forward union analysis over AST-block labels. A definition
// label reaches a node when some path from the defining block arrives
// without an intervening redefinition of the same name.
func ReachingDefs(bbgr *analysis.BBGr, dm DefMap) map[int]InOut[LabelSet] {
	gen := make(map[int]LabelSet, len(bbgr.Blocks))
	kill := make(map[int]LabelSet, len(bbgr.Blocks))
	for n, bb := range bbgr.Blocks {
		g, k := rdGenKill(bb, dm)
		gen[n], kill[n] = g, k
	}

	order := bbgr.Graph.RevPostOrder(0)
	return Solve(
		order,
		func(int) InOut[LabelSet] { return InOut[LabelSet]{In: NewLabelSet(), Out: NewLabelSet()} },
		func(out func(int) LabelSet, n int) LabelSet {
			acc := NewLabelSet()
			for _, p := range bbgr.Graph.Preds(n) {
				acc = acc.Union(out(p))
			}
			return acc
		},
		func(in func(int) LabelSet, n int) LabelSet {
			return gen[n].Union(in(n).Diff(kill[n]))
		},
		LabelSet.Equal,
	)
}

// rdGenKill folds the per-AST-block gen/kill pairs across a basic block
// using the standard composition law.
func rdGenKill(bb analysis.BB, dm DefMap) (gen, kill LabelSet) {
	gen, kill = NewLabelSet(), NewLabelSet()
	for _, b := range bb {
		g, k := stmtGen(b), stmtKill(b, dm)
		gen = gen.Diff(k).Union(g)
		kill = kill.Diff(g).Union(k)
	}
	return gen, kill
}
