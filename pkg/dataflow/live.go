package dataflow

import (
	"github.com/fortlab/fortflow/pkg/analysis"
	"github.com/fortlab/fortflow/pkg/sem"
)

// LiveVars runs live-variable analysis over a basic-block graph: a
// backward union analysis. A name is live-in at a node when some path
// from the node reads it before writing it.
func LiveVars(bbgr *analysis.BBGr) map[int]InOut[VarSet] {
	gen := make(map[int]VarSet, len(bbgr.Blocks))
	kill := make(map[int]VarSet, len(bbgr.Blocks))
	for n, bb := range bbgr.Blocks {
		g, k := blockGenKill(bb)
		gen[n], kill[n] = g, k
	}

	order := bbgr.Graph.RevPreOrder(0)
	return Solve(
		order,
		func(int) InOut[VarSet] { return InOut[VarSet]{In: NewVarSet(), Out: NewVarSet()} },
		func(out func(int) VarSet, n int) VarSet {
			return out(n).Diff(kill[n]).Union(gen[n])
		},
		func(in func(int) VarSet, n int) VarSet {
			acc := NewVarSet()
			for _, s := range bbgr.Graph.Succs(n) {
				acc = acc.Union(in(s))
			}
			return acc
		},
		VarSet.Equal,
	)
}

// blockGenKill folds uses and defs across the basic block left to right:
// a use only reaches gen when no earlier AST-block in the same basic
// block killed it.
func blockGenKill(bb analysis.BB) (gen, kill VarSet) {
	gen, kill = NewVarSet(), NewVarSet()
	for _, b := range bb {
		uses := NewVarSet(sem.BlockVarUses(b)...)
		gen = gen.Union(uses.Diff(kill))
		kill = kill.Union(NewVarSet(sem.BlockVarDefs(b)...))
	}
	return gen, kill
}
