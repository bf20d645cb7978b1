package dataflow

import (
	"github.com/fortlab/fortflow/pkg/analysis"
	"github.com/fortlab/fortflow/pkg/ast"
	"github.com/fortlab/fortflow/pkg/sem"
)

// BlockMap injects AST-block labels back to their AST-blocks.
type BlockMap map[int]ast.Statement

// DefMap maps a variable name to the labels of the AST-blocks that
// define it.
type DefMap map[string]LabelSet

// GenBlockMap gathers every labeled AST-block reachable through the
// program file's basic-block graphs.
func GenBlockMap(pf *ast.ProgramFile) BlockMap {
	bm := make(BlockMap)
	for _, pu := range pf.Units {
		collectBlockMap(pu, bm)
	}
	return bm
}

func collectBlockMap(pu ast.ProgramUnit, bm BlockMap) {
	if a := analysis.Of(pu); a != nil && a.BBlocks != nil {
		for _, bb := range a.BBlocks.Blocks {
			for _, b := range bb {
				if ba := analysis.Of(b); ba != nil && ba.InsLabel != analysis.NoLabel {
					bm[ba.InsLabel] = b
				}
			}
		}
	}
	if m, ok := pu.(*ast.Module); ok {
		for _, inner := range m.Units {
			collectBlockMap(inner, bm)
		}
	}
}

// GenDefMap groups the block map by the names each block defines.
func GenDefMap(bm BlockMap) DefMap {
	dm := make(DefMap)
	for label, b := range bm {
		for _, v := range sem.BlockVarDefs(b) {
			if _, ok := dm[v]; !ok {
				dm[v] = make(LabelSet)
			}
			dm[v].Add(label)
		}
	}
	return dm
}

// label returns the instruction label of an AST-block, or NoLabel.
func label(b ast.Statement) int {
	if a := analysis.Of(b); a != nil {
		return a.InsLabel
	}
	return analysis.NoLabel
}

// stmtGen returns the RD gen set of a single AST-block: its own label
// when it defines anything.
func stmtGen(b ast.Statement) LabelSet {
	g := make(LabelSet)
	if len(sem.BlockVarDefs(b)) > 0 && label(b) != analysis.NoLabel {
		g.Add(label(b))
	}
	return g
}

// stmtKill returns the RD kill set of a single AST-block: every label
// anywhere in the file that defines a name this block defines.
func stmtKill(b ast.Statement, dm DefMap) LabelSet {
	k := make(LabelSet)
	for _, v := range sem.BlockVarDefs(b) {
		for l := range dm[v] {
			k.Add(l)
		}
	}
	return k
}
