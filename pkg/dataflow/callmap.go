package dataflow

import (
	"github.com/fortlab/fortflow/pkg/analysis"
	"github.com/fortlab/fortflow/pkg/ast"
)

// CallMap maps each program unit's name to the set of subroutine and
// function names it calls.
type CallMap map[string]VarSet

// GenCallMap builds the call map of a program file. Calls are collected
// from explicit call statements and from function-reference heads.
// Repeated unit names merge their callee sets.
func GenCallMap(pf *ast.ProgramFile) CallMap {
	cm := make(CallMap)
	for _, pu := range pf.Units {
		collectCalls(pu, cm)
	}
	return cm
}

func collectCalls(pu ast.ProgramUnit, cm CallMap) {
	name := analysis.PUName(pu)
	callees := cm[name]
	if callees == nil {
		callees = NewVarSet()
	}
	for _, b := range pu.Body() {
		ast.Inspect(b, func(n ast.Node) bool {
			switch n := n.(type) {
			case *ast.CallStmt:
				callees[n.Name] = struct{}{}
			case *ast.CallExpr:
				callees[n.Name] = struct{}{}
			}
			return true
		})
	}
	cm[name] = callees
	if m, ok := pu.(*ast.Module); ok {
		for _, inner := range m.Units {
			collectCalls(inner, cm)
		}
	}
}
