// Package sem provides the syntactic queries the dataflow analyses are
// built from: which names a statement reads and writes, and which
// expressions sit in assignment position. After renaming, every query
// reports unique names.
package sem

import (
	"github.com/fortlab/fortflow/pkg/analysis"
	"github.com/fortlab/fortflow/pkg/ast"
)

// IsLExpr reports whether e can syntactically appear in assignment
// position: a variable reference or a subscript access.
func IsLExpr(e ast.Expression) bool {
	switch e.(type) {
	case *ast.VarExpr, *ast.SubscriptExpr:
		return true
	}
	return false
}

// LhsExprs returns every expression under n that appears in assignment
// position: assignment left-hand sides, plus subroutine- and
// function-call actuals that are l-expressions (call-by-reference actuals
// may be written by the callee).
func LhsExprs(n ast.Node) []ast.Expression {
	var out []ast.Expression
	lexprArgs := func(args []ast.Expression) {
		for _, a := range args {
			if IsLExpr(a) {
				out = append(out, a)
			}
		}
	}
	ast.Inspect(n, func(c ast.Node) bool {
		switch c := c.(type) {
		case *ast.AssignStmt:
			out = append(out, c.Lhs)
		case *ast.CallStmt:
			lexprArgs(c.Args)
		case *ast.CallExpr:
			lexprArgs(c.Args)
		}
		return true
	})
	return out
}

// AllVars returns the name of every variable or array reference anywhere
// under n, in pre-order, duplicates preserved.
func AllVars(n ast.Node) []string {
	var out []string
	for _, v := range ast.Vars(n) {
		out = append(out, analysis.VarName(v))
	}
	return out
}

// AllLhsVars returns the names written through the l-expressions of n:
// the name itself for a variable, the base array name for a subscript.
func AllLhsVars(n ast.Node) []string {
	var out []string
	for _, e := range LhsExprs(n) {
		switch e := e.(type) {
		case *ast.VarExpr:
			out = append(out, analysis.VarName(e))
		case *ast.SubscriptExpr:
			out = append(out, analysis.VarName(e.Array))
		}
	}
	return out
}

// BlockVarUses returns the names read by the AST-block b. Control
// statements contribute only their guards; declarations contribute
// nothing.
func BlockVarUses(b ast.Statement) []string {
	switch b := b.(type) {
	case *ast.AssignStmt:
		uses := AllVars(b.Rhs)
		if sub, ok := b.Lhs.(*ast.SubscriptExpr); ok {
			for _, ix := range sub.Indices {
				uses = append(uses, AllVars(ix)...)
			}
		}
		return uses
	case *ast.DoStmt:
		var uses []string
		uses = append(uses, AllVars(b.Spec.From)...)
		uses = append(uses, AllVars(b.Spec.To)...)
		if b.Spec.Step != nil {
			uses = append(uses, AllVars(b.Spec.Step)...)
		}
		if sub, ok := b.Spec.Var.(*ast.SubscriptExpr); ok {
			for _, ix := range sub.Indices {
				uses = append(uses, AllVars(ix)...)
			}
		}
		return uses
	case *ast.DeclStmt:
		return nil
	case *ast.DoWhileStmt:
		return AllVars(b.Cond)
	case *ast.IfStmt:
		return AllVars(b.Cond)
	default:
		return AllVars(b)
	}
}

// BlockVarDefs returns the names written by the AST-block b: assignment
// targets (including call-by-reference actuals on the same statement) and
// the control variable of a counted do loop.
func BlockVarDefs(b ast.Statement) []string {
	switch b := b.(type) {
	case *ast.AssignStmt:
		return AllLhsVars(b)
	case *ast.DoStmt:
		return doSpecDefs(b.Spec)
	}
	return nil
}

func doSpecDefs(spec *ast.DoSpec) []string {
	switch v := spec.Var.(type) {
	case *ast.VarExpr:
		return []string{analysis.VarName(v)}
	case *ast.SubscriptExpr:
		return []string{analysis.VarName(v.Array)}
	}
	return nil
}
