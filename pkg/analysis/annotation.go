// Package analysis defines the annotation layer the analysis passes hang
// off every AST node, and the basic accessors over it.
package analysis

import (
	"fmt"

	"github.com/fortlab/fortflow/pkg/ast"
	"github.com/fortlab/fortflow/pkg/graph"
)

// NoLabel marks a statement that has not been assigned an instruction
// label by the basic-block pass.
const NoLabel = -1

// ConstructType classifies what kind of entity an identifier names.
type ConstructType int

const (
	CTFunction ConstructType = iota
	CTSubroutine
	CTVariable
	CTArray
	CTParameter
)

func (c ConstructType) String() string {
	switch c {
	case CTFunction:
		return "function"
	case CTSubroutine:
		return "subroutine"
	case CTVariable:
		return "variable"
	case CTArray:
		return "array"
	case CTParameter:
		return "parameter"
	default:
		return "unknown"
	}
}

// IDType is an identifier classification: an optional base type plus the
// construct kind.
type IDType struct {
	Base      string // "" when untyped
	Construct ConstructType
}

// BB is a basic block: an ordered run of AST-blocks.
type BB []ast.Statement

// BBGr is the basic-block graph of one program unit. Node 0 is the entry.
// The graph lives inside an annotation slot and is opaque to structural
// AST traversal.
type BBGr struct {
	Graph  *graph.Directed
	Blocks map[int]BB
}

// Analysis is the per-node annotation the passes share. InitAnalysis
// leaves every field but Prev empty; later passes fill slots in place.
type Analysis struct {
	Prev       any               // the annotation the node carried before InitAnalysis
	UniqueName string            // set by renaming, "" until then
	BBlocks    *BBGr             // set on program units by the basic-block pass
	InsLabel   int               // set on AST-blocks by the basic-block pass
	ModuleEnv  map[string]string // module-local name -> unique name
	IDType     *IDType
}

// InitAnalysis wraps every node's annotation in a fresh Analysis whose
// Prev slot preserves the original annotation. The AST is modified in
// place and returned for chaining.
func InitAnalysis(pf *ast.ProgramFile) *ast.ProgramFile {
	ast.Inspect(pf, func(n ast.Node) bool {
		n.SetAnnotation(&Analysis{Prev: n.Annotation(), InsLabel: NoLabel})
		return true
	})
	return pf
}

// StripAnalysis is the inverse of InitAnalysis: every node's annotation is
// restored to the value it carried before wrapping.
func StripAnalysis(pf *ast.ProgramFile) *ast.ProgramFile {
	ast.Inspect(pf, func(n ast.Node) bool {
		if a, ok := n.Annotation().(*Analysis); ok {
			n.SetAnnotation(a.Prev)
		}
		return true
	})
	return pf
}

// Of returns the Analysis annotation of n, or nil when the node has not
// been through InitAnalysis.
func Of(n ast.Node) *Analysis {
	a, _ := n.Annotation().(*Analysis)
	return a
}

// MustOf returns the Analysis annotation of n and panics when the node has
// not been through InitAnalysis. Use on paths where an unwrapped node is a
// caller error.
func MustOf(n ast.Node) *Analysis {
	a := Of(n)
	if a == nil {
		panic(fmt.Sprintf("analysis: node %T has no analysis annotation", n))
	}
	return a
}

// VarName returns the unique name of a variable reference when renaming
// has assigned one, else the source name. It panics when e is not a
// variable reference: calling it on any other expression is a caller
// invariant violation.
func VarName(e ast.Expression) string {
	v, ok := e.(*ast.VarExpr)
	if !ok {
		panic(fmt.Sprintf("analysis: VarName on non-variable expression %T", e))
	}
	if a := Of(v); a != nil && a.UniqueName != "" {
		return a.UniqueName
	}
	return v.Name
}

// GenVar constructs a variable reference whose source and unique name are
// both name, used to synthesize intermediate code.
func GenVar(span ast.Span, name string) *ast.VarExpr {
	v := &ast.VarExpr{Name: name}
	v.Span = span
	v.SetAnnotation(&Analysis{UniqueName: name, InsLabel: NoLabel})
	return v
}

// PUName returns the program unit's unique name when renaming has run,
// else its source-level name.
func PUName(pu ast.ProgramUnit) string {
	if a := Of(pu); a != nil && a.UniqueName != "" {
		return a.UniqueName
	}
	return pu.UnitName().String()
}
