// Package ast defines the Fortran abstract syntax tree consumed by the
// analysis passes. Every node carries an annotation slot that callers may
// use freely; the analysis packages layer their own metadata over it.
package ast

// Span records the source position of a node.
type Span struct {
	Line int // 1-based source line
	Col  int // 1-based column of the first token
}

// NodeData holds the fields common to every AST node: the source span and
// the caller-owned annotation slot.
type NodeData struct {
	Span Span
	Anno any
}

func (n *NodeData) NodeSpan() Span      { return n.Span }
func (n *NodeData) Annotation() any     { return n.Anno }
func (n *NodeData) SetAnnotation(a any) { n.Anno = a }

// Node is implemented by every AST node.
type Node interface {
	NodeSpan() Span
	Annotation() any
	SetAnnotation(a any)
}

// Expression is implemented by all expression nodes.
type Expression interface {
	Node
	exprNode()
}

// Statement is implemented by all statement-level nodes (AST-blocks).
type Statement interface {
	Node
	stmtNode()
}

// ProgramUnit is a top-level Fortran scope: main program, subroutine,
// function or module.
type ProgramUnit interface {
	Node
	unitNode()
	// UnitName returns the unit's source-level name.
	UnitName() UnitName
	// Body returns the unit's executable statement list (nil for modules).
	Body() []Statement
}

// UnitName is a program unit's source name. A main program may be
// anonymous, in which case Main is set and Name is empty.
type UnitName struct {
	Name string
	Main bool
}

// String renders the name in its canonical textual form. An anonymous main
// program prints as MAIN.
func (u UnitName) String() string {
	if u.Name == "" && u.Main {
		return "MAIN"
	}
	return u.Name
}

// ProgramFile is the root of a parsed source file.
type ProgramFile struct {
	NodeData
	Units []ProgramUnit
}

// MainProgram is a PROGRAM ... END PROGRAM unit. Name may be empty.
type MainProgram struct {
	NodeData
	Name   string
	Blocks []Statement
}

// Subroutine is a SUBROUTINE ... END SUBROUTINE unit.
type Subroutine struct {
	NodeData
	Name   string
	Params []*VarExpr
	Blocks []Statement
}

// Function is a FUNCTION ... END FUNCTION unit. Result names the RESULT
// variable when present; otherwise the function name doubles as the result.
type Function struct {
	NodeData
	RetType string
	Name    string
	Params  []*VarExpr
	Result  string
	Blocks  []Statement
}

// Module is a MODULE ... END MODULE unit: module-level declarations plus
// the units following CONTAINS.
type Module struct {
	NodeData
	Name  string
	Decls []Statement
	Units []ProgramUnit
}

func (*MainProgram) unitNode() {}
func (*Subroutine) unitNode()  {}
func (*Function) unitNode()    {}
func (*Module) unitNode()      {}

func (u *MainProgram) UnitName() UnitName { return UnitName{Name: u.Name, Main: true} }
func (u *Subroutine) UnitName() UnitName  { return UnitName{Name: u.Name} }
func (u *Function) UnitName() UnitName    { return UnitName{Name: u.Name} }
func (u *Module) UnitName() UnitName      { return UnitName{Name: u.Name} }

func (u *MainProgram) Body() []Statement { return u.Blocks }
func (u *Subroutine) Body() []Statement  { return u.Blocks }
func (u *Function) Body() []Statement    { return u.Blocks }
func (u *Module) Body() []Statement      { return nil }

// ResultName is the name that receives the function's return value.
func (u *Function) ResultName() string {
	if u.Result != "" {
		return u.Result
	}
	return u.Name
}

// Declarator binds one name in a declaration statement. Dims is non-nil
// for array declarators.
type Declarator struct {
	NodeData
	Var  *VarExpr
	Dims []Expression
}

// DeclStmt is a type declaration statement, e.g. `integer x, a(10)`.
type DeclStmt struct {
	NodeData
	Type  string
	Decls []*Declarator
}

// AssignStmt is `lhs = rhs`. Lhs is a VarExpr or SubscriptExpr.
type AssignStmt struct {
	NodeData
	Lhs Expression
	Rhs Expression
}

// CallStmt is `call name(args)`. Args is nil when the call carries no
// argument list.
type CallStmt struct {
	NodeData
	Name string
	Args []Expression
}

// IfStmt covers both block ifs and logical ifs; a logical if has a
// single-statement Then and nil Else.
type IfStmt struct {
	NodeData
	Cond Expression
	Then []Statement
	Else []Statement
}

// DoSpec is the control spec of a counted do loop: `var = from, to[, step]`.
type DoSpec struct {
	NodeData
	Var  Expression
	From Expression
	To   Expression
	Step Expression // nil when omitted
}

// DoStmt is a counted `do ... end do` loop.
type DoStmt struct {
	NodeData
	Spec *DoSpec
	Body []Statement
}

// DoWhileStmt is a `do while (cond) ... end do` loop.
type DoWhileStmt struct {
	NodeData
	Cond Expression
	Body []Statement
}

// PrintStmt is `print *, args`.
type PrintStmt struct {
	NodeData
	Args []Expression
}

// ReturnStmt is `return`.
type ReturnStmt struct{ NodeData }

// StopStmt is `stop`.
type StopStmt struct{ NodeData }

// ContinueStmt is `continue`.
type ContinueStmt struct{ NodeData }

func (*DeclStmt) stmtNode()     {}
func (*AssignStmt) stmtNode()   {}
func (*CallStmt) stmtNode()     {}
func (*IfStmt) stmtNode()       {}
func (*DoStmt) stmtNode()       {}
func (*DoWhileStmt) stmtNode()  {}
func (*PrintStmt) stmtNode()    {}
func (*ReturnStmt) stmtNode()   {}
func (*StopStmt) stmtNode()     {}
func (*ContinueStmt) stmtNode() {}

// ConstKind classifies constant literals.
type ConstKind int

const (
	ConstInt ConstKind = iota
	ConstReal
	ConstLogical
	ConstString
)

// VarExpr is a reference to a variable or array name.
type VarExpr struct {
	NodeData
	Name string
}

// ConstExpr is a literal constant; Text keeps the source spelling.
type ConstExpr struct {
	NodeData
	Kind ConstKind
	Text string
}

// SubscriptExpr is an array element access `a(i, j)`.
type SubscriptExpr struct {
	NodeData
	Array   *VarExpr
	Indices []Expression
}

// CallExpr is a function reference `f(x)`. The callee is a plain name, not
// a variable reference: call heads are not renamed and do not count as
// variable occurrences.
type CallExpr struct {
	NodeData
	Name string
	Args []Expression
}

// BinExpr is a binary operation; Op keeps the source operator spelling in
// lower case (`+`, `.and.`, `<=`, ...).
type BinExpr struct {
	NodeData
	Op string
	L  Expression
	R  Expression
}

// UnExpr is a unary operation (`-`, `.not.`).
type UnExpr struct {
	NodeData
	Op string
	X  Expression
}

// ParenExpr preserves explicit parenthesization.
type ParenExpr struct {
	NodeData
	X Expression
}

func (*VarExpr) exprNode()       {}
func (*ConstExpr) exprNode()     {}
func (*SubscriptExpr) exprNode() {}
func (*CallExpr) exprNode()      {}
func (*BinExpr) exprNode()       {}
func (*UnExpr) exprNode()        {}
func (*ParenExpr) exprNode()     {}
