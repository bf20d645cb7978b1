package ast

// This file provides the generic structural traversals the passes are built
// on: Inspect (pre-order gather), RewriteExprs (bottom-up expression
// rewriting) and DescendExprs (one-level expression rewriting). Annotation
// slots are opaque to all three: a basic-block graph stored in an
// annotation is treated as a leaf and never descended into.

// Children returns a node's immediate AST children, left to right.
func Children(n Node) []Node {
	var out []Node
	add := func(c Node) {
		if c != nil {
			out = append(out, c)
		}
	}
	addExpr := func(e Expression) {
		if e != nil {
			out = append(out, e)
		}
	}
	switch n := n.(type) {
	case *ProgramFile:
		for _, u := range n.Units {
			add(u)
		}
	case *MainProgram:
		for _, b := range n.Blocks {
			add(b)
		}
	case *Subroutine:
		for _, p := range n.Params {
			add(p)
		}
		for _, b := range n.Blocks {
			add(b)
		}
	case *Function:
		for _, p := range n.Params {
			add(p)
		}
		for _, b := range n.Blocks {
			add(b)
		}
	case *Module:
		for _, d := range n.Decls {
			add(d)
		}
		for _, u := range n.Units {
			add(u)
		}
	case *DeclStmt:
		for _, d := range n.Decls {
			add(d)
		}
	case *Declarator:
		add(n.Var)
		for _, d := range n.Dims {
			addExpr(d)
		}
	case *AssignStmt:
		addExpr(n.Lhs)
		addExpr(n.Rhs)
	case *CallStmt:
		for _, a := range n.Args {
			addExpr(a)
		}
	case *IfStmt:
		addExpr(n.Cond)
		for _, b := range n.Then {
			add(b)
		}
		for _, b := range n.Else {
			add(b)
		}
	case *DoStmt:
		add(n.Spec)
		for _, b := range n.Body {
			add(b)
		}
	case *DoSpec:
		addExpr(n.Var)
		addExpr(n.From)
		addExpr(n.To)
		addExpr(n.Step)
	case *DoWhileStmt:
		addExpr(n.Cond)
		for _, b := range n.Body {
			add(b)
		}
	case *PrintStmt:
		for _, a := range n.Args {
			addExpr(a)
		}
	case *SubscriptExpr:
		add(n.Array)
		for _, i := range n.Indices {
			addExpr(i)
		}
	case *CallExpr:
		for _, a := range n.Args {
			addExpr(a)
		}
	case *BinExpr:
		addExpr(n.L)
		addExpr(n.R)
	case *UnExpr:
		addExpr(n.X)
	case *ParenExpr:
		addExpr(n.X)
	case *VarExpr, *ConstExpr, *ReturnStmt, *StopStmt, *ContinueStmt:
	}
	return out
}

// Inspect walks the tree rooted at n in pre-order (parent before children,
// left before right), calling f for each node. If f returns false the
// walk does not descend into that node's children.
func Inspect(n Node, f func(Node) bool) {
	if n == nil {
		return
	}
	if !f(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, f)
	}
}

// Statements returns every statement nested anywhere under n, in pre-order.
func Statements(n Node) []Statement {
	var out []Statement
	Inspect(n, func(c Node) bool {
		if s, ok := c.(Statement); ok {
			out = append(out, s)
		}
		return true
	})
	return out
}

// Vars returns every variable reference nested anywhere under n, in
// pre-order.
func Vars(n Node) []*VarExpr {
	var out []*VarExpr
	Inspect(n, func(c Node) bool {
		if v, ok := c.(*VarExpr); ok {
			out = append(out, v)
		}
		return true
	})
	return out
}

// RewriteExprs rewrites every expression under n bottom-up: each
// expression is passed to f exactly once, after its own subexpressions
// have been rewritten. The returned expression replaces the original in
// its parent. An error aborts the walk. Only Expression-typed slots are
// visited: the *VarExpr slots (subscript bases, unit parameters and
// declarator names) are never passed to f.
func RewriteExprs(n Node, f func(Expression) (Expression, error)) error {
	_, err := rewriteNode(n, f)
	return err
}

func rewriteExpr(e Expression, f func(Expression) (Expression, error)) (Expression, error) {
	if e == nil {
		return nil, nil
	}
	if _, err := rewriteNode(e, f); err != nil {
		return nil, err
	}
	return f(e)
}

func rewriteList(es []Expression, f func(Expression) (Expression, error)) error {
	for i, e := range es {
		ne, err := rewriteExpr(e, f)
		if err != nil {
			return err
		}
		es[i] = ne
	}
	return nil
}

// rewriteNode rewrites the expressions held directly or indirectly by n,
// without applying f to n itself.
func rewriteNode(n Node, f func(Expression) (Expression, error)) (Node, error) {
	var err error
	switch n := n.(type) {
	case *ProgramFile:
		for _, u := range n.Units {
			if _, err = rewriteNode(u, f); err != nil {
				return nil, err
			}
		}
	case *MainProgram:
		err = rewriteStmts(n.Blocks, f)
	case *Subroutine:
		err = rewriteStmts(n.Blocks, f)
	case *Function:
		err = rewriteStmts(n.Blocks, f)
	case *Module:
		if err = rewriteStmts(n.Decls, f); err != nil {
			return nil, err
		}
		for _, u := range n.Units {
			if _, err = rewriteNode(u, f); err != nil {
				return nil, err
			}
		}
	case *DeclStmt:
		for _, d := range n.Decls {
			if err = rewriteList(d.Dims, f); err != nil {
				return nil, err
			}
		}
	case *AssignStmt:
		if n.Lhs, err = rewriteExpr(n.Lhs, f); err != nil {
			return nil, err
		}
		n.Rhs, err = rewriteExpr(n.Rhs, f)
	case *CallStmt:
		err = rewriteList(n.Args, f)
	case *IfStmt:
		if n.Cond, err = rewriteExpr(n.Cond, f); err != nil {
			return nil, err
		}
		if err = rewriteStmts(n.Then, f); err != nil {
			return nil, err
		}
		err = rewriteStmts(n.Else, f)
	case *DoStmt:
		if _, err = rewriteNode(n.Spec, f); err != nil {
			return nil, err
		}
		err = rewriteStmts(n.Body, f)
	case *DoSpec:
		if n.Var, err = rewriteExpr(n.Var, f); err != nil {
			return nil, err
		}
		if n.From, err = rewriteExpr(n.From, f); err != nil {
			return nil, err
		}
		if n.To, err = rewriteExpr(n.To, f); err != nil {
			return nil, err
		}
		n.Step, err = rewriteExpr(n.Step, f)
	case *DoWhileStmt:
		if n.Cond, err = rewriteExpr(n.Cond, f); err != nil {
			return nil, err
		}
		err = rewriteStmts(n.Body, f)
	case *PrintStmt:
		err = rewriteList(n.Args, f)
	case *SubscriptExpr:
		err = rewriteList(n.Indices, f)
	case *CallExpr:
		err = rewriteList(n.Args, f)
	case *BinExpr:
		if n.L, err = rewriteExpr(n.L, f); err != nil {
			return nil, err
		}
		n.R, err = rewriteExpr(n.R, f)
	case *UnExpr:
		n.X, err = rewriteExpr(n.X, f)
	case *ParenExpr:
		n.X, err = rewriteExpr(n.X, f)
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

func rewriteStmts(stmts []Statement, f func(Expression) (Expression, error)) error {
	for _, s := range stmts {
		if _, err := rewriteNode(s, f); err != nil {
			return err
		}
	}
	return nil
}

// DescendExprs applies f to each expression held directly by n, one level
// deep, without recursing into the results. Subexpressions of rewritten
// expressions are not revisited. A subscript's base name and the
// dimensions of declarators are not passed to f.
func DescendExprs(n Node, f func(Expression) (Expression, error)) error {
	apply := func(e Expression) (Expression, error) {
		if e == nil {
			return nil, nil
		}
		return f(e)
	}
	var err error
	switch n := n.(type) {
	case *AssignStmt:
		if n.Lhs, err = apply(n.Lhs); err != nil {
			return err
		}
		n.Rhs, err = apply(n.Rhs)
	case *IfStmt:
		n.Cond, err = apply(n.Cond)
	case *DoWhileStmt:
		n.Cond, err = apply(n.Cond)
	case *DoSpec:
		if n.Var, err = apply(n.Var); err != nil {
			return err
		}
		if n.From, err = apply(n.From); err != nil {
			return err
		}
		if n.To, err = apply(n.To); err != nil {
			return err
		}
		n.Step, err = apply(n.Step)
	case *BinExpr:
		if n.L, err = apply(n.L); err != nil {
			return err
		}
		n.R, err = apply(n.R)
	case *UnExpr:
		n.X, err = apply(n.X)
	case *ParenExpr:
		n.X, err = apply(n.X)
	case *SubscriptExpr:
		for i := range n.Indices {
			if n.Indices[i], err = apply(n.Indices[i]); err != nil {
				return err
			}
		}
	case *CallExpr:
		for i := range n.Args {
			if n.Args[i], err = apply(n.Args[i]); err != nil {
				return err
			}
		}
	case *CallStmt:
		for i := range n.Args {
			if n.Args[i], err = apply(n.Args[i]); err != nil {
				return err
			}
		}
	case *PrintStmt:
		for i := range n.Args {
			if n.Args[i], err = apply(n.Args[i]); err != nil {
				return err
			}
		}
	}
	return err
}
