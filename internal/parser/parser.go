package parser

import (
	"fmt"

	"github.com/fortlab/fortflow/pkg/ast"
)

// typeKeywords are the tokens that open a declaration (or a typed
// function header).
var typeKeywords = map[string]bool{
	"integer":   true,
	"real":      true,
	"logical":   true,
	"character": true,
	"double":    true,
	"complex":   true,
}

// Parse parses a whole source file into a program file. Each node's
// annotation slot is set to its source line, which InitAnalysis preserves
// in the Prev slot.
func Parse(src string) (*ast.ProgramFile, error) {
	toks, err := newLexer(src).lex()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.parseProgramFile()
}

type parser struct {
	toks []token
	pos  int
	// arrays tracks names declared with dimensions in the current unit,
	// to split `name(args)` into subscripts versus function references.
	arrays map[string]bool
}

func (p *parser) peek() token { return p.toks[p.pos] }
func (p *parser) next() token { t := p.toks[p.pos]; p.pos++; return t }
func (p *parser) atEOF() bool { return p.peek().kind == tkEOF }

func (p *parser) skipNewlines() {
	for p.peek().kind == tkNewline {
		p.pos++
	}
}

// acceptIdent consumes the next token when it is the given keyword.
func (p *parser) acceptIdent(kw string) bool {
	if t := p.peek(); t.kind == tkIdent && t.text == kw {
		p.pos++
		return true
	}
	return false
}

// acceptOp consumes the next token when it is the given operator.
func (p *parser) acceptOp(op string) bool {
	if t := p.peek(); t.kind == tkOp && t.text == op {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expectOp(op string) error {
	if !p.acceptOp(op) {
		return p.errf("expected %q, found %s", op, p.peek())
	}
	return nil
}

func (p *parser) expectIdent() (token, error) {
	t := p.peek()
	if t.kind != tkIdent {
		return token{}, p.errf("expected identifier, found %s", t)
	}
	p.pos++
	return t, nil
}

func (p *parser) expectNewline() error {
	t := p.peek()
	if t.kind == tkNewline {
		p.pos++
		return nil
	}
	if t.kind == tkEOF {
		return nil
	}
	return p.errf("expected end of statement, found %s", t)
}

func (p *parser) errf(format string, args ...any) error {
	return fmt.Errorf("line %d: %s", p.peek().line, fmt.Sprintf(format, args...))
}

// span stamps a node with its defining token's position and sets the line
// annotation.
func (p *parser) span(n ast.Node, t token) {
	setSpan(n, ast.Span{Line: t.line, Col: t.col})
	n.SetAnnotation(t.line)
}

func setSpan(n ast.Node, s ast.Span) {
	switch nd := n.(type) {
	case *ast.ProgramFile:
		nd.Span = s
	case *ast.MainProgram:
		nd.Span = s
	case *ast.Subroutine:
		nd.Span = s
	case *ast.Function:
		nd.Span = s
	case *ast.Module:
		nd.Span = s
	case *ast.DeclStmt:
		nd.Span = s
	case *ast.Declarator:
		nd.Span = s
	case *ast.AssignStmt:
		nd.Span = s
	case *ast.CallStmt:
		nd.Span = s
	case *ast.IfStmt:
		nd.Span = s
	case *ast.DoStmt:
		nd.Span = s
	case *ast.DoSpec:
		nd.Span = s
	case *ast.DoWhileStmt:
		nd.Span = s
	case *ast.PrintStmt:
		nd.Span = s
	case *ast.ReturnStmt:
		nd.Span = s
	case *ast.StopStmt:
		nd.Span = s
	case *ast.ContinueStmt:
		nd.Span = s
	case *ast.VarExpr:
		nd.Span = s
	case *ast.ConstExpr:
		nd.Span = s
	case *ast.SubscriptExpr:
		nd.Span = s
	case *ast.CallExpr:
		nd.Span = s
	case *ast.BinExpr:
		nd.Span = s
	case *ast.UnExpr:
		nd.Span = s
	case *ast.ParenExpr:
		nd.Span = s
	}
}

func (p *parser) parseProgramFile() (*ast.ProgramFile, error) {
	pf := &ast.ProgramFile{}
	p.skipNewlines()
	if !p.atEOF() {
		p.span(pf, p.peek())
	}
	for {
		p.skipNewlines()
		if p.atEOF() {
			return pf, nil
		}
		pu, err := p.parseUnit()
		if err != nil {
			return nil, err
		}
		pf.Units = append(pf.Units, pu)
	}
}

func (p *parser) parseUnit() (ast.ProgramUnit, error) {
	p.arrays = make(map[string]bool)
	t := p.peek()
	if t.kind != tkIdent {
		return nil, p.errf("expected program unit, found %s", t)
	}
	switch {
	case t.text == "program":
		return p.parseMain()
	case t.text == "subroutine":
		return p.parseSubroutine()
	case t.text == "module":
		return p.parseModule()
	case t.text == "function":
		return p.parseFunction("")
	case typeKeywords[t.text] && p.la(1).text == "function",
		t.text == "double" && p.la(1).text == "precision" && p.la(2).text == "function":
		return p.parseTypedFunction()
	default:
		return nil, p.errf("expected program unit, found %s", t)
	}
}

// la peeks k tokens ahead.
func (p *parser) la(k int) token {
	if p.pos+k >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+k]
}

func (p *parser) parseMain() (*ast.MainProgram, error) {
	t := p.next() // program
	u := &ast.MainProgram{}
	p.span(u, t)
	if p.peek().kind == tkIdent {
		u.Name = p.next().text
	}
	if err := p.expectNewline(); err != nil {
		return nil, err
	}
	body, err := p.parseBody("program", u.Name)
	if err != nil {
		return nil, err
	}
	u.Blocks = body
	return u, nil
}

func (p *parser) parseSubroutine() (*ast.Subroutine, error) {
	t := p.next() // subroutine
	u := &ast.Subroutine{}
	p.span(u, t)
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	u.Name = name.text
	if u.Params, err = p.parseParamList(); err != nil {
		return nil, err
	}
	if err := p.expectNewline(); err != nil {
		return nil, err
	}
	if u.Blocks, err = p.parseBody("subroutine", u.Name); err != nil {
		return nil, err
	}
	return u, nil
}

func (p *parser) parseTypedFunction() (*ast.Function, error) {
	ret := p.next().text
	if ret == "double" && p.peek().text == "precision" {
		ret += " " + p.next().text
	}
	return p.parseFunction(ret)
}

func (p *parser) parseFunction(retType string) (*ast.Function, error) {
	t := p.next() // function
	u := &ast.Function{RetType: retType}
	p.span(u, t)
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	u.Name = name.text
	if u.Params, err = p.parseParamList(); err != nil {
		return nil, err
	}
	if p.acceptIdent("result") {
		if err := p.expectOp("("); err != nil {
			return nil, err
		}
		r, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		u.Result = r.text
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
	}
	if err := p.expectNewline(); err != nil {
		return nil, err
	}
	if u.Blocks, err = p.parseBody("function", u.Name); err != nil {
		return nil, err
	}
	return u, nil
}

func (p *parser) parseModule() (*ast.Module, error) {
	t := p.next() // module
	u := &ast.Module{}
	p.span(u, t)
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	u.Name = name.text
	if err := p.expectNewline(); err != nil {
		return nil, err
	}
	for {
		p.skipNewlines()
		switch {
		case p.atEOF():
			return nil, p.errf("unterminated module %s", u.Name)
		case p.peekEnd("module"):
			p.consumeEnd("module")
			return u, nil
		case p.acceptIdent("contains"):
			if err := p.expectNewline(); err != nil {
				return nil, err
			}
			for {
				p.skipNewlines()
				if p.peekEnd("module") {
					p.consumeEnd("module")
					return u, nil
				}
				if p.atEOF() {
					return nil, p.errf("unterminated module %s", u.Name)
				}
				inner, err := p.parseUnit()
				if err != nil {
					return nil, err
				}
				u.Units = append(u.Units, inner)
			}
		default:
			s, err := p.parseStmt()
			if err != nil {
				return nil, err
			}
			u.Decls = append(u.Decls, s)
		}
	}
}

func (p *parser) parseParamList() ([]*ast.VarExpr, error) {
	if !p.acceptOp("(") {
		return nil, nil
	}
	var params []*ast.VarExpr
	if p.acceptOp(")") {
		return params, nil
	}
	for {
		t, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		v := &ast.VarExpr{Name: t.text}
		p.span(v, t)
		params = append(params, v)
		if p.acceptOp(",") {
			continue
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		return params, nil
	}
}

// peekEnd reports whether the upcoming tokens close a construct of the
// given kind: `end`, `end <kind> [name]` or the fused `end<kind>` form.
func (p *parser) peekEnd(kind string) bool {
	t := p.peek()
	if t.kind != tkIdent {
		return false
	}
	if t.text == "end"+kind {
		return true
	}
	if t.text != "end" {
		return false
	}
	n := p.la(1)
	return n.kind == tkNewline || n.kind == tkEOF || (n.kind == tkIdent && n.text == kind)
}

func (p *parser) consumeEnd(kind string) {
	t := p.next() // end or end<kind>
	if t.text == "end" && p.peek().kind == tkIdent && p.peek().text == kind {
		p.next()
	}
	if p.peek().kind == tkIdent { // trailing construct name
		p.next()
	}
	if p.peek().kind == tkNewline {
		p.next()
	}
}

// parseBody parses statements until the unit's end line.
func (p *parser) parseBody(kind, name string) ([]ast.Statement, error) {
	var body []ast.Statement
	for {
		p.skipNewlines()
		if p.atEOF() {
			return nil, fmt.Errorf("unterminated %s %s", kind, name)
		}
		if p.peekEnd(kind) {
			p.consumeEnd(kind)
			return body, nil
		}
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		body = append(body, s)
	}
}

func (p *parser) parseStmt() (ast.Statement, error) {
	t := p.peek()
	if t.kind != tkIdent {
		return nil, p.errf("expected statement, found %s", t)
	}
	switch {
	case t.text == "call":
		return p.parseCall()
	case t.text == "if":
		return p.parseIf()
	case t.text == "do":
		return p.parseDo()
	case t.text == "print":
		return p.parsePrint()
	case t.text == "return":
		p.next()
		s := &ast.ReturnStmt{}
		p.span(s, t)
		return s, p.expectNewline()
	case t.text == "stop":
		p.next()
		if p.peek().kind == tkInt || p.peek().kind == tkString {
			p.next() // stop code
		}
		s := &ast.StopStmt{}
		p.span(s, t)
		return s, p.expectNewline()
	case t.text == "continue":
		p.next()
		s := &ast.ContinueStmt{}
		p.span(s, t)
		return s, p.expectNewline()
	case typeKeywords[t.text]:
		return p.parseDecl()
	default:
		return p.parseAssign()
	}
}

func (p *parser) parseCall() (*ast.CallStmt, error) {
	t := p.next() // call
	s := &ast.CallStmt{}
	p.span(s, t)
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	s.Name = name.text
	if p.acceptOp("(") {
		if s.Args, err = p.parseExprList(")"); err != nil {
			return nil, err
		}
	}
	return s, p.expectNewline()
}

func (p *parser) parseIf() (*ast.IfStmt, error) {
	t := p.next() // if
	s := &ast.IfStmt{}
	p.span(s, t)
	if err := p.expectOp("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	s.Cond = cond
	if err := p.expectOp(")"); err != nil {
		return nil, err
	}
	if !p.acceptIdent("then") {
		// logical if: a single statement on the same line
		inner, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		s.Then = []ast.Statement{inner}
		return s, nil
	}
	if err := p.expectNewline(); err != nil {
		return nil, err
	}
	inElse := false
	for {
		p.skipNewlines()
		if p.atEOF() {
			return nil, p.errf("unterminated if")
		}
		if p.peekEnd("if") {
			p.consumeEnd("if")
			return s, nil
		}
		if p.acceptIdent("else") {
			if err := p.expectNewline(); err != nil {
				return nil, err
			}
			inElse = true
			continue
		}
		inner, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		if inElse {
			s.Else = append(s.Else, inner)
		} else {
			s.Then = append(s.Then, inner)
		}
	}
}

func (p *parser) parseDo() (ast.Statement, error) {
	t := p.next() // do
	if p.acceptIdent("while") {
		s := &ast.DoWhileStmt{}
		p.span(s, t)
		if err := p.expectOp("("); err != nil {
			return nil, err
		}
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		s.Cond = cond
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		if err := p.expectNewline(); err != nil {
			return nil, err
		}
		body, err := p.parseLoopBody()
		if err != nil {
			return nil, err
		}
		s.Body = body
		return s, nil
	}

	s := &ast.DoStmt{Spec: &ast.DoSpec{}}
	p.span(s, t)
	p.span(s.Spec, t)
	v, err := p.parseLValue()
	if err != nil {
		return nil, err
	}
	s.Spec.Var = v
	if err := p.expectOp("="); err != nil {
		return nil, err
	}
	if s.Spec.From, err = p.parseExpr(); err != nil {
		return nil, err
	}
	if err := p.expectOp(","); err != nil {
		return nil, err
	}
	if s.Spec.To, err = p.parseExpr(); err != nil {
		return nil, err
	}
	if p.acceptOp(",") {
		if s.Spec.Step, err = p.parseExpr(); err != nil {
			return nil, err
		}
	}
	if err := p.expectNewline(); err != nil {
		return nil, err
	}
	body, err := p.parseLoopBody()
	if err != nil {
		return nil, err
	}
	s.Body = body
	return s, nil
}

func (p *parser) parseLoopBody() ([]ast.Statement, error) {
	var body []ast.Statement
	for {
		p.skipNewlines()
		if p.atEOF() {
			return nil, p.errf("unterminated do loop")
		}
		if p.peekEnd("do") {
			p.consumeEnd("do")
			return body, nil
		}
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		body = append(body, s)
	}
}

func (p *parser) parsePrint() (*ast.PrintStmt, error) {
	t := p.next() // print
	s := &ast.PrintStmt{}
	p.span(s, t)
	if err := p.expectOp("*"); err != nil {
		return nil, err
	}
	if p.acceptOp(",") {
		args, err := p.parseExprList("")
		if err != nil {
			return nil, err
		}
		s.Args = args
	}
	return s, p.expectNewline()
}

func (p *parser) parseDecl() (*ast.DeclStmt, error) {
	t := p.next() // type keyword
	s := &ast.DeclStmt{Type: t.text}
	p.span(s, t)
	if t.text == "double" && p.peek().text == "precision" {
		s.Type += " " + p.next().text
	}
	if t.text == "character" && p.acceptOp("*") {
		if p.peek().kind == tkInt {
			p.next() // length
		}
	}
	p.acceptOp("::")
	for {
		nt, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		v := &ast.VarExpr{Name: nt.text}
		p.span(v, nt)
		d := &ast.Declarator{Var: v}
		p.span(d, nt)
		if p.acceptOp("(") {
			if d.Dims, err = p.parseExprList(")"); err != nil {
				return nil, err
			}
			p.arrays[nt.text] = true
		}
		s.Decls = append(s.Decls, d)
		if !p.acceptOp(",") {
			break
		}
	}
	return s, p.expectNewline()
}

func (p *parser) parseAssign() (*ast.AssignStmt, error) {
	t := p.peek()
	s := &ast.AssignStmt{}
	p.span(s, t)
	lhs, err := p.parseLValue()
	if err != nil {
		return nil, err
	}
	s.Lhs = lhs
	if err := p.expectOp("="); err != nil {
		return nil, err
	}
	if s.Rhs, err = p.parseExpr(); err != nil {
		return nil, err
	}
	return s, p.expectNewline()
}

// parseLValue parses `name` or `name(indices)`. A subscripted target
// marks the base name as an array for the rest of the unit.
func (p *parser) parseLValue() (ast.Expression, error) {
	t, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	v := &ast.VarExpr{Name: t.text}
	p.span(v, t)
	if !p.acceptOp("(") {
		return v, nil
	}
	sub := &ast.SubscriptExpr{Array: v}
	p.span(sub, t)
	if sub.Indices, err = p.parseExprList(")"); err != nil {
		return nil, err
	}
	p.arrays[t.text] = true
	return sub, nil
}

// parseExprList parses a comma-separated expression list. When closer is
// non-empty the list is terminated by that operator, which is consumed;
// otherwise the list runs to end of statement.
func (p *parser) parseExprList(closer string) ([]ast.Expression, error) {
	var out []ast.Expression
	if closer != "" && p.acceptOp(closer) {
		return out, nil
	}
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		if p.acceptOp(",") {
			continue
		}
		if closer == "" {
			return out, nil
		}
		if err := p.expectOp(closer); err != nil {
			return nil, err
		}
		return out, nil
	}
}

// Expression parsing, loosest binding first.

func (p *parser) parseExpr() (ast.Expression, error) { return p.parseOr() }

func (p *parser) parseOr() (ast.Expression, error) {
	return p.parseBinDot(p.parseAnd, ".or.")
}

func (p *parser) parseAnd() (ast.Expression, error) {
	return p.parseBinDot(p.parseNot, ".and.")
}

func (p *parser) parseBinDot(sub func() (ast.Expression, error), op string) (ast.Expression, error) {
	l, err := sub()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tkDotOp || t.text != op {
			return l, nil
		}
		p.next()
		r, err := sub()
		if err != nil {
			return nil, err
		}
		b := &ast.BinExpr{Op: op, L: l, R: r}
		p.span(b, t)
		l = b
	}
}

func (p *parser) parseNot() (ast.Expression, error) {
	t := p.peek()
	if t.kind == tkDotOp && t.text == ".not." {
		p.next()
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		u := &ast.UnExpr{Op: ".not.", X: x}
		p.span(u, t)
		return u, nil
	}
	return p.parseRel()
}

var relOps = map[string]string{
	"==": "==", "/=": "/=", "<": "<", "<=": "<=", ">": ">", ">=": ">=",
	".eq.": "==", ".ne.": "/=", ".lt.": "<", ".le.": "<=", ".gt.": ">", ".ge.": ">=",
}

func (p *parser) parseRel() (ast.Expression, error) {
	l, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	t := p.peek()
	if (t.kind == tkOp || t.kind == tkDotOp) && relOps[t.text] != "" {
		p.next()
		r, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		b := &ast.BinExpr{Op: relOps[t.text], L: l, R: r}
		p.span(b, t)
		return b, nil
	}
	return l, nil
}

func (p *parser) parseConcat() (ast.Expression, error) {
	return p.parseBinOps(p.parseAddSub, "//")
}

func (p *parser) parseAddSub() (ast.Expression, error) {
	return p.parseBinOps(p.parseMulDiv, "+", "-")
}

func (p *parser) parseMulDiv() (ast.Expression, error) {
	return p.parseBinOps(p.parseUnary, "*", "/")
}

func (p *parser) parseBinOps(sub func() (ast.Expression, error), ops ...string) (ast.Expression, error) {
	l, err := sub()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tkOp || !contains(ops, t.text) {
			return l, nil
		}
		p.next()
		r, err := sub()
		if err != nil {
			return nil, err
		}
		b := &ast.BinExpr{Op: t.text, L: l, R: r}
		p.span(b, t)
		l = b
	}
}

func (p *parser) parseUnary() (ast.Expression, error) {
	t := p.peek()
	if t.kind == tkOp && (t.text == "-" || t.text == "+") {
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if t.text == "+" {
			return x, nil
		}
		u := &ast.UnExpr{Op: "-", X: x}
		p.span(u, t)
		return u, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (ast.Expression, error) {
	l, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	t := p.peek()
	if t.kind == tkOp && t.text == "**" {
		p.next()
		// right-associative
		r, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		b := &ast.BinExpr{Op: "**", L: l, R: r}
		p.span(b, t)
		return b, nil
	}
	return l, nil
}

func (p *parser) parsePrimary() (ast.Expression, error) {
	t := p.peek()
	switch t.kind {
	case tkInt:
		p.next()
		c := &ast.ConstExpr{Kind: ast.ConstInt, Text: t.text}
		p.span(c, t)
		return c, nil
	case tkReal:
		p.next()
		c := &ast.ConstExpr{Kind: ast.ConstReal, Text: t.text}
		p.span(c, t)
		return c, nil
	case tkString:
		p.next()
		c := &ast.ConstExpr{Kind: ast.ConstString, Text: t.text}
		p.span(c, t)
		return c, nil
	case tkDotOp:
		if t.text == ".true." || t.text == ".false." {
			p.next()
			c := &ast.ConstExpr{Kind: ast.ConstLogical, Text: t.text}
			p.span(c, t)
			return c, nil
		}
	case tkOp:
		if t.text == "(" {
			p.next()
			x, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expectOp(")"); err != nil {
				return nil, err
			}
			e := &ast.ParenExpr{X: x}
			p.span(e, t)
			return e, nil
		}
	case tkIdent:
		p.next()
		if !p.acceptOp("(") {
			v := &ast.VarExpr{Name: t.text}
			p.span(v, t)
			return v, nil
		}
		args, err := p.parseExprList(")")
		if err != nil {
			return nil, err
		}
		if p.arrays[t.text] {
			v := &ast.VarExpr{Name: t.text}
			p.span(v, t)
			sub := &ast.SubscriptExpr{Array: v, Indices: args}
			p.span(sub, t)
			return sub, nil
		}
		call := &ast.CallExpr{Name: t.text, Args: args}
		p.span(call, t)
		return call, nil
	}
	return nil, p.errf("expected expression, found %s", t)
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
