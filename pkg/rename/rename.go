// Package rename performs lexical scope analysis: it assigns a
// file-unique name to every program unit and every variable binding, and
// attaches the binding's unique name to each variable reference it
// governs.
package rename

import (
	"strconv"

	"github.com/fortlab/fortflow/pkg/analysis"
	"github.com/fortlab/fortflow/pkg/ast"
)

// State is the renamer's externally visible final state. After a
// complete rename both stacks are back at their initial height.
type State struct {
	ScopeStack []string
	EnvStack   []map[string]string
}

// ctx threads the renamer state through the traversal: the scope stack
// (innermost last, bottom is the root sentinel "_"), the monotonic
// unique-number source, and the stack of renaming environments.
type ctx struct {
	scopes []string
	seq    int
	envs   []map[string]string
}

func newCtx() *ctx {
	return &ctx{
		scopes: []string{"_"},
		seq:    0,
		envs:   []map[string]string{{}},
	}
}

func (c *ctx) fresh() int {
	c.seq++
	return c.seq
}

func (c *ctx) scope() string { return c.scopes[len(c.scopes)-1] }

func (c *ctx) pushScope(s string) { c.scopes = append(c.scopes, s) }
func (c *ctx) popScope()          { c.scopes = c.scopes[:len(c.scopes)-1] }

func (c *ctx) pushEnv(env map[string]string) { c.envs = append(c.envs, env) }
func (c *ctx) popEnv()                       { c.envs = c.envs[:len(c.envs)-1] }

// env is the innermost environment. Lookups never walk the stack: scopes
// are entered by pushing a purpose-built environment, so the top map is
// the whole visible binding set.
func (c *ctx) env() map[string]string { return c.envs[len(c.envs)-1] }

// Rename assigns unique names throughout the program file. The AST is
// annotated in place and returned together with the final renamer state.
// The operation is idempotent: references that already carry a unique
// name, and source names spelled with a leading underscore, are left
// untouched.
func Rename(pf *ast.ProgramFile) (*ast.ProgramFile, *State) {
	c := newCtx()
	for _, pu := range pf.Units {
		c.renameUnit(pu)
	}
	return pf, &State{
		ScopeStack: append([]string(nil), c.scopes...),
		EnvStack:   cloneEnvs(c.envs),
	}
}

// munge maps a structured program-unit name to its printable form.
func munge(name ast.UnitName) string { return name.String() }

func (c *ctx) renameUnit(pu ast.ProgramUnit) {
	var name string
	if a := analysis.Of(pu); a != nil && a.UniqueName != "" {
		// already renamed: keep the assigned name so repeated renaming
		// is a no-op
		name = a.UniqueName
	} else {
		name = c.scope() + "_" + munge(pu.UnitName()) + strconv.Itoa(c.fresh())
	}
	c.pushScope(name)

	switch u := pu.(type) {
	case *ast.Subroutine:
		if len(u.Params) > 0 {
			env := c.paramEnv(name, u.Params, "", "")
			c.withEnv(env, func() {
				c.rewriteParams(u.Params)
				c.rewriteBlocks(u.Blocks)
			})
		}
		c.renameDeclScopes(u.Blocks)
	case *ast.Function:
		// The function's result name binds to the unit's unique name,
		// so a write to the function name inside the body is a write
		// to the return value.
		env := c.paramEnv(name, u.Params, u.ResultName(), name)
		c.withEnv(env, func() {
			c.rewriteParams(u.Params)
			c.rewriteBlocks(u.Blocks)
		})
		c.renameDeclScopes(u.Blocks)
	case *ast.MainProgram:
		c.renameDeclScopes(u.Blocks)
	case *ast.Module:
		moduleEnv := c.renameModuleDecls(u.Decls)
		for _, inner := range u.Units {
			c.renameUnit(inner)
		}
		if a := analysis.Of(u); a != nil {
			a.ModuleEnv = moduleEnv
		}
	}

	c.popScope()
	if a := analysis.Of(pu); a != nil {
		a.UniqueName = name
		switch u := pu.(type) {
		case *ast.Function:
			a.IDType = &analysis.IDType{Base: u.RetType, Construct: analysis.CTFunction}
		case *ast.Subroutine:
			a.IDType = &analysis.IDType{Construct: analysis.CTSubroutine}
		}
	}
}

// paramEnv assigns each formal parameter a fresh unique name under the
// unit's name. When result is non-empty it additionally binds the result
// name to resultUnique.
func (c *ctx) paramEnv(unitName string, params []*ast.VarExpr, result, resultUnique string) map[string]string {
	env := make(map[string]string, len(params)+1)
	for _, p := range params {
		env[p.Name] = unitName + "_" + p.Name + strconv.Itoa(c.fresh())
		if a := analysis.Of(p); a != nil && a.IDType == nil {
			a.IDType = &analysis.IDType{Construct: analysis.CTVariable}
		}
	}
	if result != "" {
		env[result] = resultUnique
	}
	return env
}

func (c *ctx) withEnv(env map[string]string, body func()) {
	c.pushEnv(env)
	defer c.popEnv()
	body()
}

func (c *ctx) rewriteParams(params []*ast.VarExpr) {
	for _, p := range params {
		c.rewriteVar(p)
	}
}

func (c *ctx) rewriteBlocks(blocks []ast.Statement) {
	for _, b := range blocks {
		c.rewriteNode(b)
	}
}

// rewriteNode attaches unique names to every variable reference under n
// using the innermost environment.
func (c *ctx) rewriteNode(n ast.Node) {
	ast.Inspect(n, func(inner ast.Node) bool {
		if v, ok := inner.(*ast.VarExpr); ok {
			c.rewriteVar(v)
		}
		return true
	})
}

// rewriteVar applies the variable rewrite rule: skip references that are
// already renamed, otherwise consult the innermost environment only and
// pass unbound names through unchanged.
func (c *ctx) rewriteVar(v *ast.VarExpr) {
	if len(v.Name) > 0 && v.Name[0] == '_' {
		return
	}
	a := analysis.Of(v)
	if a == nil || a.UniqueName != "" {
		return
	}
	if u, ok := c.env()[v.Name]; ok {
		a.UniqueName = u
	}
}

// renameDeclScopes walks nested block lists bottom-up; a list whose
// element is a declaration statement opens a declaration scope covering
// the rest of the list.
func (c *ctx) renameDeclScopes(blocks []ast.Statement) {
	for _, b := range blocks {
		switch s := b.(type) {
		case *ast.IfStmt:
			c.renameDeclScopes(s.Then)
			c.renameDeclScopes(s.Else)
		case *ast.DoStmt:
			c.renameDeclScopes(s.Body)
		case *ast.DoWhileStmt:
			c.renameDeclScopes(s.Body)
		}
	}
	// Innermost declaration first: later declarations in the same list
	// sit deeper, so walk the suffixes back to front.
	for i := len(blocks) - 1; i >= 0; i-- {
		d, ok := blocks[i].(*ast.DeclStmt)
		if !ok {
			continue
		}
		env := c.declEnv(d)
		c.withEnv(env, func() {
			for _, b := range blocks[i:] {
				c.rewriteNode(b)
			}
		})
	}
}

// declEnv builds the renaming environment for one declaration statement.
// Array declarators rename their base name exactly like scalars.
func (c *ctx) declEnv(d *ast.DeclStmt) map[string]string {
	env := make(map[string]string, len(d.Decls))
	for _, dec := range d.Decls {
		env[dec.Var.Name] = c.scope() + "_" + dec.Var.Name + strconv.Itoa(c.fresh())
		if a := analysis.Of(dec.Var); a != nil && a.IDType == nil {
			ct := analysis.CTVariable
			if dec.Dims != nil {
				ct = analysis.CTArray
			}
			a.IDType = &analysis.IDType{Base: d.Type, Construct: ct}
		}
	}
	return env
}

// renameModuleDecls opens declaration scopes over a module's
// specification part and returns the union of the environments, which the
// caller records as the module's export environment.
func (c *ctx) renameModuleDecls(decls []ast.Statement) map[string]string {
	moduleEnv := make(map[string]string)
	for i := len(decls) - 1; i >= 0; i-- {
		d, ok := decls[i].(*ast.DeclStmt)
		if !ok {
			continue
		}
		env := c.declEnv(d)
		c.withEnv(env, func() {
			for _, b := range decls[i:] {
				c.rewriteNode(b)
			}
		})
		for k, v := range env {
			if _, done := moduleEnv[k]; !done {
				moduleEnv[k] = v
			}
		}
	}
	if len(moduleEnv) == 0 {
		return nil
	}
	return moduleEnv
}

func cloneEnvs(envs []map[string]string) []map[string]string {
	out := make([]map[string]string, len(envs))
	for i, e := range envs {
		m := make(map[string]string, len(e))
		for k, v := range e {
			m[k] = v
		}
		out[i] = m
	}
	return out
}
