package rename_test

import (
	"reflect"
	"testing"

	"github.com/fortlab/fortflow/internal/parser"
	"github.com/fortlab/fortflow/pkg/analysis"
	"github.com/fortlab/fortflow/pkg/ast"
	"github.com/fortlab/fortflow/pkg/rename"
)

func mustParse(t *testing.T, src string) *ast.ProgramFile {
	t.Helper()
	pf, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return analysis.InitAnalysis(pf)
}

// uniqueNames returns source -> unique for every renamed reference under n.
func uniqueNames(n ast.Node) map[string][]string {
	out := map[string][]string{}
	for _, v := range ast.Vars(n) {
		if a := analysis.Of(v); a != nil && a.UniqueName != "" {
			out[v.Name] = append(out[v.Name], a.UniqueName)
		}
	}
	return out
}

func TestRenameTrivial(t *testing.T) {
	pf := mustParse(t, "subroutine foo(x)\n  x = x + 1\nend\n")
	pf, _ = rename.Rename(pf)

	sub := pf.Units[0].(*ast.Subroutine)
	if got := analysis.PUName(sub); got != "__foo1" {
		t.Errorf("unit unique name = %q, want __foo1", got)
	}

	names := uniqueNames(sub)
	// parameter occurrence plus both body occurrences
	if len(names["x"]) != 3 {
		t.Fatalf("renamed %d occurrences of x, want 3: %v", len(names["x"]), names["x"])
	}
	for _, u := range names["x"] {
		if u != "__foo1_x2" {
			t.Errorf("x renamed to %q, want __foo1_x2", u)
		}
	}
}

func TestSiblingLocalsDistinct(t *testing.T) {
	src := `subroutine foo()
  integer i
  i = 1
end
subroutine bar()
  integer i
  i = 2
end
`
	pf := mustParse(t, src)
	pf, _ = rename.Rename(pf)

	fooNames := uniqueNames(pf.Units[0])["i"]
	barNames := uniqueNames(pf.Units[1])["i"]
	if len(fooNames) == 0 || len(barNames) == 0 {
		t.Fatalf("locals not renamed: foo=%v bar=%v", fooNames, barNames)
	}
	for _, fu := range fooNames {
		if fu != fooNames[0] {
			t.Errorf("foo's i renamed inconsistently: %v", fooNames)
		}
		for _, bu := range barNames {
			if fu == bu {
				t.Errorf("foo and bar share unique name %q", fu)
			}
		}
	}
}

func TestRenameIdempotent(t *testing.T) {
	src := `subroutine foo(x)
  integer y
  y = x
end
`
	pf := mustParse(t, src)
	pf, _ = rename.Rename(pf)
	first := uniqueNames(pf)
	firstUnit := analysis.PUName(pf.Units[0])

	pf, _ = rename.Rename(pf)
	if got := analysis.PUName(pf.Units[0]); got != firstUnit {
		t.Errorf("unit renamed twice: %q then %q", firstUnit, got)
	}
	if second := uniqueNames(pf); !reflect.DeepEqual(first, second) {
		t.Errorf("second rename changed bindings:\nfirst  %v\nsecond %v", first, second)
	}
}

func TestUniqueNameInjectivity(t *testing.T) {
	src := `program main
  integer i, j
  i = 1
  j = i
end
subroutine foo(a, b)
  integer i
  i = a + b
end
integer function sq(n)
  sq = n * n
end
`
	pf := mustParse(t, src)
	pf, _ = rename.Rename(pf)

	// bindings: parameters and declarator names
	seen := map[string]ast.Node{}
	bind := func(v *ast.VarExpr) {
		a := analysis.Of(v)
		if a == nil || a.UniqueName == "" {
			return
		}
		if prev, dup := seen[a.UniqueName]; dup && prev != ast.Node(v) {
			t.Errorf("unique name %q bound twice", a.UniqueName)
		}
		seen[a.UniqueName] = v
	}
	for _, pu := range pf.Units {
		switch u := pu.(type) {
		case *ast.Subroutine:
			for _, p := range u.Params {
				bind(p)
			}
		case *ast.Function:
			for _, p := range u.Params {
				bind(p)
			}
		}
		ast.Inspect(pu, func(n ast.Node) bool {
			if d, ok := n.(*ast.Declarator); ok {
				bind(d.Var)
			}
			return true
		})
	}
	if len(seen) == 0 {
		t.Fatal("no bindings renamed")
	}
}

func TestScopeBalance(t *testing.T) {
	src := `subroutine foo(x)
  integer i
  do i = 1, 10
    x = x + i
  end do
end
`
	pf := mustParse(t, src)
	_, st := rename.Rename(pf)

	if !reflect.DeepEqual(st.ScopeStack, []string{"_"}) {
		t.Errorf("scope stack = %v, want [_]", st.ScopeStack)
	}
	if len(st.EnvStack) != 1 || len(st.EnvStack[0]) != 0 {
		t.Errorf("env stack = %v, want a single empty environment", st.EnvStack)
	}
}

func TestFunctionResultBinding(t *testing.T) {
	src := `integer function sq(n)
  sq = n * n
end
`
	pf := mustParse(t, src)
	pf, _ = rename.Rename(pf)

	fn := pf.Units[0].(*ast.Function)
	unit := analysis.PUName(fn)

	assign := fn.Blocks[0].(*ast.AssignStmt)
	lhs := assign.Lhs.(*ast.VarExpr)
	if got := analysis.VarName(lhs); got != unit {
		t.Errorf("write to function name renamed to %q, want the unit name %q", got, unit)
	}
}

func TestUndeclaredPassesThrough(t *testing.T) {
	src := `subroutine foo()
  y = 1
end
`
	pf := mustParse(t, src)
	pf, _ = rename.Rename(pf)

	assign := pf.Units[0].(*ast.Subroutine).Blocks[0].(*ast.AssignStmt)
	lhs := assign.Lhs.(*ast.VarExpr)
	if a := analysis.Of(lhs); a.UniqueName != "" {
		t.Errorf("undeclared variable got unique name %q", a.UniqueName)
	}
	if got := analysis.VarName(lhs); got != "y" {
		t.Errorf("VarName = %q, want source name", got)
	}
}

func TestIDTypeClassification(t *testing.T) {
	src := `integer function sq(n)
  integer a(4), k
  sq = n
end
`
	pf := mustParse(t, src)
	pf, _ = rename.Rename(pf)

	fn := pf.Units[0].(*ast.Function)
	if idt := analysis.Of(fn).IDType; idt == nil || idt.Construct != analysis.CTFunction || idt.Base != "integer" {
		t.Errorf("function idType = %+v", idt)
	}
	if idt := analysis.Of(fn.Params[0]).IDType; idt == nil || idt.Construct != analysis.CTVariable {
		t.Errorf("parameter idType = %+v", idt)
	}

	decl := fn.Blocks[0].(*ast.DeclStmt)
	if idt := analysis.Of(decl.Decls[0].Var).IDType; idt == nil || idt.Construct != analysis.CTArray {
		t.Errorf("array declarator idType = %+v", idt)
	}
	if idt := analysis.Of(decl.Decls[1].Var).IDType; idt == nil || idt.Construct != analysis.CTVariable || idt.Base != "integer" {
		t.Errorf("scalar declarator idType = %+v", idt)
	}
}

func TestModuleEnvRecorded(t *testing.T) {
	src := `module m
  integer shared
contains
  subroutine inc()
    shared = 1
  end
end module
`
	pf := mustParse(t, src)
	pf, _ = rename.Rename(pf)

	mod := pf.Units[0].(*ast.Module)
	a := analysis.Of(mod)
	if a == nil || a.ModuleEnv == nil {
		t.Fatal("module env not recorded")
	}
	if _, ok := a.ModuleEnv["shared"]; !ok {
		t.Errorf("module env missing binding for shared: %v", a.ModuleEnv)
	}
}
