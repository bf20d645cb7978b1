package parser

import (
	"reflect"
	"testing"

	"github.com/fortlab/fortflow/pkg/ast"
)

func TestParseUnits(t *testing.T) {
	src := `program main
  call foo(1)
end

subroutine foo(n)
  print *, n
end subroutine

integer function sq(n) result(r)
  r = n * n
end function

module helpers
  integer counter
contains
  subroutine tick()
    counter = counter + 1
  end
end module
`
	pf, err := Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(pf.Units) != 4 {
		t.Fatalf("parsed %d units, want 4", len(pf.Units))
	}

	main := pf.Units[0].(*ast.MainProgram)
	if main.Name != "main" || len(main.Blocks) != 1 {
		t.Errorf("main = %q with %d blocks", main.Name, len(main.Blocks))
	}

	sub := pf.Units[1].(*ast.Subroutine)
	if sub.Name != "foo" || len(sub.Params) != 1 || sub.Params[0].Name != "n" {
		t.Errorf("subroutine header parsed wrong: %+v", sub)
	}

	fn := pf.Units[2].(*ast.Function)
	if fn.Name != "sq" || fn.RetType != "integer" || fn.Result != "r" {
		t.Errorf("function header parsed wrong: %+v", fn)
	}
	if fn.ResultName() != "r" {
		t.Errorf("ResultName = %q, want r", fn.ResultName())
	}

	mod := pf.Units[3].(*ast.Module)
	if mod.Name != "helpers" || len(mod.Decls) != 1 || len(mod.Units) != 1 {
		t.Errorf("module parsed wrong: decls=%d units=%d", len(mod.Decls), len(mod.Units))
	}
}

func TestParseStatements(t *testing.T) {
	src := `subroutine s(x)
  integer i, a(10)
  real :: y
  a(i) = x + 1
  if (x > 0) then
    y = 1.5
  else
    y = -x
  end if
  if (y == 0) y = 1
  do i = 1, 10, 2
    call work(a(i), y)
  end do
  do while (y .lt. 100.0)
    y = y * 2
  end do
  print *, 'done', y
  return
end
`
	pf, err := Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	body := pf.Units[0].(*ast.Subroutine).Blocks
	wantKinds := []string{
		"*ast.DeclStmt", "*ast.DeclStmt", "*ast.AssignStmt", "*ast.IfStmt",
		"*ast.IfStmt", "*ast.DoStmt", "*ast.DoWhileStmt", "*ast.PrintStmt", "*ast.ReturnStmt",
	}
	var kinds []string
	for _, s := range body {
		kinds = append(kinds, reflect.TypeOf(s).String())
	}
	if !reflect.DeepEqual(kinds, wantKinds) {
		t.Fatalf("statement kinds = %v\nwant %v", kinds, wantKinds)
	}

	// a was declared with dims, so a(i) is a subscript on both sides
	assign := body[2].(*ast.AssignStmt)
	if _, ok := assign.Lhs.(*ast.SubscriptExpr); !ok {
		t.Errorf("a(i) on the lhs should be a subscript, got %T", assign.Lhs)
	}

	// logical if becomes a single-statement then branch
	logIf := body[4].(*ast.IfStmt)
	if len(logIf.Then) != 1 || logIf.Else != nil {
		t.Errorf("logical if shape wrong: then=%d else=%d", len(logIf.Then), len(logIf.Else))
	}

	do := body[5].(*ast.DoStmt)
	if do.Spec.Step == nil {
		t.Error("do step not parsed")
	}
	call := do.Body[0].(*ast.CallStmt)
	if call.Name != "work" || len(call.Args) != 2 {
		t.Errorf("call parsed wrong: %+v", call)
	}
	if _, ok := call.Args[0].(*ast.SubscriptExpr); !ok {
		t.Errorf("a(i) actual should be a subscript, got %T", call.Args[0])
	}
}

func TestParseExpressions(t *testing.T) {
	src := "subroutine s()\n  r = -a + b * c ** 2 .and. x .le. y\nend\n"
	pf, err := Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	rhs := pf.Units[0].(*ast.Subroutine).Blocks[0].(*ast.AssignStmt).Rhs

	and, ok := rhs.(*ast.BinExpr)
	if !ok || and.Op != ".and." {
		t.Fatalf("top operator = %#v, want .and.", rhs)
	}
	rel, ok := and.R.(*ast.BinExpr)
	if !ok || rel.Op != "<=" {
		t.Errorf(".le. should normalize to <=, got %#v", and.R)
	}
	add, ok := and.L.(*ast.BinExpr)
	if !ok || add.Op != "+" {
		t.Fatalf("left of .and. = %#v, want +", and.L)
	}
	if _, ok := add.L.(*ast.UnExpr); !ok {
		t.Errorf("-a should be a unary expression, got %#v", add.L)
	}
	mul, ok := add.R.(*ast.BinExpr)
	if !ok || mul.Op != "*" {
		t.Fatalf("right of + = %#v, want *", add.R)
	}
	if pow, ok := mul.R.(*ast.BinExpr); !ok || pow.Op != "**" {
		t.Errorf("c ** 2 should bind tighter than *, got %#v", mul.R)
	}
}

func TestLineAnnotations(t *testing.T) {
	src := "subroutine s()\n  x = 1\n  y = 2\nend\n"
	pf, err := Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	body := pf.Units[0].(*ast.Subroutine).Blocks
	if got := body[0].Annotation(); got != 2 {
		t.Errorf("first statement annotation = %v, want line 2", got)
	}
	if got := body[1].Annotation(); got != 3 {
		t.Errorf("second statement annotation = %v, want line 3", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unterminated unit", "subroutine s()\n  x = 1\n"},
		{"bad expression", "subroutine s()\n  x = +\nend\n"},
		{"garbage top level", "banana\n"},
		{"unterminated string", "subroutine s()\n  print *, 'oops\nend\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.src); err == nil {
				t.Errorf("Parse(%q) should fail", tt.src)
			}
		})
	}
}

func TestCaseInsensitive(t *testing.T) {
	src := "SUBROUTINE Foo(X)\n  X = X + 1\nEND\n"
	pf, err := Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	sub := pf.Units[0].(*ast.Subroutine)
	if sub.Name != "foo" || sub.Params[0].Name != "x" {
		t.Errorf("names not lower-cased: %q %q", sub.Name, sub.Params[0].Name)
	}
}
