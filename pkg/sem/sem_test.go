package sem_test

import (
	"reflect"
	"sort"
	"testing"

	"github.com/fortlab/fortflow/internal/parser"
	"github.com/fortlab/fortflow/pkg/ast"
	"github.com/fortlab/fortflow/pkg/sem"
)

// stmt parses a single statement inside a subroutine wrapper.
func stmt(t *testing.T, body string) ast.Statement {
	t.Helper()
	pf, err := parser.Parse("subroutine s()\n  integer a(10), v(10)\n" + body + "\nend\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	blocks := pf.Units[0].(*ast.Subroutine).Blocks
	return blocks[len(blocks)-1]
}

func sorted(xs []string) []string {
	out := append([]string(nil), xs...)
	sort.Strings(out)
	return out
}

func TestBlockVarUses(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"assignment reads rhs", "x = y + z", []string{"y", "z"}},
		{"subscripted lhs reads indices", "a(i) = y", []string{"i", "y"}},
		{"plain lhs is not a use", "x = 1", nil},
		{"counted do reads bounds", "do i = lo, hi, st\nend do", []string{"hi", "lo", "st"}},
		{"do while reads guard only", "do while (i < n)\n  x = y\nend do", []string{"i", "n"}},
		{"if reads guard only", "if (p > 0) then\n  x = y\nend if", []string{"p"}},
		{"declaration reads nothing", "integer k", nil},
		{"call reads actuals", "call f(x, y)", []string{"x", "y"}},
		{"print reads args", "print *, x, a(j)", []string{"a", "j", "x"}},
		{"function call args are uses", "x = f(y) + 1", []string{"y"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sorted(sem.BlockVarUses(stmt(t, "  "+tt.src)))
			if len(got) == 0 {
				got = nil
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("uses(%q) = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

func TestBlockVarDefs(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"assignment defines lhs", "x = y", []string{"x"}},
		{"subscripted lhs defines array name", "a(i) = y", []string{"a"}},
		{"call actual lexprs on rhs are defs", "x = f(v)", []string{"v", "x"}},
		{"counted do defines its variable", "do i = 1, 10\nend do", []string{"i"}},
		{"do while defines nothing", "do while (x < 1)\nend do", nil},
		{"declaration defines nothing", "integer k", nil},
		{"if defines nothing", "if (x > 0) then\nend if", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sorted(sem.BlockVarDefs(stmt(t, "  "+tt.src)))
			if len(got) == 0 {
				got = nil
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("defs(%q) = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

func TestIsLExpr(t *testing.T) {
	v := &ast.VarExpr{Name: "x"}
	if !sem.IsLExpr(v) {
		t.Error("variable should be an l-expression")
	}
	if !sem.IsLExpr(&ast.SubscriptExpr{Array: v}) {
		t.Error("subscript should be an l-expression")
	}
	if sem.IsLExpr(&ast.ConstExpr{Kind: ast.ConstInt, Text: "1"}) {
		t.Error("constant is not an l-expression")
	}
	if sem.IsLExpr(&ast.BinExpr{Op: "+", L: v, R: v}) {
		t.Error("binary expression is not an l-expression")
	}
}

func TestLhsExprs(t *testing.T) {
	s := stmt(t, "  call f(x, 1, a(i))")
	lhs := sem.LhsExprs(s)
	if len(lhs) != 2 {
		t.Fatalf("LhsExprs returned %d exprs, want 2 (the l-expression actuals)", len(lhs))
	}
	got := sorted(sem.AllLhsVars(s))
	want := []string{"a", "x"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AllLhsVars = %v, want %v", got, want)
	}
}

func TestAllVars(t *testing.T) {
	s := stmt(t, "  x = y * a(i) + f(z)")
	got := sorted(sem.AllVars(s))
	// call heads are names, not variables
	want := []string{"a", "i", "x", "y", "z"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AllVars = %v, want %v", got, want)
	}
}
