// Package report renders the derived dataflow relations of a program
// file as deterministic text, one section per relation per program unit.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fortlab/fortflow/pkg/analysis"
	"github.com/fortlab/fortflow/pkg/ast"
	"github.com/fortlab/fortflow/pkg/dataflow"
	"github.com/fortlab/fortflow/pkg/graph"
)

// Sections lists every relation the report can emit, in emission order.
var Sections = []string{
	"callMap",
	"postOrder",
	"revPostOrder",
	"revPreOrder",
	"dominators",
	"iDominators",
	"lva",
	"rd",
	"backEdges",
	"topsort",
	"scc",
	"loopNodes",
	"duMap",
	"udMap",
	"flowsTo",
}

// ShowDataFlow renders every section for every program unit that carries
// a basic-block graph. The input must have been labeled, renamed and
// block-partitioned.
func ShowDataFlow(pf *ast.ProgramFile) string {
	return Show(pf, Sections)
}

// Show renders only the named sections, in canonical order.
func Show(pf *ast.ProgramFile, sections []string) string {
	want := make(map[string]bool, len(sections))
	for _, s := range sections {
		want[s] = true
	}
	bm := dataflow.GenBlockMap(pf)
	dm := dataflow.GenDefMap(bm)
	cm := dataflow.GenCallMap(pf)

	var sb strings.Builder
	var walk func(pu ast.ProgramUnit)
	walk = func(pu ast.ProgramUnit) {
		if a := analysis.Of(pu); a != nil && a.BBlocks != nil {
			writeUnit(&sb, pu, a.BBlocks, bm, dm, cm, want)
		}
		if m, ok := pu.(*ast.Module); ok {
			for _, inner := range m.Units {
				walk(inner)
			}
		}
	}
	for _, pu := range pf.Units {
		walk(pu)
	}
	return sb.String()
}

func writeUnit(sb *strings.Builder, pu ast.ProgramUnit, bbgr *analysis.BBGr,
	bm dataflow.BlockMap, dm dataflow.DefMap, cm dataflow.CallMap, want map[string]bool) {

	name := analysis.PUName(pu)
	fmt.Fprintf(sb, "== %s ==\n", name)

	gr := bbgr.Graph
	rd := dataflow.ReachingDefs(bbgr, dm)
	du := dataflow.GenDUMap(bbgr, bm, dm, rd)

	for _, section := range Sections {
		if !want[section] {
			continue
		}
		switch section {
		case "callMap":
			fmt.Fprintf(sb, "callMap: %s\n", fmtVarSet(cm[name]))
		case "postOrder":
			fmt.Fprintf(sb, "postOrder: %s\n", fmtList(gr.PostOrder(0)))
		case "revPostOrder":
			fmt.Fprintf(sb, "revPostOrder: %s\n", fmtList(gr.RevPostOrder(0)))
		case "revPreOrder":
			fmt.Fprintf(sb, "revPreOrder: %s\n", fmtList(gr.RevPreOrder(0)))
		case "dominators":
			fmt.Fprintf(sb, "dominators: %s\n", fmtNodeSetMap(gr.Dominators(0)))
		case "iDominators":
			fmt.Fprintf(sb, "iDominators: %s\n", fmtIntMap(gr.IDominators(0)))
		case "lva":
			fmt.Fprintf(sb, "lva: %s\n", fmtLiveMap(dataflow.LiveVars(bbgr)))
		case "rd":
			fmt.Fprintf(sb, "rd: %s\n", fmtRDMap(rd))
		case "backEdges":
			fmt.Fprintf(sb, "backEdges: %s\n", fmtIntMap(map[int]int(dataflow.GenBackEdgeMap(gr))))
		case "topsort":
			fmt.Fprintf(sb, "topsort: %s\n", fmtList(gr.Topsort(0)))
		case "scc":
			fmt.Fprintf(sb, "scc: %s\n", fmtSCC(gr.SCC()))
		case "loopNodes":
			loops := dataflow.LoopNodes(dataflow.GenBackEdgeMap(gr), gr)
			fmt.Fprintf(sb, "loopNodes: %s\n", fmtNodeSets(loops))
		case "duMap":
			fmt.Fprintf(sb, "duMap: %s\n", fmtLabelSetMap(map[int]dataflow.LabelSet(du)))
		case "udMap":
			fmt.Fprintf(sb, "udMap: %s\n", fmtLabelSetMap(map[int]dataflow.LabelSet(dataflow.GenUDMap(du))))
		case "flowsTo":
			fmt.Fprintf(sb, "flowsTo: %s\n", fmtEdges(dataflow.GenFlowsTo(du, bm).Graph))
		}
	}
	sb.WriteString("\n")
}

// DescribeBlock renders a statement in a compact single-line form used to
// identify AST-blocks in CLI output.
func DescribeBlock(s ast.Statement) string {
	switch s := s.(type) {
	case *ast.DeclStmt:
		names := make([]string, 0, len(s.Decls))
		for _, d := range s.Decls {
			names = append(names, d.Var.Name)
		}
		return s.Type + " " + strings.Join(names, ", ")
	case *ast.AssignStmt:
		return "assign"
	case *ast.CallStmt:
		return "call " + s.Name
	case *ast.IfStmt:
		return "if"
	case *ast.DoStmt:
		return "do"
	case *ast.DoWhileStmt:
		return "do while"
	case *ast.PrintStmt:
		return "print"
	case *ast.ReturnStmt:
		return "return"
	case *ast.StopStmt:
		return "stop"
	case *ast.ContinueStmt:
		return "continue"
	default:
		return "statement"
	}
}

func fmtList(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func fmtIntSet(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func fmtVarSet(s dataflow.VarSet) string {
	return "{" + strings.Join(s.Sorted(), ", ") + "}"
}

func fmtNodeSetMap(m map[int]graph.NodeSet) string {
	keys := sortedKeys(m)
	parts := make([]string, 0, len(m))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%d: %s", k, fmtIntSet(m[k].Sorted())))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func fmtLabelSetMap(m map[int]dataflow.LabelSet) string {
	keys := sortedKeys(m)
	parts := make([]string, 0, len(m))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%d: %s", k, fmtIntSet(m[k].Sorted())))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func fmtIntMap(m map[int]int) string {
	keys := sortedKeys(m)
	parts := make([]string, 0, len(m))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%d: %d", k, m[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func fmtLiveMap(m map[int]dataflow.InOut[dataflow.VarSet]) string {
	keys := sortedKeys(m)
	parts := make([]string, 0, len(m))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%d: (in: %s, out: %s)", k, fmtVarSet(m[k].In), fmtVarSet(m[k].Out)))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func fmtRDMap(m map[int]dataflow.InOut[dataflow.LabelSet]) string {
	keys := sortedKeys(m)
	parts := make([]string, 0, len(m))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%d: (in: %s, out: %s)", k, fmtIntSet(m[k].In.Sorted()), fmtIntSet(m[k].Out.Sorted())))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func fmtSCC(comps []graph.NodeSet) string {
	return fmtNodeSets(comps)
}

func fmtNodeSets(sets []graph.NodeSet) string {
	parts := make([]string, len(sets))
	for i, s := range sets {
		parts[i] = fmtIntSet(s.Sorted())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func fmtEdges(g *graph.Directed) string {
	parts := make([]string, 0, len(g.Nodes()))
	for _, e := range g.Edges() {
		parts = append(parts, fmt.Sprintf("%d->%d", e[0], e[1]))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
