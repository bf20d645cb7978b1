// Package blocks is the basic-block pass: it labels every AST-block with
// a file-unique instruction label and attaches a basic-block graph to
// each program unit's annotation, entry node 0.
package blocks

import (
	"github.com/fortlab/fortflow/pkg/analysis"
	"github.com/fortlab/fortflow/pkg/ast"
	"github.com/fortlab/fortflow/pkg/graph"
)

// firstLabel keeps instruction labels visually distinct from basic-block
// node numbers in reports.
const firstLabel = 10

// Label assigns each statement in the file a unique instruction label, in
// pre-order. The file must have been through analysis.InitAnalysis.
func Label(pf *ast.ProgramFile) *ast.ProgramFile {
	next := firstLabel
	ast.Inspect(pf, func(n ast.Node) bool {
		if _, ok := n.(ast.Statement); ok {
			analysis.MustOf(n).InsLabel = next
			next++
		}
		return true
	})
	return pf
}

// Build constructs a basic-block graph for every program unit with an
// executable body and stores it in the unit's annotation. Module-contained
// units get their own graphs.
func Build(pf *ast.ProgramFile) *ast.ProgramFile {
	for _, pu := range pf.Units {
		buildUnit(pu)
	}
	return pf
}

func buildUnit(pu ast.ProgramUnit) {
	if m, ok := pu.(*ast.Module); ok {
		for _, inner := range m.Units {
			buildUnit(inner)
		}
		return
	}
	body := pu.Body()
	if len(body) == 0 {
		return
	}
	analysis.MustOf(pu).BBlocks = build(body)
}

// builder accumulates the statement-level flow graph before the basic
// block partition. Statements are keyed by instruction label.
type builder struct {
	flow  *graph.Directed
	stmts map[int]ast.Statement
}

func label(s ast.Statement) int { return analysis.MustOf(s).InsLabel }

// build partitions one unit body into basic blocks.
func build(body []ast.Statement) *analysis.BBGr {
	b := &builder{flow: graph.New(), stmts: make(map[int]ast.Statement)}
	entry, _ := b.sequence(body)
	if entry == nil {
		return &analysis.BBGr{Graph: graph.New(), Blocks: map[int]analysis.BB{}}
	}
	return b.partition(*entry)
}

// sequence wires a statement list, returning the label of its first
// statement (nil for an empty list) and the dangling exits that continue
// to whatever follows the list.
func (b *builder) sequence(stmts []ast.Statement) (first *int, exits []int) {
	if len(stmts) == 0 {
		return nil, nil
	}
	var prevExits []int
	for i, s := range stmts {
		head, tails := b.wire(s)
		if i == 0 {
			first = &head
		}
		for _, p := range prevExits {
			b.flow.AddEdge(p, head)
		}
		prevExits = tails
	}
	return first, prevExits
}

// wire adds one statement to the flow graph, returning its entry label
// and its dangling exits.
func (b *builder) wire(s ast.Statement) (entry int, exits []int) {
	l := label(s)
	b.flow.AddNode(l)
	b.stmts[l] = s

	switch s := s.(type) {
	case *ast.IfStmt:
		thenFirst, thenExits := b.sequence(s.Then)
		elseFirst, elseExits := b.sequence(s.Else)
		if thenFirst != nil {
			b.flow.AddEdge(l, *thenFirst)
			exits = append(exits, thenExits...)
		} else {
			exits = append(exits, l)
		}
		if elseFirst != nil {
			b.flow.AddEdge(l, *elseFirst)
			exits = append(exits, elseExits...)
		} else {
			// fall-through when the else branch is absent or empty
			exits = append(exits, l)
		}
		return l, exits
	case *ast.DoStmt:
		return l, b.wireLoop(l, s.Body)
	case *ast.DoWhileStmt:
		return l, b.wireLoop(l, s.Body)
	case *ast.ReturnStmt, *ast.StopStmt:
		// no fall-through
		return l, nil
	default:
		return l, []int{l}
	}
}

// wireLoop wires a loop header and its body: header branches into the
// body and past the loop; the body's exits branch back to the header.
func (b *builder) wireLoop(header int, body []ast.Statement) (exits []int) {
	first, tails := b.sequence(body)
	if first != nil {
		b.flow.AddEdge(header, *first)
		for _, t := range tails {
			b.flow.AddEdge(t, header)
		}
	} else {
		b.flow.AddEdge(header, header)
	}
	return []int{header}
}

// partition groups the statement-level flow graph into maximal
// straight-line basic blocks. The block holding the entry statement is
// node 0; the rest are numbered in depth-first pre-order from it.
func (b *builder) partition(entry int) *analysis.BBGr {
	isLeader := func(l int) bool {
		if l == entry {
			return true
		}
		preds := b.flow.Preds(l)
		if len(preds) != 1 {
			return true
		}
		return len(b.flow.Succs(preds[0])) > 1
	}

	// leaderOf maps every statement to the leader of its block.
	leaderOf := make(map[int]int)
	chain := make(map[int][]int) // leader -> ordered members
	for _, l := range b.flow.PreOrder(entry) {
		if !isLeader(l) {
			continue
		}
		run := []int{l}
		leaderOf[l] = l
		cur := l
		for {
			succs := b.flow.Succs(cur)
			if len(succs) != 1 || isLeader(succs[0]) {
				break
			}
			cur = succs[0]
			leaderOf[cur] = l
			run = append(run, cur)
		}
		chain[l] = run
	}

	// Number blocks: entry first, then DFS pre-order.
	nodeOf := make(map[int]int)
	nextNode := 0
	for _, l := range b.flow.PreOrder(entry) {
		if leaderOf[l] == l {
			if _, ok := nodeOf[l]; !ok {
				nodeOf[l] = nextNode
				nextNode++
			}
		}
	}

	gr := graph.New()
	blocks := make(map[int]analysis.BB, len(chain))
	for leader, run := range chain {
		n := nodeOf[leader]
		gr.AddNode(n)
		bb := make(analysis.BB, 0, len(run))
		for _, l := range run {
			bb = append(bb, b.stmts[l])
		}
		blocks[n] = bb
		last := run[len(run)-1]
		for _, s := range b.flow.Succs(last) {
			gr.AddEdge(n, nodeOf[leaderOf[s]])
		}
	}
	return &analysis.BBGr{Graph: gr, Blocks: blocks}
}
