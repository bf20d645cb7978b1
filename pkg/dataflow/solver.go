// Package dataflow implements the generic fixed-point solver and the
// intraprocedural analyses layered on it: live variables, reaching
// definitions, def-use chains, the flows-to graph, loop structure and the
// interprocedural call map.
package dataflow

// InOut pairs the lattice values at a node's entry and exit.
type InOut[L any] struct {
	In  L
	Out L
}

// Solve iterates the transfer functions to a fixed point. order is the
// node visiting order used on every sweep (reverse post-order for forward
// analyses, reverse pre-order for backward ones); init supplies each
// node's starting values; inF and outF compute a node's entry and exit
// values given access to the current values of the other nodes; eq is
// lattice-value equality.
//
// Callers are responsible for monotone transfer functions over a lattice
// of finite height; the solver itself only detects convergence.
func Solve[L any](
	order []int,
	init func(n int) InOut[L],
	inF func(out func(int) L, n int) L,
	outF func(in func(int) L, n int) L,
	eq func(a, b L) bool,
) map[int]InOut[L] {
	cur := make(map[int]InOut[L], len(order))
	for _, n := range order {
		cur[n] = init(n)
	}

	getIn := func(n int) L { return cur[n].In }
	getOut := func(n int) L { return cur[n].Out }

	for {
		changed := false
		for _, n := range order {
			v := cur[n]
			newIn := inF(getOut, n)
			if !eq(newIn, v.In) {
				changed = true
			}
			v.In = newIn
			cur[n] = v
			newOut := outF(getIn, n)
			if !eq(newOut, v.Out) {
				changed = true
			}
			v.Out = newOut
			cur[n] = v
		}
		if !changed {
			return cur
		}
	}
}
