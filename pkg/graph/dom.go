package graph

// Dominator computation. The solver is the classic iterative set
// intersection over reverse post-order; fast enough for the block counts a
// single program unit produces.

// Dominators returns, for every node reachable from root, the set of its
// dominators (including the node itself). The root's only dominator is
// itself.
func (g *Directed) Dominators(root int) map[int]NodeSet {
	order := g.RevPostOrder(root)
	if len(order) == 0 {
		return map[int]NodeSet{}
	}
	all := NewNodeSet(order...)

	dom := make(map[int]NodeSet, len(order))
	for _, n := range order {
		if n == root {
			dom[n] = NewNodeSet(root)
		} else {
			dom[n] = all.Clone()
		}
	}

	for changed := true; changed; {
		changed = false
		for _, n := range order {
			if n == root {
				continue
			}
			next := all.Clone()
			any := false
			for _, p := range g.Preds(n) {
				pd, ok := dom[p]
				if !ok {
					continue // unreachable predecessor
				}
				any = true
				for m := range next {
					if !pd.Has(m) {
						delete(next, m)
					}
				}
			}
			if !any {
				next = make(NodeSet)
			}
			next.Add(n)
			if !next.Equal(dom[n]) {
				dom[n] = next
				changed = true
			}
		}
	}
	return dom
}

// IDominators returns the immediate dominator of every reachable node
// other than root: the unique strict dominator whose own dominator set
// covers all the node's other strict dominators.
func (g *Directed) IDominators(root int) map[int]int {
	dom := g.Dominators(root)
	idom := make(map[int]int)
	for n, ds := range dom {
		if n == root {
			continue
		}
		for d := range ds {
			if d == n {
				continue
			}
			// d is the idom when its dominator set has exactly one
			// member fewer than n's.
			if len(dom[d]) == len(ds)-1 {
				idom[n] = d
				break
			}
		}
	}
	return idom
}

// Dominates reports whether a dominates b, given a dominator map.
func Dominates(dom map[int]NodeSet, a, b int) bool {
	ds, ok := dom[b]
	return ok && ds.Has(a)
}
