package lineage

import "github.com/matzehuels/pedigree/pkg/observability"

// GenerationMap maps node ids to generations: root 0, ancestors negative,
// descendants positive.
type GenerationMap struct {
	Generations map[string]int
	// Conflicts counts distinct (from, to) relations whose proposed generation
	// disagreed with the first assignment. First writer wins.
	Conflicts int
	// Passes is the number of relaxation passes until the fixpoint.
	Passes int
}

// Of returns the generation of id.
func (m GenerationMap) Of(id string) (int, bool) {
	g, ok := m.Generations[id]
	return g, ok
}

// ResolveGenerations assigns a generation to every node of t.
//
// It relaxes to a fixpoint rather than recursing top-down, because the same
// ancestor can be reached through divergent paths: on every pass each node
// with a known generation g proposes g-1 for its dam and sire and g+1 for its
// non-terminal children. Unassigned targets take the proposal; assigned ones
// keep their value. Each node is assigned at most once, so the loop
// terminates after at most len(t.Nodes)+1 passes.
func ResolveGenerations[P any](t *Tree[P]) GenerationMap {
	hooks := observability.Lineage()
	if t == nil || t.Root == nil {
		return GenerationMap{Generations: map[string]int{}}
	}
	gm := GenerationMap{Generations: make(map[string]int, len(t.Nodes))}
	gm.Generations[t.Root.ID()] = 0

	conflicts := make(map[[2]string]bool)
	propose := func(from, to *Node[P], gen int) bool {
		if to == nil || to == from {
			return false
		}
		cur, ok := gm.Generations[to.ID()]
		if !ok {
			gm.Generations[to.ID()] = gen
			return true
		}
		key := [2]string{from.ID(), to.ID()}
		if cur != gen && !conflicts[key] {
			conflicts[key] = true
			gm.Conflicts++
			hooks.OnGenerationConflict(to.ID(), cur, gen)
		}
		return false
	}

	for changed := true; changed; {
		changed = false
		gm.Passes++
		for _, n := range t.Nodes {
			g, ok := gm.Generations[n.ID()]
			if !ok {
				continue
			}
			if propose(n, n.Dam, g-1) {
				changed = true
			}
			if propose(n, n.Sire, g-1) {
				changed = true
			}
			for _, c := range n.Children {
				if propose(n, c, g+1) {
					changed = true
				}
			}
		}
	}
	return gm
}
