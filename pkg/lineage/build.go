package lineage

import (
	"errors"
	"slices"

	"github.com/matzehuels/pedigree/pkg/observability"
	"github.com/matzehuels/pedigree/pkg/record"
)

// ErrRootNotFound is returned by [Build] when the root id is not in the record list.
var ErrRootNotFound = errors.New("root individual not found")

// Node wraps one record with its resolved parents and offspring.
//
// Children holds only non-terminal offspring (offspring that have offspring
// themselves, or that were already discovered through another path).
// ChildrenWithoutDescendants holds terminal offspring as plain records; they
// are payload for a [Group] and never become nodes.
type Node[P any] struct {
	Record record.Record[P]
	Dam    *Node[P]
	Sire   *Node[P]

	Children                   []*Node[P]
	ChildrenWithoutDescendants []record.Record[P]
}

// ID returns the wrapped record's id.
func (n *Node[P]) ID() string { return n.Record.ID }

// Parents holds the resolved parent ids of one node. Empty means unknown or dangling.
type Parents struct {
	DamID  string `json:"dam_id,omitempty"`
	SireID string `json:"sire_id,omitempty"`
}

// ParentLookup maps a node id to its resolved parents for O(1) highlight queries.
type ParentLookup map[string]Parents

// ParentsOf returns the dam and sire of id. ok is false when id is unknown.
func (l ParentLookup) ParentsOf(id string) (damID, sireID string, ok bool) {
	p, ok := l[id]
	return p.DamID, p.SireID, ok
}

// Diagnostics counts data-integrity problems absorbed during a build.
type Diagnostics struct {
	DanglingReferences int `json:"dangling_references"`
	SelfReferences     int `json:"self_references"`
	DuplicateIDs       int `json:"duplicate_ids"`
	// Cycles counts ancestry back-edges: a node that is its own ancestor.
	Cycles int `json:"cycles"`
	// GroupIDCollisions counts group ids renamed because a record already
	// used them.
	GroupIDCollisions int `json:"group_id_collisions"`
}

// Tree is the result of [Build].
type Tree[P any] struct {
	Root *Node[P]
	// Nodes lists every discovered node in breadth-first discovery order.
	Nodes       []*Node[P]
	Parents     ParentLookup
	Diagnostics Diagnostics

	byID    map[string]*Node[P]
	records map[string]record.Record[P]
}

// Node returns the node with the given id.
func (t *Tree[P]) Node(id string) (*Node[P], bool) {
	n, ok := t.byID[id]
	return n, ok
}

// Record returns any input record by id, including records that did not
// become nodes (terminal offspring, partners, unrelated individuals).
func (t *Tree[P]) Record(id string) (record.Record[P], bool) {
	r, ok := t.records[id]
	return r, ok
}

// Len returns the number of nodes.
func (t *Tree[P]) Len() int { return len(t.Nodes) }

// Build reconstructs the lineage subgraph reachable from rootID.
//
// From each node the walk enqueues its dam and sire and every record naming
// the node as dam or sire. An offspring record becomes a child node only if
// some other record names it as a parent, or if it is already a node (the
// root, or an individual reached earlier through its other parent); all other
// offspring are terminal and end up in ChildrenWithoutDescendants.
//
// Returns ErrRootNotFound when rootID is not in recs.
func Build[P any](recs []record.Record[P], rootID string) (*Tree[P], error) {
	hooks := observability.Lineage()
	t := &Tree[P]{
		Parents: make(ParentLookup),
		byID:    make(map[string]*Node[P]),
		records: make(map[string]record.Record[P], len(recs)),
	}

	// offspring keeps input order so discovery order is stable across runs.
	offspring := make(map[string][]string)
	for _, r := range recs {
		if _, dup := t.records[r.ID]; dup {
			t.Diagnostics.DuplicateIDs++
			continue
		}
		t.records[r.ID] = r
		for _, parentID := range []string{r.DamID, r.SireID} {
			if parentID == "" || parentID == r.ID {
				continue
			}
			if !slices.Contains(offspring[parentID], r.ID) {
				offspring[parentID] = append(offspring[parentID], r.ID)
			}
		}
	}

	rootRec, ok := t.records[rootID]
	if !ok {
		return nil, ErrRootNotFound
	}

	visited := map[string]bool{rootID: true}
	t.Root = t.nodeFor(rootRec)
	queue := []*Node[P]{t.Root}

	enqueue := func(n *Node[P]) {
		if visited[n.ID()] {
			return
		}
		visited[n.ID()] = true
		queue = append(queue, n)
	}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		rec := n.Record
		parents := Parents{}

		for _, ref := range []struct {
			field string
			id    string
			slot  **Node[P]
			out   *string
		}{
			{"dam_id", rec.DamID, &n.Dam, &parents.DamID},
			{"sire_id", rec.SireID, &n.Sire, &parents.SireID},
		} {
			switch {
			case ref.id == "":
				continue
			case ref.id == rec.ID:
				t.Diagnostics.SelfReferences++
				hooks.OnSelfReference(rec.ID)
				continue
			}
			pr, ok := t.records[ref.id]
			if !ok {
				t.Diagnostics.DanglingReferences++
				hooks.OnDanglingReference(rec.ID, ref.field, ref.id)
				continue
			}
			p := t.nodeFor(pr)
			*ref.slot = p
			*ref.out = p.ID()
			enqueue(p)
		}
		t.Parents[rec.ID] = parents

		for _, childID := range offspring[rec.ID] {
			child := t.records[childID]
			_, known := t.byID[childID]
			if !known && len(offspring[childID]) == 0 {
				n.ChildrenWithoutDescendants = append(n.ChildrenWithoutDescendants, child)
				continue
			}
			c := t.nodeFor(child)
			if !slices.Contains(n.Children, c) {
				n.Children = append(n.Children, c)
			}
			enqueue(c)
		}
	}

	t.Diagnostics.Cycles = t.countCycles(hooks)
	return t, nil
}

// countCycles walks the dam/sire pointers depth-first with white/gray/black
// coloring and counts back-edges. The walk itself never loops.
func (t *Tree[P]) countCycles(hooks observability.LineageHooks) int {
	const (
		white = iota
		gray
		black
	)

	color := make(map[*Node[P]]int, len(t.Nodes))
	cycles := 0

	var dfs func(n *Node[P])
	dfs = func(n *Node[P]) {
		color[n] = gray
		for _, p := range []*Node[P]{n.Dam, n.Sire} {
			if p == nil {
				continue
			}
			switch color[p] {
			case white:
				dfs(p)
			case gray:
				cycles++
				hooks.OnCycle(n.ID(), p.ID())
			}
		}
		color[n] = black
	}

	for _, n := range t.Nodes {
		if color[n] == white {
			dfs(n)
		}
	}
	return cycles
}

// nodeFor returns the node for r, creating and registering it on first use.
func (t *Tree[P]) nodeFor(r record.Record[P]) *Node[P] {
	if n, ok := t.byID[r.ID]; ok {
		return n
	}
	n := &Node[P]{Record: r}
	t.byID[r.ID] = n
	t.Nodes = append(t.Nodes, n)
	return n
}
