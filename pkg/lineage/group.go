package lineage

import (
	"slices"
	"strconv"

	"github.com/matzehuels/pedigree/pkg/record"
)

// GroupIDPrefix prefixes group node ids: the group owned by parent P is "group-P".
const GroupIDPrefix = "group-"

// GroupID returns the deterministic group id for an owning parent.
func GroupID(parentID string) string { return GroupIDPrefix + parentID }

// groupIDSeparator joins a colliding group id and its ordinal: "group-A#2".
const groupIDSeparator = "#"

// Group stands in for one parent's (or one parent pair's) terminal offspring.
// Members are payload only; they are never positioned individually.
type Group[P any] struct {
	ID         string
	ParentID   string
	Generation int
	// Partners are the other parents of the members, in member order, limited
	// to ids present in the record list. Empty for a single-parent group.
	Partners []string
	Members  []record.Record[P]
}

// Count returns the number of members.
func (g *Group[P]) Count() int { return len(g.Members) }

// IsPairing reports whether the group has a discoverable other parent.
func (g *Group[P]) IsPairing() bool { return len(g.Partners) > 0 }

// PartnerID returns the first partner, or "".
func (g *Group[P]) PartnerID() string {
	if len(g.Partners) == 0 {
		return ""
	}
	return g.Partners[0]
}

// Aggregate builds one group per node with terminal offspring, in node
// discovery order. The group's generation is its parent's plus one.
//
// When a parent's terminal set equals that of an earlier group owned by one of
// the parent's partners, the parent joins that group as a partner instead of
// creating a duplicate; the returned slice then has one group for the pair.
//
// A group id that is already a record id (or an earlier group's id) gets the
// lowest free "#N" suffix, starting at 2, and is counted in
// t.Diagnostics.GroupIDCollisions.
func Aggregate[P any](t *Tree[P], gens GenerationMap) []*Group[P] {
	var groups []*Group[P]
	owned := make(map[string]*Group[P])
	taken := make(map[string]bool)

	for _, n := range t.Nodes {
		if len(n.ChildrenWithoutDescendants) == 0 {
			continue
		}
		gen, ok := gens.Of(n.ID())
		if !ok {
			continue
		}
		partners := partnersOf(t, n)

		if g := pairedGroup(owned, n, partners); g != nil {
			if !slices.Contains(g.Partners, n.ID()) {
				g.Partners = append(g.Partners, n.ID())
			}
			continue
		}

		id := GroupID(n.ID())
		if t.taken(id, taken) {
			t.Diagnostics.GroupIDCollisions++
			base := id
			for i := 2; t.taken(id, taken); i++ {
				id = base + groupIDSeparator + strconv.Itoa(i)
			}
		}
		taken[id] = true

		g := &Group[P]{
			ID:         id,
			ParentID:   n.ID(),
			Generation: gen + 1,
			Partners:   partners,
			Members:    slices.Clone(n.ChildrenWithoutDescendants),
		}
		owned[n.ID()] = g
		groups = append(groups, g)
	}
	return groups
}

// taken reports whether id is a record id or an assigned group id.
func (t *Tree[P]) taken(id string, groups map[string]bool) bool {
	if groups[id] {
		return true
	}
	_, ok := t.Record(id)
	return ok
}

func partnersOf[P any](t *Tree[P], n *Node[P]) []string {
	var partners []string
	for _, m := range n.ChildrenWithoutDescendants {
		other := m.OtherParent(n.ID())
		if other == "" || other == n.ID() || slices.Contains(partners, other) {
			continue
		}
		if _, ok := t.Record(other); !ok {
			continue
		}
		partners = append(partners, other)
	}
	return partners
}

// pairedGroup finds an existing group owned by one of n's partners whose
// member set is exactly n's terminal set.
func pairedGroup[P any](owned map[string]*Group[P], n *Node[P], partners []string) *Group[P] {
	for _, p := range partners {
		g, ok := owned[p]
		if !ok || len(g.Members) != len(n.ChildrenWithoutDescendants) {
			continue
		}
		same := true
		for _, m := range n.ChildrenWithoutDescendants {
			if !slices.ContainsFunc(g.Members, func(o record.Record[P]) bool { return o.ID == m.ID }) {
				same = false
				break
			}
		}
		if same {
			return g
		}
	}
	return nil
}
