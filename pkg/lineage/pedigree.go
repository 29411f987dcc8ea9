package lineage

import (
	"fmt"
	"maps"

	"github.com/matzehuels/pedigree/pkg/dag"
	"github.com/matzehuels/pedigree/pkg/record"
)

// Pedigree is one complete structural pass: the lineage tree, its generations,
// its offspring groups and the generation graph the layout runs on.
type Pedigree[P any] struct {
	Tree   *Tree[P]
	Groups []*Group[P]
	Graph  *dag.DAG

	// Generations covers lineage nodes, partner nodes, group nodes and group
	// members (parent+1).
	Generations map[string]int
	// Conflicts and Passes come from ResolveGenerations.
	Conflicts int
	Passes    int

	// Parents extends Tree.Parents with the partner nodes.
	Parents ParentLookup
	// Partners lists the partner node ids in the order they were added.
	Partners []string
}

// Resolve runs Build, ResolveGenerations and Aggregate and joins the results
// into a generation graph.
func Resolve[P any](recs []record.Record[P], rootID string) (*Pedigree[P], error) {
	t, err := Build(recs, rootID)
	if err != nil {
		return nil, err
	}
	gm := ResolveGenerations(t)
	p := &Pedigree[P]{
		Tree:        t,
		Groups:      Aggregate(t, gm),
		Graph:       dag.New(dag.Metadata{"root": rootID}),
		Generations: maps.Clone(gm.Generations),
		Conflicts:   gm.Conflicts,
		Passes:      gm.Passes,
		Parents:     maps.Clone(t.Parents),
	}
	if err := p.assemble(gm); err != nil {
		return nil, fmt.Errorf("assemble generation graph: %w", err)
	}
	return p, nil
}

// Group returns the group with the given id.
func (p *Pedigree[P]) Group(id string) (*Group[P], bool) {
	for _, g := range p.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return nil, false
}

// Record returns an input record by id.
func (p *Pedigree[P]) Record(id string) (record.Record[P], bool) {
	return p.Tree.Record(id)
}

// assemble adds nodes bucket by bucket in the order the layout expects:
// lineage nodes in discovery order, then partner nodes, then groups.
func (p *Pedigree[P]) assemble(gm GenerationMap) error {
	g := p.Graph
	for _, n := range p.Tree.Nodes {
		gen, _ := gm.Of(n.ID())
		if err := g.AddNode(dag.Node{
			ID:   n.ID(),
			Row:  gen,
			Kind: dag.NodeKindIndividual,
			Meta: dag.Metadata{"sex": string(n.Record.Sex)},
		}); err != nil {
			return fmt.Errorf("individual %q: %w", n.ID(), err)
		}
	}

	for _, grp := range p.Groups {
		for _, partner := range grp.Partners {
			if _, ok := g.Node(partner); ok {
				continue
			}
			rec, _ := p.Tree.Record(partner)
			gen := grp.Generation - 1
			if err := g.AddNode(dag.Node{
				ID:   partner,
				Row:  gen,
				Kind: dag.NodeKindPartner,
				Meta: dag.Metadata{"sex": string(rec.Sex)},
			}); err != nil {
				return fmt.Errorf("partner %q: %w", partner, err)
			}
			p.Generations[partner] = gen
			p.Partners = append(p.Partners, partner)
			p.Parents[partner] = p.knownParents(rec)
		}
	}

	for _, grp := range p.Groups {
		if err := g.AddNode(dag.Node{
			ID:   grp.ID,
			Row:  grp.Generation,
			Kind: dag.NodeKindGroup,
			Meta: dag.Metadata{"count": grp.Count(), "parent": grp.ParentID},
		}); err != nil {
			return fmt.Errorf("group %q: %w", grp.ID, err)
		}
		p.Generations[grp.ID] = grp.Generation
		for _, m := range grp.Members {
			if _, ok := p.Generations[m.ID]; !ok {
				p.Generations[m.ID] = grp.Generation
			}
		}
	}

	for _, n := range p.Tree.Nodes {
		if n.Dam != nil {
			if _, err := g.AddEdge(dag.Edge{From: n.Dam.ID(), To: n.ID(), Role: dag.RoleDam}); err != nil {
				return fmt.Errorf("dam edge of %q: %w", n.ID(), err)
			}
		}
		if n.Sire != nil {
			if _, err := g.AddEdge(dag.Edge{From: n.Sire.ID(), To: n.ID(), Role: dag.RoleSire}); err != nil {
				return fmt.Errorf("sire edge of %q: %w", n.ID(), err)
			}
		}
	}
	for _, grp := range p.Groups {
		for _, parent := range append([]string{grp.ParentID}, grp.Partners...) {
			if _, err := g.AddEdge(dag.Edge{
				From: parent,
				To:   grp.ID,
				Role: groupRole(grp, parent),
				Meta: dag.Metadata{"group": true},
			}); err != nil {
				return fmt.Errorf("edge %q -> %q: %w", parent, grp.ID, err)
			}
		}
	}
	return nil
}

// knownParents keeps only the parent ids that exist in the record list.
func (p *Pedigree[P]) knownParents(rec record.Record[P]) Parents {
	var out Parents
	if _, ok := p.Tree.Record(rec.DamID); ok && rec.DamID != rec.ID {
		out.DamID = rec.DamID
	}
	if _, ok := p.Tree.Record(rec.SireID); ok && rec.SireID != rec.ID {
		out.SireID = rec.SireID
	}
	return out
}

func groupRole[P any](g *Group[P], parentID string) dag.Role {
	for _, m := range g.Members {
		switch parentID {
		case m.DamID:
			return dag.RoleDam
		case m.SireID:
			return dag.RoleSire
		}
	}
	return dag.RoleParent
}
