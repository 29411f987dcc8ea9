package render

import (
	"fmt"

	"github.com/matzehuels/pedigree/pkg/dag"
	"github.com/matzehuels/pedigree/pkg/layout"
	"github.com/matzehuels/pedigree/pkg/lineage"
	"github.com/matzehuels/pedigree/pkg/selection"
)

// Status reports whether the scene has content.
type Status string

const (
	StatusOK       Status = "ok"
	StatusNotFound Status = "not_found"
)

// Node types as seen by the rendering surface.
const (
	TypeIndividual = string(selection.TypeIndividual)
	TypeGroup      = string(selection.TypeGroup)
)

// Edge kinds.
const (
	EdgeParentage = "parentage"
	EdgeGroup     = "group"
)

// Member is one terminal offspring listed on a group node.
type Member struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Node is one renderable node. Payload is forwarded untouched from the record.
type Node[P any] struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Label      string          `json:"label"`
	Generation int             `json:"generation"`
	Position   layout.Position `json:"position"`
	Style      NodeStyle       `json:"style"`
	Sex        string          `json:"sex,omitempty"`
	Partner    bool            `json:"partner,omitempty"`
	Count      int             `json:"count,omitempty"`
	Members    []Member        `json:"members,omitempty"`
	Payload    P               `json:"attributes,omitempty"`
}

// Edge is one renderable edge. ID is the "source-target" dedup key.
type Edge struct {
	ID     string    `json:"id"`
	Source string    `json:"source"`
	Target string    `json:"target"`
	Kind   string    `json:"kind"`
	Role   string    `json:"role"`
	Style  EdgeStyle `json:"style"`
}

// Scene is the output handed to the rendering surface.
type Scene[P any] struct {
	Status      Status              `json:"status"`
	RootID      string              `json:"root_id"`
	Nodes       []Node[P]           `json:"nodes"`
	Edges       []Edge              `json:"edges"`
	Selection   selection.State     `json:"selection"`
	Diagnostics lineage.Diagnostics `json:"diagnostics"`
	Conflicts   int                 `json:"generation_conflicts"`
}

// Node returns the node with the given id.
func (s *Scene[P]) Node(id string) (*Node[P], bool) {
	for i := range s.Nodes {
		if s.Nodes[i].ID == id {
			return &s.Nodes[i], true
		}
	}
	return nil, false
}

// Edge returns the edge with the given "source-target" key.
func (s *Scene[P]) Edge(id string) (*Edge, bool) {
	for i := range s.Edges {
		if s.Edges[i].ID == id {
			return &s.Edges[i], true
		}
	}
	return nil, false
}

// NotFound returns the empty scene reported for an absent root.
func NotFound[P any](rootID string) *Scene[P] {
	return &Scene[P]{
		Status:    StatusNotFound,
		RootID:    rootID,
		Nodes:     []Node[P]{},
		Edges:     []Edge{},
		Selection: selection.Idle,
	}
}

// Input is everything Assemble reads.
type Input[P any] struct {
	Pedigree  *lineage.Pedigree[P]
	Positions *layout.PositionCache
	Selection selection.State
	// Labels may be nil.
	Labels Labeler
	// Placeholder defaults to DefaultPlaceholder.
	Placeholder string
}

// Assemble builds the styled scene. It reads the pedigree and the positions
// and never modifies either.
func Assemble[P any](in Input[P]) *Scene[P] {
	p := in.Pedigree
	sel := in.Selection
	scene := &Scene[P]{
		Status:      StatusOK,
		RootID:      p.Tree.Root.ID(),
		Nodes:       make([]Node[P], 0, p.Graph.NodeCount()),
		Edges:       make([]Edge, 0, p.Graph.EdgeCount()),
		Selection:   sel,
		Diagnostics: p.Tree.Diagnostics,
		Conflicts:   p.Conflicts,
	}

	for _, n := range p.Graph.Nodes() {
		scene.Nodes = append(scene.Nodes, assembleNode(in, n))
	}
	for _, e := range p.Graph.Edges() {
		scene.Edges = append(scene.Edges, assembleEdge(sel, e))
	}
	return scene
}

func assembleNode[P any](in Input[P], n *dag.Node) Node[P] {
	out := Node[P]{
		ID:         n.ID,
		Type:       TypeIndividual,
		Generation: n.Row,
		Style:      nodeStyle(in.Selection, n.ID),
	}
	if in.Positions != nil {
		out.Position, _ = in.Positions.Get(n.ID)
	}

	if n.IsGroup() {
		out.Type = TypeGroup
		if g, ok := in.Pedigree.Group(n.ID); ok {
			out.Count = g.Count()
			out.Members = make([]Member, 0, g.Count())
			for _, m := range g.Members {
				out.Members = append(out.Members, Member{ID: m.ID, Name: m.Name})
			}
		}
		out.Label = fmt.Sprintf("%d offspring", out.Count)
		return out
	}

	rec, _ := in.Pedigree.Record(n.ID)
	out.Sex = string(rec.Sex)
	out.Partner = n.Kind == dag.NodeKindPartner
	out.Payload = rec.Payload
	out.Label = label(in, n.ID, rec.Name)
	return out
}

func label[P any](in Input[P], id, name string) string {
	if in.Labels != nil {
		if l, ok := in.Labels.Label(id); ok {
			return l
		}
	}
	if name != "" {
		return name
	}
	if in.Placeholder != "" {
		return in.Placeholder
	}
	return DefaultPlaceholder
}

func nodeStyle(sel selection.State, id string) NodeStyle {
	st := NodeStyle{Color: ColorNeutral}
	switch {
	case sel.IsSelected(id):
		st.Selected = true
		st.Highlighted = true
		st.Color = ColorSelected
	case id == sel.HighlightedDamID:
		st.Highlighted, st.ParentOfSelected = true, true
		st.ParentRole = string(dag.RoleDam)
		st.Color = ColorDam
	case id == sel.HighlightedSireID:
		st.Highlighted, st.ParentOfSelected = true, true
		st.ParentRole = string(dag.RoleSire)
		st.Color = ColorSire
	}
	return st
}

func assembleEdge(sel selection.State, e dag.Edge) Edge {
	out := Edge{
		ID:     e.Key(),
		Source: e.From,
		Target: e.To,
		Kind:   EdgeParentage,
		Role:   string(e.Role),
	}
	if g, _ := e.Meta["group"].(bool); g {
		out.Kind = EdgeGroup
	}

	emphasized := !sel.IsIdle() && e.To == sel.HighlightedChildID && sel.IsHighlightedParent(e.From)
	out.Style = EdgeStyle{
		Color:   ColorNeutral,
		Width:   NormalWidth,
		Opacity: FullOpacity,
		Dashed:  out.Kind == EdgeGroup,
	}
	switch {
	case emphasized:
		out.Style.Emphasized = true
		out.Style.Animated = true
		out.Style.Width = EmphasizedWidth
		out.Style.Color = roleColor(e.Role)
	case !sel.IsIdle():
		out.Style.Opacity = ReducedOpacity
	}
	return out
}
