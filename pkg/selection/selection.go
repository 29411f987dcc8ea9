// Package selection is the click-driven highlight state machine of the
// pedigree view.
//
// There are two states, Idle and Selected(id). [Reduce] is a pure function
// from (state, event) to the next state; it never touches the layout or the
// lineage, so a click can only ever restyle the graph.
//
//	Idle          --click n-->        Selected(n)
//	Selected(n)   --click n-->        Idle
//	Selected(n)   --click m-->        Selected(m)
//	any           --click group-->    unchanged
package selection

// NodeType is the type of the clicked node as reported by the surface.
type NodeType string

const (
	TypeIndividual NodeType = "individual"
	TypeGroup      NodeType = "group"
)

// State is the current selection. The zero value is Idle.
type State struct {
	SelectedID         string `json:"selected_id,omitempty"`
	HighlightedDamID   string `json:"highlighted_dam_id,omitempty"`
	HighlightedSireID  string `json:"highlighted_sire_id,omitempty"`
	HighlightedChildID string `json:"highlighted_child_id,omitempty"`
}

// Idle is the state with nothing selected.
var Idle = State{}

// IsIdle reports whether nothing is selected.
func (s State) IsIdle() bool { return s.SelectedID == "" }

// IsSelected reports whether id is the selected node.
func (s State) IsSelected(id string) bool { return id != "" && s.SelectedID == id }

// IsHighlightedParent reports whether id is the selected node's dam or sire.
func (s State) IsHighlightedParent(id string) bool {
	return id != "" && (s.HighlightedDamID == id || s.HighlightedSireID == id)
}

// ParentFinder resolves the parents of a node. lineage.ParentLookup
// implements it.
type ParentFinder interface {
	ParentsOf(id string) (damID, sireID string, ok bool)
}

// Click is a nodeClicked(id, type) event.
type Click struct {
	ID   string   `json:"id"`
	Type NodeType `json:"type"`
}

// Reduce returns the state after ev. Clicks on groups or with an empty id
// leave s unchanged.
func Reduce(s State, ev Click, parents ParentFinder) State {
	if ev.Type == TypeGroup || ev.ID == "" {
		return s
	}
	if s.SelectedID == ev.ID {
		return Idle
	}
	return Select(ev.ID, parents)
}

// Select builds Selected(id) with id's parents highlighted.
func Select(id string, parents ParentFinder) State {
	next := State{SelectedID: id, HighlightedChildID: id}
	if parents != nil {
		next.HighlightedDamID, next.HighlightedSireID, _ = parents.ParentsOf(id)
	}
	return next
}

// Refresh re-resolves s against a rebuilt lineage. A selection whose id is
// gone returns Idle; otherwise the parents are looked up again.
func Refresh(s State, parents ParentFinder) State {
	if s.IsIdle() {
		return s
	}
	if parents == nil {
		return Idle
	}
	if _, _, ok := parents.ParentsOf(s.SelectedID); !ok {
		return Idle
	}
	return Select(s.SelectedID, parents)
}
