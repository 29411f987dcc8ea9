package render

import "github.com/matzehuels/pedigree/pkg/dag"

// Palette.
const (
	ColorDam      = "#d6336c"
	ColorSire     = "#1c7ed6"
	ColorSelected = "#f59f00"
	ColorNeutral  = "#868e96"
)

// Edge weights and opacities.
const (
	EmphasizedWidth = 3.0
	NormalWidth     = 1.0
	ReducedOpacity  = 0.25
	FullOpacity     = 1.0
)

// NodeStyle carries the per-node selection flags.
type NodeStyle struct {
	Selected         bool   `json:"selected"`
	Highlighted      bool   `json:"highlighted"`
	ParentOfSelected bool   `json:"parent_of_selected"`
	ParentRole       string `json:"parent_role,omitempty"`
	Color            string `json:"color"`
}

// EdgeStyle carries the per-edge drawing attributes.
type EdgeStyle struct {
	Color      string  `json:"color"`
	Width      float64 `json:"width"`
	Opacity    float64 `json:"opacity"`
	Animated   bool    `json:"animated"`
	Dashed     bool    `json:"dashed"`
	Emphasized bool    `json:"emphasized"`
}

func roleColor(r dag.Role) string {
	switch r {
	case dag.RoleDam:
		return ColorDam
	case dag.RoleSire:
		return ColorSire
	default:
		return ColorNeutral
	}
}
