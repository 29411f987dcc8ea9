package layout

import (
	"cmp"
	"slices"

	"github.com/matzehuels/pedigree/pkg/dag"
)

// Default geometry.
const (
	DefaultNodeWidth         = 180.0
	DefaultHorizontalSpacing = 40.0
	DefaultRowHeight         = 160.0
)

// Options is the row geometry. Zero fields take the defaults.
type Options struct {
	NodeWidth         float64 `json:"node_width" toml:"node_width"`
	HorizontalSpacing float64 `json:"horizontal_spacing" toml:"horizontal_spacing"`
	RowHeight         float64 `json:"row_height" toml:"row_height"`
}

// WithDefaults fills zero or negative fields with the defaults.
func (o Options) WithDefaults() Options {
	if o.NodeWidth <= 0 {
		o.NodeWidth = DefaultNodeWidth
	}
	if o.HorizontalSpacing <= 0 {
		o.HorizontalSpacing = DefaultHorizontalSpacing
	}
	if o.RowHeight <= 0 {
		o.RowHeight = DefaultRowHeight
	}
	return o
}

// Stats summarizes one layout pass.
type Stats struct {
	// Fresh counts ids positioned in this pass.
	Fresh int `json:"fresh"`
	// Retained counts ids whose cached position was reused.
	Retained int `json:"retained"`
	// Crossings is the edge-crossing count of the resulting row order.
	Crossings int `json:"crossings"`
}

// Engine applies the row layout.
type Engine struct {
	opts Options
}

// NewEngine creates an Engine. Zero option fields take the defaults.
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts.WithDefaults()}
}

// Options returns the effective geometry.
func (e *Engine) Options() Options { return e.opts }

// Apply writes a position for every node of g that cache does not already
// hold. Generations are processed oldest first so a group's parents are
// placed before the group. cache must not be nil.
func (e *Engine) Apply(g *dag.DAG, cache *PositionCache) Stats {
	var st Stats
	w, h := e.opts.NodeWidth, e.opts.HorizontalSpacing

	for _, row := range g.RowIDs() {
		nodes := g.NodesInRow(row)
		n := float64(len(nodes))
		startX := -(n*w + (n-1)*h) / 2
		y := float64(row) * e.opts.RowHeight

		for slot, node := range nodes {
			if cache.Has(node.ID) {
				st.Retained++
				continue
			}
			x := startX + float64(slot)*(w+h)
			if node.IsGroup() {
				if gx, ok := e.groupX(g, node.ID, cache); ok {
					x = gx
				}
			}
			cache.Set(node.ID, x, y)
			st.Fresh++
		}
	}

	st.Crossings = dag.CountCrossings(g, Orders(g, cache))
	return st
}

// groupX places a group between its first two positioned parents, or beside
// its only positioned parent.
func (e *Engine) groupX(g *dag.DAG, id string, cache *PositionCache) (float64, bool) {
	var xs []float64
	for _, p := range g.Parents(id) {
		if pos, ok := cache.Get(p); ok {
			xs = append(xs, pos.X)
		}
		if len(xs) == 2 {
			break
		}
	}
	switch len(xs) {
	case 2:
		return (xs[0] + xs[1]) / 2, true
	case 1:
		return xs[0] + e.opts.NodeWidth/2 + e.opts.HorizontalSpacing, true
	default:
		return 0, false
	}
}

// Orders returns each generation's node ids sorted left to right by their
// cached x. Ties keep insertion order; uncached nodes are left out.
func Orders(g *dag.DAG, cache *PositionCache) map[int][]string {
	orders := make(map[int][]string, g.RowCount())
	for _, row := range g.RowIDs() {
		var ids []string
		for _, n := range g.NodesInRow(row) {
			if cache.Has(n.ID) {
				ids = append(ids, n.ID)
			}
		}
		slices.SortStableFunc(ids, func(a, b string) int {
			pa, _ := cache.Get(a)
			pb, _ := cache.Get(b)
			return cmp.Compare(pa.X, pb.X)
		})
		orders[row] = ids
	}
	return orders
}
