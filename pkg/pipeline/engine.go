package pipeline

import (
	"errors"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pedigree/pkg/layout"
	"github.com/matzehuels/pedigree/pkg/lineage"
	"github.com/matzehuels/pedigree/pkg/observability"
	"github.com/matzehuels/pedigree/pkg/record"
	"github.com/matzehuels/pedigree/pkg/render"
	"github.com/matzehuels/pedigree/pkg/selection"
)

// Engine holds the state of one pedigree view and recomputes it on demand.
//
// Changing the records, the root or the labels marks the lineage stale; the
// next Scene call rebuilds it and lays out any new ids. Clicks and drags only
// re-run assembly. Position cache entries survive rebuilds.
//
// An Engine is not safe for concurrent use. Callers that share one (the API
// sessions) serialize access.
type Engine[P any] struct {
	opts   Options
	layout *layout.Engine
	logger *log.Logger

	records   []record.Record[P]
	rootID    string
	labels    render.Labeler
	positions *layout.PositionCache
	selection selection.State

	pedigree *lineage.Pedigree[P]
	scene    *render.Scene[P]

	stale       bool
	layoutStale bool
	stats       Stats
}

// NewEngine creates an Engine with an empty record list and position cache.
func NewEngine[P any](opts Options) (*Engine[P], error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &Engine[P]{
		opts:      opts,
		layout:    layout.NewEngine(opts.LayoutOptions()),
		logger:    opts.Logger,
		positions: layout.NewPositionCache(),
		stale:     true,
	}, nil
}

// Options returns the validated options.
func (e *Engine[P]) Options() Options { return e.opts }

// SetRecords replaces the record list.
func (e *Engine[P]) SetRecords(recs []record.Record[P]) {
	e.records = slices.Clone(recs)
	e.invalidate()
}

// Records returns the current record list.
func (e *Engine[P]) Records() []record.Record[P] { return e.records }

// SetRoot changes the root individual. Setting the current root is a no-op.
func (e *Engine[P]) SetRoot(id string) {
	if id == e.rootID {
		return
	}
	e.rootID = id
	e.invalidate()
}

// Root returns the current root id.
func (e *Engine[P]) Root() string { return e.rootID }

// SetLabels replaces the display-name lookup. nil falls back to record names.
func (e *Engine[P]) SetLabels(l render.Labeler) {
	e.labels = l
	e.invalidate()
}

// Positions returns the position cache. Mutating it directly requires a
// SetPositions call for the change to show up in the next scene.
func (e *Engine[P]) Positions() *layout.PositionCache { return e.positions }

// SetPositions swaps in a position cache, e.g. a restored snapshot.
// Ids missing from c are laid out on the next pass.
func (e *Engine[P]) SetPositions(c *layout.PositionCache) {
	if c == nil {
		c = layout.NewPositionCache()
	}
	e.positions = c
	e.layoutStale = true
	e.scene = nil
}

// Selection returns the current selection state.
func (e *Engine[P]) Selection() selection.State { return e.selection }

// Pedigree returns the last resolved pedigree, or nil when the root was not
// found. It does not trigger a rebuild.
func (e *Engine[P]) Pedigree() *lineage.Pedigree[P] { return e.pedigree }

// Stats returns pass counters.
func (e *Engine[P]) Stats() Stats { return e.stats }

// Scene returns the current scene, recomputing whatever is stale.
// A root that is not in the records yields a StatusNotFound scene.
func (e *Engine[P]) Scene() *render.Scene[P] {
	if e.stale {
		e.rebuild()
	}
	if e.pedigree == nil {
		if e.scene == nil {
			e.scene = render.NotFound[P](e.rootID)
		}
		return e.scene
	}
	if e.layoutStale {
		e.relayout()
	}
	if e.scene == nil {
		e.assemble()
	}
	return e.scene
}

// NodeClicked applies a click to the selection and returns the new state.
// It never rebuilds the lineage.
func (e *Engine[P]) NodeClicked(id string, t selection.NodeType) selection.State {
	next := selection.Reduce(e.selection, selection.Click{ID: id, Type: t}, e.parents())
	e.setSelection(next)
	return next
}

// NodeDragged pins id at (x, y). It never rebuilds the lineage or re-runs
// layout.
func (e *Engine[P]) NodeDragged(id string, x, y float64) {
	e.positions.Pin(id, x, y)
	e.scene = nil
	e.logger.Debug("pinned node", "id", id, "x", x, "y", y)
}

func (e *Engine[P]) invalidate() {
	e.stale = true
	e.scene = nil
}

func (e *Engine[P]) rebuild() {
	start := time.Now()
	p, err := lineage.Resolve(e.records, e.rootID)
	e.stats.Builds++
	e.stale = false
	e.scene = nil

	if err != nil {
		e.pedigree = nil
		e.setSelection(selection.Idle)
		observability.Pipeline().OnBuild(e.rootID, 0, time.Since(start), err)
		if errors.Is(err, lineage.ErrRootNotFound) {
			e.logger.Debug("root not found", "root", e.rootID, "records", len(e.records))
		} else {
			e.logger.Error("build lineage", "root", e.rootID, "err", err)
		}
		return
	}

	e.pedigree = p
	e.layoutStale = true
	e.setSelection(selection.Refresh(e.selection, p.Parents))

	d := time.Since(start)
	observability.Pipeline().OnBuild(e.rootID, p.Graph.NodeCount(), d, nil)
	e.logger.Debug("built lineage",
		"root", e.rootID,
		"nodes", p.Tree.Len(),
		"groups", len(p.Groups),
		"conflicts", p.Conflicts,
		"duration", d)
}

func (e *Engine[P]) relayout() {
	start := time.Now()
	st := e.layout.Apply(e.pedigree.Graph, e.positions)
	e.stats.Layouts++
	e.stats.LastLayout = st
	e.layoutStale = false
	e.scene = nil

	d := time.Since(start)
	observability.Pipeline().OnLayout(st.Fresh, st.Retained, d)
	e.logger.Debug("computed layout",
		"fresh", st.Fresh,
		"retained", st.Retained,
		"crossings", st.Crossings,
		"duration", d)
}

func (e *Engine[P]) assemble() {
	start := time.Now()
	e.scene = render.Assemble(render.Input[P]{
		Pedigree:    e.pedigree,
		Positions:   e.positions,
		Selection:   e.selection,
		Labels:      e.labels,
		Placeholder: e.opts.PlaceholderLabel,
	})
	e.stats.Assembles++
	observability.Pipeline().OnAssemble(len(e.scene.Nodes), len(e.scene.Edges), time.Since(start))
}

func (e *Engine[P]) setSelection(s selection.State) {
	if s == e.selection {
		return
	}
	e.selection = s
	e.scene = nil
	observability.Pipeline().OnSelection(s.SelectedID)
}

func (e *Engine[P]) parents() selection.ParentFinder {
	if e.pedigree == nil {
		return nil
	}
	return e.pedigree.Parents
}
