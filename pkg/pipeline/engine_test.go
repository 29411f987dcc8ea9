package pipeline

import (
	"testing"

	"github.com/matzehuels/pedigree/pkg/layout"
	"github.com/matzehuels/pedigree/pkg/record"
	"github.com/matzehuels/pedigree/pkg/render"
	"github.com/matzehuels/pedigree/pkg/selection"
)

type rec = record.Record[record.Attributes]

func scenario() []rec {
	return []rec{
		{ID: "A", Name: "Atlas", DamID: "B", SireID: "C"},
		{ID: "B", Name: "Bea", Sex: record.Female},
		{ID: "C", Sex: record.Male},
		{ID: "D", DamID: "E", SireID: "A"},
		{ID: "E", Sex: record.Female},
	}
}

func newEngine(t *testing.T, root string) *Engine[record.Attributes] {
	t.Helper()
	e, err := NewEngine[record.Attributes](Options{})
	if err != nil {
		t.Fatal(err)
	}
	e.SetRecords(scenario())
	e.SetRoot(root)
	return e
}

func TestEngineScene(t *testing.T) {
	e := newEngine(t, "A")
	s := e.Scene()

	if s.Status != render.StatusOK || s.RootID != "A" {
		t.Fatalf("scene status = %s root = %s", s.Status, s.RootID)
	}
	if len(s.Nodes) != 5 || len(s.Edges) != 4 {
		t.Errorf("scene has %d nodes and %d edges, want 5 and 4", len(s.Nodes), len(s.Edges))
	}
	c, ok := s.Node("C")
	if !ok || c.Label != render.DefaultPlaceholder {
		t.Errorf("C label = %q, want placeholder", c.Label)
	}
	g, ok := s.Node("group-A")
	if !ok || g.Count != 1 || g.Label != "1 offspring" {
		t.Errorf("group-A = %+v", g)
	}

	st := e.Stats()
	if st.Builds != 1 || st.Layouts != 1 || st.Assembles != 1 {
		t.Errorf("stats = %+v", st)
	}
	if st.LastLayout.Fresh != 5 {
		t.Errorf("fresh = %d, want 5", st.LastLayout.Fresh)
	}
}

func TestEngineSceneIsCached(t *testing.T) {
	e := newEngine(t, "A")
	first := e.Scene()
	if second := e.Scene(); second != first {
		t.Error("unchanged engine should return the same scene")
	}
	if e.Stats().Builds != 1 {
		t.Errorf("builds = %d", e.Stats().Builds)
	}
}

func TestEngineRootNotFound(t *testing.T) {
	e := newEngine(t, "Z")
	s := e.Scene()
	if s.Status != render.StatusNotFound {
		t.Fatalf("status = %s, want not_found", s.Status)
	}
	if len(s.Nodes) != 0 || len(s.Edges) != 0 {
		t.Error("not-found scene should be empty")
	}
	if e.Pedigree() != nil {
		t.Error("pedigree should be nil")
	}
}

func TestEngineClickDoesNotRebuild(t *testing.T) {
	e := newEngine(t, "A")
	e.Scene()

	state := e.NodeClicked("A", selection.TypeIndividual)
	if state.SelectedID != "A" || state.HighlightedDamID != "B" || state.HighlightedSireID != "C" {
		t.Fatalf("state = %+v", state)
	}
	s := e.Scene()
	if a, _ := s.Node("A"); !a.Style.Selected {
		t.Error("A should be selected")
	}
	if b, _ := s.Node("B"); b.Style.Color != render.ColorDam {
		t.Errorf("B color = %s", b.Style.Color)
	}

	st := e.Stats()
	if st.Builds != 1 || st.Layouts != 1 || st.Assembles != 2 {
		t.Errorf("stats after click = %+v, want 1 build, 1 layout, 2 assembles", st)
	}

	if state := e.NodeClicked("A", selection.TypeIndividual); !state.IsIdle() {
		t.Errorf("second click should deselect, got %+v", state)
	}
}

func TestEngineGroupClickIgnored(t *testing.T) {
	e := newEngine(t, "A")
	first := e.Scene()
	if state := e.NodeClicked("group-A", selection.TypeGroup); !state.IsIdle() {
		t.Errorf("group click changed state: %+v", state)
	}
	if e.Scene() != first {
		t.Error("group click should not re-assemble")
	}
}

func TestEngineDragPins(t *testing.T) {
	e := newEngine(t, "A")
	e.Scene()

	e.NodeDragged("B", 500, -300)
	s := e.Scene()
	b, _ := s.Node("B")
	if b.Position.X != 500 || b.Position.Y != -300 {
		t.Errorf("B position = %+v", b.Position)
	}
	if p, _ := e.Positions().Get("B"); !p.Pinned {
		t.Error("dragged position should be pinned")
	}
	if st := e.Stats(); st.Layouts != 1 {
		t.Errorf("drag re-ran layout: %+v", st)
	}
}

func TestEngineRebuildKeepsPositions(t *testing.T) {
	e := newEngine(t, "A")
	e.Scene()
	e.NodeDragged("B", 1000, 1000)
	before, _ := e.Positions().Get("C")

	recs := append(scenario(), rec{ID: "F", DamID: "B", SireID: "C"})
	e.SetRecords(recs)
	e.Scene()

	if p, _ := e.Positions().Get("B"); p.X != 1000 || p.Y != 1000 {
		t.Errorf("B moved after rebuild: %+v", p)
	}
	if p, _ := e.Positions().Get("C"); p != before {
		t.Errorf("C moved after rebuild: %+v != %+v", p, before)
	}
	if e.Stats().Builds != 2 {
		t.Errorf("builds = %d", e.Stats().Builds)
	}
}

func TestEngineSetRootSame(t *testing.T) {
	e := newEngine(t, "A")
	e.Scene()
	e.SetRoot("A")
	e.Scene()
	if e.Stats().Builds != 1 {
		t.Error("setting the same root should not rebuild")
	}
}

func TestEngineSelectionResetOnRemoval(t *testing.T) {
	e := newEngine(t, "A")
	e.Scene()
	e.NodeClicked("B", selection.TypeIndividual)

	var recs []rec
	for _, r := range scenario() {
		if r.ID != "B" {
			recs = append(recs, r)
		}
	}
	e.SetRecords(recs)
	s := e.Scene()
	if !s.Selection.IsIdle() || !e.Selection().IsIdle() {
		t.Errorf("selection should reset to idle, got %+v", s.Selection)
	}
}

func TestEngineLabels(t *testing.T) {
	e := newEngine(t, "A")
	e.Scene()
	e.SetLabels(render.LabelMap{"C": "Cirrus"})
	s := e.Scene()
	if c, _ := s.Node("C"); c.Label != "Cirrus" {
		t.Errorf("C label = %q", c.Label)
	}
	if e.Stats().Builds != 2 {
		t.Error("label change should rebuild")
	}
}

func TestEngineIdempotent(t *testing.T) {
	run := func() (map[string]int, map[string]layout.Position) {
		e := newEngine(t, "A")
		e.Scene()
		return e.Pedigree().Generations, e.Positions().Snapshot()
	}
	g1, p1 := run()
	g2, p2 := run()
	for id, g := range g1 {
		if g2[id] != g {
			t.Errorf("generation[%s] %d != %d", id, g, g2[id])
		}
	}
	for id, p := range p1 {
		if p2[id] != p {
			t.Errorf("position[%s] %+v != %+v", id, p, p2[id])
		}
	}
}

func TestEngineSetPositions(t *testing.T) {
	e := newEngine(t, "A")
	restored := layout.NewPositionCache()
	restored.Pin("A", 42, 24)
	e.SetPositions(restored)

	s := e.Scene()
	if a, _ := s.Node("A"); a.Position.X != 42 || a.Position.Y != 24 {
		t.Errorf("A position = %+v", a.Position)
	}
	if st := e.Stats(); st.LastLayout.Retained != 1 || st.LastLayout.Fresh != 4 {
		t.Errorf("layout stats = %+v", st.LastLayout)
	}

	e.SetPositions(nil)
	if e.Positions() == nil {
		t.Error("nil positions should become an empty cache")
	}
}
