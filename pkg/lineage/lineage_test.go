package lineage

import (
	"errors"
	"testing"

	"github.com/matzehuels/pedigree/pkg/observability"
	"github.com/matzehuels/pedigree/pkg/record"
)

type rec = record.Record[record.Attributes]

// scenario: A has dam B and sire C; A sired terminal D with dam E.
func scenario() []rec {
	return []rec{
		{ID: "A", Name: "Atlas", Sex: record.Male, DamID: "B", SireID: "C"},
		{ID: "B", Name: "Bella", Sex: record.Female},
		{ID: "C", Name: "Cosmo", Sex: record.Male},
		{ID: "D", Name: "Dot", DamID: "E", SireID: "A"},
		{ID: "E", Name: "Echo", Sex: record.Female},
	}
}

func TestBuildRootNotFound(t *testing.T) {
	_, err := Build(scenario(), "Z")
	if !errors.Is(err, ErrRootNotFound) {
		t.Fatalf("err = %v, want ErrRootNotFound", err)
	}
}

func TestBuildScenario(t *testing.T) {
	tree, err := Build(scenario(), "A")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var ids []string
	for _, n := range tree.Nodes {
		ids = append(ids, n.ID())
	}
	if want := []string{"A", "B", "C"}; !equal(ids, want) {
		t.Errorf("nodes = %v, want %v", ids, want)
	}

	root := tree.Root
	if root.Dam == nil || root.Dam.ID() != "B" {
		t.Errorf("dam = %v, want B", root.Dam)
	}
	if root.Sire == nil || root.Sire.ID() != "C" {
		t.Errorf("sire = %v, want C", root.Sire)
	}
	if len(root.Children) != 0 {
		t.Errorf("root children = %d, want 0", len(root.Children))
	}
	if len(root.ChildrenWithoutDescendants) != 1 || root.ChildrenWithoutDescendants[0].ID != "D" {
		t.Errorf("terminal = %v, want [D]", root.ChildrenWithoutDescendants)
	}

	dam, sire, ok := tree.Parents.ParentsOf("A")
	if !ok || dam != "B" || sire != "C" {
		t.Errorf("ParentsOf(A) = %q, %q, %v", dam, sire, ok)
	}

	gens := ResolveGenerations(tree)
	want := map[string]int{"A": 0, "B": -1, "C": -1}
	for id, g := range want {
		if got, ok := gens.Of(id); !ok || got != g {
			t.Errorf("generation[%s] = %d (%v), want %d", id, got, ok, g)
		}
	}

	groups := Aggregate(tree, gens)
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(groups))
	}
	g := groups[0]
	if g.ID != "group-A" || g.Count() != 1 || g.Generation != 1 {
		t.Errorf("group = %+v", g)
	}
	if !g.IsPairing() || g.PartnerID() != "E" {
		t.Errorf("partners = %v, want [E]", g.Partners)
	}
}

func TestBuildRootWithoutOffspringIsNotGrouped(t *testing.T) {
	recs := []rec{
		{ID: "P"},
		{ID: "R", DamID: "P"},
		{ID: "S", DamID: "P"},
	}
	tree, err := Build(recs, "R")
	if err != nil {
		t.Fatal(err)
	}
	p, _ := tree.Node("P")
	if len(p.Children) != 1 || p.Children[0] != tree.Root {
		t.Errorf("P children should contain the root")
	}
	if len(p.ChildrenWithoutDescendants) != 1 || p.ChildrenWithoutDescendants[0].ID != "S" {
		t.Errorf("P terminal = %v, want [S]", p.ChildrenWithoutDescendants)
	}
}

func TestGenerationsDifferByOne(t *testing.T) {
	// Three generations with a non-terminal offspring line and a side branch.
	recs := []rec{
		{ID: "G1"}, {ID: "G2"},
		{ID: "P1", DamID: "G1", SireID: "G2"},
		{ID: "P2"},
		{ID: "R", DamID: "P1", SireID: "P2"},
		{ID: "K1", DamID: "R"},
		{ID: "K2", DamID: "R"},
		{ID: "GK", DamID: "K1"},
		{ID: "U", DamID: "P2"},
	}
	tree, err := Build(recs, "R")
	if err != nil {
		t.Fatal(err)
	}
	gens := ResolveGenerations(tree)
	if gens.Conflicts != 0 {
		t.Errorf("conflicts = %d, want 0", gens.Conflicts)
	}

	for _, n := range tree.Nodes {
		g, ok := gens.Of(n.ID())
		if !ok {
			t.Fatalf("%s has no generation", n.ID())
		}
		for _, p := range []*Node[record.Attributes]{n.Dam, n.Sire} {
			if p == nil {
				continue
			}
			if pg, _ := gens.Of(p.ID()); g-pg != 1 {
				t.Errorf("%s (gen %d) parent %s (gen %d) differ by %d", n.ID(), g, p.ID(), pg, g-pg)
			}
		}
	}

	if g, _ := gens.Of("G1"); g != -2 {
		t.Errorf("G1 generation = %d, want -2", g)
	}
	if g, _ := gens.Of("K1"); g != 1 {
		t.Errorf("K1 generation = %d, want 1", g)
	}
	// K2 and GK are terminal and never become nodes.
	for _, id := range []string{"K2", "GK", "U"} {
		if _, ok := tree.Node(id); ok {
			t.Errorf("%s should be terminal", id)
		}
	}
}

func TestBuildCycleTerminates(t *testing.T) {
	recs := []rec{
		{ID: "A", DamID: "B"},
		{ID: "B", DamID: "A"},
	}
	tree, err := Build(recs, "A")
	if err != nil {
		t.Fatal(err)
	}
	if tree.Len() != 2 {
		t.Fatalf("nodes = %d, want 2", tree.Len())
	}
	seen := map[string]bool{}
	for _, n := range tree.Nodes {
		if seen[n.ID()] {
			t.Errorf("duplicate node %s", n.ID())
		}
		seen[n.ID()] = true
	}
	if tree.Diagnostics.Cycles != 1 {
		t.Errorf("cycles = %d, want 1", tree.Diagnostics.Cycles)
	}
	gens := ResolveGenerations(tree)
	if len(gens.Generations) != 2 {
		t.Errorf("generations = %v", gens.Generations)
	}
	if gens.Passes > tree.Len()+1 {
		t.Errorf("passes = %d, want at most %d", gens.Passes, tree.Len()+1)
	}
}

func TestBuildDiagnostics(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetLineageHooks(hooks)
	defer observability.Reset()

	recs := []rec{
		{ID: "A", DamID: "missing", SireID: "A"},
		{ID: "A", Name: "duplicate"},
		{ID: "B", SireID: "ghost"},
		{ID: "C", DamID: "A", SireID: "B"},
		{ID: "D", DamID: "C"},
	}
	tree, err := Build(recs, "A")
	if err != nil {
		t.Fatal(err)
	}
	d := tree.Diagnostics
	if d.DanglingReferences != 2 {
		t.Errorf("dangling = %d, want 2", d.DanglingReferences)
	}
	if d.SelfReferences != 1 {
		t.Errorf("self = %d, want 1", d.SelfReferences)
	}
	if d.DuplicateIDs != 1 {
		t.Errorf("duplicates = %d, want 1", d.DuplicateIDs)
	}
	if tree.Root.Record.Name != "" {
		t.Errorf("first occurrence should win, got name %q", tree.Root.Record.Name)
	}
	if tree.Root.Dam != nil || tree.Root.Sire != nil {
		t.Errorf("dangling and self references should resolve to no parent")
	}
	if hooks.dangling != 2 || hooks.self != 1 {
		t.Errorf("hooks dangling=%d self=%d", hooks.dangling, hooks.self)
	}
}

func TestGenerationConflictFirstWriterWins(t *testing.T) {
	// X is R's grandparent via M and R's parent directly.
	recs := []rec{
		{ID: "X"},
		{ID: "M", DamID: "X"},
		{ID: "R", DamID: "M", SireID: "X"},
		{ID: "K", DamID: "R"},
		{ID: "KK", DamID: "K"},
	}
	tree, err := Build(recs, "R")
	if err != nil {
		t.Fatal(err)
	}
	gens := ResolveGenerations(tree)
	if g, _ := gens.Of("X"); g != -1 {
		t.Errorf("X = %d, want -1 (first assignment)", g)
	}
	if gens.Conflicts == 0 {
		t.Error("expected at least one conflict")
	}

	again := ResolveGenerations(tree)
	if again.Conflicts != gens.Conflicts {
		t.Errorf("conflicts not stable: %d vs %d", again.Conflicts, gens.Conflicts)
	}
	for id, g := range gens.Generations {
		if again.Generations[id] != g {
			t.Errorf("generation[%s] changed between runs", id)
		}
	}
}

func TestResolveGenerationsNilTree(t *testing.T) {
	gm := ResolveGenerations[record.Attributes](nil)
	if len(gm.Generations) != 0 {
		t.Errorf("nil tree should yield an empty map")
	}
}

func TestAggregateGrouping(t *testing.T) {
	// P has 3 terminal offspring and 2 non-terminal ones.
	recs := []rec{
		{ID: "P"},
		{ID: "T1", DamID: "P"}, {ID: "T2", DamID: "P"}, {ID: "T3", DamID: "P"},
		{ID: "N1", DamID: "P"}, {ID: "N2", DamID: "P"},
		{ID: "X1", DamID: "N1"}, {ID: "X2", DamID: "N2"},
	}
	tree, err := Build(recs, "P")
	if err != nil {
		t.Fatal(err)
	}
	if got := len(tree.Root.Children); got != 2 {
		t.Errorf("non-terminal children = %d, want 2", got)
	}
	groups := Aggregate(tree, ResolveGenerations(tree))
	var owned []*Group[record.Attributes]
	for _, g := range groups {
		if g.ParentID == "P" {
			owned = append(owned, g)
		}
	}
	if len(owned) != 1 || owned[0].Count() != 3 {
		t.Fatalf("groups for P = %v, want one with 3 members", owned)
	}
	if owned[0].IsPairing() {
		t.Error("single-parent group should not be a pairing")
	}
}

func TestAggregatePairMerge(t *testing.T) {
	// R and S are both nodes (siblings under M) and share two terminal offspring.
	recs := []rec{
		{ID: "M"},
		{ID: "R", DamID: "M"},
		{ID: "S", SireID: "M"},
		{ID: "O1", DamID: "R", SireID: "S"},
		{ID: "O2", DamID: "R", SireID: "S"},
		{ID: "Q", DamID: "S"},
		{ID: "QQ", DamID: "Q"},
		{ID: "RR", DamID: "R"},
		{ID: "RRR", DamID: "RR"},
	}
	tree, err := Build(recs, "M")
	if err != nil {
		t.Fatal(err)
	}
	groups := Aggregate(tree, ResolveGenerations(tree))
	var pair *Group[record.Attributes]
	for _, g := range groups {
		if g.ParentID == "R" || g.ParentID == "S" {
			if pair != nil {
				t.Fatalf("expected one merged group, got %s and %s", pair.ID, g.ID)
			}
			pair = g
		}
	}
	if pair == nil {
		t.Fatal("no group for the pair")
	}
	if pair.ID != "group-R" || pair.Count() != 2 || pair.PartnerID() != "S" {
		t.Errorf("pair group = %+v", pair)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	a, _ := Build(scenario(), "A")
	b, _ := Build(scenario(), "A")
	if a.Len() != b.Len() {
		t.Fatal("node counts differ")
	}
	for i := range a.Nodes {
		if a.Nodes[i].ID() != b.Nodes[i].ID() {
			t.Errorf("discovery order differs at %d", i)
		}
	}
}

type recordingHooks struct {
	observability.NoopLineageHooks
	dangling, self int
}

func (h *recordingHooks) OnDanglingReference(string, string, string) { h.dangling++ }
func (h *recordingHooks) OnSelfReference(string)                     { h.self++ }

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
