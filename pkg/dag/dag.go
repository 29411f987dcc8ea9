package dag

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] when a node with the same
	// ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the To node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrNonConsecutiveRows is returned by [DAG.Validate] when an edge
	// connects generations that are not adjacent (From.Row+1 != To.Row).
	// Convergent ancestry with conflicting generations produces this.
	ErrNonConsecutiveRows = errors.New("edges must connect consecutive generations")

	// ErrGraphHasCycle is returned by [DAG.Validate] when an individual is
	// its own ancestor.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Metadata stores arbitrary key-value pairs attached to nodes or the graph.
// Metadata maps are never nil after AddNode / New.
type Metadata map[string]any

// NodeKind distinguishes lineage individuals from synthetic nodes.
type NodeKind int

const (
	// NodeKindIndividual is a node of the lineage tree.
	NodeKindIndividual NodeKind = iota
	// NodeKindPartner is an individual outside the lineage tree that co-parents
	// a group with a lineage node. It sits in the co-parent's generation.
	NodeKindPartner
	// NodeKindGroup stands in for a parent's terminal offspring.
	NodeKindGroup
)

// String returns the render type name of the kind.
func (k NodeKind) String() string {
	switch k {
	case NodeKindGroup:
		return "group"
	case NodeKindPartner:
		return "partner"
	default:
		return "individual"
	}
}

// Node is a vertex with an assigned generation row.
// Row is the generation: 0 for the root, negative above, positive below.
type Node struct {
	ID   string
	Row  int
	Meta Metadata
	Kind NodeKind
}

// IsGroup reports whether the node is an offspring group.
func (n Node) IsGroup() bool { return n.Kind == NodeKindGroup }

// IsSynthetic reports whether the node is not a record of the input set.
func (n Node) IsSynthetic() bool { return n.Kind == NodeKindGroup }

// Role says which parent an edge's source is for its target.
type Role string

const (
	RoleDam  Role = "dam"
	RoleSire Role = "sire"
	// RoleParent is used when the records do not say which side the parent is.
	RoleParent Role = "parent"
)

// Edge is a directed parent-to-offspring connection.
type Edge struct {
	From string
	To   string
	Role Role
	Meta Metadata
}

// Key returns the dedup key "from-to".
func (e Edge) Key() string { return EdgeKey(e.From, e.To) }

// EdgeKey builds the "source-target" key used to deduplicate edges.
func EdgeKey(from, to string) string { return from + "-" + to }

// DAG is a generation-indexed graph of individuals, partners and offspring
// groups. Nodes within a generation keep insertion order, which the layout
// uses as the left-to-right slot order.
//
// Ancestry in malformed data can loop, so the graph is only acyclic when
// [DAG.Validate] says so. The zero value is not usable; call New.
// DAG is not safe for concurrent use without external synchronization.
type DAG struct {
	nodes    map[string]*Node
	order    []*Node
	edges    []Edge
	edgeKeys map[string]bool
	outgoing map[string][]string
	incoming map[string][]string
	rows     map[int][]*Node
	meta     Metadata
}

// New creates an empty DAG with optional graph-level metadata.
func New(meta Metadata) *DAG {
	if meta == nil {
		meta = Metadata{}
	}
	return &DAG{
		nodes:    make(map[string]*Node),
		edgeKeys: make(map[string]bool),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		rows:     make(map[int][]*Node),
		meta:     meta,
	}
}

// Meta returns the graph-level metadata map.
func (d *DAG) Meta() Metadata { return d.meta }

// AddNode adds a node and indexes it by its Row.
// Returns ErrInvalidNodeID for an empty ID and ErrDuplicateNodeID when the ID
// is already present.
func (d *DAG) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	node := &n
	d.nodes[node.ID] = node
	d.order = append(d.order, node)
	d.rows[node.Row] = append(d.rows[node.Row], node)
	return nil
}

// AddEdge adds a directed edge between two existing nodes. An edge whose
// "from-to" key is already present is dropped and AddEdge reports false, so
// a relation reached through two traversal paths yields one edge.
func (d *DAG) AddEdge(e Edge) (bool, error) {
	if _, ok := d.nodes[e.From]; !ok {
		return false, ErrUnknownSourceNode
	}
	if _, ok := d.nodes[e.To]; !ok {
		return false, ErrUnknownTargetNode
	}
	key := e.Key()
	if d.edgeKeys[key] {
		return false, nil
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	if e.Role == "" {
		e.Role = RoleParent
	}
	d.edgeKeys[key] = true
	d.edges = append(d.edges, e)
	d.outgoing[e.From] = append(d.outgoing[e.From], e.To)
	d.incoming[e.To] = append(d.incoming[e.To], e.From)
	return true, nil
}

// HasEdge reports whether the edge from→to exists.
func (d *DAG) HasEdge(from, to string) bool { return d.edgeKeys[EdgeKey(from, to)] }

// Nodes returns all nodes in insertion order. The pointers refer to the
// graph's own nodes.
func (d *DAG) Nodes() []*Node { return slices.Clone(d.order) }

// Edges returns a copy of all edges in insertion order.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

// NodeCount returns the number of nodes in the graph.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges in the graph.
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Children returns the IDs the node has edges to. Read-only view.
func (d *DAG) Children(id string) []string { return d.outgoing[id] }

// Parents returns the IDs with edges to the node, in insertion order.
// Read-only view.
func (d *DAG) Parents(id string) []string { return d.incoming[id] }

// Node returns the node with the given ID.
func (d *DAG) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// NodesInRow returns the nodes of one generation in insertion order.
func (d *DAG) NodesInRow(row int) []*Node { return d.rows[row] }

// RowCount returns the number of distinct generations.
func (d *DAG) RowCount() int { return len(d.rows) }

// RowIDs returns all generations in ascending order, oldest first.
func (d *DAG) RowIDs() []int {
	return slices.Sorted(maps.Keys(d.rows))
}

// Validate checks that every edge joins consecutive generations and that no
// individual is its own ancestor. The pedigree pipeline tolerates both
// problems, so the result is a diagnostic rather than a precondition.
func (d *DAG) Validate() error {
	for _, e := range d.edges {
		if d.nodes[e.To].Row != d.nodes[e.From].Row+1 {
			return ErrNonConsecutiveRows
		}
	}
	return d.detectCycles()
}

func (d *DAG) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(d.nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range d.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
				return
			}
		}
		color[id] = black
	}

	for _, n := range d.order {
		if color[n.ID] == white {
			dfs(n.ID)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}

// PosMap creates a position lookup map from a slice of node IDs.
func PosMap(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}

// NodeIDs extracts the ID from each node in a slice.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
