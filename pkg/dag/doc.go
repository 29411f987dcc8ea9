// Package dag provides the generation-indexed graph that the pedigree layout
// and assembler work on.
//
// # Overview
//
// A pedigree is drawn in horizontal rows, one per generation: the root sits
// in row 0, ancestors in negative rows above it and descendants in positive
// rows below. Each row keeps its nodes in insertion order, which is the
// lineage discovery order and becomes the left-to-right slot order.
//
// # Node Kinds
//
//   - [NodeKindIndividual]: an individual reached from the root
//   - [NodeKindPartner]: a co-parent of an offspring group that is not itself
//     part of the lineage; drawn in its partner's generation
//   - [NodeKindGroup]: a synthetic node standing in for terminal offspring
//
// # Edges
//
// Edges point from parent to offspring and carry the parent's [Role].
// [DAG.AddEdge] deduplicates on the "source-target" key from [EdgeKey], so
// an individual reached through two paths still has one edge per parent.
//
// # Validation
//
// Real pedigree data can contain loops and convergent lines that disagree on
// generation. [DAG.Validate] reports those as [ErrGraphHasCycle] and
// [ErrNonConsecutiveRows]; callers log them and carry on.
//
// # Crossings
//
// [CountCrossings] and [CountLayerCrossings] count edge crossings between
// consecutive generations with a Fenwick tree in O(E log V).
//
// # Concurrency
//
// DAG instances are not safe for concurrent use.
package dag
