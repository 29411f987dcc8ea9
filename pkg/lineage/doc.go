// Package lineage reconstructs the bounded ancestor/descendant subgraph of a
// root individual from a flat record list.
//
// # Pipeline
//
// Three steps run in order on every recomputation:
//
//  1. [Build] walks the records breadth-first from the root and returns a
//     [Tree] of [Node] values plus a [ParentLookup].
//  2. [ResolveGenerations] assigns every node an integer generation: root 0,
//     ancestors negative, descendants positive.
//  3. [Aggregate] collapses each parent's terminal offspring (offspring with no
//     offspring of their own) into a single [Group].
//
// # Malformed Data
//
// Records may reference parents that are missing from the list (dangling
// references) or form loops (A is B's dam and B is A's dam). Neither is an
// error: dangling ids are treated as "no parent" and loops are absorbed by the
// visited set, which links a revisited node but never expands it twice. Both
// are counted in [Diagnostics] and reported through the observability hooks.
//
// # Convergent Ancestry
//
// When two paths disagree on a node's generation (inbreeding, or a loop), the
// first assignment wins. [GenerationMap.Conflicts] counts the disagreements so
// the ambiguity is observable.
package lineage
