// Package layout positions a generation graph in rows and keeps positions
// stable across recomputations.
//
// Each generation is one horizontal row centered on x = 0:
//
//	totalWidth = n*W + (n-1)*H
//	x(slot)    = -totalWidth/2 + slot*(W+H)
//	y(gen)     = gen * RowHeight
//
// Group nodes sit at the midpoint of their co-parents, or W/2+H to the right
// of a single positioned parent, and fall back to their slot otherwise.
//
// A [PositionCache] outlives any single pass. [Engine.Apply] only computes
// positions for ids the cache has never seen; everything else, including
// drag-pinned positions, is reused verbatim. Re-rendering after a selection
// change therefore cannot move anything.
package layout
