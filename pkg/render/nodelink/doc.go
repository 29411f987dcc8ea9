// Package nodelink renders a pedigree scene as a Graphviz node-link diagram.
//
// # Usage
//
//	dot := nodelink.ToDOT(scene, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [ToDOT] writes every node with a pinned position (pos="x,y!") taken from the
// scene, so the neato engine draws the same layout the scene describes rather
// than inventing its own. Selection styling carries over: highlighted parents
// get their dam/sire color, emphasized edges are wider, and everything else is
// faded while a node is selected. Group nodes are dashed ellipses.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
