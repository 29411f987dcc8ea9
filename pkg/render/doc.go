// Package render assembles the renderable pedigree scene.
//
// # Overview
//
// [Assemble] turns one structural pass (a lineage.Pedigree), the retained
// positions and the current selection into a [Scene]: styled nodes and
// deduplicated edges ready for a rendering surface.
//
//	scene := render.Assemble(render.Input[P]{
//	    Pedigree:  ped,
//	    Positions: cache,
//	    Selection: sel,
//	    Labels:    render.LabelMap{"A": "Atlas"},
//	})
//
// Assembly is cheap and has no side effects, so it reruns on every click while
// the lineage and layout stay untouched.
//
// # Styling
//
// The selected node's dam and sire are flagged and colored; the edges joining
// them to the selected node are emphasized (wider, animated, opaque). While
// something is selected every other edge is drawn at reduced opacity.
// Edges into a group node are dashed.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert an SVG (see the [nodelink] subpackage) with the
// external rsvg-convert tool.
//
// [nodelink]: github.com/matzehuels/pedigree/pkg/render/nodelink
package render
