package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/pedigree/pkg/render"
)

// DefaultEngine is the Graphviz layout engine. neato honours pinned node
// positions, so the drawing matches the retained layout.
const DefaultEngine = "neato"

// pointsPerInch converts scene units to Graphviz points.
const pointsPerInch = 72.0

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the generation and id to node labels.
	Detailed bool
	// NodeWidth is the scene node width used to size boxes. Zero means 180.
	NodeWidth float64
}

// ToDOT converts a scene to Graphviz DOT. Every node carries a pinned pos so
// neato reproduces the scene layout; y is flipped because Graphviz grows up.
func ToDOT[P any](s *render.Scene[P], opts Options) string {
	width := opts.NodeWidth
	if width <= 0 {
		width = 180
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, width=%.2f, fixedsize=false];\n", width/pointsPerInch)
	buf.WriteString("\n")

	for _, n := range s.Nodes {
		attrs := nodeAttrs(n, fmtLabel(n, opts.Detailed))
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range s.Edges {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(edgeAttrs(e), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel[P any](n render.Node[P], detailed bool) string {
	if !detailed {
		return n.Label
	}
	return fmt.Sprintf("%s\n%s\ngeneration: %d", n.Label, n.ID, n.Generation)
}

func nodeAttrs[P any](n render.Node[P], label string) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("pos=\"%.2f,%.2f!\"", n.Position.X/pointsPerInch, -n.Position.Y/pointsPerInch),
		fmt.Sprintf("color=%q", n.Style.Color),
	}
	switch {
	case n.Type == render.TypeGroup:
		attrs = append(attrs, "shape=ellipse", "style=\"filled,dashed\"", "fillcolor=lightgrey")
	case n.Style.Highlighted:
		attrs = append(attrs, "penwidth=3")
	}
	if n.Partner {
		attrs = append(attrs, "style=\"rounded,filled,dotted\"")
	}
	return attrs
}

func edgeAttrs(e render.Edge) []string {
	attrs := []string{
		fmt.Sprintf("color=\"%s%s\"", e.Style.Color, alphaHex(e.Style.Opacity)),
		fmt.Sprintf("penwidth=%.1f", e.Style.Width),
	}
	if e.Style.Dashed {
		attrs = append(attrs, "style=dashed")
	}
	return attrs
}

// alphaHex encodes an opacity as the two-digit alpha suffix of an RGB color.
func alphaHex(opacity float64) string {
	if opacity >= 1 {
		return ""
	}
	if opacity < 0 {
		opacity = 0
	}
	return fmt.Sprintf("%02x", int(opacity*255+0.5))
}

// RenderSVG renders DOT source to SVG with the neato engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	gv.SetLayout(graphviz.NEATO)

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders DOT source as PDF via SVG conversion.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders DOT source as PNG via SVG conversion.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
