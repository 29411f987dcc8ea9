package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/pedigree/pkg/render/nodelink"
)

// DOT converts the engine's current scene to Graphviz DOT.
func DOT[P any](e *Engine[P]) string {
	opts := e.Options()
	return nodelink.ToDOT(e.Scene(), nodelink.Options{
		Detailed:  opts.Detailed,
		NodeWidth: opts.NodeWidth,
	})
}

// renderFormat produces one artifact. sceneJSON is the already encoded scene.
func renderFormat[P any](ctx context.Context, e *Engine[P], sceneJSON []byte, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return sceneJSON, nil
	case FormatDOT:
		return []byte(DOT(e)), nil
	case FormatSVG:
		return nodelink.RenderSVG(ctx, DOT(e))
	case FormatPDF:
		return nodelink.RenderPDF(ctx, DOT(e))
	case FormatPNG:
		return nodelink.RenderPNG(ctx, DOT(e), e.Options().Scale)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
