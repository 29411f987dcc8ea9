package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pedigree/pkg/pipeline"
	"github.com/matzehuels/pedigree/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	viewOpts
	output   string   // output file (single format) or base path (multiple)
	formats  []string // output formats: "svg", "dot", "json", "pdf", "png"
	detailed bool     // add generation and id to node labels
}

// renderCommand creates the render command for generating visualizations.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <records>",
		Short: "Render the pedigree of an individual to SVG, DOT, JSON, PDF or PNG",
		Example: `  pedigree render animals.json --root A
  pedigree render animals.toml --root A -f svg,dot -o out/atlas
  pedigree render store: --root A --select B -f png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, json, pdf, png (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show generation and id in node labels")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, source string, opts *renderOpts) error {
	prog := newProgress(c.Logger)
	if opts.detailed {
		c.Config.Layout.Detailed = true
	}

	v, err := c.openView(ctx, source, &opts.viewOpts)
	if err != nil {
		return err
	}

	result, err := v.runner.Render(ctx, v.engine, opts.formats)
	if err != nil {
		_ = v.runner.Close()
		return err
	}

	scene := v.engine.Scene()
	printSuccess("Rendered %s", opts.root)
	printSceneStats(scene, result.CacheHit)

	base := basePath(opts.output, opts.root)
	for _, format := range opts.formats {
		path := outputPath(opts.output, base, format, len(opts.formats))
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return err
		}
		printFile(path)
	}

	if scene.Status == render.StatusNotFound {
		printWarning("Root %s not found in records", opts.root)
	} else if opts.selectID == "" {
		printNextStep("Explore it", fmt.Sprintf("%s explore %s --root %s", appName, source, opts.root))
	}

	prog.done("Rendered "+strings.Join(opts.formats, ", "), "cached", result.CacheHit)
	return v.close(ctx)
}

// basePath derives the base output path. If output is empty it is
// "pedigree-<root>"; a known format extension on output is stripped.
func basePath(output, root string) string {
	if output == "" {
		return appName + "-" + root
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath picks the file for one format. A single format with an explicit
// output path is written there verbatim.
func outputPath(output, base, format string, count int) string {
	if count == 1 && output != "" && filepath.Ext(output) != "" {
		return output
	}
	return base + "." + format
}
