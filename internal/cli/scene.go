package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pedigree/pkg/graph"
	"github.com/matzehuels/pedigree/pkg/render"
)

// sceneOpts holds the command-line flags for the scene command.
type sceneOpts struct {
	viewOpts
	output string
}

// sceneCommand creates the scene command, which prints the assembled scene as
// JSON for a rendering client.
func (c *CLI) sceneCommand() *cobra.Command {
	var opts sceneOpts

	cmd := &cobra.Command{
		Use:   "scene <records>",
		Short: "Build the pedigree scene of an individual as JSON",
		Long: `Build the pedigree scene of an individual as JSON.

<records> is a .json or .toml record file, a directory of per-owner record
files, or "store:" to read from the configured record store.`,
		Example: `  pedigree scene animals.json --root A
  pedigree scene store: --root A --positions view.json -o scene.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runScene(cmd.Context(), args[0], &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func (c *CLI) runScene(ctx context.Context, source string, opts *sceneOpts) error {
	prog := newProgress(c.Logger)
	v, err := c.openView(ctx, source, &opts.viewOpts)
	if err != nil {
		return err
	}

	scene := v.engine.Scene()
	if scene.Status == render.StatusNotFound {
		c.Logger.Warn("root not found in records", "root", opts.root)
	}

	if opts.output == "" {
		if err := graph.WriteScene(os.Stdout, scene); err != nil {
			return err
		}
	} else {
		f, err := os.Create(opts.output)
		if err != nil {
			return err
		}
		if err := graph.WriteScene(f, scene); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		printSuccess("Scene written")
		printSceneStats(scene, v.engine.Stats().LastLayout.Fresh == 0)
		printFile(opts.output)
	}

	prog.done("Built scene", "nodes", len(scene.Nodes), "edges", len(scene.Edges))
	return v.close(ctx)
}
