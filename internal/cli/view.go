package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pedigree/pkg/graph"
	"github.com/matzehuels/pedigree/pkg/pipeline"
	"github.com/matzehuels/pedigree/pkg/record"
	"github.com/matzehuels/pedigree/pkg/selection"
)

// viewOpts holds the flags shared by commands that open one pedigree view.
type viewOpts struct {
	root      string // root individual id
	positions string // position snapshot file, read before and written after
	labels    string // display-name table (JSON or TOML)
	selectID  string // individual to select before output
	noCache   bool   // disable the position and artifact cache
}

func (o *viewOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.root, "root", "r", "", "root individual id (required)")
	cmd.Flags().StringVar(&o.positions, "positions", "", "position snapshot file to restore and update")
	cmd.Flags().StringVar(&o.labels, "labels", "", "display-name table (.json or .toml)")
	cmd.Flags().StringVar(&o.selectID, "select", "", "select an individual before output")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable caching")
	_ = cmd.MarkFlagRequired("root")
}

// view is an opened pedigree view.
type view struct {
	runner *pipeline.Runner[record.Attributes]
	engine *pipeline.Engine[record.Attributes]
	owner  string
	opts   *viewOpts
}

// openView fetches the records behind source and prepares an engine rooted
// at opts.root.
func (c *CLI) openView(ctx context.Context, source string, opts *viewOpts) (*view, error) {
	runner, err := c.newRunner(ctx, source, opts.noCache)
	if err != nil {
		return nil, err
	}

	spinner := newSpinner(ctx, "Loading records...")
	spinner.Start()
	engine, err := runner.Open(ctx, c.owner(), opts.root)
	if err != nil {
		spinner.Stop()
		_ = runner.Close()
		return nil, err
	}
	spinner.Stop()
	c.Logger.Debug("opened view", "owner", c.owner(), "root", opts.root, "records", len(engine.Records()))

	if opts.positions != "" {
		positions, err := graph.ReadPositionsFile(opts.positions)
		if err != nil {
			_ = runner.Close()
			return nil, err
		}
		if positions.Len() > 0 {
			engine.SetPositions(positions)
		}
	}
	if opts.labels != "" {
		labels, err := graph.ReadLabelsFile(opts.labels)
		if err != nil {
			_ = runner.Close()
			return nil, err
		}
		engine.SetLabels(labels)
	}
	if opts.selectID != "" {
		engine.Scene()
		engine.NodeClicked(opts.selectID, selection.TypeIndividual)
	}

	return &view{runner: runner, engine: engine, owner: c.owner(), opts: opts}, nil
}

// close persists positions to the cache and the snapshot file, then releases
// the runner.
func (v *view) close(ctx context.Context) error {
	defer func() { _ = v.runner.Close() }()
	if v.engine.Pedigree() == nil {
		return nil
	}
	if err := v.runner.Save(ctx, v.owner, v.engine); err != nil {
		return err
	}
	if v.opts.positions != "" {
		if err := graph.WritePositionsFile(v.opts.positions, v.engine.Positions()); err != nil {
			return fmt.Errorf("save positions: %w", err)
		}
	}
	return nil
}
