// Package pipeline drives the pedigree passes for one interactive view.
//
// The pipeline runs lineage → generations → offspring groups → layout →
// assembly as one synchronous pass. It is shared by the CLI and the HTTP API
// so both entry points recompute, cache and render the same way.
//
// # Architecture
//
// Two types split the work:
//
//  1. Engine: holds the records, the root, the position cache and the
//     selection of one view. It rebuilds lazily when the records, the root or
//     the labels change, and only re-assembles on clicks and drags.
//  2. Runner: fetches records from a record.Store, restores and persists
//     position snapshots through a cache.Cache and renders cached artifacts.
//
// # Usage
//
//	runner := pipeline.NewRunner[record.Attributes](store, c, nil, logger)
//	engine, err := runner.Open(ctx, "alice", "A")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	scene := engine.Scene()
//	engine.NodeClicked("B", selection.TypeIndividual)
//	result, err := runner.Render(ctx, engine, []string{"svg"})
package pipeline

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pedigree/pkg/cache"
	pederrors "github.com/matzehuels/pedigree/pkg/errors"
	"github.com/matzehuels/pedigree/pkg/layout"
	"github.com/matzehuels/pedigree/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultScale is the PNG rasterization scale.
	DefaultScale = 2.0
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures an Engine and the artifacts a Runner renders.
// This struct supports JSON and TOML decoding for the API and config file.
type Options struct {
	// Layout options
	NodeWidth         float64 `json:"node_width,omitempty" toml:"node_width"`
	HorizontalSpacing float64 `json:"horizontal_spacing,omitempty" toml:"horizontal_spacing"`
	RowHeight         float64 `json:"row_height,omitempty" toml:"row_height"`

	// Assembly options
	PlaceholderLabel string `json:"placeholder_label,omitempty" toml:"placeholder_label"`

	// Render options
	Detailed bool    `json:"detailed,omitempty" toml:"detailed"`
	Scale    float64 `json:"scale,omitempty" toml:"scale"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" toml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.NodeWidth < 0 || o.HorizontalSpacing < 0 || o.RowHeight < 0 {
		return pederrors.New(pederrors.ErrCodeInvalidConfig, "layout dimensions must not be negative")
	}
	if o.Scale < 0 {
		return pederrors.New(pederrors.ErrCodeInvalidConfig, "scale must not be negative")
	}

	lo := o.LayoutOptions().WithDefaults()
	o.NodeWidth = lo.NodeWidth
	o.HorizontalSpacing = lo.HorizontalSpacing
	o.RowHeight = lo.RowHeight

	if o.PlaceholderLabel == "" {
		o.PlaceholderLabel = render.DefaultPlaceholder
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// LayoutOptions returns the layout engine options.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		NodeWidth:         o.NodeWidth,
		HorizontalSpacing: o.HorizontalSpacing,
		RowHeight:         o.RowHeight,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering. Only the
// options a format reads are set: JSON is the scene itself, the Graphviz
// formats read the label detail and node width, and PNG also the scale.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	if format == FormatJSON {
		return k
	}
	k.Detailed = o.Detailed
	k.NodeWidth = o.NodeWidth
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}

// ValidateFormats checks that all formats are supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := pederrors.ValidateFormat(f, ValidFormats); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of a Runner.Render call.
type Result struct {
	// SceneHash is the content hash of the scene JSON.
	SceneHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// CacheHit is true when every artifact came from the cache.
	CacheHit bool
}

// Stats counts the passes an Engine has run.
type Stats struct {
	Builds    int
	Layouts   int
	Assembles int

	// LastLayout is the outcome of the most recent layout pass.
	LastLayout layout.Stats
}
