package pipeline

import (
	"testing"

	"github.com/matzehuels/pedigree/pkg/cache"
	pederrors "github.com/matzehuels/pedigree/pkg/errors"
	"github.com/matzehuels/pedigree/pkg/layout"
	"github.com/matzehuels/pedigree/pkg/render"
)

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		formats []string
		wantErr bool
	}{
		{[]string{"svg"}, false},
		{[]string{"json", "dot", "png", "pdf"}, false},
		{nil, false},
		{[]string{"svg", "invalid"}, true},
		{[]string{"SVG"}, true}, // case-sensitive
		{[]string{""}, true},
	}

	for _, tt := range tests {
		err := ValidateFormats(tt.formats)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormats(%q) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
		}
		if err != nil && !pederrors.Is(err, pederrors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormats(%q) code = %s", tt.formats, pederrors.GetCode(err))
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("zero options should pass: %v", err)
	}

	if opts.NodeWidth != layout.DefaultNodeWidth {
		t.Errorf("NodeWidth = %v, want %v", opts.NodeWidth, layout.DefaultNodeWidth)
	}
	if opts.HorizontalSpacing != layout.DefaultHorizontalSpacing {
		t.Errorf("HorizontalSpacing = %v", opts.HorizontalSpacing)
	}
	if opts.RowHeight != layout.DefaultRowHeight {
		t.Errorf("RowHeight = %v", opts.RowHeight)
	}
	if opts.PlaceholderLabel != render.DefaultPlaceholder {
		t.Errorf("PlaceholderLabel = %q", opts.PlaceholderLabel)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale = %v", opts.Scale)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestOptionsKeepsExplicitValues(t *testing.T) {
	opts := Options{NodeWidth: 100, RowHeight: 50, PlaceholderLabel: "?"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.NodeWidth != 100 || opts.RowHeight != 50 || opts.PlaceholderLabel != "?" {
		t.Errorf("explicit values overwritten: %+v", opts)
	}
}

func TestOptionsInvalid(t *testing.T) {
	tests := []Options{
		{NodeWidth: -1},
		{HorizontalSpacing: -5},
		{RowHeight: -0.5},
		{Scale: -2},
	}
	for _, opts := range tests {
		err := opts.ValidateAndSetDefaults()
		if !pederrors.Is(err, pederrors.ErrCodeInvalidConfig) {
			t.Errorf("%+v: err = %v, want INVALID_CONFIG", opts, err)
		}
	}
}

func TestOptionsIdempotent(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	first := opts
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if first.NodeWidth != opts.NodeWidth || first.Logger != opts.Logger {
		t.Error("second call changed options")
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Detailed: true, NodeWidth: 240, Scale: 3}
	k := opts.ArtifactKeyOpts(FormatSVG)
	if k.Format != FormatSVG || !k.Detailed || k.NodeWidth != 240 || k.Scale != 0 {
		t.Errorf("ArtifactKeyOpts(svg) = %+v", k)
	}
	if k := opts.ArtifactKeyOpts(FormatPNG); k.NodeWidth != 240 || k.Scale != 3 {
		t.Errorf("ArtifactKeyOpts(png) = %+v", k)
	}
	if k := opts.ArtifactKeyOpts(FormatJSON); k != (cache.ArtifactKeyOpts{Format: FormatJSON}) {
		t.Errorf("ArtifactKeyOpts(json) = %+v", k)
	}
}

func TestArtifactKeyFollowsRenderOptions(t *testing.T) {
	keyer := cache.NewDefaultKeyer()
	key := func(o Options, format string) string {
		if err := o.ValidateAndSetDefaults(); err != nil {
			t.Fatal(err)
		}
		return keyer.ArtifactKey("scene", o.ArtifactKeyOpts(format))
	}

	base := key(Options{}, FormatDOT)
	if base == key(Options{NodeWidth: 400}, FormatDOT) {
		t.Error("node width must change the dot artifact key")
	}
	if base == key(Options{Detailed: true}, FormatDOT) {
		t.Error("detail must change the dot artifact key")
	}
	if key(Options{}, FormatPNG) == key(Options{Scale: 4}, FormatPNG) {
		t.Error("scale must change the png artifact key")
	}
	if base != key(Options{Scale: 4}, FormatDOT) {
		t.Error("scale must not change the dot artifact key")
	}
	if key(Options{}, FormatJSON) != key(Options{NodeWidth: 400}, FormatJSON) {
		t.Error("json artifacts are keyed by the scene alone")
	}
}
