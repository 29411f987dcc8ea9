package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pedigree/pkg/layout"
	"github.com/matzehuels/pedigree/pkg/render"
)

// MarshalScene encodes a scene as indented JSON.
func MarshalScene[P any](s *render.Scene[P]) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteScene(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteScene writes a scene as indented JSON.
func WriteScene[P any](w io.Writer, s *render.Scene[P]) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadScene decodes a scene written by WriteScene.
func ReadScene[P any](r io.Reader) (*render.Scene[P], error) {
	var s render.Scene[P]
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &s, nil
}

// ReadPositionsFile loads a position snapshot. A missing file yields an empty
// cache, so the first run of a view needs no special casing.
func ReadPositionsFile(path string) (*layout.PositionCache, error) {
	cache := layout.NewPositionCache()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cache, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cache); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return cache, nil
}

// WritePositionsFile saves a position snapshot.
func WritePositionsFile(path string, cache *layout.PositionCache) error {
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadLabelsFile loads a display-name table, a flat JSON object or TOML
// table mapping ids to labels.
func ReadLabelsFile(path string) (render.LabelMap, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	labels := render.LabelMap{}
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &labels)
	default:
		err = json.Unmarshal(data, &labels)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return labels, nil
}
