package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pedigree/pkg/record"
)

// Record file formats.
const (
	FormatJSON = "json"
	FormatTOML = "toml"
)

// ErrUnknownFormat is returned for record files that are neither JSON nor TOML.
var ErrUnknownFormat = errors.New("unknown record file format")

// Record is the record type the file formats carry.
type Record = record.Record[record.Attributes]

type jsonFile struct {
	Individuals []Record `json:"individuals"`
}

type tomlFile struct {
	Individuals []Record `toml:"individual"`
}

// FormatOf infers the record format from a file extension.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// ReadRecordsFile reads a JSON or TOML record file.
func ReadRecordsFile(path string) ([]Record, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadRecords(f, format)
}

// ReadRecords decodes records in the given format.
func ReadRecords(r io.Reader, format string) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatTOML:
		var f tomlFile
		if _, err := toml.Decode(string(data), &f); err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
		return f.Individuals, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func decodeJSON(data []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var recs []Record
		if err := json.Unmarshal(trimmed, &recs); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		return recs, nil
	}
	var f jsonFile
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return f.Individuals, nil
}

// WriteRecords encodes records in the given format.
func WriteRecords(w io.Writer, recs []Record, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(jsonFile{Individuals: recs}); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(tomlFile{Individuals: recs}); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteRecordsFile writes records to path in the format its extension names.
func WriteRecordsFile(path string, recs []Record) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteRecords(f, recs, format)
}
