// Package record defines the flat individual records the pedigree engine
// consumes and the store interface that supplies them.
//
// A record optionally points to a dam (mother) and a sire (father) by id.
// Records are immutable from the engine's point of view during one pass; the
// engine never writes back to a store.
//
// The payload type parameter carries domain attributes (morph ids, trait
// lists, ...) that the engine forwards untouched:
//
//	recs := []record.Record[record.Attributes]{
//	    {ID: "A", Name: "Ada", Sex: record.Female, DamID: "B", SireID: "C"},
//	}
package record

import (
	"context"
	"encoding/json"
	"strings"
)

// Sex is the biological sex of an individual.
type Sex string

const (
	Male    Sex = "male"
	Female  Sex = "female"
	Unknown Sex = "unknown"
)

// ParseSex maps free-form input onto a Sex. Unrecognized values are Unknown.
func ParseSex(s string) Sex {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m", "sire", "1.0":
		return Male
	case "female", "f", "dam", "0.1":
		return Female
	default:
		return Unknown
	}
}

// UnmarshalText implements encoding.TextUnmarshaler so JSON, TOML and BSON
// string values normalize through ParseSex.
func (s *Sex) UnmarshalText(text []byte) error {
	*s = ParseSex(string(text))
	return nil
}

// Attributes is the untyped payload used by the stores and the CLI.
type Attributes map[string]any

// Record is one individual. Empty DamID or SireID means the parent is unknown.
type Record[P any] struct {
	ID      string `json:"id" toml:"id" bson:"_id"`
	Name    string `json:"name,omitempty" toml:"name" bson:"name,omitempty"`
	Sex     Sex    `json:"sex,omitempty" toml:"sex" bson:"sex,omitempty"`
	DamID   string `json:"dam_id,omitempty" toml:"dam_id" bson:"dam_id,omitempty"`
	SireID  string `json:"sire_id,omitempty" toml:"sire_id" bson:"sire_id,omitempty"`
	Payload P      `json:"attributes,omitempty" toml:"attributes" bson:"attributes,omitempty"`
}

// HasParent reports whether id is this record's dam or sire.
func (r Record[P]) HasParent(id string) bool {
	return id != "" && (r.DamID == id || r.SireID == id)
}

// OtherParent returns the parent id opposite to parentID, or "" when
// parentID is not a parent of r.
func (r Record[P]) OtherParent(parentID string) string {
	switch {
	case parentID == "":
		return ""
	case r.DamID == parentID:
		return r.SireID
	case r.SireID == parentID:
		return r.DamID
	default:
		return ""
	}
}

// Store supplies the flat record list for one owner/collection.
// List must honour ctx cancellation; the order of the returned slice is
// insignificant to the engine but is preserved as discovery order.
type Store[P any] interface {
	List(ctx context.Context, owner string) ([]Record[P], error)
	Close() error
}

// EncodePayload serializes a payload for stores that keep it as a JSON blob.
func EncodePayload[P any](p P) ([]byte, error) {
	return json.Marshal(p)
}

// DecodePayload is the inverse of EncodePayload. Empty input yields the zero P.
func DecodePayload[P any](data []byte) (P, error) {
	var p P
	if len(data) == 0 {
		return p, nil
	}
	err := json.Unmarshal(data, &p)
	return p, err
}
