// Package graph reads and writes the pedigree's file formats.
//
// # Record Files
//
// Individuals can be supplied as JSON, either a bare array or an object with
// an "individuals" array:
//
//	{"individuals": [
//	  {"id": "A", "name": "Atlas", "sex": "male", "dam_id": "B", "sire_id": "C",
//	   "attributes": {"morph": "pastel"}}
//	]}
//
// or as TOML with one [[individual]] table per record:
//
//	[[individual]]
//	id = "A"
//	dam_id = "B"
//	[individual.attributes]
//	morph = "pastel"
//
// [ReadRecordsFile] picks the decoder from the file extension. [FileStore]
// serves these files through the record.Store interface.
//
// # Scenes and Positions
//
// [WriteScene] / [MarshalScene] produce the scene JSON handed to rendering
// surfaces. Position snapshots round-trip through [ReadPositionsFile] and
// [WritePositionsFile] so a CLI user can keep a hand-tuned layout next to the
// data.
//
// # Concurrency
//
// All functions are safe for concurrent use on distinct files.
package graph
