// Package cache stores pedigree position snapshots and rendered artifacts.
//
// Two kinds of entries go through a [Cache]:
//
//   - position snapshots, keyed by owner and root, so a re-opened pedigree
//     comes back exactly as the user left it (drags included)
//   - rendered artifacts (json, dot, svg, ...), keyed by scene hash and format
//
// Backends: [FileCache] for the CLI, [RedisCache] for the server and
// [NullCache] when caching is disabled. [Instrument] wraps any backend to
// report hits, misses and writes through observability hooks.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores a value. ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// TTLs for each entry kind.
const (
	// TTLPositions keeps position snapshots until overwritten.
	TTLPositions time.Duration = 0
	// TTLArtifact bounds rendered output; it is cheap to rebuild.
	TTLArtifact = 24 * time.Hour
)

// Key type prefixes.
const (
	KeyTypePositions = "positions"
	KeyTypeArtifact  = "artifact"
)

// ArtifactKeyOpts are the render options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format    string  `json:"format"`
	Detailed  bool    `json:"detailed,omitempty"`
	NodeWidth float64 `json:"node_width,omitempty"`
	Scale     float64 `json:"scale,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// PositionsKey is the key of the position snapshot for one pedigree view.
	PositionsKey(owner, rootID string) string
	// ArtifactKey is the key of one rendered format of a scene.
	ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components so arbitrary ids are safe in any backend.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// PositionsKey implements Keyer.
func (DefaultKeyer) PositionsKey(owner, rootID string) string {
	return hashKey(KeyTypePositions, owner, rootID)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return hashKey(KeyTypeArtifact, sceneHash, opts)
}
