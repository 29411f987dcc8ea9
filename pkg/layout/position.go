package layout

import (
	"encoding/json"
	"maps"
	"slices"
)

// Position is one retained coordinate. Pinned marks positions set by a drag.
type Position struct {
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Pinned bool    `json:"pinned,omitempty" bson:"pinned,omitempty"`
}

// PositionCache maps node ids (group ids included) to retained positions.
// It is an explicit value owned by the caller: snapshot it to persist, restore
// it to resume. It is not safe for concurrent use.
type PositionCache struct {
	entries map[string]Position
}

// NewPositionCache creates an empty cache.
func NewPositionCache() *PositionCache {
	return &PositionCache{entries: make(map[string]Position)}
}

// Set stores a computed position, keeping the pin flag of an existing entry.
func (c *PositionCache) Set(id string, x, y float64) {
	c.init()
	p := c.entries[id]
	c.entries[id] = Position{X: x, Y: y, Pinned: p.Pinned}
}

// Pin stores a user-set position.
func (c *PositionCache) Pin(id string, x, y float64) {
	c.init()
	c.entries[id] = Position{X: x, Y: y, Pinned: true}
}

// Get returns the position of id.
func (c *PositionCache) Get(id string) (Position, bool) {
	p, ok := c.entries[id]
	return p, ok
}

// Has reports whether id has a retained position.
func (c *PositionCache) Has(id string) bool {
	_, ok := c.entries[id]
	return ok
}

// Delete forgets id so the next layout pass computes it fresh.
func (c *PositionCache) Delete(id string) { delete(c.entries, id) }

// Len returns the number of retained positions.
func (c *PositionCache) Len() int { return len(c.entries) }

// IDs returns the cached ids in sorted order.
func (c *PositionCache) IDs() []string {
	return slices.Sorted(maps.Keys(c.entries))
}

// Snapshot returns a copy of every entry.
func (c *PositionCache) Snapshot() map[string]Position {
	return maps.Clone(c.entries)
}

// Restore replaces the cache contents with a copy of snap.
func (c *PositionCache) Restore(snap map[string]Position) {
	c.entries = make(map[string]Position, len(snap))
	maps.Copy(c.entries, snap)
}

// Clone returns an independent copy of the cache.
func (c *PositionCache) Clone() *PositionCache {
	out := NewPositionCache()
	out.Restore(c.entries)
	return out
}

// MarshalJSON encodes the cache as an object keyed by node id.
func (c *PositionCache) MarshalJSON() ([]byte, error) {
	if c.entries == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c.entries)
}

// UnmarshalJSON replaces the cache contents.
func (c *PositionCache) UnmarshalJSON(data []byte) error {
	var m map[string]Position
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	c.Restore(m)
	return nil
}

func (c *PositionCache) init() {
	if c.entries == nil {
		c.entries = make(map[string]Position)
	}
}
