package cache

// ScopedKeyer wraps a Keyer with a prefix so several tenants (or the CLI and
// the server) can share one backend without colliding.
//
//	keyer := cache.NewScopedKeyer(nil, "api:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner uses DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// PositionsKey implements Keyer.
func (k *ScopedKeyer) PositionsKey(owner, rootID string) string {
	return k.prefix + k.inner.PositionsKey(owner, rootID)
}

// ArtifactKey implements Keyer.
func (k *ScopedKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(sceneHash, opts)
}
