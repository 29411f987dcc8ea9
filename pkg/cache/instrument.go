package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/pedigree/pkg/observability"
)

// instrumented reports cache traffic to observability.Cache().
type instrumented struct {
	Cache
}

// Instrument wraps c so every Get and Set is reported to the registered
// cache hooks. The key type is the key prefix up to the first colon.
func Instrument(c Cache) Cache {
	if c == nil {
		return nil
	}
	return &instrumented{Cache: c}
}

func (c *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := c.Cache.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, hit, err
}

func (c *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	return nil
}

// keyType extracts the entry kind from a key such as "api:positions:ab12".
func keyType(key string) string {
	for _, kind := range []string{KeyTypePositions, KeyTypeArtifact} {
		if strings.HasPrefix(key, kind+":") || strings.Contains(key, ":"+kind+":") {
			return kind
		}
	}
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "unknown"
}
