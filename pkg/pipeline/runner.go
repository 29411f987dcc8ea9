package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pedigree/pkg/cache"
	pederrors "github.com/matzehuels/pedigree/pkg/errors"
	"github.com/matzehuels/pedigree/pkg/graph"
	"github.com/matzehuels/pedigree/pkg/layout"
	"github.com/matzehuels/pedigree/pkg/record"
)

// Runner connects Engines to a record store and a cache.
// Both CLI and API use it to avoid duplicating fetch and caching logic.
//
// The Runner is stateless except for its collaborators - it doesn't hold
// engines. Multiple goroutines can safely use the same Runner with different
// engines.
type Runner[P any] struct {
	Store   record.Store[P]
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger
	Options Options
}

// NewRunner creates a runner for store.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner[P any](store record.Store[P], c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner[P] {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner[P]{
		Store:  store,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Open fetches the owner's records and returns an Engine rooted at rootID
// with its position snapshot restored. A root missing from the records is
// not an error: the engine's scene reports StatusNotFound.
func (r *Runner[P]) Open(ctx context.Context, owner, rootID string) (*Engine[P], error) {
	if err := pederrors.ValidateIndividualID(rootID); err != nil {
		return nil, err
	}
	recs, err := r.Fetch(ctx, owner)
	if err != nil {
		return nil, err
	}

	opts := r.Options
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	e, err := NewEngine[P](opts)
	if err != nil {
		return nil, err
	}
	e.SetRecords(recs)
	e.SetRoot(rootID)
	e.SetPositions(r.LoadPositions(ctx, owner, rootID))
	return e, nil
}

// Fetch lists the owner's records, retrying transient store failures.
// A fetch whose ctx was cancelled returns the context error and no records.
func (r *Runner[P]) Fetch(ctx context.Context, owner string) ([]record.Record[P], error) {
	if err := pederrors.ValidateOwner(owner); err != nil {
		return nil, err
	}
	if r.Store == nil {
		return nil, pederrors.New(pederrors.ErrCodeStoreUnavailable, "no record store configured")
	}

	var recs []record.Record[P]
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		recs, err = r.Store.List(ctx, owner)
		if err != nil {
			r.Logger.Debug("record fetch failed", "owner", owner, "error", err)
		}
		return err
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		if pederrors.GetCode(err) != "" {
			return nil, err
		}
		return nil, pederrors.Wrap(pederrors.ErrCodeStoreUnavailable, err, "list records for %s", owner)
	}

	r.Logger.Debug("fetched records", "owner", owner, "count", len(recs))
	return recs, nil
}

// LoadPositions restores the position snapshot of a view. Missing or
// unreadable snapshots yield an empty cache.
func (r *Runner[P]) LoadPositions(ctx context.Context, owner, rootID string) *layout.PositionCache {
	positions := layout.NewPositionCache()
	key := r.Keyer.PositionsKey(owner, rootID)

	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("position cache unavailable", "error", err)
		return positions
	}
	if !hit {
		return positions
	}
	if err := json.Unmarshal(data, positions); err != nil {
		r.Logger.Debug("discarding corrupt position snapshot", "owner", owner, "root", rootID, "error", err)
		return layout.NewPositionCache()
	}
	r.Logger.Debug("restored positions", "owner", owner, "root", rootID, "count", positions.Len())
	return positions
}

// Save persists the engine's position cache under its current root.
func (r *Runner[P]) Save(ctx context.Context, owner string, e *Engine[P]) error {
	data, err := json.Marshal(e.Positions())
	if err != nil {
		return fmt.Errorf("encode positions: %w", err)
	}
	key := r.Keyer.PositionsKey(owner, e.Root())
	if err := r.Cache.Set(ctx, key, data, cache.TTLPositions); err != nil {
		return pederrors.Wrap(pederrors.ErrCodeStoreUnavailable, err, "save positions")
	}
	return nil
}

// Render produces the requested artifacts for the engine's current scene.
// Artifacts are cached under the scene's content hash, so a selection or drag
// change yields a new key while an unchanged scene is served from the cache.
func (r *Runner[P]) Render(ctx context.Context, e *Engine[P], formats []string) (*Result, error) {
	if len(formats) == 0 {
		formats = []string{FormatJSON}
	}
	if err := ValidateFormats(formats); err != nil {
		return nil, err
	}

	sceneJSON, err := graph.MarshalScene(e.Scene())
	if err != nil {
		return nil, pederrors.Wrap(pederrors.ErrCodeInternal, err, "encode scene")
	}

	opts := e.Options()
	result := &Result{
		SceneHash: cache.Hash(sceneJSON),
		Artifacts: make(map[string][]byte, len(formats)),
		CacheHit:  true,
	}

	for _, format := range formats {
		key := r.Keyer.ArtifactKey(result.SceneHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			result.Artifacts[format] = data
			continue
		}
		result.CacheHit = false

		data, err := renderFormat(ctx, e, sceneJSON, format)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		result.Artifacts[format] = data
		_ = r.Cache.Set(ctx, key, data, cache.TTLArtifact)
	}

	r.Logger.Debug("rendered outputs", "formats", formats, "cache_hit", result.CacheHit)
	return result, nil
}

// Close releases resources held by the runner.
func (r *Runner[P]) Close() error {
	var firstErr error
	if r.Store != nil {
		firstErr = r.Store.Close()
	}
	if r.Cache != nil {
		if err := r.Cache.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
