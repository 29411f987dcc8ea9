// Package observability provides hooks for metrics and diagnostics.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks at
// startup to receive events about lineage diagnostics, pipeline passes, cache
// operations and HTTP API requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Lineage and pipeline hooks carry no context: the engine runs one synchronous
// pass with no suspension points. Cache and HTTP hooks sit next to I/O and do.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    hooks := observability.NewPrometheusHooks(prometheus.DefaultRegisterer)
//	    observability.SetLineageHooks(hooks)
//	    observability.SetPipelineHooks(hooks)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Lineage().OnDanglingReference("A", "dam_id", "missing")
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Lineage Hooks
// =============================================================================

// LineageHooks receives data-integrity diagnostics absorbed by the lineage
// builder and generation resolver. None of these are errors.
type LineageHooks interface {
	// OnDanglingReference records a dam/sire id pointing at a missing record.
	OnDanglingReference(recordID, field, targetID string)

	// OnSelfReference records a record naming itself as a parent.
	OnSelfReference(recordID string)

	// OnCycle records an ancestry back-edge (ancestorID is also a descendant of childID).
	OnCycle(childID, ancestorID string)

	// OnGenerationConflict records a second path proposing a different generation.
	OnGenerationConflict(id string, assigned, proposed int)
}

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the pedigree pipeline passes.
type PipelineHooks interface {
	// OnBuild records a full lineage rebuild.
	OnBuild(rootID string, nodeCount int, duration time.Duration, err error)

	// OnLayout records a layout pass and how many positions were reused.
	OnLayout(fresh, retained int, duration time.Duration)

	// OnAssemble records a styling/assembly pass.
	OnAssemble(nodeCount, edgeCount int, duration time.Duration)

	// OnSelection records a selection state change. selectedID is "" for idle.
	OnSelection(selectedID string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records a completed response.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopLineageHooks is a no-op implementation of LineageHooks.
type NoopLineageHooks struct{}

func (NoopLineageHooks) OnDanglingReference(string, string, string) {}
func (NoopLineageHooks) OnSelfReference(string)                     {}
func (NoopLineageHooks) OnCycle(string, string)                     {}
func (NoopLineageHooks) OnGenerationConflict(string, int, int)      {}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnBuild(string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnLayout(int, int, time.Duration)          {}
func (NoopPipelineHooks) OnAssemble(int, int, time.Duration)        {}
func (NoopPipelineHooks) OnSelection(string)                        {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	lineageHooks  LineageHooks  = NoopLineageHooks{}
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetLineageHooks registers custom lineage hooks.
// This should be called once at application startup.
func SetLineageHooks(h LineageHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		lineageHooks = h
	}
}

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Lineage returns the registered lineage hooks.
func Lineage() LineageHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return lineageHooks
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	lineageHooks = NoopLineageHooks{}
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
