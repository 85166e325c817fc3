// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks
// at startup to receive events about pipeline stages and cache operations.
//
// The package uses a simple hooks pattern: hook interfaces per event
// category, no-op default implementations, and a registration point for
// custom implementations. Hooks are registered by main, not by libraries,
// which keeps the core dependency-free from observability frameworks.
//
// Usage:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnParseStart(ctx, len(chunk))
//	// ... parse ...
//	observability.Pipeline().OnParseComplete(ctx, count, complete, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives events from the layout pipeline.
type PipelineHooks interface {
	// Parse events
	OnParseStart(ctx context.Context, chunkBytes int)
	OnParseComplete(ctx context.Context, elementCount int, complete bool, duration time.Duration)

	// Layout events
	OnLayoutStart(ctx context.Context, elementCount int)
	OnLayoutComplete(ctx context.Context, duration time.Duration, err error)

	// Convert events
	OnConvertStart(ctx context.Context, elementCount int)
	OnConvertComplete(ctx context.Context, renderableCount int, duration time.Duration)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnParseStart(context.Context, int)                          {}
func (NoopPipelineHooks) OnParseComplete(context.Context, int, bool, time.Duration)  {}
func (NoopPipelineHooks) OnLayoutStart(context.Context, int)                         {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, time.Duration, error)     {}
func (NoopPipelineHooks) OnConvertStart(context.Context, int)                        {}
func (NoopPipelineHooks) OnConvertComplete(context.Context, int, time.Duration)      {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
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

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
}
