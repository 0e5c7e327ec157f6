// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries emit events through the registered hooks; the defaults do
// nothing. Consumers register their own implementations once at startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    // ... run application
//	}
//
// The loader in pkg/pipeline emits events around every manifest compile and
// around a whole graph load:
//
//	observability.Pipeline().OnCompileStart(ctx, root)
//	// ... compile ...
//	observability.Pipeline().OnCompileComplete(ctx, root, stats, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// CompileStats summarizes one compiled manifest.
type CompileStats struct {
	Package      string
	Targets      int
	Dependencies int
	Warnings     int
}

// GraphStats summarizes one graph load.
type GraphStats struct {
	Packages int
	Edges    int
}

// PipelineHooks receives events from the manifest loader.
type PipelineHooks interface {
	// Compile events, once per package directory.
	OnCompileStart(ctx context.Context, root string)
	OnCompileComplete(ctx context.Context, root string, stats CompileStats, duration time.Duration, err error)

	// Graph events, once per recursive load.
	OnGraphStart(ctx context.Context, root string)
	OnGraphComplete(ctx context.Context, root string, stats GraphStats, duration time.Duration, err error)
}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnCompileStart(context.Context, string) {}
func (NoopPipelineHooks) OnCompileComplete(context.Context, string, CompileStats, time.Duration, error) {
}
func (NoopPipelineHooks) OnGraphStart(context.Context, string)                                     {}
func (NoopPipelineHooks) OnGraphComplete(context.Context, string, GraphStats, time.Duration, error) {}

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks. Nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Reset restores all hooks to their no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
}
