// Package engine implements the embedding surface (spec.md §6): the
// host-facing operations a program embedding this engine calls to
// create an engine instance, run source text against it, and construct,
// inspect and mutate the script-visible values that flow back and
// forth.
//
// Every other package in this module (pkg/value, pkg/heap, pkg/ast,
// pkg/parser, pkg/runtime) is an implementation detail from the host's
// point of view; Engine is the one type a host program is expected to
// hold a reference to: one small façade over focused internal packages,
// built with options-driven construction.
package engine

import (
	"log/slog"

	"github.com/nanov7/nanov7/pkg/cache"
	"github.com/nanov7/nanov7/pkg/errs"
	"github.com/nanov7/nanov7/pkg/functions"
	"github.com/nanov7/nanov7/pkg/heap"
	"github.com/nanov7/nanov7/pkg/runtime"
	"github.com/nanov7/nanov7/pkg/value"
)

// Engine owns a heap, its interpreter, an optional compiled-script
// cache, a named host-callback registry, and the host-visible
// parser-error buffer (spec.md §3 "Root set"/§4.3 "parser-error buffer
// lives on the engine").
//
// An Engine is not safe for concurrent use from multiple goroutines
// (spec.md §5 "a single engine instance must not be entered
// concurrently from multiple threads"); separate Engine instances are
// fully independent.
type Engine struct {
	heap     *heap.Heap
	interp   *runtime.Interpreter
	cache    *cache.Cache
	registry *functions.Registry
	logger   *slog.Logger

	parserErr *errs.Error
}

// Option configures engine construction using a functional-options idiom.
type Option func(*config)

type config struct {
	heapConfig   heap.Config
	maxCallDepth int
	logger       *slog.Logger
	cacheSize    int // 0 disables the compiled-script cache
}

// WithArenas overrides the initial/max cell capacities; the string heap
// is sized separately by WithStringHeap (spec.md §6 `create_opt({object_arena, function_arena, property_arena,
// ...})`; this engine shares one capacity pair across all three cell
// arenas rather than sizing them independently, since spec.md does not
// require independent caps and a single growth knob is sufficient).
func WithArenas(initialCells, maxCells uint32) Option {
	return func(c *config) {
		c.heapConfig.InitialCells = initialCells
		c.heapConfig.MaxCells = maxCells
	}
}

// WithStringHeap overrides the string heap's initial/max capacities.
func WithStringHeap(initial, max uint32) Option {
	return func(c *config) {
		c.heapConfig.InitialStrings = initial
		c.heapConfig.MaxStrings = max
	}
}

// WithStackBase sets the script-call recursion depth guard (spec.md §5
// "C-stack guard"; this engine counts nested script calls rather than
// probing an actual C-stack base address).
func WithStackBase(maxCallDepth int) Option {
	return func(c *config) { c.maxCallDepth = maxCallDepth }
}

// WithLogger overrides the engine's structured logger (spec.md §B
// ambient logging), propagated to both the heap and the interpreter.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithCache enables a compiled-script LRU of the given capacity for
// Execute, so repeatedly running identical source text skips
// re-parsing. Zero (the default) disables caching.
func WithCache(capacity int) Option {
	return func(c *config) { c.cacheSize = capacity }
}

func defaultConfig() config {
	return config{
		heapConfig:   heap.DefaultConfig(),
		maxCallDepth: 1000,
	}
}

// Create builds an engine with default arena sizes and no compiled-
// script cache (spec.md §6 `create()`).
func Create() *Engine {
	return CreateOpt()
}

// CreateOpt builds an engine with the given options applied over the
// defaults (spec.md §6 `create_opt`).
func CreateOpt(opts ...Option) *Engine {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	cfg.heapConfig.Logger = cfg.logger

	h := heap.New(cfg.heapConfig)
	interp := runtime.New(h, runtime.WithMaxCallDepth(cfg.maxCallDepth), runtime.WithLogger(cfg.logger))

	e := &Engine{heap: h, interp: interp, registry: functions.NewRegistry(), logger: cfg.logger}
	if cfg.cacheSize > 0 {
		e.cache = cache.New(cfg.cacheSize)
	}
	return e
}

// Destroy releases the engine's resources (spec.md §6 `destroy`). Go's
// garbage collector reclaims the underlying memory regardless, so this
// severs the Engine's references up front rather than performing any
// manual deallocation — it exists for API parity with the embedding
// contract and so a host can deterministically stop using an engine
// before its goroutine/request scope ends.
func (e *Engine) Destroy() {
	e.heap = nil
	e.interp = nil
	e.cache = nil
	e.registry = nil
}

// GetGlobal returns the engine's root scope object (spec.md §6
// `get_global`); properties added to it become visible to every script
// subsequently executed against this engine.
func (e *Engine) GetGlobal() value.Value {
	return value.FromRef(value.TagObject, e.heap.Global())
}

// Own pins a host-held v-word as a GC root (spec.md §4.2 `own`).
func (e *Engine) Own(v *value.Value) { e.heap.Own(v) }

// Disown removes the most recent matching root registration (spec.md
// §4.2 `disown`).
func (e *Engine) Disown(v *value.Value) bool { return e.heap.Disown(v) }

// Collect forces a GC cycle (spec.md §4.2 "or on explicit request").
func (e *Engine) Collect() { e.heap.Collect() }

// Interrupt raises the cooperative interrupt flag checked at the next
// statement boundary (spec.md §4.4 "Interrupt"), letting a host abort a
// runaway script from another goroutine.
func (e *Engine) Interrupt() { e.interp.Interrupt() }

// GetParserError returns the last syntax error recorded by Execute/
// Compile/ParseJSON (spec.md §4.3 "engine-readable error buffer", §6
// `get_parser_error`), or nil if the most recent parse succeeded.
func (e *Engine) GetParserError() *errs.Error { return e.parserErr }
