package heap

import (
	"log/slog"

	"github.com/nanov7/nanov7/pkg/value"
)

// Config configures initial arena capacities and growth caps, following
// a functional-options idiom (see pkg/engine for the top-level
// engine.Option constructors wrapping this).
type Config struct {
	InitialCells   uint32
	MaxCells       uint32
	InitialStrings uint32
	MaxStrings     uint32
	Logger         *slog.Logger
}

// DefaultConfig mirrors spec.md §4.2's "generous defaults, doubling
// growth until an implementation-defined cap" language.
func DefaultConfig() Config {
	return Config{
		InitialCells:   256,
		MaxCells:       1 << 20,
		InitialStrings: 64,
		MaxStrings:     1 << 20,
	}
}

// Heap owns the three cell arenas, the string heap, the root
// registration stack, and the global object. It is engine-wide mutable
// state (spec.md §5 "Shared resources"): callers must not use a Heap
// concurrently from multiple goroutines.
type Heap struct {
	objects    *cellArena[ObjectCell]
	functions  *cellArena[FunctionCell]
	properties *cellArena[PropertyCell]
	strings    *stringHeap

	roots      RootStack
	global     ObjectRef
	extraRoots func() []value.Value
	gcCycles   int
	logger     *slog.Logger
	foreign    foreignTable
}

// SetExtraRootsFunc registers a callback the collector invokes at the
// start of every cycle to gather additional roots that are not
// host-pinned via Own — typically the interpreter's live evaluation
// stack and current scope chain (pkg/runtime), which must stay
// reachable across a GC triggered mid-evaluation even though the host
// never explicitly owns them.
func (h *Heap) SetExtraRootsFunc(fn func() []value.Value) {
	h.extraRoots = fn
}

// New creates a Heap with the given configuration. The global object is
// created with a null prototype; callers (pkg/runtime.New) populate it
// with builtins.
func New(cfg Config) *Heap {
	h := &Heap{
		objects:    newCellArena[ObjectCell](cfg.MaxCells),
		functions:  newCellArena[FunctionCell](cfg.MaxCells),
		properties: newCellArena[PropertyCell](cfg.MaxCells),
		strings:    newStringHeap(cfg.MaxStrings),
		logger:     cfg.Logger,
	}
	// Pre-grow every arena to its configured initial capacity.
	for h.objects.cap < cfg.InitialCells {
		h.objects.growChunk()
	}
	for h.functions.cap < cfg.InitialCells {
		h.functions.growChunk()
	}
	for h.properties.cap < cfg.InitialCells {
		h.properties.growChunk()
	}
	for h.strings.descs.cap < cfg.InitialStrings {
		h.strings.descs.growChunk()
	}
	h.global = h.NewObject(0, "global")
	return h
}

// Global returns the engine's root scope object (spec.md §4.5
// `get_global()`).
func (h *Heap) Global() ObjectRef { return h.global }

// Own pins a host-held v-word as a GC root (spec.md §4.2 `own`).
func (h *Heap) Own(v *value.Value) { h.roots.Own(v) }

// Disown removes the most recent matching root registration (spec.md
// §4.2 `disown`).
func (h *Heap) Disown(v *value.Value) bool { return h.roots.Disown(v) }

// Stat reports live-cell counts per arena, backing the engine's
// `heap_stat` operation (spec.md §6) and pkg/heap/profile.go's pprof
// export.
type Stat struct {
	LiveObjects    int
	LiveFunctions  int
	LiveProperties int
	StringBytes    int
	GCCycles       int
}

func (h *Heap) Stat() Stat {
	return Stat{
		LiveObjects:    h.objects.liveCount(),
		LiveFunctions:  h.functions.liveCount(),
		LiveProperties: h.properties.liveCount(),
		StringBytes:    len(h.strings.buf),
		GCCycles:       h.gcCycles,
	}
}
