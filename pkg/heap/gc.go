package heap

import (
	"log/slog"

	"github.com/nanov7/nanov7/pkg/value"
)

// RootStack implements spec.md §4.2's own/disown root registration: a
// host-held v-word address can be pinned so GC treats it as reachable.
// A pinned string-heap reference is never rewritten: it addresses a
// descriptor, and compaction moves only the descriptor's offset. Owns
// compose as a stack, favoring explicit, reversible registration over
// implicit lifetime tracking.
type RootStack struct {
	roots []*value.Value
}

// Own pins v so the collector traces *v as a root on every cycle until
// Disown is called.
func (r *RootStack) Own(v *value.Value) {
	r.roots = append(r.roots, v)
}

// Disown removes the most recent registration matching v's address,
// reporting whether a match was found.
func (r *RootStack) Disown(v *value.Value) bool {
	for i := len(r.roots) - 1; i >= 0; i-- {
		if r.roots[i] == v {
			r.roots = append(r.roots[:i], r.roots[i+1:]...)
			return true
		}
	}
	return false
}

// maybeCollect triggers a GC cycle when arena a's free list is empty and
// its chunk capacity is exhausted — spec.md §4.2's triggering condition,
// resolved (DESIGN.md Open Questions) to fire on arena-chunk-exhaustion
// rather than a separately tracked byte-counted watermark.
func (h *Heap) maybeCollect(a fullChecker) {
	if a.full() {
		h.Collect()
	}
}

// fullChecker is satisfied by every *cellArena[T] instantiation; Go's
// generics can't express "any instantiation of cellArena" as a
// parameter type directly, so maybeCollect takes this narrow interface
// instead.
type fullChecker interface {
	full() bool
}

// Collect runs one mark/sweep/compact cycle over the three cell arenas
// and the string heap, using the registered root stack, the global
// object, and any extra roots the interpreter supplies (its evaluation
// stack and current scope chain — see pkg/runtime) via
// Heap.SetExtraRootsFunc.
func (h *Heap) Collect() {
	h.gcCycles++

	for _, r := range h.roots.roots {
		h.markValue(*r)
	}
	if h.global != 0 {
		h.markObject(h.global)
	}
	if h.extraRoots != nil {
		for _, v := range h.extraRoots() {
			h.markValue(v)
		}
	}

	freedObjects := h.sweepObjects()
	freedFunctions := h.sweepFunctions()
	freedProperties := h.sweepProperties()
	h.strings.compact()

	if h.logger != nil {
		h.logger.Debug("gc cycle",
			slog.Int("cycle", h.gcCycles),
			slog.Int("freed_objects", freedObjects),
			slog.Int("freed_functions", freedFunctions),
			slog.Int("freed_properties", freedProperties),
			slog.Int("live_objects", h.objects.liveCount()),
		)
	}
}

func (h *Heap) markValue(v value.Value) {
	switch value.TagOf(v) {
	case value.TagObject, value.TagRegexp:
		h.markObject(value.Ref(v))
	case value.TagFunction, value.TagCFunction:
		h.markFunction(value.Ref(v))
	case value.TagStringHeap:
		h.markString(value.Ref(v))
	}
}

func (h *Heap) markObject(ref ObjectRef) {
	if ref == 0 {
		return
	}
	cell := h.Object(ref)
	if cell.marked {
		return
	}
	cell.marked = true
	h.markObject(cell.Proto)
	h.markObject(cell.Parent)
	h.markPropertyChain(cell.Properties)
}

func (h *Heap) markPropertyChain(ref PropertyRef) {
	for cur := ref; cur != 0; {
		cell := h.property(cur)
		if cell.marked {
			return
		}
		cell.marked = true
		h.markValue(cell.Value)
		cur = cell.Next
	}
}

func (h *Heap) markFunction(ref FunctionRef) {
	cell := h.function(ref)
	if cell.marked {
		return
	}
	cell.marked = true
	h.markObject(cell.Self)
	h.markObject(cell.Scope)
}

func (h *Heap) markString(ref StringRef) {
	h.strings.descs.at(uint32(ref)).marked = true
}

func (h *Heap) sweepObjects() int {
	var freed int
	h.objects.live(func(ref uint32) {
		cell := h.objects.at(ref)
		if !cell.marked {
			h.objects.release(ref)
			freed++
			return
		}
		cell.marked = false
	})
	return freed
}

func (h *Heap) sweepFunctions() int {
	var freed int
	h.functions.live(func(ref uint32) {
		cell := h.functions.at(ref)
		if !cell.marked {
			h.functions.release(ref)
			freed++
			return
		}
		cell.marked = false
	})
	return freed
}

func (h *Heap) sweepProperties() int {
	var freed int
	h.properties.live(func(ref uint32) {
		cell := h.properties.at(ref)
		if !cell.marked {
			h.properties.release(ref)
			freed++
			return
		}
		cell.marked = false
	})
	return freed
}
