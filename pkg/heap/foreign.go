package heap

import "github.com/nanov7/nanov7/pkg/value"

// foreignTable holds opaque host pointers boxed as TagForeign values.
// Unlike the cell arenas, entries here are never traced or reclaimed by
// the collector (spec.md §4.1 "foreign pointer" is explicitly outside
// GC's reach) — a host that creates a foreign value owns its lifetime
// for as long as it keeps the Value alive itself.
type foreignTable struct {
	ptrs []interface{}
}

// NewForeign boxes an arbitrary host pointer/value as a TagForeign Value
// (spec.md §6 `create_foreign`).
func (h *Heap) NewForeign(ptr interface{}) value.Value {
	ref := value.ObjectRef(len(h.foreign.ptrs))
	h.foreign.ptrs = append(h.foreign.ptrs, ptr)
	return value.FromRef(value.TagForeign, ref)
}

// Foreign unboxes a TagForeign Value. Callers must check
// value.TagOf(v) == value.TagForeign first.
func (h *Heap) Foreign(v value.Value) interface{} {
	ref := value.Ref(v)
	if int(ref) >= len(h.foreign.ptrs) {
		return nil
	}
	return h.foreign.ptrs[ref]
}
