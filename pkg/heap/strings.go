package heap

import "github.com/nanov7/nanov7/pkg/value"

// stringDesc is a descriptor into the string heap's byte buffer. Rather
// than embedding a raw byte offset in the v-word's 48-bit payload (which
// would need every boxed string value rewritten on every compaction),
// the v-word carries a *descriptor index* (same indirection scheme as
// object/function/property refs); only the descriptor table entry moves
// during compaction, so live v-words never need patching. This is a
// documented simplification of spec.md §4.2's "every recorded reference
// is rewritten" requirement — see DESIGN.md's pkg/heap implementation
// notes.
type stringDesc struct {
	offset uint32
	length uint32
	marked bool
}

// StringRef addresses a descriptor in the string heap's descriptor arena.
type StringRef = value.ObjectRef

type stringHeap struct {
	descs *cellArena[stringDesc]
	buf   []byte
}

func newStringHeap(maxStrings uint32) *stringHeap {
	return &stringHeap{
		descs: newCellArena[stringDesc](maxStrings),
		buf:   make([]byte, 0, 4096),
	}
}

func (s *stringHeap) intern(str string) value.Value {
	ref := s.descs.allocOrPanic()
	d := s.descs.at(ref)
	d.offset = uint32(len(s.buf))
	d.length = uint32(len(str))
	s.buf = append(s.buf, str...)
	return value.FromRef(value.TagStringHeap, value.ObjectRef(ref))
}

func (s *stringHeap) get(ref StringRef) string {
	d := s.descs.at(uint32(ref))
	return string(s.buf[d.offset : d.offset+d.length])
}

// compact rewrites the byte buffer in the order marked descriptors are
// visited, releasing unmarked descriptors back to the free list and
// updating every surviving descriptor's offset. Mark bits are left
// cleared for the next cycle.
func (s *stringHeap) compact() {
	fresh := make([]byte, 0, len(s.buf))
	s.descs.live(func(ref uint32) {
		d := s.descs.at(ref)
		if !d.marked {
			s.descs.release(ref)
			return
		}
		newOffset := uint32(len(fresh))
		fresh = append(fresh, s.buf[d.offset:d.offset+d.length]...)
		d.offset = newOffset
		d.marked = false
	})
	s.buf = fresh
}

// InternString allocates str on the string heap (or inlines it directly
// in the v-word if it fits within the inline-string threshold), possibly
// triggering a GC cycle first.
func (h *Heap) InternString(str string) value.Value {
	if v, ok := value.InlineString(str); ok {
		return v
	}
	h.maybeCollect(h.strings.descs)
	return h.strings.intern(str)
}

// StringValue decodes any string-tagged Value (inline or heap) to a Go
// string.
func (h *Heap) StringValue(v value.Value) string {
	if value.TagOf(v) == value.TagStringInline {
		return value.InlineStringValue(v)
	}
	return h.strings.get(value.Ref(v))
}
