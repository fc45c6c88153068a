package heap

import "github.com/nanov7/nanov7/pkg/value"

// ObjectRef addresses a cell in the object arena. 0 means "no object" /
// null, matching ast.Ref's sentinel convention.
type ObjectRef = value.ObjectRef

// PropertyRef addresses a cell in the property arena; 0 terminates a
// property chain.
type PropertyRef uint32

// Property attribute bits, positioned per SPEC_FULL.md §D.3 (carried over
// from v7's V7_PROPERTY_* bitmask on a single byte).
const (
	AttrReadOnly  byte = 1 << 0
	AttrDontEnum  byte = 1 << 1
	AttrDontDelete byte = 1 << 2
	AttrHidden    byte = 1 << 3
	AttrGetter    byte = 1 << 4
	AttrSetter    byte = 1 << 5
)

// ObjectCell is the heap representation of a script object. It also backs
// activation records (Parent non-zero) — see pkg/runtime, which treats
// scope chain nodes as ordinary heap objects so the GC traces captured
// scopes for free via the same property-chain walk as any other object.
type ObjectCell struct {
	Proto      ObjectRef
	Parent     ObjectRef // non-zero when this cell doubles as an activation record
	Properties PropertyRef
	Class      string // "Object", "Array", "Error", "Function", "Arguments", ...
	Extensible bool
	marked     bool
}

// PropertyCell is one link in an object's property chain.
type PropertyCell struct {
	Name   string
	Attrs  byte
	Value  value.Value
	Next   PropertyRef
	marked bool
}

// Object dereferences an ObjectRef. The returned pointer is only valid
// until the next GC cycle.
func (h *Heap) Object(ref ObjectRef) *ObjectCell {
	return h.objects.at(uint32(ref))
}

func (h *Heap) property(ref PropertyRef) *PropertyCell {
	return h.properties.at(uint32(ref))
}

// NewObject allocates a fresh object cell with the given prototype and
// class tag, triggering a GC cycle first if the object arena's free list
// is empty (spec.md §4.2's triggering condition).
func (h *Heap) NewObject(proto ObjectRef, class string) ObjectRef {
	h.maybeCollect(h.objects)
	ref := ObjectRef(h.objects.allocOrPanic())
	o := h.Object(ref)
	o.Proto = proto
	o.Class = class
	o.Extensible = true
	return ref
}

// GetOwn looks up name in obj's own property chain only (no prototype
// walk), returning the cell ref and true if found.
func (h *Heap) GetOwn(obj ObjectRef, name string) (PropertyRef, bool) {
	cur := h.Object(obj).Properties
	for cur != 0 {
		cell := h.property(cur)
		if cell.Name == name {
			return cur, true
		}
		cur = cell.Next
	}
	return 0, false
}

// Get walks obj's own chain then its prototype chain, per spec.md §4.4's
// property lookup rule.
func (h *Heap) Get(obj ObjectRef, name string) (value.Value, bool) {
	for cursor := obj; cursor != 0; cursor = h.Object(cursor).Proto {
		if ref, ok := h.GetOwn(cursor, name); ok {
			return h.property(ref).Value, true
		}
	}
	return value.Undefined, false
}

// Set implements spec.md's write semantics: a READ_ONLY own property is
// silently ignored; a property found only on the prototype chain causes a
// new own property to be created on obj (never written on the
// prototype); otherwise the own property is updated in place.
func (h *Heap) Set(obj ObjectRef, name string, v value.Value) {
	if ref, ok := h.GetOwn(obj, name); ok {
		cell := h.property(ref)
		if cell.Attrs&AttrReadOnly != 0 {
			return
		}
		cell.Value = v
		return
	}
	h.DefineOwn(obj, name, v, 0)
}

// DefineOwn creates or overwrites an own property on obj, bypassing the
// read-only check (used by the interpreter for initial binding and by
// built-in setup).
func (h *Heap) DefineOwn(obj ObjectRef, name string, v value.Value, attrs byte) PropertyRef {
	if ref, ok := h.GetOwn(obj, name); ok {
		cell := h.property(ref)
		cell.Value = v
		cell.Attrs = attrs
		return ref
	}
	h.maybeCollect(h.properties)
	o := h.Object(obj)
	ref := PropertyRef(h.properties.allocOrPanic())
	cell := h.property(ref)
	cell.Name = name
	cell.Value = v
	cell.Attrs = attrs
	cell.Next = o.Properties
	o.Properties = ref
	return ref
}

// Delete unlinks name from obj's own property chain, honoring
// DONT_DELETE (SPEC_FULL.md §D.7). Returns false if the property is
// absent or protected.
func (h *Heap) Delete(obj ObjectRef, name string) bool {
	o := h.Object(obj)
	var prev PropertyRef
	cur := o.Properties
	for cur != 0 {
		cell := h.property(cur)
		if cell.Name == name {
			if cell.Attrs&AttrDontDelete != 0 {
				return false
			}
			if prev == 0 {
				o.Properties = cell.Next
			} else {
				h.property(prev).Next = cell.Next
			}
			h.properties.release(uint32(cur))
			return true
		}
		prev = cur
		cur = cell.Next
	}
	return false
}

// OwnNames returns own enumerable property names in chain (insertion,
// reverse) order, for `for-in` (SPEC_FULL.md §D.8). Prototype properties
// are appended after own ones, skipping names already seen and any
// DONT_ENUM property, matching v7's own-then-prototype walk.
func (h *Heap) OwnNames(obj ObjectRef) []string {
	var names []string
	seen := make(map[string]bool)
	for cursor := obj; cursor != 0; cursor = h.Object(cursor).Proto {
		for cur := h.Object(cursor).Properties; cur != 0; {
			cell := h.property(cur)
			if !seen[cell.Name] {
				seen[cell.Name] = true
				if cell.Attrs&AttrDontEnum == 0 {
					names = append(names, cell.Name)
				}
			}
			cur = cell.Next
		}
	}
	return names
}
