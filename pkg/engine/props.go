package engine

import (
	"github.com/nanov7/nanov7/pkg/heap"
	"github.com/nanov7/nanov7/pkg/value"
)

// Get reads a named own-or-inherited property off obj (spec.md §6
// `get_property`), returning (undefined, false) if neither obj nor any
// prototype in its chain owns name.
func (e *Engine) Get(obj value.Value, name string) (value.Value, bool) {
	if !value.IsObject(obj) {
		return value.Undefined, false
	}
	return e.heap.Get(value.Ref(obj), name)
}

// Set writes a named property on obj (spec.md §6 `set_property`): an
// existing READ_ONLY own property is left unchanged, any other own
// property is updated, and a name obj does not own becomes a new own
// property on obj; the prototype chain is not consulted. Writing to a non-object is a silent no-op,
// matching the interpreter's own non-strict-mode property assignment.
func (e *Engine) Set(obj value.Value, name string, v value.Value) {
	if !value.IsObject(obj) {
		return
	}
	e.heap.Set(value.Ref(obj), name, v)
}

// DefineProperty installs name on obj with explicit attribute bits
// (spec.md §3's READ_ONLY/DONT_ENUM/DONT_DELETE/HIDDEN/GETTER/SETTER,
// §D.3 bit positions), bypassing both the inherited-property walk and
// the READ_ONLY guard that Set enforces.
func (e *Engine) DefineProperty(obj value.Value, name string, v value.Value, attrs byte) {
	if !value.IsObject(obj) {
		return
	}
	e.heap.DefineOwn(value.Ref(obj), name, v, attrs)
}

// SetMethod binds a host callback as a named method on obj in one step,
// composing CreateFunction and DefineProperty (spec.md §6 `set_method`).
// The callback is also recorded in the engine's function registry under
// name (arity unspecified), so BindRegistry can later mount the same
// callback onto another object or engine without the host having to hold
// onto the heap.NativeFunc value itself.
func (e *Engine) SetMethod(obj value.Value, name string, fn heap.NativeFunc) {
	e.registry.Register(name, fn, -1)
	method := e.CreateFunction(name, fn)
	e.DefineProperty(obj, name, method, heap.AttrDontEnum)
}

// DeleteProperty removes an own property, honoring DONT_DELETE (spec.md
// §3 "delete operator"); it reports whether the property was actually
// removed.
func (e *Engine) DeleteProperty(obj value.Value, name string) bool {
	if !value.IsObject(obj) {
		return false
	}
	return e.heap.Delete(value.Ref(obj), name)
}

// OwnNames lists the enumerable property names of obj and then of its
// prototypes, each object's names newest first and each name once
// (spec.md §3 "for-in enumeration").
func (e *Engine) OwnNames(obj value.Value) []string {
	if !value.IsObject(obj) {
		return nil
	}
	return e.heap.OwnNames(value.Ref(obj))
}

// SetProto rebinds obj's prototype, rejecting any change that would
// introduce a cycle in the prototype chain (spec.md §3 "the prototype
// chain must never contain a cycle"). It reports the previous prototype
// and whether the change was applied.
func (e *Engine) SetProto(obj, proto value.Value) (old value.Value, ok bool) {
	return e.interp.SetProto(obj, proto)
}

// ArrayLength, ArrayGet, ArraySet and ArrayPush manipulate an array
// value's indexed elements and "length" property (spec.md §3 "Array...
// length-tracking convenience"); they are no-ops (returning zero values)
// on a non-array v-word.
func (e *Engine) ArrayLength(v value.Value) int { return e.interp.ArrayLength(v) }
func (e *Engine) ArrayGet(v value.Value, idx int) value.Value { return e.interp.ArrayGet(v, idx) }
func (e *Engine) ArraySet(v value.Value, idx int, el value.Value) { e.interp.ArraySet(v, idx, el) }
func (e *Engine) ArrayPush(v value.Value, el value.Value) int { return e.interp.ArrayPush(v, el) }
