package engine

import (
	"github.com/nanov7/nanov7/pkg/heap"
	"github.com/nanov7/nanov7/pkg/value"
)

// CreateUndefined, CreateNull, CreateBoolean and CreateNumber wrap stack
// v-words (spec.md §6 "primitive constructors"); none of them touch the
// heap, mirroring value.Value's NaN-boxed immediate encoding.
func (e *Engine) CreateUndefined() value.Value   { return value.Undefined }
func (e *Engine) CreateNull() value.Value        { return value.Null }
func (e *Engine) CreateBoolean(b bool) value.Value { return value.FromBool(b) }
func (e *Engine) CreateNumber(f float64) value.Value { return value.FromNumber(f) }

// CreateString interns src, inlining it directly into the v-word when it
// fits in five bytes and heap-allocating a descriptor otherwise (spec.md
// §3 "String representation").
func (e *Engine) CreateString(src string) value.Value { return e.heap.InternString(src) }

// CreateObject allocates a new empty object whose prototype is the
// engine's Object.prototype (spec.md §6 `create_object`).
func (e *Engine) CreateObject() value.Value {
	obj := e.heap.NewObject(e.interp.ObjectProto(), "Object")
	return value.FromRef(value.TagObject, obj)
}

// CreateArray allocates a new array object seeded with elems (spec.md §6
// `create_array`); a nil or empty slice yields a length-0 array.
func (e *Engine) CreateArray(elems []value.Value) value.Value {
	return e.interp.NewArray(elems)
}

// CreateFunction binds a Go callback as a script-callable native
// function (spec.md §6 `create_function`, §3 "Function record... Native
// (host callback)").
func (e *Engine) CreateFunction(name string, fn heap.NativeFunc) value.Value {
	ref := e.heap.NewNativeFunction(name, fn, e.interp.FunctionProto())
	return value.FromRef(value.TagFunction, ref)
}

// CreateRegexp builds an opaque regex literal value carrying pattern and
// flags (spec.md §3 "Regexp... opaque source/flags pair").
func (e *Engine) CreateRegexp(pattern, flags string) value.Value {
	return e.interp.NewRegexp(pattern, flags)
}

// CreateForeign wraps an arbitrary host pointer as an opaque,
// GC-untraced v-word (spec.md §6 `create_foreign`).
func (e *Engine) CreateForeign(ptr interface{}) value.Value { return e.heap.NewForeign(ptr) }

// ToForeign recovers the host pointer wrapped by CreateForeign, or nil
// if v does not carry one (spec.md §6 `to_foreign`).
func (e *Engine) ToForeign(v value.Value) interface{} {
	if value.TagOf(v) != value.TagForeign {
		return nil
	}
	return e.heap.Foreign(v)
}

// IsUndefined, IsNull, IsBoolean, IsNumber, IsString, IsObject,
// IsFunction and IsArray classify a v-word by its NaN-boxed tag (spec.md
// §6 "type predicates").
func (e *Engine) IsUndefined(v value.Value) bool { return value.IsUndefined(v) }
func (e *Engine) IsNull(v value.Value) bool      { return value.IsNull(v) }
func (e *Engine) IsBoolean(v value.Value) bool    { return value.IsBoolean(v) }
func (e *Engine) IsNumber(v value.Value) bool     { return value.IsNumber(v) }
func (e *Engine) IsString(v value.Value) bool     { return value.IsString(v) }
func (e *Engine) IsObject(v value.Value) bool     { return value.IsObject(v) }
func (e *Engine) IsFunction(v value.Value) bool   { return value.IsFunction(v) }
func (e *Engine) IsArray(v value.Value) bool      { return e.interp.IsArray(v) }

// TypeOf reports the `typeof` operator's result for v (spec.md §3
// "typeof").
func (e *Engine) TypeOf(v value.Value) string { return value.TypeOf(v) }

// ToBoolean, ToNumber and ToStringGo run the abstract coercion
// operations named in spec.md §3 (ToBoolean/ToNumber/ToString), exposed
// here so a host can coerce a returned v-word into a Go-native value
// without writing script to do it.
func (e *Engine) ToBoolean(v value.Value) bool { return e.interp.ToBoolean(v) }
func (e *Engine) ToNumber(v value.Value) (float64, error) { return e.interp.ToNumber(v) }
func (e *Engine) ToStringGo(v value.Value) (string, error) { return e.interp.ToStringGo(v) }

// InstanceOf implements the `instanceof` operator between two v-words
// (spec.md §3 "instanceof").
func (e *Engine) InstanceOf(lhs, rhs value.Value) (bool, error) {
	return e.interp.InstanceOf(lhs, rhs)
}

// IsInstanceOfName is a host-ergonomic shortcut over InstanceOf against
// one of the engine's own built-in prototypes, looked up by class name
// (e.g. "Error", "Array") instead of a constructor v-word.
func (e *Engine) IsInstanceOfName(obj value.Value, name string) bool {
	return e.interp.IsInstanceOfName(obj, name)
}
