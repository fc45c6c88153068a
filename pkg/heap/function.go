package heap

import (
	"github.com/nanov7/nanov7/pkg/ast"
	"github.com/nanov7/nanov7/pkg/value"
)

// FunctionRef addresses a cell in the function arena.
type FunctionRef = value.ObjectRef

// NativeFunc is a host callback bound into the engine, invoked with the
// receiver and argument values per spec.md §4.4's call contract.
type NativeFunc func(h *Heap, this value.Value, args []value.Value) (value.Value, error)

// FunctionCell is the heap representation of either a script function
// (Body/Program set, Native nil) or a host callback (Native set). Self
// points at the ObjectCell that carries the function's own properties
// (name, length, a "prototype" property for `new`), so a function value
// can be property-accessed exactly like any other object.
type FunctionCell struct {
	Self    ObjectRef
	Name    string
	Params  []string
	Body    ast.Ref
	Program *ast.Program
	Scope   ObjectRef // activation-object chain captured at definition time
	Native  NativeFunc
	marked  bool
}

func (h *Heap) function(ref FunctionRef) *FunctionCell {
	return h.functions.at(uint32(ref))
}

// Function dereferences a FunctionRef. Valid only until the next GC cycle.
func (h *Heap) Function(ref FunctionRef) *FunctionCell {
	return h.function(ref)
}

// NewScriptFunction allocates a function cell for a script-defined
// function, along with its backing Self object (whose prototype is
// funcProto, per the "Function" built-in prototype) and a fresh
// "prototype" own property object for use by `new`.
func (h *Heap) NewScriptFunction(name string, params []string, body ast.Ref, program *ast.Program, scope ObjectRef, funcProto, objProto ObjectRef) FunctionRef {
	h.maybeCollect(h.functions)
	ref := FunctionRef(h.functions.allocOrPanic())
	fn := h.function(ref)
	fn.Name = name
	fn.Params = params
	fn.Body = body
	fn.Program = program
	fn.Scope = scope

	self := h.NewObject(funcProto, "Function")
	fn.Self = self
	h.DefineOwn(self, "length", value.FromNumber(float64(len(params))), AttrReadOnly|AttrDontEnum|AttrDontDelete)
	h.DefineOwn(self, "name", h.InternString(name), AttrReadOnly|AttrDontEnum|AttrDontDelete)

	protoObj := h.NewObject(objProto, "Object")
	h.DefineOwn(protoObj, "constructor", value.FromRef(value.TagFunction, ObjectRef(ref)), AttrDontEnum)
	h.DefineOwn(self, "prototype", value.FromRef(value.TagObject, protoObj), AttrDontDelete)

	return ref
}

// NewNativeFunction allocates a function cell wrapping a host callback.
func (h *Heap) NewNativeFunction(name string, fn NativeFunc, funcProto ObjectRef) FunctionRef {
	h.maybeCollect(h.functions)
	ref := FunctionRef(h.functions.allocOrPanic())
	cell := h.function(ref)
	cell.Name = name
	cell.Native = fn

	self := h.NewObject(funcProto, "Function")
	cell.Self = self
	h.DefineOwn(self, "name", h.InternString(name), AttrReadOnly|AttrDontEnum|AttrDontDelete)

	return ref
}
