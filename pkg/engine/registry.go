package engine

import (
	"github.com/nanov7/nanov7/pkg/functions"
	"github.com/nanov7/nanov7/pkg/heap"
	"github.com/nanov7/nanov7/pkg/value"
)

// RegisterFunction records fn under name with an arity hint (spec.md §3
// "Function record... arity hint") in the engine's function registry and
// mounts it on the global object, so it is immediately script-callable
// as well as retrievable by name for later reuse.
func (e *Engine) RegisterFunction(name string, fn heap.NativeFunc, arity int) {
	e.registry.Register(name, fn, arity)
	global := e.GetGlobal()
	method := e.CreateFunction(name, fn)
	e.DefineProperty(global, name, method, heap.AttrDontEnum)
}

// BindRegistry mounts every callback in reg onto obj via SetMethod,
// letting a host assemble a named bundle of callbacks once (e.g. "the
// math module") and wire the same bundle into one or more engines or
// objects instead of repeating one SetMethod call per function.
func (e *Engine) BindRegistry(reg *functions.Registry, obj value.Value) {
	for _, name := range reg.Names() {
		if fn, ok := reg.Lookup(name); ok {
			e.SetMethod(obj, name, fn)
		}
	}
}

// FunctionArity returns the arity hint recorded for a previously
// registered host callback (via SetMethod or RegisterFunction), or
// (0, false) if name was never registered.
func (e *Engine) FunctionArity(name string) (int, bool) {
	return e.registry.Arity(name)
}

// RegisteredFunctions lists the names currently held in the engine's
// function registry.
func (e *Engine) RegisteredFunctions() []string {
	return e.registry.Names()
}
