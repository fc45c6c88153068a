// Package functions implements the host-callback registry backing
// spec.md §6's "host callback" function records: a name keyed map from
// identifier to a Go-native implementation, so pkg/engine can bind a
// batch of host functions onto the global object (or any other object)
// by name in one call instead of one `SetMethod` at a time.
//
// pkg/engine.Engine.SetMethod and RegisterFunction populate a Registry as
// they bind callbacks; BindRegistry consumes one to mount a bundle
// assembled ahead of time (e.g. "the math module") onto one or more
// engines or objects. pkg/heap.NewNativeFunction is still what actually
// makes a registered entry callable from script — this package only
// tracks the name/arity bookkeeping around that.
package functions

import (
	"github.com/nanov7/nanov7/pkg/heap"
)

// Registry manages named host-callback registration and lookup. It
// carries no JS-visible state of its own — callers still go through
// pkg/engine.Engine.SetMethod (or heap.NewNativeFunction directly) to
// expose a registered entry to script.
type Registry struct {
	functions map[string]heap.NativeFunc
	arity     map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		functions: make(map[string]heap.NativeFunc),
		arity:     make(map[string]int),
	}
}

// Register adds a host callback under name with the given arity hint
// (spec.md §3 "Function record... arity hint").
func (r *Registry) Register(name string, fn heap.NativeFunc, arity int) {
	r.functions[name] = fn
	r.arity[name] = arity
}

// Lookup retrieves a registered callback by name.
func (r *Registry) Lookup(name string) (heap.NativeFunc, bool) {
	fn, ok := r.functions[name]
	return fn, ok
}

// Arity returns the arity hint for name.
func (r *Registry) Arity(name string) (int, bool) {
	n, ok := r.arity[name]
	return n, ok
}

// Names returns all registered function names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	return names
}
