package runtime

import (
	"github.com/nanov7/nanov7/pkg/heap"
	"github.com/nanov7/nanov7/pkg/value"
)

// Activation records are ordinary heap objects: the variable bindings of a
// scope live as own properties, and ObjectCell.Parent chains to the
// enclosing scope. This lets the heap's existing property-chain GC tracing
// keep a closure's captured scope alive for free, without pkg/heap needing
// to know anything about pkg/runtime (see pkg/heap/object.go's doc comment
// on ObjectCell.Parent).
//
// Two kinds of scope exist: function-scope activations (created per call,
// the hoisting target for `var` and function declarations) and block-scope
// activations (created per block/for/catch, the target for `let`/`const`).
// Both are plain ObjectRefs; a function-scope activation is marked by a
// hidden "@@isFuncScope" own property, which findFuncScope looks for when
// walking the Parent chain.

// newScope allocates a new scope object chained to parent.
func (i *Interpreter) newScope(parent heap.ObjectRef) heap.ObjectRef {
	scope := i.heap.NewObject(0, "Scope")
	i.heap.Object(scope).Parent = parent
	return scope
}

// declareVar binds name as undefined on funcScope unless it already has an
// own binding there (spec.md §4.4 "var declarations hoist to the enclosing
// function activation").
func (i *Interpreter) declareVar(funcScope heap.ObjectRef, name string) {
	if _, ok := i.heap.GetOwn(funcScope, name); ok {
		return
	}
	i.heap.DefineOwn(funcScope, name, value.Undefined, 0)
}

// declareBinding binds name with an initial value as an own property of
// scope, used for let/const declarators, catch parameters and formal
// parameters.
func (i *Interpreter) declareBinding(scope heap.ObjectRef, name string, v value.Value) {
	i.heap.DefineOwn(scope, name, v, 0)
}

// lookupScope walks the scope chain starting at scope looking for an own
// binding named name, reporting the scope object that owns it.
func (i *Interpreter) lookupScope(scope heap.ObjectRef, name string) (heap.ObjectRef, bool) {
	for cur := scope; cur != 0; cur = i.heap.Object(cur).Parent {
		if _, ok := i.heap.GetOwn(cur, name); ok {
			return cur, true
		}
	}
	return 0, false
}

// resolveName implements bare-identifier name resolution (spec.md §4.4
// "Name resolution"): walk the scope chain, returning undefined-not-found
// so the caller can decide whether an unresolved name is a ReferenceError
// (read) or an implicit global (assignment in non-strict code).
func (i *Interpreter) resolveName(scope heap.ObjectRef, name string) (value.Value, bool) {
	owner, ok := i.lookupScope(scope, name)
	if !ok {
		return value.Undefined, false
	}
	v, _ := i.heap.Get(owner, name)
	return v, true
}

// assignName writes to the nearest scope in the chain that already owns
// name; if none does, it creates the binding on the global object
// (non-strict implicit global, matching the write-creates-own-property
// rule spec.md §4.4 describes for ordinary objects).
func (i *Interpreter) assignName(scope heap.ObjectRef, name string, v value.Value) {
	if owner, ok := i.lookupScope(scope, name); ok {
		i.heap.Set(owner, name, v)
		return
	}
	i.heap.Set(i.heap.Global(), name, v)
}
