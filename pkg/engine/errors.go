package engine

import "github.com/nanov7/nanov7/pkg/value"

// Throw constructs and raises a built-in-style Error object of the given
// class (e.g. "TypeError", "RangeError", or a host-defined class name)
// carrying message (spec.md §6 `throw`). It is meant to be called from
// inside a host-native function (heap.NativeFunc) and returned as that
// function's error, so the interpreter's call dispatch treats it as a
// catchable script exception rather than a Go-level failure.
func (e *Engine) Throw(class, message string) error {
	return e.interp.NewError(class, message)
}

// ThrowValue raises an arbitrary v-word as a catchable exception (spec.md
// §6 `throw_value`), letting a host callback reject with a value other
// than a freshly constructed Error object (for example, propagating a
// value already caught from a nested Apply).
func (e *Engine) ThrowValue(v value.Value) error {
	return e.interp.NewThrowError(v)
}
