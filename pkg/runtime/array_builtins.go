package runtime

import (
	"strconv"
	"strings"

	"github.com/nanov7/nanov7/pkg/heap"
	"github.com/nanov7/nanov7/pkg/value"
)

// installArrayBuiltins attaches the small slice of Array.prototype the
// engine provides natively (spec.md §8 scenario 2 runs `a.map(...).join(...)`
// against a bare execute() call with no host registration, so map/join
// must be built in rather than left for a host to supply). Both are
// defined as ordinary native functions on arrayProto, the same
// heap.NewNativeFunction path pkg/engine.SetMethod uses for host
// callbacks — these just get wired up at interpreter construction
// instead of by a host.
func (i *Interpreter) installArrayBuiltins() {
	i.defineArrayMethod("map", i.arrayMap)
	i.defineArrayMethod("join", i.arrayJoin)

	ctor := i.heap.NewNativeFunction("Array", i.arrayConstructor, i.funcProto)
	i.heap.DefineOwn(i.heap.Global(), "Array", value.FromRef(value.TagFunction, value.ObjectRef(ctor)), heap.AttrDontEnum)
}

func (i *Interpreter) defineArrayMethod(name string, fn heap.NativeFunc) {
	ref := i.heap.NewNativeFunction(name, fn, i.funcProto)
	i.heap.DefineOwn(i.arrayProto, name, value.FromRef(value.TagFunction, value.ObjectRef(ref)), heap.AttrDontEnum)
}

// arrayConstructor implements the global `Array` constructor (spec.md §8
// scenario 6's `new Array(1000)`): a single numeric argument preallocates
// that many undefined-valued slots, matching ECMAScript's Array(n) form;
// any other argument list becomes the array's elements directly, as if
// written as a literal.
func (i *Interpreter) arrayConstructor(h *heap.Heap, this value.Value, args []value.Value) (value.Value, error) {
	if len(args) == 1 && value.IsNumber(args[0]) {
		n := int(value.Number(args[0]))
		if n < 0 {
			return value.Undefined, i.throwRangeError("invalid array length")
		}
		return i.NewArray(make([]value.Value, n)), nil
	}
	return i.NewArray(args), nil
}

// arrayMap implements Array.prototype.map: callback(element, index, array)
// is invoked for each element in range and its return value becomes the
// corresponding element of a freshly allocated result array.
func (i *Interpreter) arrayMap(h *heap.Heap, this value.Value, args []value.Value) (value.Value, error) {
	if !value.IsObject(this) || !i.isArray(value.Ref(this)) {
		return value.Undefined, i.throwTypeError("map called on non-array")
	}
	if len(args) == 0 || !value.IsFunction(args[0]) {
		return value.Undefined, i.throwTypeError("map callback is not a function")
	}
	callback := args[0]
	self := value.Ref(this)
	n := i.ArrayLength(this)

	out := make([]value.Value, n)
	for idx := 0; idx < n; idx++ {
		el, _ := h.Get(self, strconv.Itoa(idx))
		callArgs := []value.Value{el, value.FromNumber(float64(idx)), this}
		mapped, err := i.callValue(callback, value.Undefined, callArgs)
		if err != nil {
			return value.Undefined, err
		}
		out[idx] = mapped
	}
	return i.NewArray(out), nil
}

// arrayJoin implements Array.prototype.join: elements are coerced with
// the engine's normal to-string rules and concatenated with sep, which
// defaults to "," when omitted or undefined (matching the ECMAScript
// default separator).
func (i *Interpreter) arrayJoin(h *heap.Heap, this value.Value, args []value.Value) (value.Value, error) {
	if !value.IsObject(this) || !i.isArray(value.Ref(this)) {
		return value.Undefined, i.throwTypeError("join called on non-array")
	}
	sep := ","
	if len(args) > 0 && value.TagOf(args[0]) != value.TagUndefined {
		s, err := i.toStringGo(args[0])
		if err != nil {
			return value.Undefined, err
		}
		sep = s
	}

	self := value.Ref(this)
	n := i.ArrayLength(this)
	parts := make([]string, n)
	for idx := 0; idx < n; idx++ {
		el, _ := h.Get(self, strconv.Itoa(idx))
		if value.TagOf(el) == value.TagUndefined || value.TagOf(el) == value.TagNull {
			parts[idx] = ""
			continue
		}
		s, err := i.toStringGo(el)
		if err != nil {
			return value.Undefined, err
		}
		parts[idx] = s
	}
	return h.InternString(strings.Join(parts, sep)), nil
}
