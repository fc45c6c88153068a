package runtime

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nanov7/nanov7/pkg/errs"
	"github.com/nanov7/nanov7/pkg/heap"
	"github.com/nanov7/nanov7/pkg/value"
)

// Heap exposes the interpreter's backing heap to pkg/engine, which needs
// it for root registration and value construction that doesn't require
// walking an AST (spec.md §6 value-construction operations).
func (i *Interpreter) Heap() *heap.Heap { return i.heap }

// ObjectProto, FunctionProto, ArrayProto, ErrorProto, StringProto,
// NumberProto and BooleanProto expose the built-in prototype objects
// wired up by New, so pkg/engine's create_* operations can parent new
// cells the same way the interpreter itself does.
func (i *Interpreter) ObjectProto() heap.ObjectRef  { return i.objProto }
func (i *Interpreter) FunctionProto() heap.ObjectRef { return i.funcProto }
func (i *Interpreter) ArrayProto() heap.ObjectRef   { return i.arrayProto }
func (i *Interpreter) ErrorProto() heap.ObjectRef   { return i.errorProto }
func (i *Interpreter) StringProto() heap.ObjectRef  { return i.stringProto }
func (i *Interpreter) NumberProto() heap.ObjectRef  { return i.numberProto }
func (i *Interpreter) BooleanProto() heap.ObjectRef { return i.booleanProto }
func (i *Interpreter) RegexpProto() heap.ObjectRef  { return i.regexpProto }

// NewThrowError wraps v as a catchable script exception (spec.md §6
// `throw_value`); a native function returns the result as its error to
// raise it the same way a script `throw` statement would, reachable by
// a surrounding try/catch.
func (i *Interpreter) NewThrowError(v value.Value) error { return i.newThrowError(v) }

// NewError constructs and throws a built-in-style Error object of the
// given class with a "message" property (spec.md §6 `throw`), the same
// path the interpreter itself uses for implicit runtime exceptions
// (TypeError, RangeError, ReferenceError).
func (i *Interpreter) NewError(class, message string) error { return i.throwError(class, message) }

// Apply implements spec.md §6's `apply(engine, func, this, args)`:
// reentrant invocation of a function value outside of any AST walk. A
// nil args slice is treated identically to an empty one (spec.md §8
// "apply with args = undefined behaves identically to args = empty
// array").
func (i *Interpreter) Apply(fn, this value.Value, args []value.Value) (result value.Value, err error) {
	defer heap.RecoverOOM(&err)
	v, cerr := i.callValue(fn, this, args)
	if cerr != nil {
		return value.Undefined, i.wrapEscaped(cerr)
	}
	return v, nil
}

// Construct implements `new F(args)` for hosts that already hold a
// function value (e.g. after looking one up via pkg/heap.Get), rather
// than walking a `new` AST node.
func (i *Interpreter) Construct(fn value.Value, args []value.Value) (result value.Value, err error) {
	defer heap.RecoverOOM(&err)
	v, cerr := i.construct(fn, args)
	if cerr != nil {
		return value.Undefined, i.wrapEscaped(cerr)
	}
	return v, nil
}

// ToNumber, ToBoolean and ToStringGo expose the ECMAScript abstract
// coercions (spec.md §4.4) for the engine's `to_number`/`to_boolean`/
// `to_string` host-facing operations.
func (i *Interpreter) ToNumber(v value.Value) (float64, error) {
	n, err := i.toNumber(v)
	if err != nil {
		return 0, i.wrapEscaped(err)
	}
	return n, nil
}

func (i *Interpreter) ToBoolean(v value.Value) bool { return i.toBoolean(v) }

func (i *Interpreter) ToStringGo(v value.Value) (string, error) {
	s, err := i.toStringGo(v)
	if err != nil {
		return "", i.wrapEscaped(err)
	}
	return s, nil
}

// NewArray allocates an array object from a slice of elements, mirroring
// evalArray's shape (numeric own properties plus a non-enumerable
// "length").
func (i *Interpreter) NewArray(elems []value.Value) value.Value {
	arr := i.heap.NewObject(i.arrayProto, "Array")
	for idx, v := range elems {
		i.heap.DefineOwn(arr, strconv.Itoa(idx), v, 0)
	}
	i.heap.DefineOwn(arr, "length", value.FromNumber(float64(len(elems))), heap.AttrDontEnum)
	return value.FromRef(value.TagObject, arr)
}

// IsArray reports whether v is an array object, exported for hosts
// implementing `is_array` (spec.md §6).
func (i *Interpreter) IsArray(v value.Value) bool {
	return value.IsObject(v) && i.isArray(value.Ref(v))
}

// ArrayLength reads an array's synthetic "length" property.
func (i *Interpreter) ArrayLength(v value.Value) int {
	lenVal, _ := i.heap.Get(value.Ref(v), "length")
	return int(value.Number(lenVal))
}

// ArrayGet reads element idx, returning undefined when out of range.
func (i *Interpreter) ArrayGet(v value.Value, idx int) value.Value {
	el, _ := i.heap.Get(value.Ref(v), strconv.Itoa(idx))
	return el
}

// ArraySet writes element idx, bumping "length" when idx extends the
// array, matching the Member-assignment path's behavior for indexed
// writes on an array-classed object.
func (i *Interpreter) ArraySet(v value.Value, idx int, el value.Value) {
	obj := value.Ref(v)
	key := strconv.Itoa(idx)
	i.heap.Set(obj, key, el)
	i.bumpArrayLength(obj, key)
}

// ArrayPush appends el, returning the new length.
func (i *Interpreter) ArrayPush(v value.Value, el value.Value) int {
	n := i.ArrayLength(v)
	i.ArraySet(v, n, el)
	return n + 1
}

// InstanceOf exposes `instanceof` (spec.md §6 `is_instanceof`) for host
// callers holding a constructor function value directly.
func (i *Interpreter) InstanceOf(lhs, rhs value.Value) (bool, error) {
	v, err := i.instanceOf(lhs, rhs)
	if err != nil {
		return false, i.wrapEscaped(err)
	}
	return v == value.True, nil
}

// IsInstanceOfName reports whether obj's prototype chain contains an
// object whose Class tag matches name, for the `is_instanceof(obj,
// ctor_name)` string-keyed overload named in spec.md §6.
func (i *Interpreter) IsInstanceOfName(obj value.Value, name string) bool {
	if !value.IsObject(obj) {
		return false
	}
	for cur := value.Ref(obj); cur != 0; cur = i.heap.Object(cur).Proto {
		if i.heap.Object(cur).Class == name {
			return true
		}
	}
	return false
}

// NewRegexp boxes a pattern/flags pair as a regexp Value (spec.md §6
// `create_regexp`); no regex engine backs it (SPEC_FULL.md §E Non-goals).
func (i *Interpreter) NewRegexp(pattern, flags string) value.Value {
	obj := i.heap.NewObject(i.regexpProto, "RegExp")
	i.heap.DefineOwn(obj, "source", i.heap.InternString(pattern), heap.AttrReadOnly|heap.AttrDontEnum)
	i.heap.DefineOwn(obj, "flags", i.heap.InternString(flags), heap.AttrReadOnly|heap.AttrDontEnum)
	return value.FromRef(value.TagRegexp, obj)
}

// SetProto implements spec.md §6 `set_proto`: rejects a prototype whose
// own chain already reaches obj (spec.md §8's "Prototype chain traversal
// terminates" invariant), returning the object's previous prototype and
// whether the change was applied.
func (i *Interpreter) SetProto(obj, proto value.Value) (old value.Value, ok bool) {
	objRef := value.Ref(obj)
	oldProto := i.heap.Object(objRef).Proto
	old = value.Undefined
	if oldProto != 0 {
		old = value.FromRef(value.TagObject, oldProto)
	}
	if value.TagOf(proto) == value.TagNull {
		i.heap.Object(objRef).Proto = 0
		return old, true
	}
	if !value.IsObject(proto) {
		return old, false
	}
	newProto := value.Ref(proto)
	for cur := newProto; cur != 0; cur = i.heap.Object(cur).Proto {
		if cur == objRef {
			return old, false // would introduce a cycle
		}
	}
	i.heap.Object(objRef).Proto = newProto
	return old, true
}

// ToJSON serializes v to a JSON text, following ECMAScript's JSON.stringify
// rules closely enough for spec.md §8's round-trip property: objects via
// the names heap.OwnNames lists (own then inherited, each object's newest
// first, DONT_ENUM skipped), arrays via their numeric indices up to
// "length". Functions and undefined become "null" inside an array, are
// omitted as property values, and make the whole result "null" at top
// level.
func (i *Interpreter) ToJSON(v value.Value) (string, error) {
	var buf []byte
	out, err := i.appendJSON(buf, v)
	if err != nil {
		return "", err
	}
	if out == nil {
		return "null", nil
	}
	return string(out), nil
}

func (i *Interpreter) appendJSON(buf []byte, v value.Value) ([]byte, error) {
	switch value.TagOf(v) {
	case value.TagUndefined, value.TagFunction, value.TagCFunction:
		return nil, nil
	case value.TagNull:
		return append(buf, "null"...), nil
	case value.TagBoolTrue:
		return append(buf, "true"...), nil
	case value.TagBoolFalse:
		return append(buf, "false"...), nil
	case value.TagNumberLive:
		n := value.Number(v)
		enc, err := json.Marshal(n)
		if err != nil {
			return nil, errs.New(errs.CodeInternal, err.Error())
		}
		return append(buf, enc...), nil
	case value.TagNaN:
		return append(buf, "null"...), nil
	case value.TagStringInline, value.TagStringHeap:
		enc, err := json.Marshal(i.heap.StringValue(v))
		if err != nil {
			return nil, errs.New(errs.CodeInternal, err.Error())
		}
		return append(buf, enc...), nil
	case value.TagObject:
		obj := value.Ref(v)
		if i.isArray(obj) {
			return i.appendJSONArray(buf, v)
		}
		return i.appendJSONObject(buf, obj)
	default:
		return nil, errs.New(errs.CodeInvalidArg, "value is not JSON-representable")
	}
}

func (i *Interpreter) appendJSONArray(buf []byte, v value.Value) ([]byte, error) {
	buf = append(buf, '[')
	n := i.ArrayLength(v)
	for idx := 0; idx < n; idx++ {
		if idx > 0 {
			buf = append(buf, ',')
		}
		el := i.ArrayGet(v, idx)
		enc, err := i.appendJSON(nil, el)
		if err != nil {
			return nil, err
		}
		if enc == nil {
			enc = []byte("null")
		}
		buf = append(buf, enc...)
	}
	return append(buf, ']'), nil
}

func (i *Interpreter) appendJSONObject(buf []byte, obj heap.ObjectRef) ([]byte, error) {
	names := i.heap.OwnNames(obj)
	buf = append(buf, '{')
	wrote := false
	for _, name := range names {
		val, _ := i.heap.Get(obj, name)
		enc, err := i.appendJSON(nil, val)
		if err != nil {
			return nil, err
		}
		if enc == nil {
			continue // undefined/function-valued properties are omitted, matching JSON.stringify
		}
		if wrote {
			buf = append(buf, ',')
		}
		keyEnc, _ := json.Marshal(name)
		buf = append(buf, keyEnc...)
		buf = append(buf, ':')
		buf = append(buf, enc...)
		wrote = true
	}
	return append(buf, '}'), nil
}

// FromJSON implements spec.md §6's `parse_json`: decode a JSON text into
// a tree of heap-allocated Values (objects/arrays/strings/numbers/
// booleans/null), the inverse of ToJSON.
func (i *Interpreter) FromJSON(src string) (value.Value, error) {
	var decoded interface{}
	dec := json.NewDecoder(strings.NewReader(src))
	dec.UseNumber()
	if err := dec.Decode(&decoded); err != nil {
		return value.Undefined, errs.New(errs.CodeSyntaxError, fmt.Sprintf("invalid JSON: %v", err))
	}
	return i.fromJSONValue(decoded), nil
}

func (i *Interpreter) fromJSONValue(dv interface{}) value.Value {
	switch t := dv.(type) {
	case nil:
		return value.Null
	case bool:
		return value.FromBool(t)
	case json.Number:
		f, _ := t.Float64()
		return value.FromNumber(f)
	case string:
		return i.heap.InternString(t)
	case []interface{}:
		elems := make([]value.Value, len(t))
		for idx, el := range t {
			elems[idx] = i.fromJSONValue(el)
		}
		return i.NewArray(elems)
	case map[string]interface{}:
		obj := i.heap.NewObject(i.objProto, "Object")
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			i.heap.DefineOwn(obj, k, i.fromJSONValue(t[k]), 0)
		}
		return value.FromRef(value.TagObject, obj)
	default:
		return value.Undefined
	}
}
