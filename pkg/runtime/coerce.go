package runtime

import (
	"math"
	"strconv"
	"strings"

	"github.com/nanov7/nanov7/pkg/heap"
	"github.com/nanov7/nanov7/pkg/value"
)

// toBoolean implements ToBoolean (spec.md §4.4): only undefined, null,
// false, 0, NaN and the empty string are falsy; everything else, including
// every object and function, is truthy.
func (i *Interpreter) toBoolean(v value.Value) bool {
	switch value.TagOf(v) {
	case value.TagUndefined, value.TagNull, value.TagBoolFalse:
		return false
	case value.TagBoolTrue:
		return true
	case value.TagStringInline, value.TagStringHeap:
		return i.heap.StringValue(v) != ""
	case value.TagNumberLive:
		n := value.Number(v)
		return n != 0 && !math.IsNaN(n)
	case value.TagNaN:
		return false
	default:
		return true
	}
}

// toNumber implements ToNumber. Objects are coerced via toPrimitive first
// (spec.md §4.4 "object→primitive via valueOf/toString chain").
func (i *Interpreter) toNumber(v value.Value) (float64, error) {
	switch value.TagOf(v) {
	case value.TagUndefined:
		return math.NaN(), nil
	case value.TagNull:
		return 0, nil
	case value.TagBoolTrue:
		return 1, nil
	case value.TagBoolFalse:
		return 0, nil
	case value.TagNumberLive:
		return value.Number(v), nil
	case value.TagNaN:
		return math.NaN(), nil
	case value.TagStringInline, value.TagStringHeap:
		return stringToNumber(i.heap.StringValue(v)), nil
	case value.TagObject, value.TagFunction, value.TagCFunction:
		prim, err := i.toPrimitive(v, "number")
		if err != nil {
			return 0, err
		}
		return i.toNumber(prim)
	default:
		return math.NaN(), nil
	}
}

// stringToNumber implements the "string→parsed number per standard
// grammar" rule: leading/trailing whitespace is trimmed, the empty string
// is 0, and anything that doesn't parse as a full numeric literal is NaN.
func stringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if s == "Infinity" || s == "+Infinity" {
		return math.Inf(1)
	}
	if s == "-Infinity" {
		return math.Inf(-1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// toStringValue implements ToString, returning a heap/inline-boxed string
// Value ready to use as a property key or concatenation operand.
func (i *Interpreter) toStringValue(v value.Value) (value.Value, error) {
	s, err := i.toStringGo(v)
	if err != nil {
		return value.Undefined, err
	}
	return i.heap.InternString(s), nil
}

// toStringGo implements ToString down to a plain Go string, per spec.md
// §4.4's rule table (undefined→"undefined", null→"null", numbers use
// decimal formatting with "-0" displayed as "0").
func (i *Interpreter) toStringGo(v value.Value) (string, error) {
	switch value.TagOf(v) {
	case value.TagUndefined:
		return "undefined", nil
	case value.TagNull:
		return "null", nil
	case value.TagBoolTrue:
		return "true", nil
	case value.TagBoolFalse:
		return "false", nil
	case value.TagNaN:
		return "NaN", nil
	case value.TagNumberLive:
		return numberToString(value.Number(v)), nil
	case value.TagStringInline, value.TagStringHeap:
		return i.heap.StringValue(v), nil
	case value.TagObject, value.TagFunction, value.TagCFunction:
		prim, err := i.toPrimitive(v, "string")
		if err != nil {
			return "", err
		}
		return i.toStringGo(prim)
	default:
		return "undefined", nil
	}
}

// numberToString formats a float64 the way spec.md §4.4 requires: the
// three named special literals, and "-0" collapsed to "0".
func numberToString(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// toPrimitive drives an object through its valueOf/toString method chain
// (hint "number" tries valueOf first, hint "string" tries toString first),
// returning the first result that is itself a primitive.
func (i *Interpreter) toPrimitive(v value.Value, hint string) (value.Value, error) {
	if !value.IsObject(v) && !value.IsFunction(v) {
		return v, nil
	}
	methods := []string{"valueOf", "toString"}
	if hint == "string" {
		methods = []string{"toString", "valueOf"}
	}
	obj := value.Ref(v)
	for _, name := range methods {
		fnVal, ok := i.heap.Get(obj, name)
		if !ok || !value.IsFunction(fnVal) {
			continue
		}
		result, err := i.callValue(fnVal, v, nil)
		if err != nil {
			return value.Undefined, err
		}
		if !value.IsObject(result) && !value.IsFunction(result) {
			return result, nil
		}
	}
	return value.Undefined, i.throwTypeError("cannot convert object to primitive value")
}

// toObject implements ToObject. Primitives other than null/undefined are
// given a lightweight wrapper object so member access (e.g. "abc".length)
// works; null and undefined throw (spec.md §4.4 ToObject is only invoked
// from member access and `in`, both of which must reject them).
func (i *Interpreter) toObject(v value.Value) (value.ObjectRef, error) {
	switch value.TagOf(v) {
	case value.TagUndefined, value.TagNull:
		return 0, i.throwTypeError("cannot convert undefined or null to object")
	case value.TagObject, value.TagFunction, value.TagCFunction:
		return value.Ref(v), nil
	case value.TagStringInline, value.TagStringHeap:
		s := i.heap.StringValue(v)
		obj := i.heap.NewObject(i.stringProto, "String")
		i.heap.DefineOwn(obj, "length", value.FromNumber(float64(len(s))), heap.AttrReadOnly|heap.AttrDontEnum|heap.AttrDontDelete)
		for idx, r := range []rune(s) {
			i.heap.DefineOwn(obj, strconv.Itoa(idx), i.heap.InternString(string(r)), 0)
		}
		return obj, nil
	case value.TagNumberLive, value.TagNaN:
		obj := i.heap.NewObject(i.numberProto, "Number")
		i.heap.DefineOwn(obj, "@@primitive", v, heap.AttrHidden|heap.AttrDontEnum)
		return obj, nil
	case value.TagBoolTrue, value.TagBoolFalse:
		obj := i.heap.NewObject(i.booleanProto, "Boolean")
		i.heap.DefineOwn(obj, "@@primitive", v, heap.AttrHidden|heap.AttrDontEnum)
		return obj, nil
	default:
		return 0, i.throwTypeError("cannot convert value to object")
	}
}

// abstractEquals implements the `==` 14-case coercion table (spec.md
// §4.4): same-type compares by strictEquals; otherwise null/undefined are
// only equal to each other, numbers and strings coerce toward numbers,
// booleans coerce to numbers, and objects coerce via toPrimitive before
// retrying.
func (i *Interpreter) abstractEquals(a, b value.Value) (bool, error) {
	ta, tb := value.TagOf(a), value.TagOf(b)
	if isNullish(ta) && isNullish(tb) {
		return true, nil
	}
	if isNullish(ta) || isNullish(tb) {
		return false, nil
	}
	if sameType(ta, tb) {
		return i.strictEquals(a, b), nil
	}
	if ta == value.TagNumberLive || ta == value.TagNaN {
		if isString(tb) {
			n, err := i.toNumber(b)
			if err != nil {
				return false, err
			}
			return numEquals(value.Number(numOrNaN(a)), n), nil
		}
	}
	if isString(ta) {
		if tb == value.TagNumberLive || tb == value.TagNaN {
			n, err := i.toNumber(a)
			if err != nil {
				return false, err
			}
			return numEquals(n, value.Number(numOrNaN(b))), nil
		}
	}
	if ta == value.TagBoolTrue || ta == value.TagBoolFalse {
		n, _ := i.toNumber(a)
		return i.abstractEquals(value.FromNumber(n), b)
	}
	if tb == value.TagBoolTrue || tb == value.TagBoolFalse {
		n, _ := i.toNumber(b)
		return i.abstractEquals(a, value.FromNumber(n))
	}
	if (isNumOrString(ta)) && (tb == value.TagObject || tb == value.TagFunction || tb == value.TagCFunction) {
		prim, err := i.toPrimitive(b, "")
		if err != nil {
			return false, err
		}
		return i.abstractEquals(a, prim)
	}
	if (isNumOrString(tb)) && (ta == value.TagObject || ta == value.TagFunction || ta == value.TagCFunction) {
		prim, err := i.toPrimitive(a, "")
		if err != nil {
			return false, err
		}
		return i.abstractEquals(prim, b)
	}
	return false, nil
}

// strictEquals implements `===`: same type and same value, with NaN never
// equal to itself and +0/-0 considered equal (both are just 0 here, since
// Value doesn't distinguish signed zero once boxed as a float64 bit
// pattern comparison would; we compare via Number()).
func (i *Interpreter) strictEquals(a, b value.Value) bool {
	ta, tb := value.TagOf(a), value.TagOf(b)
	if ta != tb {
		return false
	}
	switch ta {
	case value.TagNaN:
		return false
	case value.TagNumberLive:
		return value.Number(a) == value.Number(b)
	case value.TagStringInline, value.TagStringHeap:
		return i.heap.StringValue(a) == i.heap.StringValue(b)
	default:
		return a == b
	}
}

func isNullish(t value.Tag) bool { return t == value.TagUndefined || t == value.TagNull }
func isString(t value.Tag) bool {
	return t == value.TagStringInline || t == value.TagStringHeap
}
func isNumOrString(t value.Tag) bool {
	return t == value.TagNumberLive || t == value.TagNaN || isString(t)
}
func sameType(a, b value.Tag) bool {
	if isString(a) && isString(b) {
		return true
	}
	if (a == value.TagNumberLive || a == value.TagNaN) && (b == value.TagNumberLive || b == value.TagNaN) {
		return true
	}
	return a == b
}
func numOrNaN(v value.Value) value.Value {
	if value.TagOf(v) == value.TagNaN {
		return value.NaN
	}
	return v
}
func numEquals(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	return a == b
}
