package runtime

import (
	"math"
	"strconv"

	"github.com/nanov7/nanov7/pkg/ast"
	"github.com/nanov7/nanov7/pkg/heap"
	"github.com/nanov7/nanov7/pkg/value"
)

// evalExpr evaluates one expression node and returns its value, per the
// per-Kind field semantics documented in pkg/ast/node.go.
func (i *Interpreter) evalExpr(program *ast.Program, ref ast.Ref, scope heap.ObjectRef) (value.Value, error) {
	node := program.Node(ref)
	switch node.Kind {
	case ast.KindNumber:
		return value.FromNumber(node.Num), nil
	case ast.KindString:
		return i.heap.InternString(node.Str), nil
	case ast.KindBoolean:
		return value.FromBool(node.Num != 0), nil
	case ast.KindNull:
		return value.Null, nil
	case ast.KindUndefined:
		return value.Undefined, nil
	case ast.KindRegexp:
		return i.makeRegexp(node.Str), nil
	case ast.KindIdentifier:
		v, ok := i.resolveName(scope, node.Str)
		if !ok {
			return value.Undefined, i.throwReferenceError(node.Str + " is not defined")
		}
		return v, nil
	case ast.KindThis:
		v, _ := i.resolveName(scope, "@@this")
		return v, nil
	case ast.KindArray:
		return i.evalArray(program, node, scope)
	case ast.KindObject:
		return i.evalObject(program, node, scope)
	case ast.KindFunction:
		return i.makeClosure(program, ref, scope), nil
	case ast.KindUnary:
		return i.evalUnary(program, node, scope)
	case ast.KindBinary:
		return i.evalBinary(program, node, scope)
	case ast.KindLogical:
		return i.evalLogical(program, node, scope)
	case ast.KindAssign:
		return i.evalAssign(program, node, scope)
	case ast.KindConditional:
		test, err := i.evalExpr(program, node.A, scope)
		if err != nil {
			return value.Undefined, err
		}
		if i.toBoolean(test) {
			return i.evalExpr(program, node.B, scope)
		}
		return i.evalExpr(program, node.C, scope)
	case ast.KindCall:
		return i.evalCall(program, node, scope)
	case ast.KindNew:
		return i.evalNew(program, node, scope)
	case ast.KindMember:
		objVal, propName, err := i.evalMemberTarget(program, node, scope)
		if err != nil {
			return value.Undefined, err
		}
		objRef, err := i.toObject(objVal)
		if err != nil {
			return value.Undefined, err
		}
		v, _ := i.heap.Get(objRef, propName)
		return v, nil
	case ast.KindSequence:
		var last value.Value = value.Undefined
		for _, r := range node.List {
			v, err := i.evalExpr(program, r, scope)
			if err != nil {
				return value.Undefined, err
			}
			last = v
		}
		return last, nil
	case ast.KindSpread:
		return i.evalExpr(program, node.A, scope)
	default:
		return value.Undefined, i.throwError("Internal", "cannot evaluate node kind "+node.Kind.String())
	}
}

func (i *Interpreter) makeRegexp(literal string) value.Value {
	obj := i.heap.NewObject(i.regexpProto, "RegExp")
	source, flags := splitRegexpLiteral(literal)
	i.heap.DefineOwn(obj, "source", i.heap.InternString(source), heap.AttrReadOnly|heap.AttrDontEnum)
	i.heap.DefineOwn(obj, "flags", i.heap.InternString(flags), heap.AttrReadOnly|heap.AttrDontEnum)
	return value.FromRef(value.TagRegexp, obj)
}

// splitRegexpLiteral divides the lexer's "pattern/flags" token value (the
// opening '/' is not part of it) at its last '/' into its two parts. No
// regex engine backs this value (spec.md §6 `is_regexp` is a
// source/flags pair only); matching is left to the host.
func splitRegexpLiteral(literal string) (source, flags string) {
	for idx := len(literal) - 1; idx >= 0; idx-- {
		if literal[idx] == '/' {
			return literal[:idx], literal[idx+1:]
		}
	}
	return literal, ""
}

func (i *Interpreter) evalArray(program *ast.Program, node *ast.Node, scope heap.ObjectRef) (value.Value, error) {
	arr := i.heap.NewObject(i.arrayProto, "Array")
	for idx, elRef := range node.List {
		v, err := i.evalExpr(program, elRef, scope)
		if err != nil {
			return value.Undefined, err
		}
		i.heap.DefineOwn(arr, strconv.Itoa(idx), v, 0)
	}
	i.heap.DefineOwn(arr, "length", value.FromNumber(float64(len(node.List))), heap.AttrDontEnum)
	return value.FromRef(value.TagObject, arr), nil
}

func (i *Interpreter) evalObject(program *ast.Program, node *ast.Node, scope heap.ObjectRef) (value.Value, error) {
	obj := i.heap.NewObject(i.objProto, "Object")
	for _, propRef := range node.List {
		prop := program.Node(propRef)
		var key string
		if prop.Num != 0 {
			kv, err := i.evalExpr(program, prop.A, scope)
			if err != nil {
				return value.Undefined, err
			}
			key, err = i.toStringGo(kv)
			if err != nil {
				return value.Undefined, err
			}
		} else {
			key = program.Node(prop.A).Str
		}
		v, err := i.evalExpr(program, prop.B, scope)
		if err != nil {
			return value.Undefined, err
		}
		i.heap.DefineOwn(obj, key, v, 0)
	}
	return value.FromRef(value.TagObject, obj), nil
}

// makeClosure builds a script function value from a KindFunction node,
// capturing scope as its defining environment.
func (i *Interpreter) makeClosure(program *ast.Program, fnRef ast.Ref, scope heap.ObjectRef) value.Value {
	node := program.Node(fnRef)
	params := make([]string, len(node.List))
	for idx, p := range node.List {
		params[idx] = program.Node(p).Str
	}
	ref := i.heap.NewScriptFunction(node.Str, params, node.A, program, scope, i.funcProto, i.objProto)
	return value.FromRef(value.TagFunction, value.ObjectRef(ref))
}

// isArray reports whether obj's class tag marks it as an array, used to
// keep the synthetic "length" property in sync on indexed writes.
func (i *Interpreter) isArray(obj heap.ObjectRef) bool {
	return i.heap.Object(obj).Class == "Array"
}

func (i *Interpreter) bumpArrayLength(obj heap.ObjectRef, key string) {
	idx, err := strconv.Atoi(key)
	if err != nil || idx < 0 {
		return
	}
	lenVal, _ := i.heap.Get(obj, "length")
	if float64(idx+1) > value.Number(lenVal) {
		i.heap.DefineOwn(obj, "length", value.FromNumber(float64(idx+1)), heap.AttrDontEnum)
	}
}

// toInt32 implements the ECMAScript ToInt32 abstract operation used by
// bitwise operators: NaN/Infinity collapse to 0, finite values truncate
// toward zero modulo 2^32 and reinterpret the low 32 bits as signed.
func toInt32(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	mod := math.Mod(math.Trunc(f), 4294967296)
	if mod < 0 {
		mod += 4294967296
	}
	return int32(uint32(mod))
}
