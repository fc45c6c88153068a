package runtime

import (
	"strconv"

	"github.com/nanov7/nanov7/pkg/ast"
	"github.com/nanov7/nanov7/pkg/heap"
	"github.com/nanov7/nanov7/pkg/value"
)

// evalCall resolves the callee and `this` receiver for a KindCall node. A
// method call (`obj.name(...)` or `obj[expr](...)`) binds `this` to obj;
// any other callee form passes undefined, which callValue then maps to
// the global object per the non-strict "this" rule.
func (i *Interpreter) evalCall(program *ast.Program, node *ast.Node, scope heap.ObjectRef) (value.Value, error) {
	calleeNode := program.Node(node.A)

	var thisVal value.Value = value.Undefined
	var fnVal value.Value
	var err error

	if calleeNode.Kind == ast.KindMember {
		objVal, propName, merr := i.evalMemberTarget(program, calleeNode, scope)
		if merr != nil {
			return value.Undefined, merr
		}
		objRef, oerr := i.toObject(objVal)
		if oerr != nil {
			return value.Undefined, oerr
		}
		thisVal = objVal
		fnVal, _ = i.heap.Get(objRef, propName)
	} else {
		fnVal, err = i.evalExpr(program, node.A, scope)
		if err != nil {
			return value.Undefined, err
		}
	}

	args, err := i.evalArgs(program, node.List, scope)
	if err != nil {
		return value.Undefined, err
	}
	return i.callValue(fnVal, thisVal, args)
}

func (i *Interpreter) evalArgs(program *ast.Program, list []ast.Ref, scope heap.ObjectRef) ([]value.Value, error) {
	args := make([]value.Value, len(list))
	for idx, r := range list {
		v, err := i.evalExpr(program, r, scope)
		if err != nil {
			return nil, err
		}
		args[idx] = v
	}
	return args, nil
}

// callValue implements spec.md §4.4's call semantics: host callbacks run
// with (engine, this, args); script functions get a fresh activation
// chained to their captured scope, with parameters bound, `arguments`
// materialized and `this` defaulted to the global object when the
// receiver is null/undefined.
func (i *Interpreter) callValue(fnVal value.Value, this value.Value, args []value.Value) (value.Value, error) {
	if !value.IsFunction(fnVal) {
		return value.Undefined, i.throwTypeError("value is not a function")
	}
	fn := i.heap.Function(value.Ref(fnVal))

	if value.TagOf(this) == value.TagUndefined || value.TagOf(this) == value.TagNull {
		this = value.FromRef(value.TagObject, i.heap.Global())
	}

	if fn.Native != nil {
		return fn.Native(i.heap, this, args)
	}

	if i.callDepth >= i.maxCallDepth {
		return value.Undefined, i.stackOverflow()
	}
	i.callDepth++
	defer func() { i.callDepth-- }()

	activation := i.newScope(fn.Scope)
	i.frames = append(i.frames, activation)
	defer func() { i.frames = i.frames[:len(i.frames)-1] }()

	i.heap.DefineOwn(activation, "@@isFuncScope", value.True, heap.AttrHidden|heap.AttrDontEnum)
	i.heap.DefineOwn(activation, "@@this", this, heap.AttrHidden|heap.AttrDontEnum)

	for idx, name := range fn.Params {
		var v value.Value = value.Undefined
		if idx < len(args) {
			v = args[idx]
		}
		i.declareBinding(activation, name, v)
	}
	i.declareBinding(activation, "arguments", i.makeArguments(args))

	program := fn.Program
	body := program.Node(fn.Body)
	i.hoistDeclarations(program, body.List, activation, activation)

	for _, stmtRef := range body.List {
		if err := i.checkInterrupt(); err != nil {
			return value.Undefined, err
		}
		c, err := i.execStmt(program, stmtRef, activation)
		if err != nil {
			return value.Undefined, err
		}
		if c.kind == ctrlReturn {
			return c.value, nil
		}
		if c.kind != ctrlNone {
			break
		}
	}
	return value.Undefined, nil
}

func (i *Interpreter) makeArguments(args []value.Value) value.Value {
	obj := i.heap.NewObject(i.objProto, "Arguments")
	for idx, v := range args {
		i.heap.DefineOwn(obj, strconv.Itoa(idx), v, 0)
	}
	i.heap.DefineOwn(obj, "length", value.FromNumber(float64(len(args))), heap.AttrDontEnum)
	return value.FromRef(value.TagObject, obj)
}

// evalNew implements KindNew.
func (i *Interpreter) evalNew(program *ast.Program, node *ast.Node, scope heap.ObjectRef) (value.Value, error) {
	fnVal, err := i.evalExpr(program, node.A, scope)
	if err != nil {
		return value.Undefined, err
	}
	args, err := i.evalArgs(program, node.List, scope)
	if err != nil {
		return value.Undefined, err
	}
	return i.construct(fnVal, args)
}

// construct implements `new F(args)` (spec.md §4.4 "Constructors"): a
// fresh object is created with F.prototype as its prototype (or
// Object.prototype if F has none), F runs with that object as `this`,
// and F's result replaces it only if that result is itself an object.
func (i *Interpreter) construct(fnVal value.Value, args []value.Value) (value.Value, error) {
	if !value.IsFunction(fnVal) {
		return value.Undefined, i.throwTypeError("value is not a constructor")
	}
	fn := i.heap.Function(value.Ref(fnVal))

	proto := i.objProto
	if protoVal, ok := i.heap.Get(fn.Self, "prototype"); ok && value.IsObject(protoVal) {
		proto = value.Ref(protoVal)
	}
	instance := i.heap.NewObject(proto, "Object")
	thisVal := value.FromRef(value.TagObject, instance)

	result, err := i.callValue(fnVal, thisVal, args)
	if err != nil {
		return value.Undefined, err
	}
	if value.IsObject(result) {
		return result, nil
	}
	return thisVal, nil
}
