package runtime

import (
	"github.com/nanov7/nanov7/pkg/ast"
	"github.com/nanov7/nanov7/pkg/heap"
	"github.com/nanov7/nanov7/pkg/value"
)

// ref is a resolved assignment target: either a scope binding (identifier)
// or an own property of an object (member expression). ++/--, `=` and the
// compound assignment operators all go through get/setRef so the same
// lookup-once-use-twice logic backs every lvalue form.
type ref struct {
	isMember bool
	scope    heap.ObjectRef
	name     string
	obj      heap.ObjectRef
}

// resolveRef evaluates an assignment target's non-value parts (the object
// expression and property name for a member target) without touching the
// existing value, so later callers can read-then-write exactly once.
func (i *Interpreter) resolveRef(program *ast.Program, target ast.Ref, scope heap.ObjectRef) (ref, error) {
	node := program.Node(target)
	if node.Kind == ast.KindMember {
		objVal, propName, err := i.evalMemberTarget(program, node, scope)
		if err != nil {
			return ref{}, err
		}
		objRef, err := i.toObject(objVal)
		if err != nil {
			return ref{}, err
		}
		return ref{isMember: true, obj: objRef, name: propName}, nil
	}
	if node.Kind != ast.KindIdentifier {
		return ref{}, i.throwError("SyntaxError", "invalid assignment target")
	}
	return ref{scope: scope, name: node.Str}, nil
}

// evalMemberTarget resolves a KindMember node's object value and property
// name, handling both `obj.name` (Num == 0, B is an identifier node) and
// `obj[expr]` (Num != 0, B is evaluated and coerced to a string key).
func (i *Interpreter) evalMemberTarget(program *ast.Program, node *ast.Node, scope heap.ObjectRef) (value.Value, string, error) {
	objVal, err := i.evalExpr(program, node.A, scope)
	if err != nil {
		return value.Undefined, "", err
	}
	if node.Num == 0 {
		return objVal, program.Node(node.B).Str, nil
	}
	keyVal, err := i.evalExpr(program, node.B, scope)
	if err != nil {
		return value.Undefined, "", err
	}
	key, err := i.toStringGo(keyVal)
	if err != nil {
		return value.Undefined, "", err
	}
	return objVal, key, nil
}

func (i *Interpreter) getRef(r ref) (value.Value, error) {
	if r.isMember {
		v, _ := i.heap.Get(r.obj, r.name)
		return v, nil
	}
	v, ok := i.resolveName(r.scope, r.name)
	if !ok {
		return value.Undefined, i.throwReferenceError(r.name + " is not defined")
	}
	return v, nil
}

func (i *Interpreter) setRef(r ref, v value.Value) {
	if r.isMember {
		i.heap.Set(r.obj, r.name, v)
		if i.isArray(r.obj) {
			i.bumpArrayLength(r.obj, r.name)
		}
		return
	}
	i.assignName(r.scope, r.name, v)
}
