package runtime

import (
	"strconv"

	"github.com/nanov7/nanov7/pkg/ast"
	"github.com/nanov7/nanov7/pkg/heap"
	"github.com/nanov7/nanov7/pkg/value"
)

// execStmt executes one statement node, returning the completion it
// produces (ctrlNone on ordinary fall-through, or a return/break/continue
// signal for the enclosing loop/call to interpret) plus any exception.
func (i *Interpreter) execStmt(program *ast.Program, ref ast.Ref, scope heap.ObjectRef) (ctrl, error) {
	node := program.Node(ref)
	switch node.Kind {
	case ast.KindExprStatement:
		if _, err := i.evalExpr(program, node.A, scope); err != nil {
			return ctrlFallthrough, err
		}
		return ctrlFallthrough, nil
	case ast.KindEmpty:
		return ctrlFallthrough, nil
	case ast.KindBlock:
		return i.execBlock(program, node.List, i.newScope(scope))
	case ast.KindVarDecl:
		return i.execVarDecl(program, node, scope)
	case ast.KindFunctionDecl:
		return ctrlFallthrough, nil // bound during hoisting
	case ast.KindReturn:
		if !node.A.Valid() {
			return ctrl{kind: ctrlReturn, value: value.Undefined}, nil
		}
		v, err := i.evalExpr(program, node.A, scope)
		if err != nil {
			return ctrlFallthrough, err
		}
		return ctrl{kind: ctrlReturn, value: v}, nil
	case ast.KindIf:
		test, err := i.evalExpr(program, node.A, scope)
		if err != nil {
			return ctrlFallthrough, err
		}
		if i.toBoolean(test) {
			return i.execStmt(program, node.B, scope)
		}
		if node.C.Valid() {
			return i.execStmt(program, node.C, scope)
		}
		return ctrlFallthrough, nil
	case ast.KindWhile:
		return i.execWhile(program, node, scope)
	case ast.KindDoWhile:
		return i.execDoWhile(program, node, scope)
	case ast.KindFor:
		return i.execFor(program, node, scope)
	case ast.KindForIn:
		return i.execForIn(program, node, scope)
	case ast.KindBreak:
		return ctrl{kind: ctrlBreak}, nil
	case ast.KindContinue:
		return ctrl{kind: ctrlContinue}, nil
	case ast.KindThrow:
		v, err := i.evalExpr(program, node.A, scope)
		if err != nil {
			return ctrlFallthrough, err
		}
		return ctrlFallthrough, i.newThrowError(v)
	case ast.KindTry:
		return i.execTry(program, node, scope)
	default:
		return ctrlFallthrough, i.throwError("Internal", "cannot execute node kind "+node.Kind.String())
	}
}

func (i *Interpreter) execBlock(program *ast.Program, list []ast.Ref, scope heap.ObjectRef) (ctrl, error) {
	i.hoistDeclarations(program, list, findFuncScope(i, scope), scope)
	for _, ref := range list {
		if err := i.checkInterrupt(); err != nil {
			return ctrlFallthrough, err
		}
		c, err := i.execStmt(program, ref, scope)
		if err != nil || c.kind != ctrlNone {
			return c, err
		}
	}
	return ctrlFallthrough, nil
}

// findFuncScope walks up from scope to the nearest activation marked
// "@@isFuncScope", the hoisting target for `var` bindings declared inside
// a nested block.
func findFuncScope(i *Interpreter, scope heap.ObjectRef) heap.ObjectRef {
	for cur := scope; cur != 0; cur = i.heap.Object(cur).Parent {
		if _, ok := i.heap.GetOwn(cur, "@@isFuncScope"); ok {
			return cur
		}
	}
	return scope
}

func (i *Interpreter) execVarDecl(program *ast.Program, node *ast.Node, scope heap.ObjectRef) (ctrl, error) {
	funcScope := findFuncScope(i, scope)
	for _, declRef := range node.List {
		decl := program.Node(declRef)
		name := program.Node(decl.A).Str
		var v value.Value = value.Undefined
		if decl.B.Valid() {
			var err error
			v, err = i.evalExpr(program, decl.B, scope)
			if err != nil {
				return ctrlFallthrough, err
			}
		} else if node.Str != "var" {
			v = value.Undefined
		} else {
			continue // no initializer: leave the hoisted undefined binding alone
		}
		if node.Str == "var" {
			i.assignName(funcScope, name, v)
		} else {
			i.declareBinding(scope, name, v)
		}
	}
	return ctrlFallthrough, nil
}

func (i *Interpreter) execWhile(program *ast.Program, node *ast.Node, scope heap.ObjectRef) (ctrl, error) {
	for {
		test, err := i.evalExpr(program, node.A, scope)
		if err != nil {
			return ctrlFallthrough, err
		}
		if !i.toBoolean(test) {
			return ctrlFallthrough, nil
		}
		if err := i.checkInterrupt(); err != nil {
			return ctrlFallthrough, err
		}
		c, err := i.execStmt(program, node.B, scope)
		if err != nil {
			return ctrlFallthrough, err
		}
		switch c.kind {
		case ctrlBreak:
			return ctrlFallthrough, nil
		case ctrlReturn:
			return c, nil
		}
	}
}

func (i *Interpreter) execDoWhile(program *ast.Program, node *ast.Node, scope heap.ObjectRef) (ctrl, error) {
	for {
		c, err := i.execStmt(program, node.A, scope)
		if err != nil {
			return ctrlFallthrough, err
		}
		switch c.kind {
		case ctrlBreak:
			return ctrlFallthrough, nil
		case ctrlReturn:
			return c, nil
		}
		test, err := i.evalExpr(program, node.B, scope)
		if err != nil {
			return ctrlFallthrough, err
		}
		if !i.toBoolean(test) {
			return ctrlFallthrough, nil
		}
		if err := i.checkInterrupt(); err != nil {
			return ctrlFallthrough, err
		}
	}
}

func (i *Interpreter) execFor(program *ast.Program, node *ast.Node, scope heap.ObjectRef) (ctrl, error) {
	loopScope := i.newScope(scope)
	if node.A.Valid() {
		if _, err := i.execStmt(program, node.A, loopScope); err != nil {
			return ctrlFallthrough, err
		}
	}
	for {
		if node.B.Valid() {
			test, err := i.evalExpr(program, node.B, loopScope)
			if err != nil {
				return ctrlFallthrough, err
			}
			if !i.toBoolean(test) {
				return ctrlFallthrough, nil
			}
		}
		if err := i.checkInterrupt(); err != nil {
			return ctrlFallthrough, err
		}
		c, err := i.execStmt(program, node.D, loopScope)
		if err != nil {
			return ctrlFallthrough, err
		}
		switch c.kind {
		case ctrlBreak:
			return ctrlFallthrough, nil
		case ctrlReturn:
			return c, nil
		}
		if node.C.Valid() {
			if _, err := i.evalExpr(program, node.C, loopScope); err != nil {
				return ctrlFallthrough, err
			}
		}
	}
}

// execForIn implements both `for (x in obj)` (own+inherited enumerable
// property names) and `for (x of arr)` (element-by-element over an
// array's indexed own properties, this engine's only iterable shape).
func (i *Interpreter) execForIn(program *ast.Program, node *ast.Node, scope heap.ObjectRef) (ctrl, error) {
	rightVal, err := i.evalExpr(program, node.B, scope)
	if err != nil {
		return ctrlFallthrough, err
	}
	if value.TagOf(rightVal) == value.TagUndefined || value.TagOf(rightVal) == value.TagNull {
		return ctrlFallthrough, nil
	}
	objRef, err := i.toObject(rightVal)
	if err != nil {
		return ctrlFallthrough, err
	}

	var items []value.Value
	if node.Str == "of" {
		lenVal, _ := i.heap.Get(objRef, "length")
		n := int(value.Number(lenVal))
		for idx := 0; idx < n; idx++ {
			v, _ := i.heap.Get(objRef, strconv.Itoa(idx))
			items = append(items, v)
		}
	} else {
		for _, name := range i.heap.OwnNames(objRef) {
			items = append(items, i.heap.InternString(name))
		}
	}

	left := program.Node(node.A)
	for _, item := range items {
		loopScope := i.newScope(scope)
		if left.Kind == ast.KindVarDecl {
			decl := program.Node(left.List[0])
			name := program.Node(decl.A).Str
			if left.Str == "var" {
				i.assignName(findFuncScope(i, scope), name, item)
			} else {
				i.declareBinding(loopScope, name, item)
			}
		} else {
			r, err := i.resolveRef(program, node.A, loopScope)
			if err != nil {
				return ctrlFallthrough, err
			}
			i.setRef(r, item)
		}

		if err := i.checkInterrupt(); err != nil {
			return ctrlFallthrough, err
		}
		c, err := i.execStmt(program, node.C, loopScope)
		if err != nil {
			return ctrlFallthrough, err
		}
		switch c.kind {
		case ctrlBreak:
			return ctrlFallthrough, nil
		case ctrlReturn:
			return c, nil
		}
	}
	return ctrlFallthrough, nil
}

// execTry implements try/catch/finally (spec.md §4.4 "Exceptions"):
// finally always runs, and a throw or return from it replaces whatever
// the try/catch block was about to produce.
func (i *Interpreter) execTry(program *ast.Program, node *ast.Node, scope heap.ObjectRef) (ctrl, error) {
	c, err := i.execStmt(program, node.A, scope)

	if te, ok := err.(*ThrowError); ok && node.C.Valid() {
		catchScope := i.newScope(scope)
		if node.B.Valid() {
			paramName := program.Node(node.B).Str
			i.declareBinding(catchScope, paramName, te.Value)
		}
		c, err = i.execStmt(program, node.C, catchScope)
	}

	if node.D.Valid() {
		fc, ferr := i.execStmt(program, node.D, scope)
		if ferr != nil {
			return fc, ferr
		}
		if fc.kind != ctrlNone {
			return fc, nil
		}
	}
	return c, err
}
