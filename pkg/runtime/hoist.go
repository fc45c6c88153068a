package runtime

import (
	"github.com/nanov7/nanov7/pkg/ast"
	"github.com/nanov7/nanov7/pkg/heap"
)

// hoistDeclarations implements spec.md §4.4's "var declarations hoist to
// the enclosing function activation; function declarations hoist their
// binding before statements execute". It scans a statement list and every
// nested statement reachable without crossing into a nested function
// body, declaring `var` names as undefined and eagerly binding function
// declarations as closures over defScope.
func (i *Interpreter) hoistDeclarations(program *ast.Program, list []ast.Ref, funcScope, defScope heap.ObjectRef) {
	for _, ref := range list {
		i.hoistStmt(program, ref, funcScope, defScope)
	}
}

func (i *Interpreter) hoistStmt(program *ast.Program, ref ast.Ref, funcScope, defScope heap.ObjectRef) {
	if !ref.Valid() {
		return
	}
	node := program.Node(ref)
	switch node.Kind {
	case ast.KindVarDecl:
		if node.Str == "var" {
			for _, declRef := range node.List {
				decl := program.Node(declRef)
				i.declareVar(funcScope, program.Node(decl.A).Str)
			}
		}
	case ast.KindFunctionDecl:
		fnNode := program.Node(node.A)
		i.declareVar(funcScope, fnNode.Str)
		closure := i.makeClosure(program, node.A, defScope)
		i.heap.Set(funcScope, fnNode.Str, closure)
	case ast.KindBlock:
		i.hoistDeclarations(program, node.List, funcScope, defScope)
	case ast.KindIf:
		i.hoistStmt(program, node.B, funcScope, defScope)
		i.hoistStmt(program, node.C, funcScope, defScope)
	case ast.KindFor:
		i.hoistStmt(program, node.A, funcScope, defScope)
		i.hoistStmt(program, node.D, funcScope, defScope)
	case ast.KindForIn:
		i.hoistStmt(program, node.A, funcScope, defScope)
		i.hoistStmt(program, node.C, funcScope, defScope)
	case ast.KindWhile:
		i.hoistStmt(program, node.B, funcScope, defScope)
	case ast.KindDoWhile:
		i.hoistStmt(program, node.A, funcScope, defScope)
	case ast.KindTry:
		i.hoistStmt(program, node.A, funcScope, defScope)
		i.hoistStmt(program, node.C, funcScope, defScope)
		i.hoistStmt(program, node.D, funcScope, defScope)
	}
}
