package runtime

import (
	"math"
	"strings"

	"github.com/nanov7/nanov7/pkg/ast"
	"github.com/nanov7/nanov7/pkg/heap"
	"github.com/nanov7/nanov7/pkg/value"
)

func mod(l, r float64) float64 { return math.Mod(l, r) }
func pow(l, r float64) float64 { return math.Pow(l, r) }

func (i *Interpreter) evalUnary(program *ast.Program, node *ast.Node, scope heap.ObjectRef) (value.Value, error) {
	switch node.Str {
	case "typeof":
		operand := program.Node(node.A)
		if operand.Kind == ast.KindIdentifier {
			v, ok := i.resolveName(scope, operand.Str)
			if !ok {
				return i.heap.InternString("undefined"), nil
			}
			return i.heap.InternString(value.TypeOf(v)), nil
		}
		v, err := i.evalExpr(program, node.A, scope)
		if err != nil {
			return value.Undefined, err
		}
		return i.heap.InternString(value.TypeOf(v)), nil
	case "delete":
		operand := program.Node(node.A)
		if operand.Kind != ast.KindMember {
			return value.True, nil
		}
		objVal, propName, err := i.evalMemberTarget(program, operand, scope)
		if err != nil {
			return value.Undefined, err
		}
		objRef, err := i.toObject(objVal)
		if err != nil {
			return value.Undefined, err
		}
		return value.FromBool(i.heap.Delete(objRef, propName)), nil
	case "++", "--":
		r, err := i.resolveRef(program, node.A, scope)
		if err != nil {
			return value.Undefined, err
		}
		cur, err := i.getRef(r)
		if err != nil {
			return value.Undefined, err
		}
		n, err := i.toNumber(cur)
		if err != nil {
			return value.Undefined, err
		}
		delta := 1.0
		if node.Str == "--" {
			delta = -1.0
		}
		updated := value.FromNumber(n + delta)
		i.setRef(r, updated)
		if node.Num != 0 {
			return updated, nil
		}
		return value.FromNumber(n), nil
	}

	v, err := i.evalExpr(program, node.A, scope)
	if err != nil {
		return value.Undefined, err
	}
	switch node.Str {
	case "!":
		return value.FromBool(!i.toBoolean(v)), nil
	case "-":
		n, err := i.toNumber(v)
		if err != nil {
			return value.Undefined, err
		}
		return value.FromNumber(-n), nil
	case "+":
		n, err := i.toNumber(v)
		if err != nil {
			return value.Undefined, err
		}
		return value.FromNumber(n), nil
	case "~":
		n, err := i.toNumber(v)
		if err != nil {
			return value.Undefined, err
		}
		return value.FromNumber(float64(^toInt32(n))), nil
	case "void":
		return value.Undefined, nil
	}
	return value.Undefined, i.throwError("Internal", "unknown unary operator "+node.Str)
}

func (i *Interpreter) evalLogical(program *ast.Program, node *ast.Node, scope heap.ObjectRef) (value.Value, error) {
	left, err := i.evalExpr(program, node.A, scope)
	if err != nil {
		return value.Undefined, err
	}
	switch node.Str {
	case "&&":
		if !i.toBoolean(left) {
			return left, nil
		}
	case "||":
		if i.toBoolean(left) {
			return left, nil
		}
	case "??":
		if value.TagOf(left) != value.TagUndefined && value.TagOf(left) != value.TagNull {
			return left, nil
		}
	}
	return i.evalExpr(program, node.B, scope)
}

func (i *Interpreter) evalAssign(program *ast.Program, node *ast.Node, scope heap.ObjectRef) (value.Value, error) {
	r, err := i.resolveRef(program, node.A, scope)
	if err != nil {
		return value.Undefined, err
	}
	rhs, err := i.evalExpr(program, node.B, scope)
	if err != nil {
		return value.Undefined, err
	}
	if node.Str == "=" {
		i.setRef(r, rhs)
		return rhs, nil
	}
	cur, err := i.getRef(r)
	if err != nil {
		return value.Undefined, err
	}
	result, err := i.applyBinaryOp(strings.TrimSuffix(node.Str, "="), cur, rhs)
	if err != nil {
		return value.Undefined, err
	}
	i.setRef(r, result)
	return result, nil
}

func (i *Interpreter) evalBinary(program *ast.Program, node *ast.Node, scope heap.ObjectRef) (value.Value, error) {
	left, err := i.evalExpr(program, node.A, scope)
	if err != nil {
		return value.Undefined, err
	}
	right, err := i.evalExpr(program, node.B, scope)
	if err != nil {
		return value.Undefined, err
	}
	return i.applyBinaryOp(node.Str, left, right)
}

func (i *Interpreter) applyBinaryOp(op string, left, right value.Value) (value.Value, error) {
	switch op {
	case "+":
		return i.opAdd(left, right)
	case "-", "*", "/", "%", "**":
		ln, err := i.toNumber(left)
		if err != nil {
			return value.Undefined, err
		}
		rn, err := i.toNumber(right)
		if err != nil {
			return value.Undefined, err
		}
		return value.FromNumber(arith(op, ln, rn)), nil
	case "&", "|", "^", "<<", ">>", ">>>":
		ln, err := i.toNumber(left)
		if err != nil {
			return value.Undefined, err
		}
		rn, err := i.toNumber(right)
		if err != nil {
			return value.Undefined, err
		}
		return value.FromNumber(bitwise(op, ln, rn)), nil
	case "<", "<=", ">", ">=":
		return i.compare(op, left, right)
	case "==":
		eq, err := i.abstractEquals(left, right)
		return value.FromBool(eq), err
	case "!=":
		eq, err := i.abstractEquals(left, right)
		return value.FromBool(!eq), err
	case "===":
		return value.FromBool(i.strictEquals(left, right)), nil
	case "!==":
		return value.FromBool(!i.strictEquals(left, right)), nil
	case "instanceof":
		return i.instanceOf(left, right)
	}
	return value.Undefined, i.throwError("Internal", "unknown binary operator "+op)
}

// opAdd implements `+`'s dual string-concatenation/numeric-addition rule:
// if either toPrimitive'd operand is a string, concatenate; otherwise add
// as numbers (spec.md §4.4 ToPrimitive-driven coercion).
func (i *Interpreter) opAdd(left, right value.Value) (value.Value, error) {
	lp, err := i.toPrimitive(left, "")
	if err != nil {
		return value.Undefined, err
	}
	rp, err := i.toPrimitive(right, "")
	if err != nil {
		return value.Undefined, err
	}
	if value.IsString(lp) || value.IsString(rp) {
		ls, err := i.toStringGo(lp)
		if err != nil {
			return value.Undefined, err
		}
		rs, err := i.toStringGo(rp)
		if err != nil {
			return value.Undefined, err
		}
		return i.heap.InternString(ls + rs), nil
	}
	ln, err := i.toNumber(lp)
	if err != nil {
		return value.Undefined, err
	}
	rn, err := i.toNumber(rp)
	if err != nil {
		return value.Undefined, err
	}
	return value.FromNumber(ln + rn), nil
}

func arith(op string, l, r float64) float64 {
	switch op {
	case "-":
		return l - r
	case "*":
		return l * r
	case "/":
		return l / r
	case "%":
		return mod(l, r)
	case "**":
		return pow(l, r)
	}
	return 0
}

func bitwise(op string, l, r float64) float64 {
	li, ri := toInt32(l), toInt32(r)
	switch op {
	case "&":
		return float64(li & ri)
	case "|":
		return float64(li | ri)
	case "^":
		return float64(li ^ ri)
	case "<<":
		return float64(li << (uint32(ri) & 31))
	case ">>":
		return float64(li >> (uint32(ri) & 31))
	case ">>>":
		return float64(uint32(li) >> (uint32(ri) & 31))
	}
	return 0
}

// compare implements the abstract relational comparison: string operands
// compare lexicographically, everything else compares numerically with
// NaN making every relational result false.
func (i *Interpreter) compare(op string, left, right value.Value) (value.Value, error) {
	lp, err := i.toPrimitive(left, "number")
	if err != nil {
		return value.Undefined, err
	}
	rp, err := i.toPrimitive(right, "number")
	if err != nil {
		return value.Undefined, err
	}
	if value.IsString(lp) && value.IsString(rp) {
		ls, _ := i.toStringGo(lp)
		rs, _ := i.toStringGo(rp)
		return value.FromBool(stringCompare(op, ls, rs)), nil
	}
	ln, err := i.toNumber(lp)
	if err != nil {
		return value.Undefined, err
	}
	rn, err := i.toNumber(rp)
	if err != nil {
		return value.Undefined, err
	}
	if ln != ln || rn != rn { // NaN
		return value.False, nil
	}
	switch op {
	case "<":
		return value.FromBool(ln < rn), nil
	case "<=":
		return value.FromBool(ln <= rn), nil
	case ">":
		return value.FromBool(ln > rn), nil
	case ">=":
		return value.FromBool(ln >= rn), nil
	}
	return value.False, nil
}

func stringCompare(op, l, r string) bool {
	switch op {
	case "<":
		return l < r
	case "<=":
		return l <= r
	case ">":
		return l > r
	case ">=":
		return l >= r
	}
	return false
}

// instanceOf walks lhs's prototype chain comparing against rhs's
// "prototype" own property (spec.md §6 `is_instanceof`).
func (i *Interpreter) instanceOf(lhs, rhs value.Value) (value.Value, error) {
	if !value.IsFunction(rhs) {
		return value.Undefined, i.throwTypeError("right-hand side of instanceof is not callable")
	}
	if !value.IsObject(lhs) && !value.IsFunction(lhs) {
		return value.False, nil
	}
	fn := i.heap.Function(value.Ref(rhs))
	protoVal, ok := i.heap.Get(fn.Self, "prototype")
	if !ok || !value.IsObject(protoVal) {
		return value.False, nil
	}
	proto := value.Ref(protoVal)
	for cur := i.heap.Object(value.Ref(lhs)).Proto; cur != 0; cur = i.heap.Object(cur).Proto {
		if cur == proto {
			return value.True, nil
		}
	}
	return value.False, nil
}
