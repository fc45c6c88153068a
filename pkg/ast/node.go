// Package ast implements the flat, index-addressed abstract syntax tree
// produced by pkg/parser and walked by pkg/runtime.
//
// Nodes live in an append-only, chunked arena (see [Arena]) rather than
// being individually heap-allocated and linked by pointer. Children are
// referenced by their index into that arena; index 0 is reserved as
// the "no node" sentinel, so a zero-valued Ref field always means "absent"
// without an extra boolean flag, mirroring the off-by-one-safe convention
// used by typed-arena ASTs in the wild (see DESIGN.md).
package ast

// Ref is a 1-based index into an Arena's node slice. The zero Ref is the
// "no node" sentinel.
type Ref int32

// Valid reports whether r refers to an actual node.
func (r Ref) Valid() bool { return r != 0 }

// Kind tags the shape of a Node's payload.
type Kind uint8

const (
	KindInvalid Kind = iota

	// Literals
	KindNumber
	KindString
	KindBoolean
	KindNull
	KindUndefined
	KindRegexp

	// Primary
	KindIdentifier
	KindThis

	// Expressions
	KindArray      // List = elements
	KindObject     // List = property refs (KindProperty)
	KindProperty   // A = key node, B = value node, Num!=0 => computed key (A is evaluated)
	KindFunction   // Str = name (may be empty), List = parameter identifier refs, A = body block
	KindUnary      // Str = operator, A = operand, Num!=0 => prefix (1) vs postfix (0) for ++/--
	KindBinary     // Str = operator, A = left, B = right
	KindLogical    // Str = "&&" | "||" | "??", A = left, B = right
	KindAssign     // Str = operator ("=", "+=", ...), A = target, B = value
	KindConditional // A = test, B = consequent, C = alternate
	KindCall       // A = callee, List = arguments
	KindNew        // A = callee, List = arguments
	KindMember     // A = object, B = property (identifier or expr), Num!=0 => computed
	KindSequence   // List = expressions
	KindSpread     // A = argument (supplements call/array spread; optional surface)

	// Statements
	KindProgram       // List = top-level statements
	KindBlock         // List = statements
	KindExprStatement // A = expression
	KindEmpty
	KindVarDecl     // Str = kind ("var"|"let"|"const"), List = KindVarDeclarator refs
	KindVarDeclarator // A = identifier, B = initializer (may be 0)
	KindFunctionDecl  // A = KindFunction node
	KindReturn        // A = argument (may be 0)
	KindIf            // A = test, B = consequent, C = alternate (may be 0)
	KindFor           // A = init, B = test, C = update, D = body
	KindForIn         // Str = "in"|"of", A = left (identifier or var decl), B = right, C = body
	KindWhile         // A = test, B = body
	KindDoWhile       // A = body, B = test
	KindBreak
	KindContinue
	KindThrow // A = argument
	KindTry   // A = block, B = catch param (may be 0), C = catch block (may be 0), D = finally block (may be 0)
)

// nodeKindNames is used by Kind.String and ast dumps; kept in lock-step
// with the Kind enum above for debug/trace output.
var nodeKindNames = [...]string{
	KindInvalid:       "Invalid",
	KindNumber:        "Number",
	KindString:        "String",
	KindBoolean:       "Boolean",
	KindNull:          "Null",
	KindUndefined:     "Undefined",
	KindRegexp:        "Regexp",
	KindIdentifier:    "Identifier",
	KindThis:          "This",
	KindArray:         "Array",
	KindObject:        "Object",
	KindProperty:      "Property",
	KindFunction:      "Function",
	KindUnary:         "Unary",
	KindBinary:        "Binary",
	KindLogical:       "Logical",
	KindAssign:        "Assign",
	KindConditional:   "Conditional",
	KindCall:          "Call",
	KindNew:           "New",
	KindMember:        "Member",
	KindSequence:      "Sequence",
	KindSpread:        "Spread",
	KindProgram:       "Program",
	KindBlock:         "Block",
	KindExprStatement: "ExprStatement",
	KindEmpty:         "Empty",
	KindVarDecl:       "VarDecl",
	KindVarDeclarator: "VarDeclarator",
	KindFunctionDecl:  "FunctionDecl",
	KindReturn:        "Return",
	KindIf:            "If",
	KindFor:           "For",
	KindForIn:         "ForIn",
	KindWhile:         "While",
	KindDoWhile:       "DoWhile",
	KindBreak:         "Break",
	KindContinue:      "Continue",
	KindThrow:         "Throw",
	KindTry:           "Try",
}

// String returns the Kind's debug name.
func (k Kind) String() string {
	if int(k) < len(nodeKindNames) && nodeKindNames[k] != "" {
		return nodeKindNames[k]
	}
	return "Unknown"
}

// Node is the fixed-shape payload stored per tree node. Which fields are
// meaningful depends on Kind; see the comments on the Kind constants above.
type Node struct {
	Kind Kind
	Pos  int // byte offset into the source, for error reporting

	A, B, C, D Ref
	List       []Ref

	Str string
	Num float64
}
