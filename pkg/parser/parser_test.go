package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanov7/nanov7/pkg/ast"
	"github.com/nanov7/nanov7/pkg/parser"
)

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := parser.Parse(src)
	require.NoError(t, err, "parsing %q", src)
	return prog
}

// firstExprStmt drills into `<expr>;` and returns the root expression's
// node, the shape most of the literal/operator tests below check.
func firstExprStmt(t *testing.T, prog *ast.Program) *ast.Node {
	t.Helper()
	root := prog.Node(prog.Root)
	require.Equal(t, ast.KindProgram, root.Kind)
	require.Len(t, root.List, 1)
	stmt := prog.Node(root.List[0])
	require.Equal(t, ast.KindExprStatement, stmt.Kind)
	return prog.Node(stmt.A)
}

func TestParseLiterals(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  ast.Kind
		num   float64
		str   string
	}{
		{"int", "42;", ast.KindNumber, 42, ""},
		{"float", "3.14;", ast.KindNumber, 3.14, ""},
		{"scientific", "1e3;", ast.KindNumber, 1000, ""},
		{"hex", "0xFF;", ast.KindNumber, 255, ""},
		{"octal", "0o17;", ast.KindNumber, 15, ""},
		{"binary", "0b101;", ast.KindNumber, 5, ""},
		{"string", `"hello";`, ast.KindString, 0, "hello"},
		{"string escape", `"a\nb";`, ast.KindString, 0, "a\nb"},
		{"true", "true;", ast.KindBoolean, 1, ""},
		{"false", "false;", ast.KindBoolean, 0, ""},
		{"null", "null;", ast.KindNull, 0, ""},
		{"undefined", "undefined;", ast.KindUndefined, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := parseProgram(t, tt.input)
			node := firstExprStmt(t, prog)
			assert.Equal(t, tt.kind, node.Kind)
			if tt.kind == ast.KindNumber || tt.kind == ast.KindBoolean {
				assert.Equal(t, tt.num, node.Num)
			}
			if tt.kind == ast.KindString {
				assert.Equal(t, tt.str, node.Str)
			}
		})
	}
}

func TestParseBinaryPrecedence(t *testing.T) {
	// 1 + 2 * 3 must parse as 1 + (2 * 3), i.e. the outer node is "+".
	prog := parseProgram(t, "1 + 2 * 3;")
	top := firstExprStmt(t, prog)
	require.Equal(t, ast.KindBinary, top.Kind)
	assert.Equal(t, "+", top.Str)

	right := prog.Node(top.B)
	require.Equal(t, ast.KindBinary, right.Kind)
	assert.Equal(t, "*", right.Str)
}

func TestParseExponentIsRightAssociative(t *testing.T) {
	// 2 ** 3 ** 2 must parse as 2 ** (3 ** 2).
	prog := parseProgram(t, "2 ** 3 ** 2;")
	top := firstExprStmt(t, prog)
	require.Equal(t, ast.KindBinary, top.Kind)
	assert.Equal(t, "**", top.Str)

	left := prog.Node(top.A)
	assert.Equal(t, ast.KindNumber, left.Kind)

	right := prog.Node(top.B)
	require.Equal(t, ast.KindBinary, right.Kind)
	assert.Equal(t, "**", right.Str)
}

func TestParseAssignmentIsRightAssociative(t *testing.T) {
	// a = b = 1; must parse as a = (b = 1).
	prog := parseProgram(t, "a = b = 1;")
	top := firstExprStmt(t, prog)
	require.Equal(t, ast.KindAssign, top.Kind)

	right := prog.Node(top.B)
	require.Equal(t, ast.KindAssign, right.Kind)
}

func TestParseConditional(t *testing.T) {
	prog := parseProgram(t, "a ? b : c;")
	top := firstExprStmt(t, prog)
	require.Equal(t, ast.KindConditional, top.Kind)
	assert.Equal(t, ast.KindIdentifier, prog.Node(top.A).Kind)
	assert.Equal(t, ast.KindIdentifier, prog.Node(top.B).Kind)
	assert.Equal(t, ast.KindIdentifier, prog.Node(top.C).Kind)
}

func TestParseMemberAndCallChain(t *testing.T) {
	prog := parseProgram(t, "a.b[c].d();")
	call := firstExprStmt(t, prog)
	require.Equal(t, ast.KindCall, call.Kind)

	dMember := prog.Node(call.A)
	require.Equal(t, ast.KindMember, dMember.Kind)
	assert.Equal(t, float64(0), dMember.Num) // non-computed .d

	bracketMember := prog.Node(dMember.A)
	require.Equal(t, ast.KindMember, bracketMember.Kind)
	assert.Equal(t, float64(1), bracketMember.Num) // computed [c]
}

func TestParseArrayAndObjectLiterals(t *testing.T) {
	prog := parseProgram(t, `[1, 2, 3];`)
	arr := firstExprStmt(t, prog)
	require.Equal(t, ast.KindArray, arr.Kind)
	assert.Len(t, arr.List, 3)

	prog2 := parseProgram(t, `({a: 1, "b": 2});`)
	obj := firstExprStmt(t, prog2)
	require.Equal(t, ast.KindObject, obj.Kind)
	require.Len(t, obj.List, 2)
	prop := prog2.Node(obj.List[0])
	require.Equal(t, ast.KindProperty, prop.Kind)
	assert.Equal(t, "a", prog2.Node(prop.A).Str)
}

func TestParseFunctionExpression(t *testing.T) {
	prog := parseProgram(t, "var f = function(a, b) { return a + b; };")
	root := prog.Node(prog.Root)
	decl := prog.Node(root.List[0])
	require.Equal(t, ast.KindVarDecl, decl.Kind)
	declarator := prog.Node(decl.List[0])
	fn := prog.Node(declarator.B)
	require.Equal(t, ast.KindFunction, fn.Kind)
	assert.Len(t, fn.List, 2)
}

func TestParseIfElse(t *testing.T) {
	prog := parseProgram(t, "if (a) { b; } else { c; }")
	root := prog.Node(prog.Root)
	stmt := prog.Node(root.List[0])
	require.Equal(t, ast.KindIf, stmt.Kind)
	assert.True(t, stmt.C.Valid())
}

func TestParseClassicForLoop(t *testing.T) {
	prog := parseProgram(t, "for (var i = 0; i < 10; i = i + 1) { x; }")
	root := prog.Node(prog.Root)
	stmt := prog.Node(root.List[0])
	require.Equal(t, ast.KindFor, stmt.Kind)
	init := prog.Node(stmt.A)
	assert.Equal(t, ast.KindVarDecl, init.Kind)
	test := prog.Node(stmt.B)
	assert.Equal(t, ast.KindBinary, test.Kind)
}

func TestParseForIn(t *testing.T) {
	prog := parseProgram(t, "for (var k in obj) { x; }")
	root := prog.Node(prog.Root)
	stmt := prog.Node(root.List[0])
	require.Equal(t, ast.KindForIn, stmt.Kind)
	assert.Equal(t, "in", stmt.Str)
}

func TestParseTryCatchFinally(t *testing.T) {
	prog := parseProgram(t, "try { a; } catch (e) { b; } finally { c; }")
	root := prog.Node(prog.Root)
	stmt := prog.Node(root.List[0])
	require.Equal(t, ast.KindTry, stmt.Kind)
	assert.True(t, stmt.B.Valid())
	assert.True(t, stmt.C.Valid())
	assert.True(t, stmt.D.Valid())
}

func TestParseRegexLiteral(t *testing.T) {
	prog := parseProgram(t, `/abc/gi;`)
	node := firstExprStmt(t, prog)
	require.Equal(t, ast.KindRegexp, node.Kind)
	assert.Equal(t, "abc/gi", node.Str)
}

func TestParseNewExpression(t *testing.T) {
	prog := parseProgram(t, "new Foo(1, 2);")
	node := firstExprStmt(t, prog)
	require.Equal(t, ast.KindNew, node.Kind)
	assert.Len(t, node.List, 2)
}

func TestParseUnaryAndPostfix(t *testing.T) {
	prog := parseProgram(t, "typeof a;")
	node := firstExprStmt(t, prog)
	require.Equal(t, ast.KindUnary, node.Kind)
	assert.Equal(t, "typeof", node.Str)
	assert.Equal(t, float64(1), node.Num)

	prog2 := parseProgram(t, "a++;")
	node2 := firstExprStmt(t, prog2)
	require.Equal(t, ast.KindUnary, node2.Kind)
	assert.Equal(t, float64(0), node2.Num) // postfix
}

func TestParseSyntaxErrors(t *testing.T) {
	badInputs := []string{
		"(",
		"1 +;",
		"if (a",
		"try { a; }",
	}
	for _, in := range badInputs {
		_, err := parser.Parse(in)
		assert.Error(t, err, "expected error parsing %q", in)
	}
}
