package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanov7/nanov7/pkg/ast"
)

func TestArenaSentinel(t *testing.T) {
	a := ast.NewArena()
	assert.Equal(t, 1, a.Len())
	assert.False(t, ast.Ref(0).Valid())
	assert.Equal(t, ast.KindInvalid, a.Node(0).Kind)
}

func TestArenaAllocAcrossChunks(t *testing.T) {
	a := ast.NewArena()
	var last ast.Ref
	for i := 0; i < 200; i++ {
		last = a.Alloc(ast.KindNumber, i)
		a.Node(last).Num = float64(i)
	}
	assert.True(t, last.Valid())
	assert.Equal(t, float64(199), a.Node(last).Num)
	assert.Equal(t, 201, a.Len()) // sentinel + 200 nodes
}

func buildSimpleProgram() *ast.Program {
	a := ast.NewArena()
	lit := a.Alloc(ast.KindNumber, 4)
	a.Node(lit).Num = 42
	expr := a.Alloc(ast.KindExprStatement, 4)
	a.Node(expr).A = lit
	prog := a.Alloc(ast.KindProgram, 0)
	a.Node(prog).List = []ast.Ref{expr}
	return &ast.Program{Arena: a, Root: prog, Source: "42;"}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := buildSimpleProgram()
	blob, err := ast.Encode(p)
	require.NoError(t, err)

	decoded, err := ast.Decode(blob)
	require.NoError(t, err)

	assert.Equal(t, p.Source, decoded.Source)
	assert.Equal(t, p.Root, decoded.Root)
	assert.Equal(t, p.NodeCount(), decoded.NodeCount())

	root := decoded.Node(decoded.Root)
	assert.Equal(t, ast.KindProgram, root.Kind)
	require.Len(t, root.List, 1)

	exprStmt := decoded.Node(root.List[0])
	assert.Equal(t, ast.KindExprStatement, exprStmt.Kind)

	lit := decoded.Node(exprStmt.A)
	assert.Equal(t, ast.KindNumber, lit.Kind)
	assert.Equal(t, float64(42), lit.Num)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	_, err := ast.Decode([]byte{0, 1, 2, 3})
	assert.Error(t, err)
}
