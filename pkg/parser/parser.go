package parser

// Package parser implements a recursive-descent (Pratt / precedence
// climbing) JavaScript parser.
//
// # Architecture
//
//   - Lexer: tokenizes source text into a stream of tokens (lexer.go,
//     tokens.go)
//   - Parser: builds a flat, index-addressed pkg/ast.Program from that
//     token stream (parser_impl.go)
//
// # Example
//
//	prog, err := parser.Parse("let x = 1 + 2; x;")
//	if err != nil {
//	    log.Fatal(err)
//	}

import (
	"github.com/nanov7/nanov7/pkg/ast"
)

// Parse compiles JavaScript source into a Program.
func Parse(source string, opts ...CompileOption) (*ast.Program, error) {
	p := newParser(source, opts...)
	return p.parse()
}

// Compile is an alias for Parse, kept for API symmetry with the engine's
// other operations (compile/execute/apply).
func Compile(source string, opts ...CompileOption) (*ast.Program, error) {
	return Parse(source, opts...)
}

// CompileOption configures parsing behavior.
type CompileOption func(*CompileOptions)

// CompileOptions holds parser configuration.
type CompileOptions struct {
	// EnableRecovery makes the parser collect multiple syntax errors
	// instead of stopping at the first one.
	EnableRecovery bool
	// MaxDepth bounds expression/statement nesting, guarding against
	// unbounded Go call-stack recursion on pathological input (the parser
	// analogue of the interpreter's C-stack guard).
	MaxDepth int
}

// WithRecovery enables multi-error recovery mode.
func WithRecovery(enable bool) CompileOption {
	return func(o *CompileOptions) { o.EnableRecovery = enable }
}

// WithMaxDepth sets the maximum parsing depth.
func WithMaxDepth(depth int) CompileOption {
	return func(o *CompileOptions) { o.MaxDepth = depth }
}
