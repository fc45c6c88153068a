// Package nanov7 provides a small embeddable JavaScript execution core:
// NaN-boxed tagged values, a managed heap with precise mark/sweep/compact
// garbage collection, a recursive-descent parser producing a flat AST,
// and a tree-walking interpreter.
//
// # Quick Start
//
//	// One-shot evaluation
//	result, err := nanov7.Eval("40 + 2;")
//
//	// Reuse one engine across many calls
//	e := engine.Create()
//	result, status, err := e.Execute("40 + 2;")
//
//	// With options
//	result, err := nanov7.Eval("40 + 2;",
//	    nanov7.WithCache(256),
//	    nanov7.WithStackBase(2000),
//	)
//
// # More Information
//
// For the full embedding surface, see:
//   - Engine: github.com/nanov7/nanov7/pkg/engine
//   - Heap/GC: github.com/nanov7/nanov7/pkg/heap
//   - Parser/AST: github.com/nanov7/nanov7/pkg/parser, github.com/nanov7/nanov7/pkg/ast
//   - Interpreter: github.com/nanov7/nanov7/pkg/runtime
package nanov7

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nanov7/nanov7/pkg/engine"
	"github.com/nanov7/nanov7/pkg/value"
)

// Version returns the current version of this engine.
func Version() string {
	return "v0.1.0-dev"
}

// Option re-exports engine.Option so callers only need to import the
// top-level nanov7 package for simple use.
type Option = engine.Option

// WithArenas, WithStringHeap, WithStackBase, WithLogger and WithCache
// re-export the matching engine.With* constructors for convenience.
func WithArenas(initialCells, maxCells uint32) Option { return engine.WithArenas(initialCells, maxCells) }
func WithStringHeap(initial, max uint32) Option        { return engine.WithStringHeap(initial, max) }
func WithStackBase(maxCallDepth int) Option             { return engine.WithStackBase(maxCallDepth) }
func WithLogger(logger *slog.Logger) Option            { return engine.WithLogger(logger) }
func WithCache(capacity int) Option                     { return engine.WithCache(capacity) }

// Eval is a convenience function that creates a fresh engine, executes
// src once and tears the engine down. For repeated evaluations against
// the same global scope, create an *engine.Engine directly instead.
//
// Example:
//
//	result, err := nanov7.Eval("40 + 2;")
func Eval(src string, opts ...Option) (value.Value, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return EvalWithContext(ctx, src, opts...)
}

// EvalWithContext evaluates src with a caller-supplied context: if ctx is
// canceled or its deadline expires before execution finishes, the
// engine's cooperative Interrupt flag is raised so the next statement
// boundary aborts the run (spec.md §4.4 "Interrupt").
func EvalWithContext(ctx context.Context, src string, opts ...Option) (value.Value, error) {
	e := engine.CreateOpt(opts...)
	defer e.Destroy()

	done := make(chan struct{})
	var (
		result value.Value
		err    error
	)
	go func() {
		defer close(done)
		result, _, err = e.Execute(src)
	}()

	select {
	case <-done:
		return result, err
	case <-ctx.Done():
		e.Interrupt()
		<-done
		if err == nil {
			err = ctx.Err()
		}
		return result, err
	}
}

// MustEval is like Eval but panics if src fails to execute. It simplifies
// safe initialization of global variables from a constant script.
func MustEval(src string) value.Value {
	result, err := Eval(src)
	if err != nil {
		panic(fmt.Sprintf("nanov7: Eval(%q): %v", src, err))
	}
	return result
}
