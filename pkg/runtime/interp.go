// Package runtime implements the AST-walking interpreter: scope chains
// modeled as heap objects, call/construct semantics, exception unwinding
// via try/catch/finally, and the statement/expression dispatch tables
// driven by pkg/ast's flat node kinds.
package runtime

import (
	"log/slog"

	"github.com/nanov7/nanov7/pkg/ast"
	"github.com/nanov7/nanov7/pkg/errs"
	"github.com/nanov7/nanov7/pkg/heap"
	"github.com/nanov7/nanov7/pkg/value"
)

// defaultMaxCallDepth bounds script-call recursion (spec.md §4.4 "call
// depth tracked against an optional C-stack limit") short of actually
// exhausting the host's Go stack.
const defaultMaxCallDepth = 1000

// Option configures an Interpreter using a functional-options idiom.
type Option func(*Interpreter)

// WithMaxCallDepth overrides the script-call recursion limit.
func WithMaxCallDepth(n int) Option {
	return func(i *Interpreter) { i.maxCallDepth = n }
}

// WithLogger overrides the interpreter's structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) { i.logger = logger }
}

// WithDebug enables verbose per-call tracing.
func WithDebug(debug bool) Option {
	return func(i *Interpreter) { i.debug = debug }
}

// Interpreter walks an *ast.Program against a *heap.Heap, threading scope
// chains, the evaluation stack and call-depth bookkeeping described by
// spec.md §4.4.
type Interpreter struct {
	heap *heap.Heap

	objProto     heap.ObjectRef
	funcProto    heap.ObjectRef
	arrayProto   heap.ObjectRef
	errorProto   heap.ObjectRef
	stringProto  heap.ObjectRef
	numberProto  heap.ObjectRef
	booleanProto heap.ObjectRef
	regexpProto  heap.ObjectRef

	maxCallDepth int
	callDepth    int
	interrupted  bool

	evalStack []value.Value
	frames    []heap.ObjectRef

	logger *slog.Logger
	debug  bool
}

// New creates an Interpreter over h, wiring its prototype chain and
// registering the evaluation stack / live scope frames as extra GC roots
// (pkg/heap's Heap.SetExtraRootsFunc), since a nested call's
// activation object is reachable only from its own children's Parent
// chain, never from the global object.
func New(h *heap.Heap, opts ...Option) *Interpreter {
	i := &Interpreter{
		heap:         h,
		maxCallDepth: defaultMaxCallDepth,
		logger:       slog.Default(),
	}

	i.objProto = h.NewObject(0, "Object")
	i.funcProto = h.NewObject(i.objProto, "Function")
	i.arrayProto = h.NewObject(i.objProto, "Array")
	i.errorProto = h.NewObject(i.objProto, "Error")
	i.stringProto = h.NewObject(i.objProto, "String")
	i.numberProto = h.NewObject(i.objProto, "Number")
	i.booleanProto = h.NewObject(i.objProto, "Boolean")
	i.regexpProto = h.NewObject(i.objProto, "RegExp")

	h.Object(h.Global()).Proto = i.objProto
	h.DefineOwn(h.Global(), "@@isFuncScope", value.True, heap.AttrHidden|heap.AttrDontEnum)
	h.DefineOwn(h.Global(), "@@this", value.FromRef(value.TagObject, h.Global()), heap.AttrHidden|heap.AttrDontEnum)

	for _, opt := range opts {
		opt(i)
	}

	i.installArrayBuiltins()
	h.SetExtraRootsFunc(i.gcRoots)
	return i
}

func (i *Interpreter) gcRoots() []value.Value {
	roots := make([]value.Value, 0, len(i.evalStack)+len(i.frames))
	roots = append(roots, i.evalStack...)
	for _, f := range i.frames {
		roots = append(roots, value.FromRef(value.TagObject, f))
	}
	return roots
}

// Interrupt raises the flag checked at the next statement boundary
// (spec.md §4.4 "Interrupt"), safe to call from a signal handler in a
// single-threaded host.
func (i *Interpreter) Interrupt() { i.interrupted = true }

func (i *Interpreter) checkInterrupt() error {
	if i.interrupted {
		i.interrupted = false
		i.logger.Warn("execution interrupted")
		return i.throwError("InterruptedError", "execution interrupted")
	}
	return nil
}

// ctrlKind distinguishes ordinary fall-through completion from the three
// non-exceptional ways a statement can transfer control: return, break and
// continue. Exceptions propagate separately, as a Go error (*ThrowError),
// so a ctrl value and a non-nil error are never both meaningful at once.
type ctrlKind uint8

const (
	ctrlNone ctrlKind = iota
	ctrlReturn
	ctrlBreak
	ctrlContinue
)

type ctrl struct {
	kind  ctrlKind
	value value.Value
}

var ctrlFallthrough = ctrl{kind: ctrlNone}

// ThrowError is a Go error wrapping a thrown script value, letting
// try/catch/finally unwind ordinary Go call frames via plain error
// returns instead of panics (spec.md §4.4 "Exceptions").
type ThrowError struct {
	Value   value.Value
	Message string
}

func (e *ThrowError) Error() string { return e.Message }

// newThrowError wraps v as a *ThrowError, deriving its Message from the
// value's own "message" property when it looks like an Error object, and
// from ToString otherwise.
func (i *Interpreter) newThrowError(v value.Value) *ThrowError {
	msg := i.describeThrown(v)
	return &ThrowError{Value: v, Message: msg}
}

func (i *Interpreter) describeThrown(v value.Value) string {
	if value.IsObject(v) {
		if m, ok := i.heap.Get(value.Ref(v), "message"); ok {
			if s, err := i.toStringGo(m); err == nil {
				return s
			}
		}
	}
	s, err := i.toStringGo(v)
	if err != nil {
		return "uncatchable error"
	}
	return s
}

// throwError constructs an Error-like object of the given class (e.g.
// "TypeError", "RangeError", "ReferenceError") with a "message" property
// and throws it, matching spec.md §7's "exception constructed implicitly"
// path.
func (i *Interpreter) throwError(class, message string) error {
	obj := i.heap.NewObject(i.errorProto, "Error")
	i.heap.DefineOwn(obj, "name", i.heap.InternString(class), 0)
	i.heap.DefineOwn(obj, "message", i.heap.InternString(message), 0)
	v := value.FromRef(value.TagObject, obj)
	return i.newThrowError(v)
}

func (i *Interpreter) throwTypeError(message string) error {
	return i.throwError("TypeError", message)
}

func (i *Interpreter) throwRangeError(message string) error {
	return i.throwError("RangeError", message)
}

func (i *Interpreter) throwReferenceError(message string) error {
	return i.throwError("ReferenceError", message)
}

// stackOverflow signals script-call depth exhaustion (spec.md §5 "C-stack
// guard") as an *errs.Error directly, rather than a *ThrowError: unlike
// every other runtime exception, this condition is not script-catchable
// (the original v7 engine's C-stack guard unwinds past try/catch
// entirely), so execTry's `err.(*ThrowError)` type assertion never
// matches it and it escapes straight to the engine boundary. wrapEscaped
// passes it through unchanged and statusOf reports StatusStackOverflow.
func (i *Interpreter) stackOverflow() error {
	i.logger.Warn("call stack size exceeded", slog.Int("max_call_depth", i.maxCallDepth))
	return errs.New(errs.CodeStackOverflow, "call stack size exceeded")
}

// Run executes program's top-level statements in the global scope,
// hoisting `var`/function declarations first, and returns the completion
// value of the last expression statement executed (spec.md §6 `execute`).
// An exception still pending when the top-level statement list finishes
// is returned as *errs.Error{Code: CodeExecException}, wrapping the
// original *ThrowError so the thrown value stays reachable via errors.As.
func (i *Interpreter) Run(program *ast.Program) (result value.Value, err error) {
	defer heap.RecoverOOM(&err)
	return i.run(program)
}

// RunWith behaves like Run but binds `this` in the global activation to
// the supplied receiver for the duration of the call (spec.md §6
// `execute_with`), restoring the global object as `this` afterward.
func (i *Interpreter) RunWith(program *ast.Program, this value.Value) (result value.Value, err error) {
	defer heap.RecoverOOM(&err)
	global := i.heap.Global()
	prev, _ := i.heap.Get(global, "@@this")
	i.heap.DefineOwn(global, "@@this", this, heap.AttrHidden|heap.AttrDontEnum)
	defer i.heap.DefineOwn(global, "@@this", prev, heap.AttrHidden|heap.AttrDontEnum)
	return i.run(program)
}

func (i *Interpreter) run(program *ast.Program) (value.Value, error) {
	global := i.heap.Global()
	root := program.Node(program.Root)

	i.hoistDeclarations(program, root.List, global, global)

	var last value.Value = value.Undefined
	for _, stmtRef := range root.List {
		if err := i.checkInterrupt(); err != nil {
			return value.Undefined, i.wrapEscaped(err)
		}
		v, c, err := i.execTopStmt(program, stmtRef, global)
		if err != nil {
			return value.Undefined, i.wrapEscaped(err)
		}
		if c.kind != ctrlNone {
			break
		}
		if value.TagOf(v) != value.TagUndefined || isExprLike(program.Node(stmtRef).Kind) {
			last = v
		}
	}
	return last, nil
}

func isExprLike(k ast.Kind) bool { return k == ast.KindExprStatement }

// execTopStmt runs one top-level statement and also reports its
// expression-statement value, so Run can surface "last expression
// evaluated" as the program's completion value the way a REPL would.
func (i *Interpreter) execTopStmt(program *ast.Program, stmtRef ast.Ref, scope heap.ObjectRef) (value.Value, ctrl, error) {
	node := program.Node(stmtRef)
	if node.Kind == ast.KindExprStatement {
		v, err := i.evalExpr(program, node.A, scope)
		if err != nil {
			return value.Undefined, ctrlFallthrough, err
		}
		return v, ctrlFallthrough, nil
	}
	c, err := i.execStmt(program, stmtRef, scope)
	return value.Undefined, c, err
}

// wrapEscaped converts an exception that unwound all the way out of Run
// into the engine-boundary error surface (spec.md §7).
func (i *Interpreter) wrapEscaped(err error) error {
	if te, ok := err.(*ThrowError); ok {
		return errs.New(errs.CodeExecException, te.Message).WithCause(te)
	}
	return err
}
