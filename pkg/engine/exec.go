package engine

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nanov7/nanov7/pkg/ast"
	"github.com/nanov7/nanov7/pkg/errs"
	"github.com/nanov7/nanov7/pkg/parser"
	"github.com/nanov7/nanov7/pkg/value"
)

// Status is the engine-level completion code (spec.md §6 "Status enum").
type Status string

const (
	StatusOK            Status = "OK"
	StatusSyntaxError   Status = Status(errs.CodeSyntaxError)
	StatusExecException Status = Status(errs.CodeExecException)
	StatusStackOverflow  Status = Status(errs.CodeStackOverflow)
	StatusAstTooLarge    Status = Status(errs.CodeAstTooLarge)
	StatusInvalidArg     Status = Status(errs.CodeInvalidArg)
)

// statusOf maps an error returned by a parsing or evaluation call to its
// Status, per spec.md §7's propagation rules: parser errors return
// SyntaxError directly (never entering the exception slot); any other
// *errs.Error surfaces its own Code; an unrecognized error defaults to
// ExecException, the catch-all "something failed at runtime" status.
func statusOf(err error) Status {
	if err == nil {
		return StatusOK
	}
	var e *errs.Error
	if errors.As(err, &e) {
		return Status(e.Code)
	}
	return StatusExecException
}

// compile parses src, recording any syntax error into the engine's
// parser-error buffer (spec.md §4.3) rather than ever placing it in the
// exception slot, and consulting the compiled-script cache when enabled.
func (e *Engine) compile(src string) (*ast.Program, Status, error) {
	if e.cache != nil {
		if prog, ok := e.cache.Get(src); ok {
			return prog, StatusOK, nil
		}
	}
	prog, err := parser.Parse(src)
	if err != nil {
		se := errs.New(errs.CodeSyntaxError, err.Error())
		e.logger.Debug("parse failed", "error", err)
		e.parserErr = se
		return nil, StatusSyntaxError, se
	}
	e.parserErr = nil
	if e.cache != nil {
		e.cache.Set(src, prog)
	}
	return prog, StatusOK, nil
}

// Execute compiles and runs src against the engine's global scope
// (spec.md §6 `execute`).
func (e *Engine) Execute(src string) (value.Value, Status, error) {
	prog, status, err := e.compile(src)
	if err != nil {
		return value.Undefined, status, err
	}
	result, err := e.interp.Run(prog)
	return result, statusOf(err), err
}

// ExecuteWith behaves like Execute but binds `this` to the given
// receiver for the top-level program (spec.md §6 `execute_with`).
func (e *Engine) ExecuteWith(src string, this value.Value) (value.Value, Status, error) {
	prog, status, err := e.compile(src)
	if err != nil {
		return value.Undefined, status, err
	}
	result, err := e.interp.RunWith(prog, this)
	return result, statusOf(err), err
}

// ExecuteFile reads path and executes its contents (spec.md §6
// `execute_file`). File I/O is otherwise out of this core's scope
// (spec.md §1 "file I/O for source loading" is an external collaborator)
// — this one operation is named explicitly in §6, so it is implemented
// here as a thin os.ReadFile wrapper rather than left unimplemented.
func (e *Engine) ExecuteFile(path string) (value.Value, Status, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return value.Undefined, StatusInvalidArg, errs.New(errs.CodeInvalidArg, err.Error())
	}
	return e.Execute(string(data))
}

// ParseJSON decodes src as JSON into a tree of heap values (spec.md §6
// `parse_json`), without treating it as executable script source.
func (e *Engine) ParseJSON(src string) (value.Value, Status, error) {
	v, err := e.interp.FromJSON(src)
	if err != nil {
		return value.Undefined, statusOf(err), err
	}
	return v, StatusOK, nil
}

// Apply reentrantly invokes fn with receiver this and the given
// arguments (spec.md §6 `apply`); a nil args slice behaves identically
// to an empty one (spec.md §8).
func (e *Engine) Apply(fn, this value.Value, args []value.Value) (value.Value, Status, error) {
	result, err := e.interp.Apply(fn, this, args)
	return result, statusOf(err), err
}

// Compile parses src and writes its AST to stream in either the binary
// format (magic/version/node-stream, spec.md §6) or the human-readable
// indented-tree text format, depending on binaryFlag.
func (e *Engine) Compile(src string, binaryFlag bool, stream io.Writer) (Status, error) {
	prog, status, err := e.compile(src)
	if err != nil {
		return status, err
	}
	if binaryFlag {
		data, encErr := ast.Encode(prog)
		if encErr != nil {
			return StatusInvalidArg, errs.New(errs.CodeInvalidArg, encErr.Error())
		}
		if _, werr := stream.Write(data); werr != nil {
			return StatusInvalidArg, errs.New(errs.CodeInvalidArg, werr.Error())
		}
		return StatusOK, nil
	}
	if dumpErr := ast.Dump(prog, stream); dumpErr != nil {
		return StatusInvalidArg, errs.New(errs.CodeInvalidArg, dumpErr.Error())
	}
	return StatusOK, nil
}

// LoadCompiled decodes a binary AST blob produced by Compile(..., true,
// ...) and runs it (spec.md §8 "Compile-to-binary then load-and-execute
// yields the same observable result as direct execute(S)").
func (e *Engine) LoadCompiled(data []byte) (value.Value, Status, error) {
	prog, err := ast.Decode(data)
	if err != nil {
		return value.Undefined, StatusInvalidArg, errs.New(errs.CodeInvalidArg, fmt.Sprintf("invalid compiled AST: %v", err))
	}
	result, err := e.interp.Run(prog)
	return result, statusOf(err), err
}
