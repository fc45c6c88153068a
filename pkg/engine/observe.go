package engine

import (
	"fmt"
	"io"
	"os"

	"github.com/nanov7/nanov7/pkg/errs"
	"github.com/nanov7/nanov7/pkg/heap"
	"github.com/nanov7/nanov7/pkg/value"
)

// Print and Println write v's ToString conversion to stdout (spec.md §6
// `print`/`println`, a REPL-facing convenience over ToStringGo).
func (e *Engine) Print(v value.Value) error  { return e.Fprint(os.Stdout, v) }
func (e *Engine) Println(v value.Value) error { return e.Fprintln(os.Stdout, v) }

// Fprint and Fprintln behave like Print/Println but write to an
// arbitrary writer, letting a host redirect script output without
// reaching for os.Stdout directly (spec.md §6 host I/O collaborators).
func (e *Engine) Fprint(w io.Writer, v value.Value) error {
	s, err := e.interp.ToStringGo(v)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, s)
	return err
}

func (e *Engine) Fprintln(w io.Writer, v value.Value) error {
	s, err := e.interp.ToStringGo(v)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, s+"\n")
	return err
}

// PrintError writes err's Status and message to stderr in the engine's
// diagnostic format (spec.md §6 "error reporting"), doing nothing if err
// is nil.
func (e *Engine) PrintError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %s\n", statusOf(err), err.Error())
}

// FprintStackTrace writes the chain of wrapped causes behind err to w,
// innermost cause last, approximating a stack trace from the
// *errs.Error/*ThrowError wrapping chain the engine actually carries
// (spec.md §7 does not mandate call-frame-level traces, only that the
// thrown value and its message stay inspectable after it escapes).
func (e *Engine) FprintStackTrace(w io.Writer, err error) error {
	for err != nil {
		if _, werr := fmt.Fprintln(w, err.Error()); werr != nil {
			return werr
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = unwrapper.Unwrap()
	}
	return nil
}

// ToJSON serializes v per spec.md §6 `to_json`. Function and undefined
// values are omitted as properties, written as null in arrays and give
// "null" at top level; it fails only for values with no JSON form at all
// (foreign pointers, regexps).
func (e *Engine) ToJSON(v value.Value) (string, error) { return e.interp.ToJSON(v) }

// ParserErrorCode exposes the Code of the last recorded parser error, or
// the empty string if the most recent parse succeeded.
func (e *Engine) ParserErrorCode() errs.Code {
	if e.parserErr == nil {
		return ""
	}
	return e.parserErr.Code
}

// HeapStat reports live-cell counts across the engine's arenas and
// string heap (spec.md §6 `heap_stat`).
func (e *Engine) HeapStat() heap.Stat { return e.heap.Stat() }

// WriteHeapProfile writes a pprof profile of current heap occupancy to
// w (spec.md §6 `heap_stat`, machine-readable form), so occupancy can be
// inspected with `go tool pprof` instead of only through HeapStat.
func (e *Engine) WriteHeapProfile(w io.Writer) error { return e.heap.WriteProfile(w) }
