// Command nanov7 runs a JavaScript source file, or a REPL when no file is
// given, against one engine instance.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/nanov7/nanov7/pkg/engine"
)

func main() {
	var (
		dumpAST   = flag.Bool("dump-ast", false, "dump the text-mode AST instead of executing")
		heapStat  = flag.Bool("heap-stat", false, "print heap statistics after execution")
		maxDepth  = flag.Int("max-call-depth", 1000, "maximum script-call recursion depth")
	)
	flag.Parse()

	e := engine.CreateOpt(engine.WithStackBase(*maxDepth))
	defer e.Destroy()

	if flag.NArg() == 0 {
		repl(e)
		return
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "nanov7: %v\n", err)
		os.Exit(1)
	}

	if *dumpAST {
		if status, err := e.Compile(string(data), false, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "nanov7: %s: %v\n", status, err)
			os.Exit(1)
		}
		return
	}

	result, status, err := e.Execute(string(data))
	if err != nil {
		e.PrintError(err)
		os.Exit(exitCodeFor(status))
	}

	if !e.IsUndefined(result) {
		_ = e.Println(result)
	}

	if *heapStat {
		printHeapStat(e)
	}
}

// repl reads script lines from stdin, evaluating each one against the
// same engine instance so declarations accumulate across lines (spec.md
// §6 "execute" against a persistent global scope).
func repl(e *engine.Engine) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Fprint(os.Stdout, "> ")
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			fmt.Fprint(os.Stdout, "> ")
			continue
		}
		result, _, err := e.Execute(line)
		if err != nil {
			e.PrintError(err)
		} else if !e.IsUndefined(result) {
			_ = e.Println(result)
		}
		fmt.Fprint(os.Stdout, "> ")
	}
}

func printHeapStat(e *engine.Engine) {
	stat := e.HeapStat()
	fmt.Printf("objects=%d functions=%d properties=%d string_bytes=%d gc_cycles=%d\n",
		stat.LiveObjects, stat.LiveFunctions, stat.LiveProperties, stat.StringBytes, stat.GCCycles)
}

func exitCodeFor(status engine.Status) int {
	if status == engine.StatusOK {
		return 0
	}
	return 1
}
