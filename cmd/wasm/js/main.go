//go:build js && wasm

// Command nanov7-wasm-js is the WebAssembly entrypoint for browser and Node.js.
//
// It exposes a global `nanov7` object with the following API:
//
//	nanov7.version()      → string
//	nanov7.run(script)    → resultJSON  (throws on error)
//	nanov7.compile(script) → { run() → resultJSON }  (throws on error)
//
// Build:
//
//	GOOS=js GOARCH=wasm go build -o nanov7.wasm ./cmd/wasm/js/
//
// Usage in Node.js:
//
//	const { load } = require('./nanov7_wasm')
//	const n7 = await load()
//	console.log(JSON.parse(n7.run('40 + 2;'))) // 42
//
// Usage in browser:
//
//	<script src="wasm_exec.js"></script>
//	<script type="module">
//	  import { load } from './nanov7_wasm.mjs'
//	  const n7 = await load()
//	  console.log(JSON.parse(n7.run('40 + 2;')))
//	</script>
package main

import (
	"fmt"
	"syscall/js"

	"github.com/nanov7/nanov7"
	"github.com/nanov7/nanov7/pkg/engine"
)

// jsThrow panics with a message so the caller receives a thrown JS exception.
func jsThrow(msg string) {
	panic(msg)
}

// jsRun implements nanov7.run(script) → resultJSON.
func jsRun(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		jsThrow("nanov7.run requires 1 argument: script (string)")
	}
	script := args[0].String()

	e := engine.Create()
	defer e.Destroy()

	result, _, err := e.Execute(script)
	if err != nil {
		jsThrow(fmt.Sprintf("nanov7.run: %v", err))
	}

	out, err := e.ToJSON(result)
	if err != nil {
		jsThrow(fmt.Sprintf("nanov7.run: result to JSON: %v", err))
	}
	return out
}

// jsCompile implements nanov7.compile(script) → { run() → resultJSON }: the
// returned engine keeps its compiled-script cache warm across repeated
// run() calls against the same source text.
func jsCompile(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		jsThrow("nanov7.compile requires 1 argument: script (string)")
	}
	script := args[0].String()

	e := engine.CreateOpt(engine.WithCache(1))
	if _, status, err := e.Execute(script); err != nil {
		jsThrow(fmt.Sprintf("nanov7.compile: %v (%s)", err, status))
	}

	runFn := js.FuncOf(func(_ js.Value, _ []js.Value) interface{} {
		result, _, err := e.Execute(script)
		if err != nil {
			jsThrow(fmt.Sprintf("compiled.run: %v", err))
		}
		out, _ := e.ToJSON(result)
		return out
	})

	return js.ValueOf(map[string]interface{}{"run": runFn})
}

func main() {
	api := map[string]interface{}{
		"run":     js.FuncOf(jsRun),
		"compile": js.FuncOf(jsCompile),
		"version": js.FuncOf(func(_ js.Value, _ []js.Value) interface{} {
			return nanov7.Version()
		}),
	}
	js.Global().Set("nanov7", js.ValueOf(api))

	// Block forever — the JS event loop owns execution from here.
	select {}
}
