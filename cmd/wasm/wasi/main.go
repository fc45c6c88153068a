//go:build wasip1

// Command nanov7-wasm-wasi is the WASI (wasip1) entrypoint for use from any
// language that supports the WebAssembly System Interface.
//
// Protocol: single JSON object on stdin → single JSON object on stdout.
//
//	stdin:  { "script": "<js source>" }
//	stdout: { "result": <any JSON value> }    on success
//	        { "error":  "<message>"       }    on failure (exit code 1)
//
// Build:
//
//	GOOS=wasip1 GOARCH=wasm go build -o nanov7.wasm ./cmd/wasm/wasi/
//
// Usage with wasmtime CLI:
//
//	echo '{"script":"1 + 2;"}' | wasmtime nanov7.wasm
//
// Usage from Python (wasmtime-py):
//
//	import wasmtime, json
//	engine = wasmtime.Engine()
//	...
package main

import (
	"encoding/json"
	"os"

	"github.com/nanov7/nanov7/pkg/engine"
)

type request struct {
	Script string `json:"script"`
}

type response struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func writeResponse(r response, exitCode int) {
	_ = json.NewEncoder(os.Stdout).Encode(r)
	os.Exit(exitCode)
}

func main() {
	var req request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(response{Error: "invalid request JSON: " + err.Error()}, 1)
	}

	e := engine.Create()
	defer e.Destroy()

	result, _, err := e.Execute(req.Script)
	if err != nil {
		writeResponse(response{Error: err.Error()}, 1)
	}

	resultJSON, err := e.ToJSON(result)
	if err != nil {
		writeResponse(response{Error: err.Error()}, 1)
	}

	writeResponse(response{Result: json.RawMessage(resultJSON)}, 0)
}
