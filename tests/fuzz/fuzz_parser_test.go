package fuzz

import (
	"testing"

	"github.com/nanov7/nanov7/pkg/parser"
)

func FuzzParser(f *testing.F) {
	seeds := []string{
		`var x = 1;`,
		`function f(a, b) { return a + b; }`,
		`1 + 2 * 3`,
		`[1, 2, 3].length`,
		`{ "a": 1, "b": [true, null] }`,
		`for (var i = 0; i < 10; i++) { i; }`,
		`try { throw "boom"; } catch (e) { e; }`,
		``,
		`(`,
		`function(`,
		`var x = ;`,
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, input string) {
		_, _ = parser.Parse(input)
	})
}
