package fuzz

import (
	"context"
	"testing"
	"time"

	"github.com/nanov7/nanov7"
)

func FuzzEvaluator(f *testing.F) {
	seeds := []string{
		`var x = 1; x + 1;`,
		`[1, 2, 3].length;`,
		`function f(n) { if (n < 2) return n; return f(n-1) + f(n-2); } f(10);`,
		`1/0`,
		`var o = {}; o.missing.path;`,
		`typeof 1;`,
		`try { throw "boom"; } catch (e) { e; }`,
		``,
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, input string) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		_, _ = nanov7.EvalWithContext(ctx, input)
	})
}
