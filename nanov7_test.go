package nanov7_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanov7/nanov7"
	"github.com/nanov7/nanov7/pkg/value"
)

func TestEvalComputesArithmetic(t *testing.T) {
	result, err := nanov7.Eval("6 * 7;")
	require.NoError(t, err)
	assert.Equal(t, float64(42), value.Number(result))
}

func TestEvalPropagatesSyntaxError(t *testing.T) {
	_, err := nanov7.Eval("var x = ;")
	assert.Error(t, err)
}

func TestMustEvalPanicsOnFailure(t *testing.T) {
	assert.Panics(t, func() {
		nanov7.MustEval("var x = ;")
	})
}

func TestEvalWithContextHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	// A script that never finishes on its own gives the context deadline
	// a chance to fire before the loop body's own completion would.
	_, err := nanov7.EvalWithContext(ctx, "while (true) {}")
	assert.Error(t, err)
}

func TestWithCacheOptionIsAccepted(t *testing.T) {
	result, err := nanov7.Eval("1 + 1;", nanov7.WithCache(16))
	require.NoError(t, err)
	assert.Equal(t, float64(2), value.Number(result))
}
