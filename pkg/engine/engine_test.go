package engine_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanov7/nanov7/pkg/engine"
	"github.com/nanov7/nanov7/pkg/errs"
	"github.com/nanov7/nanov7/pkg/functions"
	"github.com/nanov7/nanov7/pkg/heap"
	"github.com/nanov7/nanov7/pkg/value"
)

func TestExecuteReturnsLastExpressionValue(t *testing.T) {
	e := engine.Create()
	v, status, err := e.Execute("1 + 2; 3 + 4;")
	require.NoError(t, err)
	assert.Equal(t, engine.StatusOK, status)
	assert.Equal(t, float64(7), value.Number(v))
}

func TestExecuteSyntaxErrorNeverReachesExceptionSlot(t *testing.T) {
	e := engine.Create()
	_, status, err := e.Execute("var x = ;")
	require.Error(t, err)
	assert.Equal(t, engine.StatusSyntaxError, status)

	var se *errs.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, errs.CodeSyntaxError, se.Code)
	assert.Equal(t, errs.CodeSyntaxError, e.GetParserError().Code)
}

func TestExecuteThrowSurfacesAsExecException(t *testing.T) {
	e := engine.Create()
	_, status, err := e.Execute(`throw "boom";`)
	require.Error(t, err)
	assert.Equal(t, engine.StatusExecException, status)
}

func TestUnboundedRecursionSurfacesAsStackOverflow(t *testing.T) {
	e := engine.CreateOpt(engine.WithStackBase(50))
	_, status, err := e.Execute(`function f() { return f(); } f();`)
	require.Error(t, err)
	assert.Equal(t, engine.StatusStackOverflow, status)

	var se *errs.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, errs.CodeStackOverflow, se.Code)
}

func TestUnboundedRecursionIsNotCatchableByScript(t *testing.T) {
	e := engine.CreateOpt(engine.WithStackBase(50))
	_, status, err := e.Execute(`
		function f() { return f(); }
		try { f(); } catch (e) { }
	`)
	require.Error(t, err)
	assert.Equal(t, engine.StatusStackOverflow, status)
}

func TestExecuteWithBindsThis(t *testing.T) {
	e := engine.Create()
	receiver := e.CreateObject()
	e.Set(receiver, "name", e.CreateString("world"))

	v, status, err := e.ExecuteWith(`"hello " + this.name;`, receiver)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusOK, status)
	s, err := e.ToStringGo(v)
	require.NoError(t, err)
	assert.Equal(t, "hello world", s)
}

func TestCreateFunctionAndApply(t *testing.T) {
	e := engine.Create()
	double := e.CreateFunction("double", func(h *heap.Heap, this value.Value, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.FromNumber(0), nil
		}
		return value.FromNumber(value.Number(args[0]) * 2), nil
	})

	result, status, err := e.Apply(double, value.Undefined, []value.Value{value.FromNumber(21)})
	require.NoError(t, err)
	assert.Equal(t, engine.StatusOK, status)
	assert.Equal(t, float64(42), value.Number(result))
}

func TestSetMethodExposesNativeFunctionToScript(t *testing.T) {
	e := engine.Create()
	global := e.GetGlobal()
	e.SetMethod(global, "triple", func(h *heap.Heap, this value.Value, args []value.Value) (value.Value, error) {
		return value.FromNumber(value.Number(args[0]) * 3), nil
	})

	v, status, err := e.Execute("triple(4);")
	require.NoError(t, err)
	assert.Equal(t, engine.StatusOK, status)
	assert.Equal(t, float64(12), value.Number(v))
}

func TestThrowFromNativeFunctionIsCatchable(t *testing.T) {
	e := engine.Create()
	global := e.GetGlobal()
	e.SetMethod(global, "explode", func(h *heap.Heap, this value.Value, args []value.Value) (value.Value, error) {
		return value.Undefined, e.Throw("RangeError", "too much")
	})

	v, status, err := e.Execute(`
		var caught = "";
		try { explode(); } catch (e) { caught = e.message; }
		caught;
	`)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusOK, status)
	s, err := e.ToStringGo(v)
	require.NoError(t, err)
	assert.Equal(t, "too much", s)
}

func TestArrayHelpersRoundTrip(t *testing.T) {
	e := engine.Create()
	arr := e.CreateArray([]value.Value{value.FromNumber(1), value.FromNumber(2)})
	assert.True(t, e.IsArray(arr))
	assert.Equal(t, 2, e.ArrayLength(arr))

	n := e.ArrayPush(arr, value.FromNumber(3))
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, e.ArrayLength(arr))
	assert.Equal(t, float64(3), value.Number(e.ArrayGet(arr, 2)))
}

func TestSetProtoRejectsCycle(t *testing.T) {
	e := engine.Create()
	a := e.CreateObject()
	b := e.CreateObject()

	_, ok := e.SetProto(b, a)
	require.True(t, ok)

	_, ok = e.SetProto(a, b)
	assert.False(t, ok, "rebinding a's prototype to b would create a cycle")
}

func TestJSONRoundTrip(t *testing.T) {
	e := engine.Create()
	v, status, err := e.ParseJSON(`{"a": 1, "b": [true, null, "x"]}`)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusOK, status)

	out, err := e.ToJSON(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1, "b": [true, null, "x"]}`, out)
}

func TestCompileBinaryThenLoadMatchesDirectExecute(t *testing.T) {
	e := engine.Create()
	const src = "2 * 21;"

	var buf bytes.Buffer
	status, err := e.Compile(src, true, &buf)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusOK, status)

	loaded, status, err := e.LoadCompiled(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, engine.StatusOK, status)

	direct, _, err := e.Execute(src)
	require.NoError(t, err)
	assert.Equal(t, value.Number(direct), value.Number(loaded))
}

func TestCompileTextDumpIsNonEmpty(t *testing.T) {
	e := engine.Create()
	var buf bytes.Buffer
	status, err := e.Compile("1 + 1;", false, &buf)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusOK, status)
	assert.NotEmpty(t, buf.String())
}

func TestForeignRoundTrip(t *testing.T) {
	e := engine.Create()
	type payload struct{ N int }
	v := e.CreateForeign(&payload{N: 7})

	got, ok := e.ToForeign(v).(*payload)
	require.True(t, ok)
	assert.Equal(t, 7, got.N)
}

func TestHeapStatReflectsAllocations(t *testing.T) {
	e := engine.Create()
	before := e.HeapStat().LiveObjects
	e.CreateObject()
	after := e.HeapStat().LiveObjects
	assert.Greater(t, after, before)
}

func TestExecuteFileMissingPathIsInvalidArg(t *testing.T) {
	e := engine.Create()
	_, status, err := e.ExecuteFile("/nonexistent/does-not-exist.js")
	require.Error(t, err)
	assert.Equal(t, engine.StatusInvalidArg, status)
}

func TestSetMethodRecordsArityUnspecifiedInRegistry(t *testing.T) {
	e := engine.Create()
	global := e.GetGlobal()
	e.SetMethod(global, "triple", func(h *heap.Heap, this value.Value, args []value.Value) (value.Value, error) {
		return value.FromNumber(value.Number(args[0]) * 3), nil
	})

	n, ok := e.FunctionArity("triple")
	require.True(t, ok)
	assert.Equal(t, -1, n)
	assert.Contains(t, e.RegisteredFunctions(), "triple")
}

func TestRegisterFunctionIsImmediatelyCallableAndRecorded(t *testing.T) {
	e := engine.Create()
	e.RegisterFunction("half", func(h *heap.Heap, this value.Value, args []value.Value) (value.Value, error) {
		return value.FromNumber(value.Number(args[0]) / 2), nil
	}, 1)

	v, status, err := e.Execute("half(10);")
	require.NoError(t, err)
	assert.Equal(t, engine.StatusOK, status)
	assert.Equal(t, float64(5), value.Number(v))

	n, ok := e.FunctionArity("half")
	require.True(t, ok)
	assert.Equal(t, 1, n)
}

func TestBindRegistryMountsAssembledBundleOntoAnObject(t *testing.T) {
	e := engine.Create()
	bundle := functions.NewRegistry()
	bundle.Register("square", func(h *heap.Heap, this value.Value, args []value.Value) (value.Value, error) {
		n := value.Number(args[0])
		return value.FromNumber(n * n), nil
	}, 1)

	obj := e.CreateObject()
	e.BindRegistry(bundle, obj)

	v, status, err := e.ExecuteWith("this.square(5);", obj)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusOK, status)
	assert.Equal(t, float64(25), value.Number(v))
	assert.Contains(t, e.RegisteredFunctions(), "square")
}

func TestArrayMapThenJoinMatchesHostlessScenario(t *testing.T) {
	e := engine.Create()
	v, status, err := e.Execute(`var a=[1,2,3]; a.map(function(x){return x*x;}).join(',');`)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusOK, status)
	s, err := e.ToStringGo(v)
	require.NoError(t, err)
	assert.Equal(t, "1,4,9", s)
}

func TestStringHeapReclaimsTemporaryConcatenations(t *testing.T) {
	e := engine.Create()
	_, status, err := e.Execute(`var s=''; for(var i=0;i<1000;i++) s+='x'; s;`)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusOK, status)

	before := e.HeapStat().StringBytes
	e.Collect()
	after := e.HeapStat().StringBytes

	// Only the final 1000-byte string survives; every intermediate
	// concatenation result produced along the way is unreachable once
	// the loop variable `s` has moved past it.
	assert.Less(t, after, before)
	assert.GreaterOrEqual(t, after, 1000)
}

func TestOwnedValueSurvivesRepeatedArrayAllocationAndGC(t *testing.T) {
	e := engine.Create()
	v := e.CreateString("pinned")
	e.Own(&v)
	defer e.Disown(&v)

	before := e.HeapStat().GCCycles
	for n := 0; n < 10; n++ {
		_, status, err := e.Execute("new Array(1000);")
		require.NoError(t, err)
		assert.Equal(t, engine.StatusOK, status)
		e.Collect()
	}
	assert.Greater(t, e.HeapStat().GCCycles, before)

	s, err := e.ToStringGo(v)
	require.NoError(t, err)
	assert.Equal(t, "pinned", s)
}

func TestWithCacheSkipsReparseOnRepeatedSource(t *testing.T) {
	e := engine.CreateOpt(engine.WithCache(8))
	const src = "40 + 2;"

	first, _, err := e.Execute(src)
	require.NoError(t, err)
	second, _, err := e.Execute(src)
	require.NoError(t, err)
	assert.Equal(t, value.Number(first), value.Number(second))
}
