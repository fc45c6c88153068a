package heap_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanov7/nanov7/pkg/heap"
	"github.com/nanov7/nanov7/pkg/value"
)

func newTestHeap(t *testing.T) *heap.Heap {
	t.Helper()
	return heap.New(heap.DefaultConfig())
}

func TestNewObjectAndProperties(t *testing.T) {
	h := newTestHeap(t)
	obj := h.NewObject(0, "Object")

	h.Set(obj, "x", value.FromNumber(42))
	v, ok := h.Get(obj, "x")
	require.True(t, ok)
	assert.Equal(t, float64(42), value.Number(v))

	_, ok = h.Get(obj, "missing")
	assert.False(t, ok)
}

func TestPrototypeChainLookupAndWrite(t *testing.T) {
	h := newTestHeap(t)
	proto := h.NewObject(0, "Object")
	h.DefineOwn(proto, "greeting", value.FromNumber(1), 0)

	child := h.NewObject(proto, "Object")
	v, ok := h.Get(child, "greeting")
	require.True(t, ok)
	assert.Equal(t, float64(1), value.Number(v))

	// Writing through the child must create an own property, never
	// mutate the prototype's.
	h.Set(child, "greeting", value.FromNumber(2))
	childVal, _ := h.Get(child, "greeting")
	protoVal, _ := h.Get(proto, "greeting")
	assert.Equal(t, float64(2), value.Number(childVal))
	assert.Equal(t, float64(1), value.Number(protoVal))
}

func TestReadOnlyPropertyIgnoresWrite(t *testing.T) {
	h := newTestHeap(t)
	obj := h.NewObject(0, "Object")
	h.DefineOwn(obj, "frozen", value.FromNumber(1), heap.AttrReadOnly)
	h.Set(obj, "frozen", value.FromNumber(99))
	v, _ := h.Get(obj, "frozen")
	assert.Equal(t, float64(1), value.Number(v))
}

func TestDeleteHonorsDontDelete(t *testing.T) {
	h := newTestHeap(t)
	obj := h.NewObject(0, "Object")
	h.DefineOwn(obj, "a", value.FromNumber(1), 0)
	h.DefineOwn(obj, "b", value.FromNumber(2), heap.AttrDontDelete)

	assert.True(t, h.Delete(obj, "a"))
	_, ok := h.Get(obj, "a")
	assert.False(t, ok)

	assert.False(t, h.Delete(obj, "b"))
	_, ok = h.Get(obj, "b")
	assert.True(t, ok)
}

func TestOwnNamesSkipsDontEnumAndDedups(t *testing.T) {
	h := newTestHeap(t)
	proto := h.NewObject(0, "Object")
	h.DefineOwn(proto, "inherited", value.FromNumber(1), 0)
	h.DefineOwn(proto, "hiddenInherited", value.FromNumber(1), heap.AttrDontEnum)

	obj := h.NewObject(proto, "Object")
	h.DefineOwn(obj, "own", value.FromNumber(1), 0)
	h.DefineOwn(obj, "inherited", value.FromNumber(2), 0) // shadows proto's

	names := h.OwnNames(obj)
	assert.Contains(t, names, "own")
	assert.Contains(t, names, "inherited")
	assert.NotContains(t, names, "hiddenInherited")

	count := 0
	for _, n := range names {
		if n == "inherited" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestStringInterningInlineVsHeap(t *testing.T) {
	h := newTestHeap(t)
	short := h.InternString("hi")
	assert.Equal(t, value.TagStringInline, value.TagOf(short))
	assert.Equal(t, "hi", h.StringValue(short))

	long := h.InternString("this string is definitely longer than five bytes")
	assert.Equal(t, value.TagStringHeap, value.TagOf(long))
	assert.Equal(t, "this string is definitely longer than five bytes", h.StringValue(long))
}

func TestGCReclaimsUnreachableObjects(t *testing.T) {
	h := newTestHeap(t)
	root := h.NewObject(0, "Object")

	var pin value.Value = value.FromRef(value.TagObject, root)
	h.Own(&pin)

	for i := 0; i < 10; i++ {
		h.DefineOwn(root, "k", value.FromRef(value.TagObject, h.NewObject(0, "Scratch")), 0)
	}
	before := h.Stat().LiveObjects

	h.Collect()
	after := h.Stat().LiveObjects

	// Only `root` and its single current "k" property's target object
	// survive; every previously-overwritten scratch object is collected.
	assert.Less(t, after, before)
	assert.True(t, h.Disown(&pin))
}

func TestGCKeepsRootedObjectsAndTheirChains(t *testing.T) {
	h := newTestHeap(t)
	obj := h.NewObject(0, "Object")
	h.Set(obj, "name", h.InternString("this string is definitely longer than five bytes"))

	var pin value.Value = value.FromRef(value.TagObject, obj)
	h.Own(&pin)

	h.Collect()

	v, ok := h.Get(obj, "name")
	require.True(t, ok)
	assert.Equal(t, "this string is definitely longer than five bytes", h.StringValue(v))
}

func TestWriteProfile(t *testing.T) {
	h := newTestHeap(t)
	h.NewObject(0, "Object")
	var buf bytes.Buffer
	require.NoError(t, h.WriteProfile(&buf))
	assert.NotEmpty(t, buf.Bytes())
}
