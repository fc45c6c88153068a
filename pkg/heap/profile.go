package heap

import (
	"io"

	"github.com/google/pprof/profile"
)

// WriteProfile writes a pprof profile describing current heap occupancy
// — one sample per cell kind plus the string heap — so `heap_stat`
// (spec.md §6) can be inspected with `go tool pprof` instead of only
// through the programmatic Stat() accessor.
func (h *Heap) WriteProfile(w io.Writer) error {
	stat := h.Stat()

	countType := &profile.ValueType{Type: "count", Unit: "count"}
	bytesType := &profile.ValueType{Type: "bytes", Unit: "bytes"}

	mkFn := func(name string) *profile.Function {
		return &profile.Function{ID: uint64(len(name)) + 1, Name: name}
	}
	objFn := mkFn("objects")
	funFn := mkFn("functions")
	propFn := mkFn("properties")
	strFn := mkFn("strings")

	locOf := func(fn *profile.Function) *profile.Location {
		return &profile.Location{ID: fn.ID, Line: []profile.Line{{Function: fn}}}
	}
	objLoc, funLoc, propLoc, strLoc := locOf(objFn), locOf(funFn), locOf(propFn), locOf(strFn)

	p := &profile.Profile{
		SampleType: []*profile.ValueType{countType, bytesType},
		Function:   []*profile.Function{objFn, funFn, propFn, strFn},
		Location:   []*profile.Location{objLoc, funLoc, propLoc, strLoc},
		Sample: []*profile.Sample{
			{Location: []*profile.Location{objLoc}, Value: []int64{int64(stat.LiveObjects), 0}},
			{Location: []*profile.Location{funLoc}, Value: []int64{int64(stat.LiveFunctions), 0}},
			{Location: []*profile.Location{propLoc}, Value: []int64{int64(stat.LiveProperties), 0}},
			{Location: []*profile.Location{strLoc}, Value: []int64{0, int64(stat.StringBytes)}},
		},
	}

	return p.Write(w)
}
