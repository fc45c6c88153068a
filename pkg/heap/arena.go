// Package heap implements the managed heap: three fixed-cell arenas
// (objects, functions, properties), a relocating string heap, and the
// precise mark/sweep/compact garbage collector that ties them together.
//
// The bump-allocated, chunked arena shape is carried over from
// pkg/ast.Arena, generalized with a free list so cells can be
// individually reclaimed at sweep time instead of only ever growing.
package heap

import "github.com/nanov7/nanov7/pkg/errs"

// cellChunkSize matches pkg/ast's arenaChunkSize; cells and AST nodes are
// allocated at a similar granularity.
const cellChunkSize = 64

// RecoverOOM is deferred by pkg/runtime's call-boundary functions (Run,
// Apply, Construct) to turn an oomPanic unwinding up from a deeply
// nested allocOrPanic call into an *errs.Error{Code: CodeOutOfMemory}
// return, without every intermediate eval* function needing an explicit
// OOM check (spec.md §7: OutOfMemory is "surfaced as a thrown Error with
// kind InternalError"). Any other panic value is re-raised unchanged.
func RecoverOOM(err *error) {
	if r := recover(); r != nil {
		if _, ok := r.(oomPanic); ok {
			*err = errs.New(errs.CodeOutOfMemory, "allocator could not satisfy request after garbage collection")
			return
		}
		panic(r)
	}
}

// cellArena is a generic bump-allocated, chunked, free-listed pool of
// fixed-size cells. Index 0 is reserved as the permanent "no cell"
// sentinel, mirroring ast.Arena/ast.Ref.
type cellArena[T any] struct {
	chunks  [][]T
	next    uint32
	free    []uint32
	cap     uint32 // current capacity across all chunks
	maxCells uint32
}

func newCellArena[T any](maxCells uint32) *cellArena[T] {
	a := &cellArena[T]{maxCells: maxCells}
	a.growChunk()
	a.next = 1 // burn index 0
	return a
}

func (a *cellArena[T]) growChunk() {
	a.chunks = append(a.chunks, make([]T, cellChunkSize))
	a.cap += cellChunkSize
}

// full reports whether the arena has no reclaimed cell to hand out and
// has exhausted its current chunk capacity — the GC trigger condition
// named in spec.md §4.2 ("free list empty on allocation").
func (a *cellArena[T]) full() bool {
	return len(a.free) == 0 && a.next >= a.cap
}

// oomPanic is thrown (via Go panic, recovered at the interpreter's call
// boundary — see RecoverOOM) when an arena is at cap and a
// GC cycle reclaimed nothing, per spec.md §4.2 "Failure modes": this
// raises OutOfMemory as an engine-level exception rather than silently
// handing back the reserved sentinel index.
type oomPanic struct{}

// allocOrPanic is alloc's non-silent counterpart: every heap-level
// allocation site (pkg/heap/object.go, function.go, strings.go) uses
// this instead of alloc so that running out of arena capacity is never
// mistaken for a fresh zero-valued cell at index 0.
func (a *cellArena[T]) allocOrPanic() uint32 {
	ref := a.alloc()
	if ref == 0 {
		panic(oomPanic{})
	}
	return ref
}

// alloc hands out a cell index, preferring the free list, then growing
// the arena (doubling chunk count) if still at capacity. Returns 0 (the
// sentinel, never a valid live index) if maxCells would be exceeded.
func (a *cellArena[T]) alloc() uint32 {
	if n := len(a.free); n > 0 {
		ref := a.free[n-1]
		a.free = a.free[:n-1]
		*a.at(ref) = *new(T)
		return ref
	}
	if a.next >= a.cap {
		if a.maxCells > 0 && a.cap >= a.maxCells {
			return 0
		}
		// Double capacity, same growth factor as the arena's chunk count.
		chunksNow := len(a.chunks)
		for i := 0; i < chunksNow; i++ {
			a.growChunk()
		}
	}
	ref := a.next
	a.next++
	return ref
}

func (a *cellArena[T]) at(ref uint32) *T {
	chunk := int(ref) / cellChunkSize
	off := int(ref) % cellChunkSize
	return &a.chunks[chunk][off]
}

// release returns ref to the free list. Callers must not hold pointers
// obtained from at(ref) across a free call.
func (a *cellArena[T]) release(ref uint32) {
	*a.at(ref) = *new(T)
	a.free = append(a.free, ref)
}

// live calls fn for every allocated index currently not on the free list.
// Used by sweep to find unmarked cells.
func (a *cellArena[T]) live(fn func(ref uint32)) {
	onFree := make(map[uint32]bool, len(a.free))
	for _, r := range a.free {
		onFree[r] = true
	}
	for ref := uint32(1); ref < a.next; ref++ {
		if !onFree[ref] {
			fn(ref)
		}
	}
}

func (a *cellArena[T]) liveCount() int {
	return int(a.next) - 1 - len(a.free)
}
