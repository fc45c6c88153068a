package ast

// arenaChunkSize is the number of Node values pre-allocated per arena
// chunk: most scripts parse well within a handful of chunks.
const arenaChunkSize = 64

// Arena is a chunked bump-pointer allocator for Node values, addressed by
// [Ref] (a flat physical index) rather than by pointer.
//
// Index 0 is never handed out for a real node: Arena pre-reserves it as
// the permanent "no node" sentinel so a zero Ref always means "absent"
// (see [Ref]).
//
// # Lifetime
//
// The Arena must stay alive as long as any Ref derived from it is in use.
// Attaching the arena to a compiled Program achieves this automatically:
// the arena (and all its chunks) is released when the Program is released,
// including eviction from the compiled-script cache (pkg/cache).
//
// # Thread safety
//
// Arena is NOT thread-safe. Each parse owns its own arena; a compiled
// Program's arena is read-only afterward and may be shared across
// goroutines for concurrent evaluation as long as no further Alloc calls
// occur on it.
type Arena struct {
	chunks [][]Node
	next   int32 // next physical index to hand out, across all chunks
}

// NewArena allocates an arena with its sentinel index-0 slot reserved.
func NewArena() *Arena {
	a := &Arena{
		chunks: [][]Node{make([]Node, arenaChunkSize)},
	}
	a.alloc(KindInvalid, 0) // burn index 0 as the sentinel
	return a
}

// Alloc appends a new Node with the given Kind and source position and
// returns its Ref. All other fields are left zero-valued for the caller
// to populate.
func (a *Arena) Alloc(kind Kind, pos int) Ref {
	return a.alloc(kind, pos)
}

func (a *Arena) alloc(kind Kind, pos int) Ref {
	idx := a.next
	chunk := int(idx) / arenaChunkSize
	off := int(idx) % arenaChunkSize
	if chunk >= len(a.chunks) {
		a.chunks = append(a.chunks, make([]Node, arenaChunkSize))
	}
	n := &a.chunks[chunk][off]
	n.Kind = kind
	n.Pos = pos
	a.next++
	return Ref(idx)
}

// Len returns the number of allocated nodes, including the index-0
// sentinel (so a fresh arena has Len() == 1).
func (a *Arena) Len() int { return int(a.next) }

// Node dereferences a Ref into the Node it addresses. Passing the zero Ref
// returns the sentinel KindInvalid node.
func (a *Arena) Node(r Ref) *Node {
	idx := int(r)
	chunk := idx / arenaChunkSize
	off := idx % arenaChunkSize
	return &a.chunks[chunk][off]
}
