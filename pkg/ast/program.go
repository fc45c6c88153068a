package ast

// Program is a fully parsed compilation unit: the arena backing it plus
// the root KindProgram node and the original source text (retained for
// error position→line/column translation and for re-serialization).
type Program struct {
	Arena  *Arena
	Root   Ref
	Source string
}

// Node is a convenience accessor equivalent to p.Arena.Node(r).
func (p *Program) Node(r Ref) *Node {
	return p.Arena.Node(r)
}

// NodeCount reports the number of nodes in the program, including the
// reserved sentinel slot.
func (p *Program) NodeCount() int {
	return p.Arena.Len()
}
