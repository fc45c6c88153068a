package ast

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes a human-readable indented tree to w: a pre-order walk from
// p.Root through A, B, C, D and then List, one line per node giving its
// Kind, Str (when non-empty), Num (when non-zero) and Pos. The order is
// tree order, not the arena order that [Encode] writes, and nodes not
// reachable from the root are not printed.
func Dump(p *Program, w io.Writer) error {
	return dumpNode(p, p.Root, w, 0)
}

func dumpNode(p *Program, r Ref, w io.Writer, depth int) error {
	if !r.Valid() {
		return nil
	}
	n := p.Node(r)
	indent := strings.Repeat("  ", depth)
	if _, err := fmt.Fprintf(w, "%s%s", indent, n.Kind); err != nil {
		return err
	}
	if n.Str != "" {
		fmt.Fprintf(w, " %q", n.Str)
	}
	if n.Num != 0 {
		fmt.Fprintf(w, " %g", n.Num)
	}
	fmt.Fprintf(w, " @%d\n", n.Pos)

	for _, child := range []Ref{n.A, n.B, n.C, n.D} {
		if err := dumpNode(p, child, w, depth+1); err != nil {
			return err
		}
	}
	for _, child := range n.List {
		if err := dumpNode(p, child, w, depth+1); err != nil {
			return err
		}
	}
	return nil
}
