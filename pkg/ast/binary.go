package ast

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// magic identifies the binary AST format produced by [Encode] and consumed
// by [Decode], so a host embedding this engine can detect and reject a
// stale or foreign blob before attempting to walk it (spec.md §6 "compile"
// is expected to hand back a self-describing artifact, not a raw dump).
const magic uint32 = 0x6E37_4153 // "n7AS"; written little-endian, so the first bytes are "SA7n"

const formatVersion uint16 = 1

// Encode serializes p into the engine's binary AST format: a small header
// (magic, version, node count) followed by one record per node in arena
// order (Kind, Pos, A-D, a length-prefixed List, a length-prefixed Str,
// Num), then the length-prefixed source text and the root ref, so a decoded Program needs no pointer fixups beyond slice indexing.
func Encode(p *Program) ([]byte, error) {
	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.LittleEndian, magic); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, formatVersion); err != nil {
		return nil, err
	}
	n := uint32(p.Arena.Len())
	if err := binary.Write(&buf, binary.LittleEndian, n); err != nil {
		return nil, err
	}

	for i := 0; i < int(n); i++ {
		node := p.Arena.Node(Ref(i))
		if err := encodeNode(&buf, node); err != nil {
			return nil, fmt.Errorf("ast: encode node %d: %w", i, err)
		}
	}

	if err := writeString(&buf, p.Source); err != nil {
		return nil, err
	}
	rootRef := uint32(p.Root)
	if err := binary.Write(&buf, binary.LittleEndian, rootRef); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func encodeNode(buf *bytes.Buffer, n *Node) error {
	if err := buf.WriteByte(byte(n.Kind)); err != nil {
		return err
	}
	for _, v := range []int32{int32(n.Pos), int32(n.A), int32(n.B), int32(n.C), int32(n.D)} {
		if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(n.List))); err != nil {
		return err
	}
	for _, r := range n.List {
		if err := binary.Write(buf, binary.LittleEndian, int32(r)); err != nil {
			return err
		}
	}
	if err := writeString(buf, n.Str); err != nil {
		return err
	}
	return binary.Write(buf, binary.LittleEndian, math.Float64bits(n.Num))
}

func writeString(buf *bytes.Buffer, s string) error {
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := buf.WriteString(s)
	return err
}

// Decode parses a blob produced by [Encode] back into a Program.
func Decode(data []byte) (*Program, error) {
	r := bytes.NewReader(data)

	var got uint32
	if err := binary.Read(r, binary.LittleEndian, &got); err != nil {
		return nil, fmt.Errorf("ast: read magic: %w", err)
	}
	if got != magic {
		return nil, fmt.Errorf("ast: bad magic %#x, not a compiled program", got)
	}
	var ver uint16
	if err := binary.Read(r, binary.LittleEndian, &ver); err != nil {
		return nil, err
	}
	if ver != formatVersion {
		return nil, fmt.Errorf("ast: unsupported format version %d", ver)
	}
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}

	arena := &Arena{chunks: [][]Node{make([]Node, arenaChunkSize)}}
	for i := uint32(0); i < n; i++ {
		node, err := decodeNode(r)
		if err != nil {
			return nil, fmt.Errorf("ast: decode node %d: %w", i, err)
		}
		ref := arena.alloc(node.Kind, node.Pos)
		*arena.Node(ref) = *node
	}

	source, err := readString(r)
	if err != nil {
		return nil, err
	}
	var rootRef uint32
	if err := binary.Read(r, binary.LittleEndian, &rootRef); err != nil {
		return nil, err
	}

	return &Program{Arena: arena, Root: Ref(rootRef), Source: source}, nil
}

func decodeNode(r *bytes.Reader) (*Node, error) {
	kindByte, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	n := &Node{Kind: Kind(kindByte)}

	var fields [5]int32
	for i := range fields {
		if err := binary.Read(r, binary.LittleEndian, &fields[i]); err != nil {
			return nil, err
		}
	}
	n.Pos = int(fields[0])
	n.A, n.B, n.C, n.D = Ref(fields[1]), Ref(fields[2]), Ref(fields[3]), Ref(fields[4])

	var listLen uint32
	if err := binary.Read(r, binary.LittleEndian, &listLen); err != nil {
		return nil, err
	}
	if listLen > 0 {
		n.List = make([]Ref, listLen)
		for i := range n.List {
			var v int32
			if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
				return nil, err
			}
			n.List[i] = Ref(v)
		}
	}

	str, err := readString(r)
	if err != nil {
		return nil, err
	}
	n.Str = str

	var bits uint64
	if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
		return nil, err
	}
	n.Num = math.Float64frombits(bits)

	return n, nil
}

func readString(r *bytes.Reader) (string, error) {
	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return "", err
	}
	if length == 0 {
		return "", nil
	}
	b := make([]byte, length)
	if _, err := r.Read(b); err != nil {
		return "", err
	}
	return string(b), nil
}
