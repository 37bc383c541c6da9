package tree

import (
	"encoding/binary"
	"math"

	"github.com/zeebo/blake3"

	"github.com/felixgeelhaar/taskplan/internal/domain"
)

// Fingerprint hashes every attribute that planning from root depends on:
// the subtree's nodes, their edges and the preconditions they reference.
// Two trees with equal fingerprints plan identically.
func (t *Tree) Fingerprint(root domain.NodeID) ([32]byte, error) {
	var sum [32]byte
	entries, err := t.Enumerate(root)
	if err != nil {
		return sum, err
	}

	h := blake3.New()
	seen := make(map[domain.NodeID]bool, len(entries))
	for _, e := range entries {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		n := t.nodes[e.ID]

		writeString(h, n.ID.String())
		writeString(h, n.Kind.String())
		writeUint(h, uint64(n.Status))
		writeUint(h, math.Float64bits(n.Cost))
		writeUint(h, math.Float64bits(n.Risk))
		names := resourceNames(n.Resources)
		writeUint(h, uint64(len(names)))
		for _, name := range names {
			writeString(h, name)
			writeUint(h, uint64(n.Resources[name]))
		}
		writeUint(h, uint64(len(n.Children)))
		for _, child := range n.Children {
			writeString(h, child.String())
		}
		writeUint(h, uint64(len(n.Preconditions)))
		for _, pre := range n.Preconditions {
			writeString(h, pre.String())
		}
	}

	copy(sum[:], h.Sum(nil))
	return sum, nil
}

func writeString(h *blake3.Hasher, s string) {
	writeUint(h, uint64(len(s)))
	_, _ = h.Write([]byte(s))
}

func writeUint(h *blake3.Hasher, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = h.Write(buf[:])
}
