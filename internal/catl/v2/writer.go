package v2

import (
	"encoding/binary"
	"sort"

	"github.com/sublimator/catalogue-tools-sub002/internal/shamap"
)

// Write serializes root (from shamap.SHAMap.Export()) into the CATL v2
// packed layout and returns the complete byte stream. Nodes are written
// postorder: every child is fully written before its parent's offset
// table, so each table entry is a plain backward byte offset with no
// forward-reference fixups needed.
func Write(root *shamap.ExportNode) []byte {
	var buf []byte
	var count uint64
	rootOffset := writeNode(&buf, root, &count)

	var footer [FooterSize]byte
	binary.LittleEndian.PutUint32(footer[0:4], Magic)
	binary.LittleEndian.PutUint64(footer[4:12], rootOffset)
	binary.LittleEndian.PutUint64(footer[12:20], count)
	buf = append(buf, footer[:]...)
	return buf
}

func writeNode(buf *[]byte, n *shamap.ExportNode, count *uint64) uint64 {
	*count++
	if n.Leaf {
		start := uint64(len(*buf))
		*buf = append(*buf, TagLeaf)
		*buf = append(*buf, n.Hash[:]...)
		*buf = append(*buf, byte(n.NodeType))
		*buf = append(*buf, n.Key[:]...)
		var sizeBuf [4]byte
		binary.LittleEndian.PutUint32(sizeBuf[:], uint32(len(n.Value)))
		*buf = append(*buf, sizeBuf[:]...)
		*buf = append(*buf, n.Value...)
		return start
	}

	branches := make([]int, 0, len(n.Children))
	for b := range n.Children {
		branches = append(branches, b)
	}
	sort.Ints(branches)

	offsets := make([]uint64, len(branches))
	for i, b := range branches {
		offsets[i] = writeNode(buf, n.Children[b], count)
	}

	start := uint64(len(*buf))
	*buf = append(*buf, TagInner)
	*buf = append(*buf, byte(n.Depth))
	*buf = append(*buf, n.Hash[:]...)

	var bitmap uint16
	for _, b := range branches {
		bitmap |= 1 << uint(b)
	}
	var bitmapBuf [2]byte
	binary.LittleEndian.PutUint16(bitmapBuf[:], bitmap)
	*buf = append(*buf, bitmapBuf[:]...)

	for _, off := range offsets {
		var offBuf [8]byte
		binary.LittleEndian.PutUint64(offBuf[:], off)
		*buf = append(*buf, offBuf[:]...)
	}
	return start
}
