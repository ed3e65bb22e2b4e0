package shamap

import (
	"math/bits"

	"github.com/sublimator/catalogue-tools-sub002/internal/hashing"
)

// innerNode is an interior node of the trie: up to 16 children, its own
// nibble depth (the depth of the node itself, not of its children), and a
// lazily-recomputed cached hash.
//
// Copy-on-write is implemented with a generation "seq" rather than a live
// reference count: each SHAMap carries a seq assigned
// when it is created or when Snapshot() forks it, and each innerNode
// records the seq of the SHAMap that last owned it for in-place mutation.
// A mutating walk clones any node whose seq differs from the mutating
// map's own seq before touching it; this is equivalent to "refcount > 1
// implies must clone" (a node stamped with an older seq is, by
// construction, still reachable from whichever snapshot forked at or
// after it was created) without needing increment/decrement bookkeeping
// on every path-copy.
type innerNode struct {
	depth    uint8
	children [BranchFactor]node
	hashes   [BranchFactor]Hash256
	branch   uint16 // bit i set iff children[i] is non-empty
	cached   Hash256
	dirty    bool
	seq      uint64
}

func newInnerNode(depth uint8, seq uint64) *innerNode {
	return &innerNode{depth: depth, seq: seq, dirty: true}
}

func (n *innerNode) isLeaf() bool { return false }

func (n *innerNode) hash() Hash256 {
	if n.dirty {
		n.recompute()
	}
	return n.cached
}

// recompute applies the inner-node hashing rule: all-empty hashes to the
// zero hash, otherwise SHA-512/256(prefix || H0 || ... || H15) with 32
// zero bytes standing in for an empty branch.
func (n *innerNode) recompute() {
	if n.branch == 0 {
		n.cached = Hash256{}
		n.dirty = false
		return
	}
	buf := make([]byte, 0, BranchFactor*32)
	for i := 0; i < BranchFactor; i++ {
		buf = append(buf, n.hashes[i][:]...)
	}
	n.cached = Hash256(hashing.Half(PrefixInnerNode.Bytes(), buf))
	n.dirty = false
}

func (n *innerNode) isEmptyBranch(i int) bool {
	return n.branch&(1<<uint(i)) == 0
}

func (n *innerNode) branchCount() int {
	return bits.OnesCount16(n.branch)
}

func (n *innerNode) child(i int) node {
	return n.children[i]
}

// setChild attaches (or clears, if child is nil) the node at branch i and
// marks this node's cached hash invalid.
//
// If child is an inner node whose depth exceeds n.depth+1 — i.e. a
// collapsed-form "skip" (LEAVES_AND_INNERS mode) — the value cached in
// n.hashes[i] is not child's own hash but the synthetic hash that would
// have resulted had the skipped intermediate levels been materialized.
// This makes hash stability hold automatically: recompute never needs to
// know whether a child is really there or skipped, it always asks
// setChild for "the hash this branch contributes", and setChild does the
// telescoping when needed.
func (n *innerNode) setChild(i int, child node) {
	n.children[i] = child
	if child == nil {
		n.hashes[i] = Hash256{}
		n.branch &^= 1 << uint(i)
	} else {
		n.hashes[i] = effectiveChildHash(n.depth, child)
		n.branch |= 1 << uint(i)
	}
	n.dirty = true
}

// effectiveChildHash returns the hash a parent at parentDepth should use
// for child: child's own hash normally, or the synthetic skip hash if
// child is an inner node sitting deeper than parentDepth+1.
func effectiveChildHash(parentDepth uint8, child node) Hash256 {
	if child.isLeaf() {
		return child.hash()
	}
	ci := child.(*innerNode)
	if ci.depth <= parentDepth+1 {
		return ci.hash()
	}
	return synthesizeSkipHash(ci, int(parentDepth)+1)
}

// cloneShallow returns a copy of n with a fresh children/hashes array
// (shallow: child *pointers* are shared, not deep-copied) stamped with
// newSeq. This is the copy-on-write clone step.
func (n *innerNode) cloneShallow(newSeq uint64) *innerNode {
	c := &innerNode{
		depth:  n.depth,
		branch: n.branch,
		cached: n.cached,
		dirty:  n.dirty,
		seq:    newSeq,
	}
	c.children = n.children
	c.hashes = n.hashes
	return c
}
