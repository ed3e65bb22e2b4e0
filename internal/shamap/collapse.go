package shamap

import "github.com/sublimator/catalogue-tools-sub002/internal/hashing"

// CollapseMode selects how path collapse treats single-child inner
// chains after a delete.
type CollapseMode int

const (
	// CollapseLeavesOnly only promotes a lone leaf directly onto its
	// grandparent; single-child inner chains stay fully materialized.
	// This is the default.
	CollapseLeavesOnly CollapseMode = iota
	// CollapseLeavesAndInners additionally collapses single-child inner
	// chains, producing a depth "skip" in the tree. get_hash() must be
	// (and is) identical to CollapseLeavesOnly given the same history —
	// see effectiveChildHash / synthesizeSkipHash.
	CollapseLeavesAndInners
)

// deepestLeftLeafKey returns the key of the canonical leaf used to anchor
// synthetic skip hashing: the deepest-left leaf in n's subtree, found by
// always descending into the lowest-numbered occupied branch.
func deepestLeftLeafKey(n node) Key {
	for {
		if n.isLeaf() {
			return n.(*leafNode).item.Key()
		}
		in := n.(*innerNode)
		for b := 0; b < BranchFactor; b++ {
			if !in.isEmptyBranch(b) {
				n = in.child(b)
				break
			}
		}
	}
}

// synthesizeSkipHash applies the collapsed-form hashing rule. child is an
// inner node materialized at depth child.depth, but logically sits just
// below a parent at parentDepth-1 (i.e. the levels [parentDepth,
// child.depth-1] are skipped). The result is the hash that would appear
// at depth parentDepth if every skipped level had been materialized with
// exactly one occupied branch leading down to child.
func synthesizeSkipHash(child *innerNode, parentDepth int) Hash256 {
	anchor := deepestLeftLeafKey(child)
	current := child.hash()

	for d := int(child.depth) - 1; d >= parentDepth; d-- {
		branch, err := selectBranch(anchor, d)
		if err != nil {
			// Unreachable: d is always < MaxDepth here because child.depth
			// <= MaxDepth and d < child.depth.
			panic(err)
		}
		var hashesAtD [BranchFactor]Hash256
		hashesAtD[branch] = current

		buf := make([]byte, 0, BranchFactor*32)
		for i := 0; i < BranchFactor; i++ {
			buf = append(buf, hashesAtD[i][:]...)
		}
		current = Hash256(hashing.Half(PrefixInnerNode.Bytes(), buf))
	}
	return current
}

// soleChild returns the branch index and node of I's only occupied branch.
// Only valid to call when I.branchCount() == 1.
func soleChild(in *innerNode) (int, node) {
	for b := 0; b < BranchFactor; b++ {
		if !in.isEmptyBranch(b) {
			return b, in.child(b)
		}
	}
	return -1, nil
}

// propagateAncestors refreshes the cached hash contribution of
// steps[from].inner in every ancestor from steps[from-1] up to the root,
// after steps[from].inner's own content changed but its position in the
// tree did not. Used both by the plain insert/update path and by collapse
// once it reaches a node it decides not to restructure further.
func propagateAncestors(steps []pathStep, from int) {
	child := node(steps[from].inner)
	for j := from - 1; j >= 0; j-- {
		steps[j].inner.setChild(steps[j].branch, child)
		child = steps[j].inner
	}
}

// collapseFrom performs path collapse starting at the deepest entry of
// steps (the former parent of a just-deleted leaf, whose branch has
// already been cleared by the caller) and walking back toward the root.
func collapseFrom(steps []pathStep, mode CollapseMode) {
	i := len(steps) - 1
	for i >= 0 {
		in := steps[i].inner
		switch in.branchCount() {
		case 0:
			if i == 0 {
				return // root stays, empty.
			}
			steps[i-1].inner.setChild(steps[i-1].branch, nil)
			i--
		case 1:
			branch, child := soleChild(in)
			_ = branch
			if child.isLeaf() {
				if i == 0 {
					return // root keeps its single leaf child materialized.
				}
				steps[i-1].inner.setChild(steps[i-1].branch, child)
				i--
				continue
			}
			if mode == CollapseLeavesAndInners && i > 0 {
				steps[i-1].inner.setChild(steps[i-1].branch, child)
				i--
				continue
			}
			// LEAVES_ONLY, or i == 0: stop restructuring, but in's own
			// hash did change (a branch was cleared somewhere below), so
			// ancestors above it still need refreshing.
			propagateAncestors(steps, i)
			return
		default: // >= 2 children: stop.
			propagateAncestors(steps, i)
			return
		}
	}
}
