// Package shamap implements the 16-ary radix Merkle trie ("SHAMap"):
// prefix-tagged SHA-512/256 hashing, collision resolution on insert, path
// collapse on delete, and copy-on-write snapshots. It has no I/O of its
// own — internal/catl/v1 builds SHAMaps from bytes, and internal/catl/v2
// serializes them through Export.
package shamap

import (
	"errors"
	"sync/atomic"
)

// Type fixes the leaf-hash domain and the CATL node-stream tag for items
// inserted through a SHAMap.
type Type int

const (
	TypeAccountState Type = iota
	TypeTransactionNoMeta
	TypeTransactionWithMeta
)

func (t Type) leafType() NodeType {
	switch t {
	case TypeAccountState:
		return NodeTypeAccountState
	case TypeTransactionNoMeta:
		return NodeTypeTransactionNoMeta
	case TypeTransactionWithMeta:
		return NodeTypeTransactionWithMeta
	default:
		return NodeTypeAccountState
	}
}

// Options configures a SHAMap's behavior. The zero value is CollapseLeavesOnly.
type Options struct {
	CollapseMode CollapseMode
}

// SetMode controls SetItem's add-vs-update semantics.
type SetMode int

const (
	AddOnly SetMode = iota
	UpdateOnly
	AddOrUpdate
)

// SetResult reports what SetItem actually did.
type SetResult int

const (
	Failed SetResult = iota
	Added
	Updated
)

func (r SetResult) String() string {
	switch r {
	case Added:
		return "ADDED"
	case Updated:
		return "UPDATED"
	default:
		return "FAILED"
	}
}

var (
	// ErrInvalidState is returned by SetItem/RemoveItem when called on a
	// SHAMap that has no reachable operation for the given arguments
	// beyond what SetResult already communicates (reserved for future use;
	// present operations never return it, they report Failed instead).
	ErrInvalidState = errors.New("shamap: invalid state")
)

// SHAMap is the public trie handle.
type SHAMap struct {
	root    *innerNode
	mapType Type
	options Options
	seq     uint64
}

var seqCounter uint64

func nextSeq() uint64 { return atomic.AddUint64(&seqCounter, 1) }

// New creates an empty SHAMap. The root is always a depth-0 InnerNode,
// even though it has no children.
func New(mapType Type, options Options) *SHAMap {
	seq := nextSeq()
	return &SHAMap{
		root:    newInnerNode(0, seq),
		mapType: mapType,
		options: options,
		seq:     seq,
	}
}

// Type returns the map's configured type.
func (sm *SHAMap) Type() Type { return sm.mapType }

// GetHash returns the current root hash, recomputing any invalidated
// cached hashes along the way.
func (sm *SHAMap) GetHash() Hash256 {
	return sm.root.hash()
}

// GetItem returns the item stored under key, if any.
func (sm *SHAMap) GetItem(key Key) (*Item, bool, error) {
	fp, err := findPath(sm.root, key)
	if err != nil {
		return nil, false, err
	}
	if fp.outcome != outcomeMatchingLeaf {
		return nil, false, nil
	}
	return fp.leaf.item, true, nil
}

// cloneIfNeeded returns n unchanged if it already belongs to sm's current
// generation, or a shallow clone stamped with sm.seq otherwise — see the
// seq-based copy-on-write design note on innerNode.
func (sm *SHAMap) cloneIfNeeded(n *innerNode) *innerNode {
	if n.seq == sm.seq {
		return n
	}
	return n.cloneShallow(sm.seq)
}

// cowWalk descends toward key, copy-on-write cloning any inner node not
// already owned by sm's current generation, and returns the chain of
// (now sm-owned) inner nodes visited along with the terminal outcome.
func (sm *SHAMap) cowWalk(key Key) ([]pathStep, outcome, *leafNode, error) {
	sm.root = sm.cloneIfNeeded(sm.root)

	var steps []pathStep
	current := sm.root
	for {
		if int(current.depth) >= MaxDepth {
			return nil, 0, nil, ErrMaxDepthExceeded
		}
		branch, err := selectBranch(key, int(current.depth))
		if err != nil {
			return nil, 0, nil, err
		}
		steps = append(steps, pathStep{inner: current, branch: branch})

		child := current.child(branch)
		if child == nil {
			return steps, outcomeEmptyBranch, nil, nil
		}
		if child.isLeaf() {
			leaf := child.(*leafNode)
			if leaf.item.Key().Equal(key) {
				return steps, outcomeMatchingLeaf, leaf, nil
			}
			return steps, outcomeCollidingLeaf, leaf, nil
		}

		childInner := child.(*innerNode)
		if int(childInner.depth) > int(current.depth)+1 {
			// Collapsed skip: if key leaves the skipped levels' single path,
			// materialize an inner node at the depth where it diverges.
			anchor := deepestLeftLeafKey(childInner)
			for d := int(current.depth) + 1; d < int(childInner.depth); d++ {
				bKey, _ := selectBranch(key, d)
				bAnchor, _ := selectBranch(anchor, d)
				if bKey != bAnchor {
					split := newInnerNode(uint8(d), sm.seq)
					split.setChild(bAnchor, childInner)
					current.setChild(branch, split)
					childInner = split
					break
				}
			}
		}
		cloned := sm.cloneIfNeeded(childInner)
		if cloned != childInner {
			current.setChild(branch, cloned)
		}
		current = cloned
	}
}

// SetItem inserts item with collision resolution, gated by mode.
func (sm *SHAMap) SetItem(item *Item, mode SetMode) (SetResult, error) {
	return sm.SetItemTagged(item, mode, sm.mapType.leafType())
}

// SetItemTagged is SetItem with an explicit leaf NodeType, bypassing the
// map's default type. The CATL v1 tx stream needs this: a single tx map
// holds a mix of TRANSACTION_NO_META and TRANSACTION_WITH_META records,
// each tagged individually on the wire, even though both hash under the
// same prefix.
func (sm *SHAMap) SetItemTagged(item *Item, mode SetMode, leafType NodeType) (SetResult, error) {
	if item == nil {
		return Failed, ErrNilItem
	}
	key := item.Key()

	steps, oc, existing, err := sm.cowWalk(key)
	if err != nil {
		return Failed, err
	}
	parent, branch := steps[len(steps)-1].inner, steps[len(steps)-1].branch

	switch oc {
	case outcomeEmptyBranch:
		if mode == UpdateOnly {
			return Failed, nil
		}
		parent.setChild(branch, newLeafNode(item, leafType))
		propagateAncestors(steps, len(steps)-1)
		return Added, nil

	case outcomeMatchingLeaf:
		if mode == AddOnly {
			return Failed, nil
		}
		parent.setChild(branch, newLeafNode(item, leafType))
		propagateAncestors(steps, len(steps)-1)
		return Updated, nil

	case outcomeCollidingLeaf:
		if mode == UpdateOnly {
			return Failed, nil
		}
		subtree, err := buildSplitSubtree(existing, newLeafNode(item, leafType), parent.depth+1, sm.seq)
		if err != nil {
			return Failed, err
		}
		parent.setChild(branch, subtree)
		propagateAncestors(steps, len(steps)-1)
		return Added, nil

	default:
		return Failed, ErrInvalidState
	}
}

// AddItem is SetItem(item, AddOnly).
func (sm *SHAMap) AddItem(item *Item) (SetResult, error) { return sm.SetItem(item, AddOnly) }

// UpdateItem is SetItem(item, UpdateOnly).
func (sm *SHAMap) UpdateItem(item *Item) (SetResult, error) { return sm.SetItem(item, UpdateOnly) }

// RemoveItem clears the terminal branch and runs path collapse. Returns
// true iff a leaf was actually removed.
func (sm *SHAMap) RemoveItem(key Key) (bool, error) {
	steps, oc, _, err := sm.cowWalk(key)
	if err != nil {
		return false, err
	}
	if oc != outcomeMatchingLeaf {
		return false, nil
	}

	last := steps[len(steps)-1]
	last.inner.setChild(last.branch, nil)
	collapseFrom(steps, sm.options.CollapseMode)
	return true, nil
}

// Snapshot returns an independent handle sharing all current nodes by
// reference. Both sm and the returned snapshot are bumped to fresh
// generations so that a subsequent mutation on either side clones away
// from the other rather than mutating shared state in place.
func (sm *SHAMap) Snapshot() *SHAMap {
	sm.seq = nextSeq()
	return &SHAMap{
		root:    sm.root,
		mapType: sm.mapType,
		options: sm.options,
		seq:     nextSeq(),
	}
}

// buildSplitSubtree is the collision-resolution loop: create inner nodes
// at increasing depth until existing and fresh diverge, then place both
// leaves.
func buildSplitSubtree(existing, fresh *leafNode, depth uint8, seq uint64) (node, error) {
	if int(depth) >= MaxDepth {
		return nil, ErrMaxDepthExceeded
	}
	bOld, err := selectBranch(existing.item.Key(), int(depth))
	if err != nil {
		return nil, err
	}
	bNew, err := selectBranch(fresh.item.Key(), int(depth))
	if err != nil {
		return nil, err
	}

	n := newInnerNode(depth, seq)
	if bOld != bNew {
		n.setChild(bOld, existing)
		n.setChild(bNew, fresh)
		return n, nil
	}

	child, err := buildSplitSubtree(existing, fresh, depth+1, seq)
	if err != nil {
		return nil, err
	}
	n.setChild(bOld, child)
	return n, nil
}
