package shamap

import "github.com/sublimator/catalogue-tools-sub002/internal/hashing"

// leafNode is a leaf in the trie: an item tagged with the leaf type that
// selects its hash domain prefix. Leaves are immutable once constructed —
// an "update" never mutates a leafNode in place, it builds a new one.
type leafNode struct {
	item     *Item
	leafType NodeType
	h        Hash256
}

func newLeafNode(item *Item, leafType NodeType) *leafNode {
	l := &leafNode{item: item, leafType: leafType}
	l.h = l.computeHash()
	return l
}

func (l *leafNode) isLeaf() bool { return true }
func (l *leafNode) hash() Hash256 { return l.h }

// computeHash computes the leaf hash: SHA-512/256(prefix || value_bytes ||
// key_bytes).
func (l *leafNode) computeHash() Hash256 {
	prefix := leafPrefix(l.leafType)
	key := l.item.Key()
	return Hash256(hashing.Half(prefix.Bytes(), l.item.Value(), key[:]))
}

func leafPrefix(t NodeType) HashPrefix {
	if t == NodeTypeAccountState {
		return PrefixAccountStateLeaf
	}
	return PrefixTxNodeLeaf
}
