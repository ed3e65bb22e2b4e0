package shamap

import "encoding/json"

// TrieNode is the JSON-serializable view of one trie node. Inner nodes
// carry Children keyed by branch index as a single hex digit; leaves
// carry Key/Value and omit Children.
type TrieNode struct {
	Hash     string               `json:"hash"`
	Depth    int                  `json:"depth"`
	Leaf     bool                 `json:"leaf"`
	NodeType string               `json:"node_type,omitempty"`
	Key      string               `json:"key,omitempty"`
	Value    string               `json:"value,omitempty"`
	Children map[string]*TrieNode `json:"children,omitempty"`
}

// TrieJSONOptions controls how TrieJSONWithOptions renders a leaf's key.
type TrieJSONOptions struct {
	// KeyAsHash renders each leaf's 32-byte key in hex (the default via
	// TrieJSON). When false, the Key field is omitted — useful when the
	// caller only wants structure and hashes, not key material.
	KeyAsHash bool
}

// TrieJSON renders sm's current state as a tree of TrieNode, suitable for
// json.Marshal as a debug dump. Equivalent to
// TrieJSONWithOptions(TrieJSONOptions{KeyAsHash: true}).
func (sm *SHAMap) TrieJSON() *TrieNode {
	return sm.TrieJSONWithOptions(TrieJSONOptions{KeyAsHash: true})
}

// TrieJSONWithOptions renders sm's current state as a tree of TrieNode
// under the given options.
func (sm *SHAMap) TrieJSONWithOptions(opts TrieJSONOptions) *TrieNode {
	return nodeToJSON(sm.root, int(sm.root.depth), opts)
}

func nodeToJSON(n node, depth int, opts TrieJSONOptions) *TrieNode {
	h := n.hash()
	out := &TrieNode{
		Hash:  hexString(h[:]),
		Depth: depth,
	}
	if n.isLeaf() {
		leaf := n.(*leafNode)
		out.Leaf = true
		out.NodeType = leaf.leafType.String()
		if opts.KeyAsHash {
			key := leaf.item.Key()
			out.Key = hexString(key[:])
		}
		out.Value = hexString(leaf.item.Value())
		return out
	}

	in := n.(*innerNode)
	out.NodeType = NodeTypeInner.String()
	for i := 0; i < BranchFactor; i++ {
		if in.isEmptyBranch(i) {
			continue
		}
		if out.Children == nil {
			out.Children = make(map[string]*TrieNode, in.branchCount())
		}
		child := in.child(i)
		childDepth := depth + 1
		if !child.isLeaf() {
			childDepth = int(child.(*innerNode).depth)
		}
		out.Children[branchKey(i)] = nodeToJSON(child, childDepth, opts)
	}
	return out
}

func branchKey(i int) string {
	const hexDigits = "0123456789abcdef"
	return string([]byte{hexDigits[i]})
}

func hexString(b []byte) string {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = hexDigits[v>>4]
		out[i*2+1] = hexDigits[v&0x0f]
	}
	return string(out)
}

// MarshalJSON makes SHAMap itself directly marshalable via TrieJSON.
func (sm *SHAMap) MarshalJSON() ([]byte, error) {
	return json.Marshal(sm.TrieJSON())
}
