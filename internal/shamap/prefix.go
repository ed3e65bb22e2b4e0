package shamap

// HashPrefix is a 4-byte domain separator mixed into every node hash so
// that an inner node's hash can never collide with a leaf's, and a
// transaction leaf's hash can never collide with an account-state leaf's.
//
// Values match rippled's HashPrefix enum byte-for-byte.
type HashPrefix [4]byte

var (
	// PrefixInnerNode tags an inner node's hash.
	PrefixInnerNode = HashPrefix{'M', 'I', 'N', 0x00}
	// PrefixAccountStateLeaf tags an account-state leaf's hash.
	PrefixAccountStateLeaf = HashPrefix{'M', 'L', 'N', 0x00}
	// PrefixTxNodeLeaf tags a transaction leaf's hash. Leaves with and
	// without metadata share this prefix; the NodeType tag distinguishes
	// them structurally, not the hash prefix.
	PrefixTxNodeLeaf = HashPrefix{'S', 'N', 'D', 0x00}
)

// Bytes returns the prefix as a slice for hashing.
func (p HashPrefix) Bytes() []byte { return p[:] }
