// Package v2 implements the CATL v2 packed on-disk tree layout: a
// perma-cached-hash, isomorphic container for the same SHAMap semantics
// as v1, read via a hybrid mmap/heap lazy-materializing view.
package v2

const (
	// TagLeaf marks a packed leaf record.
	TagLeaf byte = 0x01
	// TagInner marks a packed inner-node record.
	TagInner byte = 0x02
)

// Footer is the fixed trailer written at the end of a v2 file: it carries
// the absolute byte offset of the root node, which is only known once the
// whole (postorder-serialized) tree has been written.
type Footer struct {
	Magic      uint32
	RootOffset uint64
	NodeCount  uint64
}

// FooterSize is the packed byte length of Footer.
const FooterSize = 4 + 8 + 8

// Magic identifies a CATL v2 file ("CAT2" little-endian).
const Magic uint32 = 0x32544143
