package shamap

import (
	"bytes"
	"errors"
)

// Hash256 is a fixed 32-byte hash value. The zero value is the well-defined
// "empty" hash used by an empty inner node.
type Hash256 [32]byte

// IsZero reports whether h is the all-zero hash.
func (h Hash256) IsZero() bool { return h == Hash256{} }

// Key identifies an item in a SHAMap. It is the sole key type for every
// map: a fixed 256-bit value navigated one nibble at a time.
type Key [32]byte

// Equal reports whether two keys are byte-wise identical.
func (k Key) Equal(other Key) bool { return k == other }

// Slice is a non-owning (ptr, len) view of bytes. It is valid only for the
// lifetime of its backing buffer — typically a memory-mapped CATL v1 file
// (see internal/catl/v1) or a heap buffer owned elsewhere. Slice never
// copies; callers that need to retain data beyond the backing buffer's
// lifetime must copy it into an Item via NewItem, which does copy.
type Slice []byte

// Bytes returns the underlying bytes. The caller must not hold onto the
// result past the lifetime of the backing buffer.
func (s Slice) Bytes() []byte { return s }

// ErrNilItem is returned when an operation is given a nil item.
var ErrNilItem = errors.New("shamap: nil item")

// Item is the (key, value) pair stored at a leaf. Items are immutable once
// constructed and may be shared by multiple leaves across copy-on-write
// snapshots — this is safe because Item never mutates its backing bytes
// after construction.
type Item struct {
	key   Key
	value []byte
}

// NewItem constructs an Item, copying value so the Item owns its bytes
// independently of whatever buffer the caller passed in (in particular,
// independently of a memory-mapped CATL v1 node stream once it is closed).
func NewItem(key Key, value []byte) *Item {
	cp := make([]byte, len(value))
	copy(cp, value)
	return &Item{key: key, value: cp}
}

// newItemFromSlice is the zero-copy constructor: the Item aliases value's
// backing buffer (e.g. a node stream's mmap) and is valid only while that
// buffer is. SHAMap stores Items as given and does not copy them.
func newItemFromSlice(key Key, value Slice) *Item {
	return &Item{key: key, value: value}
}

// Key returns the item's key.
func (it *Item) Key() Key { return it.key }

// Value returns the item's value bytes. The caller must not mutate the
// returned slice.
func (it *Item) Value() []byte { return it.value }

// Equal reports whether two items have the same key and value.
func (it *Item) Equal(other *Item) bool {
	if it == nil || other == nil {
		return it == other
	}
	return it.key == other.key && bytes.Equal(it.value, other.value)
}
