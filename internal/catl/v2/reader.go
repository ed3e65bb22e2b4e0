package v2

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"os"

	"github.com/edsrzf/mmap-go"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/sublimator/catalogue-tools-sub002/internal/shamap"
)

// LeafView is a zero-copy view of a packed leaf record.
type LeafView struct {
	Hash     shamap.Hash256
	NodeType shamap.NodeType
	Key      shamap.Key
	Value    shamap.Slice
}

// InnerView is a zero-copy view of a packed inner-node record: its hash
// is perma-cached and its children's offsets are resolved without
// touching the children's own bytes.
type InnerView struct {
	Depth        uint8
	Hash         shamap.Hash256
	Bitmap       uint16
	ChildOffsets []uint64 // parallel to the occupied branches, ascending
}

// childOffset returns the offset of branch (if occupied).
func (iv *InnerView) childOffset(branch int) (uint64, bool) {
	if iv.Bitmap&(1<<uint(branch)) == 0 {
		return 0, false
	}
	idx := bits.OnesCount16(iv.Bitmap & ((1 << uint(branch)) - 1))
	return iv.ChildOffsets[idx], true
}

// DefaultCacheSize bounds how many materialized node views stay resident.
const DefaultCacheSize = 4096

// Reader mmaps a CATL v2 file and lazily materializes nodes on demand,
// bounded by an LRU cache keyed on file offset.
type Reader struct {
	file   *os.File
	data   mmap.MMap
	footer Footer
	cache  *lru.Cache[uint64, any]
}

// Open mmaps path read-only and parses its footer.
func Open(path string) (*Reader, error) {
	return OpenWithCacheSize(path, DefaultCacheSize)
}

// OpenWithCacheSize is Open with an explicit materialized-node cache size.
func OpenWithCacheSize(path string, cacheSize int) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	if len(data) < FooterSize {
		data.Unmap()
		f.Close()
		return nil, fmt.Errorf("v2: file too short for footer")
	}
	tail := data[len(data)-FooterSize:]
	var footer Footer
	footer.Magic = binary.LittleEndian.Uint32(tail[0:4])
	footer.RootOffset = binary.LittleEndian.Uint64(tail[4:12])
	footer.NodeCount = binary.LittleEndian.Uint64(tail[12:20])
	if footer.Magic != Magic {
		data.Unmap()
		f.Close()
		return nil, fmt.Errorf("v2: bad footer magic")
	}

	cache, err := lru.New[uint64, any](cacheSize)
	if err != nil {
		data.Unmap()
		f.Close()
		return nil, err
	}
	return &Reader{file: f, data: data, footer: footer, cache: cache}, nil
}

// Close unmaps the file. Any LeafView.Value previously returned must not
// be used afterward.
func (r *Reader) Close() error {
	if err := r.data.Unmap(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

// RootOffset is the byte offset of the root node.
func (r *Reader) RootOffset() uint64 { return r.footer.RootOffset }

// NodeCount is the number of nodes the writer reported at serialization time.
func (r *Reader) NodeCount() uint64 { return r.footer.NodeCount }

func (r *Reader) nodeAt(offset uint64) (any, error) {
	if v, ok := r.cache.Get(offset); ok {
		return v, nil
	}
	v, err := parseNode(r.data, offset)
	if err != nil {
		return nil, err
	}
	r.cache.Add(offset, v)
	return v, nil
}

func parseNode(data []byte, offset uint64) (any, error) {
	if offset >= uint64(len(data)) {
		return nil, fmt.Errorf("v2: node offset %d out of range", offset)
	}
	tag := data[offset]
	pos := offset + 1

	switch tag {
	case TagLeaf:
		if pos+32+1+32+4 > uint64(len(data)) {
			return nil, fmt.Errorf("v2: truncated leaf at offset %d", offset)
		}
		var hash shamap.Hash256
		copy(hash[:], data[pos:pos+32])
		pos += 32
		nodeType := shamap.NodeType(data[pos])
		pos++
		var key shamap.Key
		copy(key[:], data[pos:pos+32])
		pos += 32
		size := binary.LittleEndian.Uint32(data[pos : pos+4])
		pos += 4
		if pos+uint64(size) > uint64(len(data)) {
			return nil, fmt.Errorf("v2: truncated leaf value at offset %d", offset)
		}
		return &LeafView{
			Hash:     hash,
			NodeType: nodeType,
			Key:      key,
			Value:    shamap.Slice(data[pos : pos+uint64(size)]),
		}, nil

	case TagInner:
		if pos+1+32+2 > uint64(len(data)) {
			return nil, fmt.Errorf("v2: truncated inner node at offset %d", offset)
		}
		depth := data[pos]
		pos++
		var hash shamap.Hash256
		copy(hash[:], data[pos:pos+32])
		pos += 32
		bitmap := binary.LittleEndian.Uint16(data[pos : pos+2])
		pos += 2

		n := bits.OnesCount16(bitmap)
		if pos+uint64(n)*8 > uint64(len(data)) {
			return nil, fmt.Errorf("v2: truncated offset table at offset %d", offset)
		}
		offsets := make([]uint64, n)
		for i := 0; i < n; i++ {
			offsets[i] = binary.LittleEndian.Uint64(data[pos : pos+8])
			pos += 8
		}
		return &InnerView{Depth: depth, Hash: hash, Bitmap: bitmap, ChildOffsets: offsets}, nil

	default:
		return nil, fmt.Errorf("v2: unknown tag 0x%02x at offset %d", tag, offset)
	}
}

// GetHash returns the root's perma-cached hash without touching the rest
// of the tree.
func (r *Reader) GetHash() (shamap.Hash256, error) {
	v, err := r.nodeAt(r.footer.RootOffset)
	if err != nil {
		return shamap.Hash256{}, err
	}
	switch n := v.(type) {
	case *LeafView:
		return n.Hash, nil
	case *InnerView:
		return n.Hash, nil
	default:
		return shamap.Hash256{}, fmt.Errorf("v2: unreachable node kind")
	}
}

// GetItem walks from the root to key's leaf, materializing only the nodes
// on that path — here read-only, so nothing leaves mmap.
func (r *Reader) GetItem(key shamap.Key) (*shamap.Item, bool, error) {
	offset := r.footer.RootOffset
	for {
		v, err := r.nodeAt(offset)
		if err != nil {
			return nil, false, err
		}
		switch n := v.(type) {
		case *LeafView:
			if n.Key.Equal(key) {
				return shamap.NewItem(n.Key, n.Value.Bytes()), true, nil
			}
			return nil, false, nil
		case *InnerView:
			branch, err := shamap.SelectBranch(key, int(n.Depth))
			if err != nil {
				return nil, false, err
			}
			childOffset, ok := n.childOffset(branch)
			if !ok {
				return nil, false, nil
			}
			offset = childOffset
		default:
			return nil, false, fmt.Errorf("v2: unreachable node kind")
		}
	}
}
