package v1

import (
	"encoding/binary"

	"github.com/sublimator/catalogue-tools-sub002/internal/parseerr"
	"github.com/sublimator/catalogue-tools-sub002/internal/shamap"
)

// Tag is a node-stream record type byte.
type Tag byte

const (
	TagTransactionNoMeta Tag = 0x02
	TagTransactionWithMeta Tag = 0x03
	TagAccountState Tag = 0x04
	TagRemove Tag = 0xFE
	TagTerminal Tag = 0xFF
)

func (t Tag) valid() bool {
	switch t {
	case TagTransactionNoMeta, TagTransactionWithMeta, TagAccountState, TagRemove, TagTerminal:
		return true
	default:
		return false
	}
}

// StreamKind distinguishes the state stream from the tx stream, since the
// set of tags legal within each differs.
type StreamKind int

const (
	StreamState StreamKind = iota
	StreamTx
)

// Record is one decoded node-stream entry (everything but TERMINAL).
type Record struct {
	Tag   Tag
	Key   shamap.Key
	Value shamap.Slice // zero-copy view into the stream's backing buffer
}

// streamReader decodes a node stream from buf starting at offset, stopping
// at TERMINAL (inclusive) or a sanity-ceiling/bounds violation.
type streamReader struct {
	buf          []byte
	offset       int64
	maxValueSize uint32
	kind         StreamKind
}

func newStreamReader(buf []byte, offset int64, maxValueSize uint32, kind StreamKind) *streamReader {
	return &streamReader{buf: buf, offset: offset, maxValueSize: maxValueSize, kind: kind}
}

// next decodes the record at the current offset, advancing past it. It
// returns (nil, io.EOF-like done=true) when TERMINAL is consumed.
func (r *streamReader) next() (rec *Record, done bool, err error) {
	if r.offset >= int64(len(r.buf)) {
		return nil, false, parseerr.New(r.offset, parseerr.UnexpectedEOF)
	}
	tag := Tag(r.buf[r.offset])
	tagOffset := r.offset
	r.offset++

	if tag == TagTerminal {
		return nil, true, nil
	}
	if !tag.valid() {
		return nil, false, parseerr.Newf(tagOffset, parseerr.InvalidNodeType, "tag byte 0x%02x", byte(tag))
	}
	if tag == TagRemove && r.kind == StreamTx {
		return nil, false, parseerr.New(tagOffset, parseerr.WrongStreamContext)
	}
	if (tag == TagTransactionNoMeta || tag == TagTransactionWithMeta) && r.kind == StreamState {
		return nil, false, parseerr.New(tagOffset, parseerr.WrongStreamContext)
	}
	if tag == TagAccountState && r.kind == StreamTx {
		return nil, false, parseerr.New(tagOffset, parseerr.WrongStreamContext)
	}

	var key shamap.Key
	if r.offset+32 > int64(len(r.buf)) {
		return nil, false, parseerr.New(r.offset, parseerr.UnexpectedEOF)
	}
	copy(key[:], r.buf[r.offset:r.offset+32])
	r.offset += 32

	if tag == TagRemove {
		return &Record{Tag: tag, Key: key}, false, nil
	}

	if r.offset+4 > int64(len(r.buf)) {
		return nil, false, parseerr.New(r.offset, parseerr.UnexpectedEOF)
	}
	size := binary.LittleEndian.Uint32(r.buf[r.offset : r.offset+4])
	sizeOffset := r.offset
	r.offset += 4

	if size > r.maxValueSize {
		return nil, false, parseerr.Newf(sizeOffset, parseerr.InvalidValueSize, "size %d exceeds ceiling %d", size, r.maxValueSize)
	}
	if r.offset+int64(size) > int64(len(r.buf)) {
		return nil, false, parseerr.New(sizeOffset, parseerr.InvalidValueSize)
	}
	value := shamap.Slice(r.buf[r.offset : r.offset+int64(size)])
	r.offset += int64(size)

	return &Record{Tag: tag, Key: key, Value: value}, false, nil
}

// PutRecord appends the wire encoding of an add/update record to dst.
func PutRecord(dst []byte, tag Tag, key shamap.Key, value []byte) []byte {
	dst = append(dst, byte(tag))
	dst = append(dst, key[:]...)
	var sizeBuf [4]byte
	binary.LittleEndian.PutUint32(sizeBuf[:], uint32(len(value)))
	dst = append(dst, sizeBuf[:]...)
	dst = append(dst, value...)
	return dst
}

// PutRemove appends the wire encoding of a REMOVE record to dst.
func PutRemove(dst []byte, key shamap.Key) []byte {
	dst = append(dst, byte(TagRemove))
	dst = append(dst, key[:]...)
	return dst
}

// PutTerminal appends the TERMINAL byte to dst.
func PutTerminal(dst []byte) []byte {
	return append(dst, byte(TagTerminal))
}
