// Package v1 implements the CATL v1 catalogue file format: an 88-byte
// header followed by a sequence of per-ledger records, each a fixed-size
// LedgerInfo plus a state node stream and a tx node stream.
package v1

import (
	"encoding/binary"

	"github.com/sublimator/catalogue-tools-sub002/internal/parseerr"
)

// HeaderSize is the fixed byte length of a CATL v1 header: 3 uint32 fields,
// 2 uint16 fields, 1 uint64 field and a 64-byte hash, packed with no
// padding (4+4+4+2+2+8+64). The field-offset table is the byte-accurate
// source of truth; see DESIGN.md for why this resolves to 88, not the
// round "96 bytes" some prose descriptions of this format use.
const HeaderSize = 88

// Magic is the little-endian "CATL" magic number at header offset 0.
const Magic uint32 = 0x4C544143

// Header is the 88-byte file header.
type Header struct {
	Magic      uint32
	MinLedger  uint32
	MaxLedger  uint32
	Version    uint16
	NetworkID  uint16
	FileSize   uint64
	FileHash   [64]byte
}

// CompressionLevel returns bits 8..11 of Version.
func (h Header) CompressionLevel() uint16 {
	return (h.Version >> 8) & 0x0F
}

// FormatVersion returns the low byte of Version.
func (h Header) FormatVersion() uint8 {
	return uint8(h.Version & 0xFF)
}

// ParseHeader decodes the first HeaderSize bytes of buf.
func ParseHeader(buf []byte) (Header, error) {
	var h Header
	if len(buf) < HeaderSize {
		return h, parseerr.New(0, parseerr.UnexpectedEOF)
	}
	h.Magic = binary.LittleEndian.Uint32(buf[0:4])
	if h.Magic != Magic {
		return h, parseerr.New(0, parseerr.InvalidHeader)
	}
	h.MinLedger = binary.LittleEndian.Uint32(buf[4:8])
	h.MaxLedger = binary.LittleEndian.Uint32(buf[8:12])
	h.Version = binary.LittleEndian.Uint16(buf[12:14])
	h.NetworkID = binary.LittleEndian.Uint16(buf[14:16])
	h.FileSize = binary.LittleEndian.Uint64(buf[16:24])
	copy(h.FileHash[:], buf[24:88])
	return h, nil
}

// PutHeader encodes h into the first HeaderSize bytes of buf.
func PutHeader(buf []byte, h Header) {
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.MinLedger)
	binary.LittleEndian.PutUint32(buf[8:12], h.MaxLedger)
	binary.LittleEndian.PutUint16(buf[12:14], h.Version)
	binary.LittleEndian.PutUint16(buf[14:16], h.NetworkID)
	binary.LittleEndian.PutUint64(buf[16:24], h.FileSize)
	copy(buf[24:88], h.FileHash[:])
}
