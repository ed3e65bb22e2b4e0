package v1

import "encoding/binary"

// LedgerInfoSize is the packed byte length of a LedgerInfo record:
// 4 + 32*4 + 8 + 4 + 4 + 8 + 8 = 164.
const LedgerInfoSize = 164

// LedgerInfo is one ledger's header within the CATL v1 stream. Scalars are
// little-endian; the four hash fields are opaque 32-byte strings copied
// verbatim, with no byte-swapping.
type LedgerInfo struct {
	Sequence             uint32
	LedgerHash           [32]byte
	TxMapHash            [32]byte
	StateMapHash         [32]byte
	ParentHash           [32]byte
	Drops                uint64
	CloseFlags           uint32
	CloseTimeResolution  uint32
	CloseTime            uint64
	ParentCloseTime      uint64
}

// ParseLedgerInfo decodes a LedgerInfoSize-byte record starting at buf[0].
func ParseLedgerInfo(buf []byte, offset int64) (LedgerInfo, error) {
	var li LedgerInfo
	if len(buf) < LedgerInfoSize {
		return li, newParseErr(offset, errUnexpectedEOF)
	}
	li.Sequence = binary.LittleEndian.Uint32(buf[0:4])
	copy(li.LedgerHash[:], buf[4:36])
	copy(li.TxMapHash[:], buf[36:68])
	copy(li.StateMapHash[:], buf[68:100])
	copy(li.ParentHash[:], buf[100:132])
	li.Drops = binary.LittleEndian.Uint64(buf[132:140])
	li.CloseFlags = binary.LittleEndian.Uint32(buf[140:144])
	li.CloseTimeResolution = binary.LittleEndian.Uint32(buf[144:148])
	li.CloseTime = binary.LittleEndian.Uint64(buf[148:156])
	li.ParentCloseTime = binary.LittleEndian.Uint64(buf[156:164])
	return li, nil
}

// PutLedgerInfo encodes li into the first LedgerInfoSize bytes of buf.
func PutLedgerInfo(buf []byte, li LedgerInfo) {
	binary.LittleEndian.PutUint32(buf[0:4], li.Sequence)
	copy(buf[4:36], li.LedgerHash[:])
	copy(buf[36:68], li.TxMapHash[:])
	copy(buf[68:100], li.StateMapHash[:])
	copy(buf[100:132], li.ParentHash[:])
	binary.LittleEndian.PutUint64(buf[132:140], li.Drops)
	binary.LittleEndian.PutUint32(buf[140:144], li.CloseFlags)
	binary.LittleEndian.PutUint32(buf[144:148], li.CloseTimeResolution)
	binary.LittleEndian.PutUint64(buf[148:156], li.CloseTime)
	binary.LittleEndian.PutUint64(buf[156:164], li.ParentCloseTime)
}
