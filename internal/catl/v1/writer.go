package v1

import (
	"crypto/sha512"
	"encoding/binary"

	"github.com/sublimator/catalogue-tools-sub002/internal/shamap"
)

// LedgerDelta is the ordered set of state-map changes for one ledger:
// exactly the adds/updates/removes needed to transform the previous
// state into the current state.
type LedgerDelta struct {
	Info         LedgerInfo
	StateAdds    []shamap.Item
	StateRemoves []shamap.Key
	TxItems      []TxRecord
}

// TxRecord pairs a tx-stream item with the tag it should be written with.
type TxRecord struct {
	Item shamap.Item
	Tag  Tag // TagTransactionNoMeta or TagTransactionWithMeta
}

// Writer accumulates ledger records and serializes them to the CATL v1
// wire format byte-identically for the same logical content. It holds no
// SHAMap of its own — callers compute deltas and pass them in, keeping
// the writer a pure byte-layout concern.
type Writer struct {
	minLedger, maxLedger uint32
	networkID            uint16
	buf                  []byte
}

// NewWriter starts a writer for the ledger range [minLedger, maxLedger].
func NewWriter(minLedger, maxLedger uint32, networkID uint16) *Writer {
	w := &Writer{minLedger: minLedger, maxLedger: maxLedger, networkID: networkID}
	w.buf = make([]byte, HeaderSize)
	return w
}

// WriteLedger appends one ledger's LedgerInfo, state stream and tx stream.
func (w *Writer) WriteLedger(d LedgerDelta) {
	var liBuf [LedgerInfoSize]byte
	PutLedgerInfo(liBuf[:], d.Info)
	w.buf = append(w.buf, liBuf[:]...)

	for _, item := range d.StateAdds {
		w.buf = PutRecord(w.buf, TagAccountState, item.Key(), item.Value())
	}
	for _, key := range d.StateRemoves {
		w.buf = PutRemove(w.buf, key)
	}
	w.buf = PutTerminal(w.buf)

	for _, tx := range d.TxItems {
		w.buf = PutRecord(w.buf, tx.Tag, tx.Item.Key(), tx.Item.Value())
	}
	w.buf = PutTerminal(w.buf)
}

// Finish fills in the header (filesize, and file_hash if withFileHash is
// true: SHA-512 over the whole file with that field zeroed) and returns
// the complete byte stream.
func (w *Writer) Finish(withFileHash bool) []byte {
	binary.LittleEndian.PutUint64(w.buf[16:24], uint64(len(w.buf)))
	h := Header{
		Magic:     Magic,
		MinLedger: w.minLedger,
		MaxLedger: w.maxLedger,
		Version:   1,
		NetworkID: w.networkID,
		FileSize:  uint64(len(w.buf)),
	}
	PutHeader(w.buf[:HeaderSize], h)

	if withFileHash {
		sum := sha512.Sum512(w.buf)
		copy(w.buf[24:88], sum[:])
	}
	return w.buf
}
