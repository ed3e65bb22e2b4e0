package v1

import (
	"bytes"
	"compress/zlib"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/sublimator/catalogue-tools-sub002/internal/parseerr"
)

// Reader memory-maps a CATL v1 file and exposes its parsed header plus the
// raw byte view the rest of the package parses records out of. Zero-copy:
// Slice values handed to callers during iteration stay valid only while
// the Reader is open.
//
// When the header declares a nonzero compression level, the body cannot be
// read directly out of the mmap (records no longer sit at the offsets the
// header's field layout implies once inflated), so Open eagerly inflates
// it into a heap buffer and view switches to that instead. Uncompressed
// files stay fully mmap-backed.
type Reader struct {
	file *os.File
	data mmap.MMap
	view []byte
	hdr  Header
}

// Open mmaps path read-only and parses its header. A nonzero declared
// compression level is decoded if it is zlib; any other nonzero level
// fails closed with InvalidHeader rather than silently reading compressed
// bytes as if they were raw records.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	hdr, perr := ParseHeader(data)
	if perr != nil {
		data.Unmap()
		f.Close()
		return nil, perr
	}
	if int64(hdr.FileSize) != int64(len(data)) {
		// Non-fatal: some producers leave filesize stale. Record it but
		// trust the actual mapped length for bounds checks.
		_ = hdr.FileSize
	}

	view := []byte(data)
	if hdr.CompressionLevel() != 0 {
		body, err := inflateZlib(data[HeaderSize:])
		if err != nil {
			data.Unmap()
			f.Close()
			return nil, parseerr.New(HeaderSize, parseerr.InvalidHeader)
		}
		view = make([]byte, HeaderSize+len(body))
		copy(view, data[:HeaderSize])
		copy(view[HeaderSize:], body)
	}

	return &Reader{file: f, data: data, view: view, hdr: hdr}, nil
}

func inflateZlib(compressed []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// Close unmaps the file and releases the descriptor. Any Slice obtained
// from this Reader (directly or via a Record's Value) must not be used
// after Close.
func (r *Reader) Close() error {
	if err := r.data.Unmap(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

// Header returns the parsed file header.
func (r *Reader) Header() Header { return r.hdr }

// Bytes returns the full logical file contents: the raw mapped bytes for
// an uncompressed file, or the header followed by the inflated body for a
// compressed one.
func (r *Reader) Bytes() []byte { return r.view }

// BodyOffset is the byte offset of the first ledger record.
func (r *Reader) BodyOffset() int64 { return HeaderSize }

// ReadLedgerInfo decodes the LedgerInfo at offset.
func (r *Reader) ReadLedgerInfo(offset int64) (LedgerInfo, error) {
	if offset+LedgerInfoSize > int64(len(r.view)) {
		return LedgerInfo{}, parseerr.New(offset, parseerr.UnexpectedEOF)
	}
	return ParseLedgerInfo(r.view[offset:offset+LedgerInfoSize], offset)
}
