package v1

import (
	"encoding/hex"
	"io"

	"github.com/sublimator/catalogue-tools-sub002/internal/logging"
	"github.com/sublimator/catalogue-tools-sub002/internal/parseerr"
	"github.com/sublimator/catalogue-tools-sub002/internal/shamap"
)

// Options configures how a Driver applies and verifies ledger records:
// the value-size ceiling, collapse mode, and file_hash strictness.
type Options struct {
	MaxValueSize   uint32
	CollapseMode   shamap.CollapseMode
	StrictFileHash bool
}

// DefaultOptions matches the 5 MiB value-size ceiling.
func DefaultOptions() Options {
	return Options{MaxValueSize: 5 * 1024 * 1024, CollapseMode: shamap.CollapseLeavesOnly}
}

// Status is the per-ledger outcome reported by the driver.
type Status int

const (
	StatusVerified Status = iota
	StatusHashMismatch
	StatusParseError
)

func (s Status) String() string {
	switch s {
	case StatusVerified:
		return "VERIFIED"
	case StatusHashMismatch:
		return "HASH_MISMATCH"
	case StatusParseError:
		return "PARSE_ERROR"
	default:
		return "UNKNOWN"
	}
}

// LedgerResult reports one ledger's processing outcome.
type LedgerResult struct {
	Sequence      uint32
	Status        Status
	StateVerified bool
	TxVerified    bool
	Err           error
}

// Driver streams a CATL v1 file's ledgers through two SHAMaps (state, tx),
// verifying each ledger's root hashes against its LedgerInfo. It holds no
// logic of its own beyond orchestration, the way a thin driver wires
// together the pieces it was handed.
type Driver struct {
	reader *Reader
	opts   Options
	sink   logging.Sink

	offset      int64
	stateMap    *shamap.SHAMap
	verified    int
	mismatch    int
	parseErrs   int
	noopRemoves int

	fileHashErr error
}

// NewDriver wires a Driver over an already-open Reader. sink may be
// logging.Nop{} if the caller does not want logging.
//
// If the header's file_hash is non-zero, it is verified immediately
// against the SHA-512 of the file's logical contents (the field itself
// zeroed). A mismatch is always reported through sink; it only becomes
// fatal (surfaced from the first Next() call) when opts.StrictFileHash
// is set — otherwise it is purely informational, matching the treatment
// of a ledger hash mismatch elsewhere in this package.
func NewDriver(r *Reader, opts Options, sink logging.Sink) *Driver {
	d := &Driver{reader: r, opts: opts, sink: sink, offset: r.BodyOffset()}
	d.verifyFileHash()
	return d
}

func (d *Driver) verifyFileHash() {
	want := d.reader.Header().FileHash
	if want == ([64]byte{}) {
		return // unset, nothing to verify.
	}
	got := computeFileHash(d.reader.Bytes())
	if got == want {
		return
	}
	d.sink.Warn("file_hash mismatch",
		logging.F("want", hex.EncodeToString(want[:])),
		logging.F("got", hex.EncodeToString(got[:])))
	if d.opts.StrictFileHash {
		d.fileHashErr = parseerr.New(24, parseerr.FileHashMismatch)
	}
}

// Done reports whether every byte of the file has been consumed.
func (d *Driver) Done() bool {
	return d.offset >= int64(len(d.reader.Bytes()))
}

// Next processes one ledger record and returns its result. It returns
// io.EOF once Done() would report true.
func (d *Driver) Next() (LedgerResult, error) {
	if d.fileHashErr != nil {
		err := d.fileHashErr
		d.fileHashErr = nil
		d.parseErrs++
		return LedgerResult{Status: StatusParseError, Err: err}, err
	}
	if d.Done() {
		return LedgerResult{}, io.EOF
	}

	li, err := d.reader.ReadLedgerInfo(d.offset)
	if err != nil {
		d.parseErrs++
		return LedgerResult{Status: StatusParseError, Err: err}, err
	}
	d.offset += LedgerInfoSize

	if d.stateMap == nil || li.Sequence == d.reader.Header().MinLedger {
		d.stateMap = shamap.New(shamap.TypeAccountState, shamap.Options{CollapseMode: d.opts.CollapseMode})
	}

	stateOffset := d.offset
	if err := d.applyStateStream(&d.offset); err != nil {
		d.parseErrs++
		return LedgerResult{Sequence: li.Sequence, Status: StatusParseError, Err: err}, err
	}
	d.sink.Debug("applied state stream", logging.F("ledger", li.Sequence), logging.F("offset", stateOffset))

	txMap := shamap.New(shamap.TypeTransactionWithMeta, shamap.Options{CollapseMode: d.opts.CollapseMode})
	if err := d.applyTxStream(txMap, &d.offset); err != nil {
		d.parseErrs++
		return LedgerResult{Sequence: li.Sequence, Status: StatusParseError, Err: err}, err
	}

	stateVerified := d.stateMap.GetHash() == shamap.Hash256(li.StateMapHash)
	txVerified := txMap.GetHash() == shamap.Hash256(li.TxMapHash)

	result := LedgerResult{Sequence: li.Sequence, StateVerified: stateVerified, TxVerified: txVerified}
	if stateVerified && txVerified {
		result.Status = StatusVerified
		d.verified++
	} else {
		result.Status = StatusHashMismatch
		d.mismatch++
		d.sink.Warn("ledger hash mismatch",
			logging.F("ledger", li.Sequence),
			logging.F("state_verified", stateVerified),
			logging.F("tx_verified", txVerified))
	}
	return result, nil
}

func (d *Driver) applyStateStream(offset *int64) error {
	sr := newStreamReader(d.reader.Bytes(), *offset, d.opts.MaxValueSize, StreamState)
	for {
		rec, done, err := sr.next()
		if err != nil {
			return err
		}
		if done {
			break
		}
		switch rec.Tag {
		case TagRemove:
			removed, err := d.stateMap.RemoveItem(rec.Key)
			if err != nil {
				return parseerr.Newf(sr.offset, parseerr.Internal, "%v", err)
			}
			if !removed {
				d.noopRemoves++
			}
		case TagAccountState:
			item := shamap.NewItem(rec.Key, rec.Value.Bytes())
			if _, err := d.stateMap.SetItem(item, shamap.AddOrUpdate); err != nil {
				return parseerr.Newf(sr.offset, parseerr.Internal, "%v", err)
			}
		}
	}
	*offset = sr.offset
	return nil
}

func (d *Driver) applyTxStream(txMap *shamap.SHAMap, offset *int64) error {
	sr := newStreamReader(d.reader.Bytes(), *offset, d.opts.MaxValueSize, StreamTx)
	for {
		rec, done, err := sr.next()
		if err != nil {
			return err
		}
		if done {
			break
		}
		leafType := shamap.NodeTypeTransactionWithMeta
		if rec.Tag == TagTransactionNoMeta {
			leafType = shamap.NodeTypeTransactionNoMeta
		}
		item := shamap.NewItem(rec.Key, rec.Value.Bytes())
		if _, err := txMap.SetItemTagged(item, shamap.AddOnly, leafType); err != nil {
			return parseerr.Newf(sr.offset, parseerr.Internal, "%v", err)
		}
	}
	*offset = sr.offset
	return nil
}

// Summary aggregates counts across every ledger processed so far. Success
// requires every ledger to have verified with no parse error. NoopRemoves
// counts REMOVE records for a key absent from the state map: not a fatal
// error, but tracked so the contract is observable rather than silently
// dropped.
type Summary struct {
	Verified    int
	Mismatched  int
	ParseErrs   int
	NoopRemoves int
}

func (d *Driver) Summary() Summary {
	return Summary{Verified: d.verified, Mismatched: d.mismatch, ParseErrs: d.parseErrs, NoopRemoves: d.noopRemoves}
}

// Success reports whether every ledger processed so far verified cleanly.
func (s Summary) Success() bool {
	return s.Mismatched == 0 && s.ParseErrs == 0
}
