package v1

import (
	"testing"

	"github.com/sublimator/catalogue-tools-sub002/internal/parseerr"
	"github.com/sublimator/catalogue-tools-sub002/internal/shamap"
)

func TestStreamReaderDecodesAddAndTerminal(t *testing.T) {
	var key shamap.Key
	key[0] = 0x01
	var buf []byte
	buf = PutRecord(buf, TagAccountState, key, []byte("value"))
	buf = PutTerminal(buf)

	sr := newStreamReader(buf, 0, 1<<20, StreamState)
	rec, done, err := sr.next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if done {
		t.Fatal("expected a record, got done")
	}
	if rec.Tag != TagAccountState || rec.Key != key || string(rec.Value.Bytes()) != "value" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	_, done, err = sr.next()
	if err != nil || !done {
		t.Fatalf("expected terminal: done=%v err=%v", done, err)
	}
}

func TestStreamReaderRejectsRemoveInTxStream(t *testing.T) {
	var key shamap.Key
	buf := PutRemove(nil, key)
	buf = PutTerminal(buf)

	sr := newStreamReader(buf, 0, 1<<20, StreamTx)
	_, _, err := sr.next()
	if err == nil {
		t.Fatal("expected error for REMOVE in tx stream")
	}
	perr, ok := err.(*parseerr.Error)
	if !ok || perr.Kind != parseerr.WrongStreamContext {
		t.Fatalf("got %v, want WrongStreamContext", err)
	}
}

func TestStreamReaderRejectsTxTagInStateStream(t *testing.T) {
	var key shamap.Key
	buf := PutRecord(nil, TagTransactionNoMeta, key, []byte("x"))
	buf = PutTerminal(buf)

	sr := newStreamReader(buf, 0, 1<<20, StreamState)
	_, _, err := sr.next()
	perr, ok := err.(*parseerr.Error)
	if !ok || perr.Kind != parseerr.WrongStreamContext {
		t.Fatalf("got %v, want WrongStreamContext", err)
	}
}

func TestStreamReaderRejectsOversizedValue(t *testing.T) {
	var key shamap.Key
	buf := PutRecord(nil, TagAccountState, key, make([]byte, 100))
	buf = PutTerminal(buf)

	sr := newStreamReader(buf, 0, 10, StreamState)
	_, _, err := sr.next()
	perr, ok := err.(*parseerr.Error)
	if !ok || perr.Kind != parseerr.InvalidValueSize {
		t.Fatalf("got %v, want InvalidValueSize", err)
	}
}

func TestStreamReaderRejectsUnknownTag(t *testing.T) {
	buf := []byte{0x99}
	sr := newStreamReader(buf, 0, 1<<20, StreamState)
	_, _, err := sr.next()
	perr, ok := err.(*parseerr.Error)
	if !ok || perr.Kind != parseerr.InvalidNodeType {
		t.Fatalf("got %v, want InvalidNodeType", err)
	}
}

func TestStreamReaderDecodesRemoveInStateStream(t *testing.T) {
	var key shamap.Key
	key[5] = 0xAB
	buf := PutRemove(nil, key)
	buf = PutTerminal(buf)

	sr := newStreamReader(buf, 0, 1<<20, StreamState)
	rec, done, err := sr.next()
	if err != nil || done {
		t.Fatalf("next: rec=%v done=%v err=%v", rec, done, err)
	}
	if rec.Tag != TagRemove || rec.Key != key {
		t.Fatalf("unexpected record: %+v", rec)
	}
}
