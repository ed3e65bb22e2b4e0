package v2

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sublimator/catalogue-tools-sub002/internal/shamap"
)

func buildSampleMap(t *testing.T) *shamap.SHAMap {
	t.Helper()
	m := shamap.New(shamap.TypeAccountState, shamap.Options{})
	for i := byte(1); i <= 5; i++ {
		var k shamap.Key
		k[31] = i
		if _, err := m.AddItem(shamap.NewItem(k, []byte{i, i, i})); err != nil {
			t.Fatal(err)
		}
	}
	return m
}

func TestWriteReadRoundTripHash(t *testing.T) {
	m := buildSampleMap(t)
	data := Write(m.Export())

	path := filepath.Join(t.TempDir(), "tree.catl2")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	got, err := r.GetHash()
	if err != nil {
		t.Fatalf("GetHash: %v", err)
	}
	if got != m.GetHash() {
		t.Fatalf("hash mismatch: got %x want %x", got, m.GetHash())
	}
}

func TestWriteReadRoundTripItems(t *testing.T) {
	m := buildSampleMap(t)
	data := Write(m.Export())
	path := filepath.Join(t.TempDir(), "tree.catl2")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	for i := byte(1); i <= 5; i++ {
		var k shamap.Key
		k[31] = i
		item, ok, err := r.GetItem(k)
		if err != nil || !ok {
			t.Fatalf("GetItem(%d): ok=%v err=%v", i, ok, err)
		}
		if len(item.Value()) != 3 || item.Value()[0] != i {
			t.Fatalf("GetItem(%d) value = %v", i, item.Value())
		}
	}

	var absent shamap.Key
	absent[31] = 0xEE
	_, ok, err := r.GetItem(absent)
	if err != nil {
		t.Fatalf("GetItem(absent): %v", err)
	}
	if ok {
		t.Fatal("GetItem(absent) reported found")
	}
}

func TestEmptyMapRoundTrip(t *testing.T) {
	m := shamap.New(shamap.TypeAccountState, shamap.Options{})
	data := Write(m.Export())
	path := filepath.Join(t.TempDir(), "empty.catl2")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	got, err := r.GetHash()
	if err != nil {
		t.Fatalf("GetHash: %v", err)
	}
	if !got.IsZero() {
		t.Fatalf("empty map v2 round trip hash = %x, want zero", got)
	}
}
