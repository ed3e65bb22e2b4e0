package v1

import "crypto/sha512"

// computeFileHash reproduces the file_hash field: SHA-512 over the full
// logical file contents (header plus every ledger record) with the
// file_hash field itself (header bytes 24..88) zeroed. This is the
// full 64-byte SHA-512 digest, not the truncated SHA-512/256 used
// throughout the trie hashing protocol.
func computeFileHash(view []byte) [64]byte {
	h := sha512.New()
	h.Write(view[:24])
	var zero [64]byte
	h.Write(zero[:])
	if len(view) > HeaderSize {
		h.Write(view[HeaderSize:])
	}
	var out [64]byte
	copy(out[:], h.Sum(nil))
	return out
}
