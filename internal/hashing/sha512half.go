// Package hashing provides the single hash primitive the SHAMap protocol
// is built on: the leading 256 bits of SHA-512 over a prefix-tagged payload.
package hashing

import "crypto/sha512"

// Size256 is the width in bytes of a SHAMap hash.
const Size256 = 32

// Half computes SHA-512 over the concatenation of parts and returns the
// leading 256 bits. This is the "SHA-512/256" used throughout the SHAMap
// hashing protocol — not to be confused with the FIPS SHA-512/256 variant,
// which uses a different initialization vector.
func Half(parts ...[]byte) [Size256]byte {
	h := sha512.New()
	for _, p := range parts {
		h.Write(p)
	}
	sum := h.Sum(nil)

	var out [Size256]byte
	copy(out[:], sum[:Size256])
	return out
}
