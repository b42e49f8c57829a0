// Package anonymize replaces Reddit user names with stable keyed digests.
package anonymize

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Width of the rolling digest buffer that is re-hashed on every iteration.
const bufferSize = 512

// Author returns the hex encoding of the first 16 bytes of an iterated,
// keyed SHA3-512 digest of name. The same name, iteration count and key
// always produce the same pseudonym.
//
// Each iteration hashes the whole buffer: the previous 64-byte digest
// followed by 448 zero bytes, then the key. SHA3-512 output is not extended
// to fill the buffer, so with iterations > 0 the pseudonyms differ from
// tools that squeeze 512 bytes of Keccak output into it.
func Author(name string, iterations uint64, key []byte) string {
	var buf [bufferSize]byte

	h := sha3.New512()
	h.Write([]byte(name))
	h.Write(key)
	h.Sum(buf[:0])

	for range iterations {
		h.Reset()
		h.Write(buf[:])
		h.Write(key)
		h.Sum(buf[:0])
	}
	return hex.EncodeToString(buf[:16])
}

// Authors anonymizes every name, reusing the digest of repeated names.
func Authors(names []string, iterations uint64, key []byte) []string {
	cache := make(map[string]string)
	out := make([]string, len(names))
	for i, n := range names {
		a, ok := cache[n]
		if !ok {
			a = Author(n, iterations, key)
			cache[n] = a
		}
		out[i] = a
	}
	return out
}
