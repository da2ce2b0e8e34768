// Package digest provides the hashing support used to link and seal blocks.
package digest

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// ZeroHash is the previous hash recorded by the genesis block.
const ZeroHash = "0"

// Size is the number of hex characters in a hash produced by this package.
const Size = 64

// Hash returns the lower case hex encoded SHA3-256 digest of the parts
// written in order.
func Hash(parts ...[]byte) string {
	h := sha3.New256()
	for _, p := range parts {
		h.Write(p)
	}

	return hex.EncodeToString(h.Sum(nil))
}

// HasZeroPrefix reports whether the hash starts with n zero hex characters.
func HasZeroPrefix(hash string, n uint) bool {
	if len(hash) != Size || n > Size {
		return false
	}

	for i := range int(n) {
		if hash[i] != '0' {
			return false
		}
	}

	return true
}
