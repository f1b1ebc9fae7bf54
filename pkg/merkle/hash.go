package merkle

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the hex-encoded SHA-256 digest of data. The input is hashed
// as raw UTF-8 bytes, so the result is identical on every platform.
func Hash(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// hashPair combines two node hashes into their parent hash:
// SHA-256 over the concatenation of the two hex strings.
func hashPair(left, right string) string {
	return Hash(left + right)
}
