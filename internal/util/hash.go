package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Hex is used to derive stable document and chunk identifiers from
// source content, so re-ingesting an unchanged corpus yields the same ids.
func SHA256Hex(b []byte) string {
	x := sha256.Sum256(b)
	return hex.EncodeToString(x[:])
}

// ShortID truncates a hex digest to a readable id prefix.
func ShortID(digest string, n int) string {
	if n <= 0 || n >= len(digest) {
		return digest
	}
	return digest[:n]
}
