package utils

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Digest returns the hex BLAKE2b-256 sum of data.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
