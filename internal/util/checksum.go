package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Bytes returns the hex-encoded SHA-256 digest of data.
func SHA256Bytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
