package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashBytes returns a short content hash.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}
