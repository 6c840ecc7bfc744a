package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashHex returns the lowercase-hex SHA-256 digest of data.
func HashHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
