package crypto

import (
	"crypto/rand"
	"fmt"
	"io"
)

// randReader is the source of all CSPRNG bytes: content keys, nonces, and
// nanoids. Tests override it through [SetRandReaderForTesting] to get
// deterministic, reproducible output.
var randReader io.Reader = rand.Reader

// RandomBytes returns n cryptographically random bytes from the configured
// reader.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(randReader, b); err != nil {
		return nil, fmt.Errorf("read random bytes: %w", err)
	}
	return b, nil
}

// GenerateContentKey returns a fresh 32-byte AES-256 content key.
func GenerateContentKey() ([]byte, error) {
	return RandomBytes(AESKeySize)
}

// GenerateNonce returns a fresh 12-byte AES-GCM nonce.
func GenerateNonce() ([]byte, error) {
	return RandomBytes(AESNonceSize)
}

// nanoidAlphabet is the 64-character URL-safe alphabet used for capsa and
// file identifiers.
const nanoidAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"

// nanoidLen is the number of characters in a generated nanoid.
const nanoidLen = 21

// Nanoid returns a 21-character identifier drawn uniformly from the 64-entry
// URL-safe nanoid alphabet. The alphabet size is a power of two (64 == 1<<6)
// so masking the low 6 bits of each random byte is unbiased; no rejection
// sampling is needed.
func Nanoid() (string, error) {
	const mask = 0x3f
	buf, err := RandomBytes(nanoidLen)
	if err != nil {
		return "", err
	}
	out := make([]byte, nanoidLen)
	for i, b := range buf {
		out[i] = nanoidAlphabet[b&mask]
	}
	return string(out), nil
}

// PackageID returns a new capsa package identifier: "capsa_" followed by a
// 21-character nanoid.
func PackageID() (string, error) {
	id, err := Nanoid()
	if err != nil {
		return "", err
	}
	return "capsa_" + id, nil
}
