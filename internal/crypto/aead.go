package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// Seal encrypts plaintext with AES-256-GCM under key and nonce, returning
// the ciphertext and the 16-byte authentication tag separately, as required
// by the wire AeadSegment shape (§3). Ciphertext length always equals
// plaintext length; no padding is applied.
//
// The nonce MUST be unique for every Seal call performed under the same
// key. Nonce allocation and uniqueness are the caller's responsibility; see
// newNonceDrawer in the root capsa package (builder.go) for how a single
// capsa's nonces are drawn.
func Seal(key, nonce, plaintext []byte) (ciphertext, tag []byte, err error) {
	gcm, err := newGCM(key, nonce)
	if err != nil {
		return nil, nil, err
	}

	sealed := gcm.Seal(nil, nonce, plaintext, nil)
	ciphertext = sealed[:len(sealed)-AESTagSize]
	tag = sealed[len(sealed)-AESTagSize:]
	return ciphertext, tag, nil
}

// Open decrypts ciphertext+tag with AES-256-GCM under key and nonce. Any
// tag mismatch, key mismatch, or mutation of ciphertext/tag/nonce fails
// with [ErrAuthFailed].
func Open(key, nonce, ciphertext, tag []byte) ([]byte, error) {
	gcm, err := newGCM(key, nonce)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return plaintext, nil
}

func newGCM(key, nonce []byte) (cipher.AEAD, error) {
	if len(key) != AESKeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), AESKeySize)
	}
	if len(nonce) != AESNonceSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidNonceSize, len(nonce), AESNonceSize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	return gcm, nil
}
