package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
)

// Wrap encrypts a 32-byte content key under pub using RSA-OAEP with SHA-256
// as both the hash and the MGF1 function, no label. The result is always
// [WrappedKeySize] bytes for a 4096-bit key.
func Wrap(contentKey []byte, pub *rsa.PublicKey) ([]byte, error) {
	if len(contentKey) != AESKeySize {
		return nil, ErrInvalidKeySize
	}
	hash := sha256.New()
	wrapped, err := rsa.EncryptOAEP(hash, rand.Reader, pub, contentKey, nil)
	if err != nil {
		// Wrapping failure here is a programmer/key error (e.g. modulus
		// too small for OAEP's overhead), never data-driven, so it is not
		// folded into ErrUnwrapFailed.
		return nil, err
	}
	return wrapped, nil
}

// Unwrap decrypts a wrapped content key with priv using RSA-OAEP-SHA256.
// Any failure - padding error, wrong key, or wrong length - maps to the
// single [ErrUnwrapFailed] so the caller can never distinguish why
// unwrapping failed (OAEP padding errors must stay timing-safe).
func Unwrap(wrapped []byte, priv *rsa.PrivateKey) ([]byte, error) {
	hash := sha256.New()
	contentKey, err := rsa.DecryptOAEP(hash, rand.Reader, priv, wrapped, nil)
	if err != nil {
		return nil, ErrUnwrapFailed
	}
	if len(contentKey) != AESKeySize {
		return nil, ErrUnwrapFailed
	}
	return contentKey, nil
}
