package crypto

import "errors"

var (
	// ErrAuthFailed is returned when an AEAD tag check fails.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrUnwrapFailed is returned when RSA-OAEP decryption fails, for any
	// reason. The specific cause is intentionally not exposed.
	ErrUnwrapFailed = errors.New("key unwrap failed")

	// ErrInvalidKeySize is returned when a key does not match its expected
	// byte length.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidNonceSize is returned when a nonce does not match the
	// required 12-byte length.
	ErrInvalidNonceSize = errors.New("invalid nonce size")

	// ErrKeyTooSmall is returned when an RSA public or private key's
	// modulus is below [MinRSAModulusBits].
	ErrKeyTooSmall = errors.New("RSA modulus smaller than minimum required size")

	// ErrMalformedKey is returned when PEM or DER key material cannot be
	// parsed.
	ErrMalformedKey = errors.New("malformed key material")

	// ErrUnsupportedKeyType is returned when a parsed key is not an RSA
	// key.
	ErrUnsupportedKeyType = errors.New("unsupported key type")

	// ErrSignatureInvalid is returned when an RS256 signature does not
	// verify over the given signing input.
	ErrSignatureInvalid = errors.New("signature invalid")

	// ErrBufferCleared is returned when a [SecretBuffer] is read after it
	// has already been zeroized.
	ErrBufferCleared = errors.New("buffer has already been cleared")
)
